// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rpm

import (
	"fmt"
	"strings"
)

// PackageSpec renders the dependency token(s) for one logical package: each
// (already style-translated) name, optionally constrained to
// " <op> [epoch:]<version>", joined by single spaces.
//
// An empty version means no constraint; epoch 0 means no epoch prefix.
func PackageSpec(names []string, op, version string, epoch int) string {
	constraint := ""
	if version != "" {
		prefix := ""
		if epoch > 0 {
			prefix = fmt.Sprintf("%d:", epoch)
		}
		constraint = fmt.Sprintf(" %s %s%s", op, prefix, version)
	}
	tokens := make([]string, 0, len(names))
	for _, name := range names {
		tokens = append(tokens, name+constraint)
	}
	return strings.Join(tokens, " ")
}
