// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package rpm translates Python package metadata (PEP 440 versions, SPDX
// license identifiers, dependency floors) in to the conventions of the two
// RPM-based distribution families that spec files get rendered for.
package rpm

import (
	"fmt"
	"strings"

	"github.com/datawire/renderspec/pkg/python/pep440"
)

// Style selects the target distribution family's conventions.  Any style
// other than StyleFedora (overlay styles such as "epel7" included) follows
// the SUSE conventions for version/release/license translation.
type Style string

const (
	StyleSUSE   Style = "suse"
	StyleFedora Style = "fedora"
)

// preSentinels maps a normalized PEP 440 pre-release phase to the token used
// in SUSE-style RPM versions.  The "~" makes the result sort below the final
// release, and the "x" prefix inverts the unfortunate lexical accident that
// "a10" > "dev10" in Python but "~a10" < "~dev10" in RPM: with the sentinels,
// rpmvercmp yields dev < alpha < beta < rc < final, matching PEP 440.
var preSentinels = map[string]string{
	"a":  "~xalpha",
	"b":  "~xbeta",
	"rc": "~xrc",
}

// Version translates ver in to the Version: tag value for the given style.
//
// Fedora forbids "~" in versions and encodes pre-release state in the Release:
// tag instead, so the Fedora form is just the release tuple (truncated to
// three components when upstream uses four or more).  The SUSE form keeps the
// full public version, rewriting pre/dev segments with sortable sentinels.
func Version(style Style, ver pep440.Version) string {
	if style == StyleFedora {
		if len(ver.Release) >= 4 {
			return fmt.Sprintf("%d.%d.%d", ver.Release[0], ver.Release[1], ver.Release[2])
		}
		return ver.BaseVersion()
	}

	if !ver.IsPreRelease() {
		return ver.Public()
	}
	var ret strings.Builder
	ret.WriteString(ver.BaseVersion()) // includes the epoch, if any
	if ver.Pre != nil {
		fmt.Fprintf(&ret, "%s%d", preSentinels[ver.Pre.L], ver.Pre.N)
	}
	if ver.Post != nil {
		fmt.Fprintf(&ret, ".post%d", *ver.Post)
	}
	if ver.Dev != nil {
		fmt.Fprintf(&ret, "~dev%d", *ver.Dev)
	}
	return ret.String()
}

// Release computes the Release: tag value for the given style.
//
// SUSE leaves release management to the Open Build Service and always uses
// "0".  Fedora counts successive packagings with a build counter; a
// pre-release build gets a "0.<counter>.<alphatag>" release so that it sorts
// below the eventual final build with the same counter.  The "%{?dist}"
// macro is emitted verbatim for rpmbuild to expand.
func Release(style Style, ver pep440.Version, counter string) string {
	if style != StyleFedora {
		return "0"
	}
	if ver.IsPreRelease() {
		alphatag := strings.TrimLeft(strings.TrimPrefix(ver.Public(), ver.BaseVersion()), ".")
		return fmt.Sprintf("0.%s.%s%%{?dist}", counter, alphatag)
	}
	return fmt.Sprintf("%s%%{?dist}", counter)
}
