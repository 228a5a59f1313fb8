// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pymod2pkg translates Python module names in to distribution package
// names.
//
// The render context takes any Translator, so a caller with its own naming
// policy can swap this implementation out entirely; Translate implements the
// common OpenStack-style conventions.
package pymod2pkg

import (
	"strings"
)

// A Translator maps a logical (PyPI) module name to one package name per
// requested Python-runtime variant, for a target style.  With no variants
// requested it returns exactly one name.
type Translator func(mod, style string, pyVersions []string) []string

// variantPrefixes maps a Python-runtime variant tag to the package-name
// prefix it selects.  "py" is the unversioned default.
var variantPrefixes = map[string]string{
	"py":  "python-",
	"py2": "python2-",
	"py3": "python3-",
}

// singleRules lists upstream names that are packaged under a name that no
// prefix rule produces, for every style and variant.
var singleRules = map[string]string{
	"ansible":        "ansible",
	"libvirt-python": "libvirt-python",
}

// Translate is the default Translator.
func Translate(mod, style string, pyVersions []string) []string {
	if len(pyVersions) == 0 {
		pyVersions = []string{"py"}
	}
	ret := make([]string, 0, len(pyVersions))
	for _, pyVersion := range pyVersions {
		ret = append(ret, translateOne(mod, style, pyVersion))
	}
	return ret
}

func translateOne(mod, style, pyVersion string) string {
	if pkg, ok := singleRules[mod]; ok {
		return pkg
	}
	prefix, ok := variantPrefixes[pyVersion]
	if !ok {
		prefix = variantPrefixes["py"]
	}
	// a module that already carries a "python-" prefix gets the prefix
	// swapped, not stacked
	if rest := strings.TrimPrefix(mod, "python-"); rest != mod {
		return prefix + rest
	}
	return prefix + mod
}
