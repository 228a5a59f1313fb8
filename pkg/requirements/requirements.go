// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package requirements extracts minimum-version floors from Python
// requirements files ("global-requirements" style: one PEP 508 declaration
// per line).
package requirements

import (
	"fmt"
	"os"
	"strings"

	"github.com/datawire/renderspec/pkg/python/pep440"
	"github.com/datawire/renderspec/pkg/python/pep508"
)

// FixedEnvironment returns the environment snapshot that marker expressions
// are evaluated against.
//
// This is deliberately NOT the host environment: output compatibility depends
// on requirements files being filtered the same way on every host, so the
// snapshot is frozen to a CPython 2.7 Linux machine.  Do not "fix" this to
// derive values from the running system.
func FixedEnvironment() pep508.Environment {
	return pep508.Environment{
		"os_name":                        "posix",
		"sys_platform":                   "linux",
		"platform_machine":               "x86_64",
		"platform_python_implementation": "CPython",
		"platform_system":                "Linux",
		"python_version":                 "2.7",
		"python_full_version":            "2.7.18",
		"implementation_name":            "cpython",
		"implementation_version":         "2.7.18",
	}
}

// Parse extracts a name->minimum-version map from requirement declaration
// lines.  Blank lines and "#" comment lines are skipped, trailing "#" comments
// are stripped.  A declaration whose environment marker evaluates false
// against FixedEnvironment is skipped; a malformed declaration is an error for
// the whole extraction.
//
// The minimum version for a package is the smallest version among its
// lower-bound-like specifier clauses (">=", "==", ">"); "!=" exclusions and
// upper bounds never contribute.  A package with no such clause is recorded
// with an empty version.  Later lines for the same package win.
func Parse(lines []string) (map[string]string, error) {
	env := FixedEnvironment()
	ret := make(map[string]string)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if hash := strings.IndexByte(trimmed, '#'); hash >= 0 {
			trimmed = strings.TrimRight(trimmed[:hash], " ")
		}
		req, err := pep508.ParseRequirement(trimmed)
		if err != nil {
			return nil, err
		}
		if req.Marker != nil {
			ok, err := req.Marker.Evaluate(env)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		ret[req.Name] = lowestBound(req.Specifier)
	}
	return ret, nil
}

// lowestBound returns the smallest version among the lower-bound-like clauses
// of spec, or "" if there is none.
func lowestBound(spec pep440.Specifier) string {
	var lowest *pep440.Version
	for i := range spec {
		clause := spec[i]
		switch clause.CmpOp {
		case pep440.CmpOpGE, pep440.CmpOpGT:
		case pep440.CmpOpMatch:
			if clause.Prefix {
				continue
			}
		default:
			continue
		}
		if lowest == nil || clause.Version.Cmp(*lowest) < 0 {
			lowest = &clause.Version
		}
	}
	if lowest == nil {
		return ""
	}
	return lowest.String()
}

// ParseFiles parses each file with Parse and merges the results in order;
// for a package named in several files, the last-listed file wins.
func ParseFiles(filenames []string) (map[string]string, error) {
	ret := make(map[string]string)
	for _, filename := range filenames {
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		reqs, err := Parse(strings.Split(string(content), "\n"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		for name, version := range reqs {
			ret[name] = version
		}
	}
	return ret, nil
}
