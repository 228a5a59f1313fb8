// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pep508 implements PEP 508 -- Dependency specification for Python
// Software Packages.
//
// https://www.python.org/dev/peps/pep-0508/
package pep508

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/datawire/renderspec/pkg/python/pep440"
)

// Requirement is one parsed dependency declaration, e.g.
//
//	requests[security] >=2.8.1,!=2.9.0 ; python_version < "2.7"
type Requirement struct {
	Name      string
	Extras    []string
	Specifier pep440.Specifier
	Marker    *Marker
}

var (
	reName   = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	reExtras = regexp.MustCompile(`^\[\s*([A-Za-z0-9._-]+(?:\s*,\s*[A-Za-z0-9._-]+)*)?\s*\]`)
)

// ParseRequirement parses a single dependency declaration line.
func ParseRequirement(line string) (*Requirement, error) {
	ret, err := parseRequirement(line)
	if err != nil {
		return nil, fmt.Errorf("pep508.ParseRequirement: %q: %w", line, err)
	}
	return ret, nil
}

func parseRequirement(line string) (*Requirement, error) {
	var ret Requirement
	rest := strings.TrimSpace(line)

	name := reName.FindString(rest)
	if name == "" {
		return nil, fmt.Errorf("invalid package name")
	}
	ret.Name = name
	rest = strings.TrimSpace(rest[len(name):])

	if extras := reExtras.FindStringSubmatch(rest); extras != nil {
		if extras[1] != "" {
			for _, extra := range strings.Split(extras[1], ",") {
				ret.Extras = append(ret.Extras, strings.TrimSpace(extra))
			}
		}
		rest = strings.TrimSpace(rest[len(extras[0]):])
	}

	specStr := rest
	if semi := indexUnquoted(rest, ';'); semi >= 0 {
		specStr = strings.TrimSpace(rest[:semi])
		markerStr := strings.TrimSpace(rest[semi+1:])
		if markerStr == "" {
			return nil, fmt.Errorf("empty environment marker")
		}
		marker, err := ParseMarker(markerStr)
		if err != nil {
			return nil, err
		}
		ret.Marker = marker
	}

	// the version specifier set may be wrapped in parentheses
	if strings.HasPrefix(specStr, "(") {
		if !strings.HasSuffix(specStr, ")") {
			return nil, fmt.Errorf("unbalanced parenthesis in version specifier: %q", specStr)
		}
		specStr = strings.TrimSpace(specStr[1 : len(specStr)-1])
	}
	if specStr != "" {
		spec, err := pep440.ParseSpecifier(specStr)
		if err != nil {
			return nil, err
		}
		ret.Specifier = spec
	}

	return &ret, nil
}

// indexUnquoted returns the index of the first occurrence of sep outside of
// single- or double-quoted strings, or -1.
func indexUnquoted(s string, sep byte) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		switch {
		case quote != 0:
			if s[i] == quote {
				quote = 0
			}
		case s[i] == '\'' || s[i] == '"':
			quote = s[i]
		case s[i] == sep:
			return i
		}
	}
	return -1
}

func (r Requirement) String() string {
	var ret strings.Builder
	ret.WriteString(r.Name)
	if len(r.Extras) > 0 {
		ret.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if len(r.Specifier) > 0 {
		ret.WriteString(r.Specifier.String())
	}
	if r.Marker != nil {
		ret.WriteString(" ; " + r.Marker.String())
	}
	return ret.String()
}
