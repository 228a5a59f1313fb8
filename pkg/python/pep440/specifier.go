// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pep440

import (
	"fmt"
	"strings"
)

// Specifier is a comma-separated set of version specifier clauses, per the PEP
// 440 version specifiers section.
type Specifier []SpecifierClause

type CmpOp int

const (
	CmpOpCompatible CmpOp = iota // ~=
	CmpOpMatch                   // ==
	CmpOpExclude                 // !=
	CmpOpLE                      // <=
	CmpOpGE                      // >=
	CmpOpLT                      // <
	CmpOpGT                      // >
)

func (op CmpOp) String() string {
	str, ok := map[CmpOp]string{
		CmpOpCompatible: "~=",
		CmpOpMatch:      "==",
		CmpOpExclude:    "!=",
		CmpOpLE:         "<=",
		CmpOpGE:         ">=",
		CmpOpLT:         "<",
		CmpOpGT:         ">",
	}[op]
	if !ok {
		panic(fmt.Errorf("invalid CmpOp: %d", op))
	}
	return str
}

type SpecifierClause struct {
	CmpOp   CmpOp
	Version Version
	// Prefix indicates a "==ver.*" / "!=ver.*" prefix-match clause.
	Prefix bool
}

func ParseSpecifier(str string) (Specifier, error) {
	clauseStrs := strings.FieldsFunc(str, func(r rune) bool { return r == ',' })
	ret := make(Specifier, 0, len(clauseStrs))
	for _, clauseStr := range clauseStrs {
		clauseStr = strings.TrimSpace(clauseStr)
		if clauseStr == "" {
			continue
		}
		clause, err := parseSpecifierClause(clauseStr)
		if err != nil {
			return nil, fmt.Errorf("pep440.ParseSpecifier: %w", err)
		}
		ret = append(ret, clause)
	}
	return ret, nil
}

func parseSpecifierClause(str string) (SpecifierClause, error) {
	var ret SpecifierClause
	switch {
	case strings.HasPrefix(str, "~="):
		ret.CmpOp = CmpOpCompatible
		str = str[2:]
	case strings.HasPrefix(str, "==="):
		return ret, fmt.Errorf("specifiers with === are not supported; versions must be PEP 440 compliant")
	case strings.HasPrefix(str, "=="):
		ret.CmpOp = CmpOpMatch
		str = str[2:]
	case strings.HasPrefix(str, "!="):
		ret.CmpOp = CmpOpExclude
		str = str[2:]
	case strings.HasPrefix(str, "<="):
		ret.CmpOp = CmpOpLE
		str = str[2:]
	case strings.HasPrefix(str, ">="):
		ret.CmpOp = CmpOpGE
		str = str[2:]
	case strings.HasPrefix(str, "<"):
		ret.CmpOp = CmpOpLT
		str = str[1:]
	case strings.HasPrefix(str, ">"):
		ret.CmpOp = CmpOpGT
		str = str[1:]
	default:
		return ret, fmt.Errorf("invalid comparison operator: %q", str)
	}
	if strings.HasSuffix(str, ".*") {
		if ret.CmpOp != CmpOpMatch && ret.CmpOp != CmpOpExclude {
			return ret, fmt.Errorf("prefix-match not permitted in %s specifier clauses", ret.CmpOp)
		}
		ret.Prefix = true
		str = strings.TrimSuffix(str, ".*")
	}
	ver, err := ParseVersion(strings.TrimSpace(str))
	if err != nil {
		return ret, err
	}
	if ret.CmpOp == CmpOpCompatible && len(ver.Release) < 2 {
		return ret, fmt.Errorf("at least 2 release segments required in ~= specifier clauses")
	}
	ret.Version = *ver
	return ret, nil
}

func (spec SpecifierClause) String() string {
	suffix := ""
	if spec.Prefix {
		suffix = ".*"
	}
	return spec.CmpOp.String() + spec.Version.String() + suffix
}

func (spec Specifier) String() string {
	clauses := make([]string, 0, len(spec))
	for _, clause := range spec {
		clauses = append(clauses, clause.String())
	}
	return strings.Join(clauses, ",")
}

func (spec Specifier) Match(ver Version) bool {
	for _, clause := range spec {
		if !clause.Match(ver) {
			return false
		}
	}
	return true
}

func (spec SpecifierClause) Match(ver Version) bool {
	switch spec.CmpOp {
	case CmpOpCompatible:
		prefix := spec.Version
		prefix.Release = prefix.Release[:len(prefix.Release)-1]
		prefix.Pre = nil
		prefix.Post = nil
		prefix.Dev = nil
		return spec.Version.PublicVersion.Cmp(ver.PublicVersion) <= 0 &&
			matchPrefix(prefix.PublicVersion, ver.PublicVersion)
	case CmpOpMatch:
		if spec.Prefix {
			return matchPrefix(spec.Version.PublicVersion, ver.PublicVersion)
		}
		if len(spec.Version.Local) == 0 {
			return spec.Version.PublicVersion.Cmp(ver.PublicVersion) == 0
		}
		return spec.Version.Cmp(ver) == 0
	case CmpOpExclude:
		inverse := spec
		inverse.CmpOp = CmpOpMatch
		return !inverse.Match(ver)
	case CmpOpLE:
		return ver.PublicVersion.Cmp(spec.Version.PublicVersion) <= 0
	case CmpOpGE:
		return ver.PublicVersion.Cmp(spec.Version.PublicVersion) >= 0
	case CmpOpLT:
		return ver.PublicVersion.Cmp(spec.Version.PublicVersion) < 0
	case CmpOpGT:
		return ver.PublicVersion.Cmp(spec.Version.PublicVersion) > 0
	default:
		panic(fmt.Errorf("invalid CmpOp: %d", spec.CmpOp))
	}
}

// matchPrefix reports whether ver falls within the prefix defined by spec's
// release segments (and pre/post parts, if present).
func matchPrefix(spec, ver PublicVersion) bool {
	if spec.Epoch != ver.Epoch {
		return false
	}
	for i, seg := range spec.Release {
		if ver.releaseSegment(i) != seg {
			return false
		}
	}
	if spec.Pre != nil && (ver.Pre == nil || *ver.Pre != *spec.Pre) {
		return false
	}
	if spec.Post != nil && (ver.Post == nil || *ver.Post != *spec.Post) {
		return false
	}
	return true
}
