// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pep440 implements the parts of PEP 440 -- Version Identification and
// Dependency Specification -- that are needed to turn Python versions in to RPM
// versions.
//
// https://www.python.org/dev/peps/pep-0440/
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

type Version = LocalVersion

// PublicVersion is a PEP 440 public version identifier: everything up to the
// "+local" part.
type PublicVersion struct {
	// * Epoch segment: ``N!``
	Epoch int
	// * Release segment: ``N(.N)*``
	Release []int
	// * Pre-release segment: ``{a|b|rc}N``
	Pre *PreRelease
	// * Post-release segment: ``.postN``
	Post *int
	// * Development release segment: ``.devN``
	Dev *int
}

type PreRelease struct {
	L string // "a", "b", or "rc" (normalized)
	N int
}

// LocalVersion is a PublicVersion plus an optional local version label.
type LocalVersion struct {
	PublicVersion
	Local []intstr.IntOrString
}

// reVersion is the normalizing regular expression from PEP 440 Appendix B.
var reVersion = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_\.]?(?P<pre_l>a|b|c|rc|alpha|beta|pre|preview)[-_\.]?(?P<pre_n>[0-9]+)?)?` +
	`(?:(?:-(?P<post_n1>[0-9]+))|(?:[-_\.]?(?P<post_l>post|rev|r)[-_\.]?(?P<post_n2>[0-9]+)?))?` +
	`(?:[-_\.]?(?P<dev_l>dev)[-_\.]?(?P<dev_n>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?` +
	`\s*$`)

// ParseVersion parses a version string per the PEP 440 version scheme,
// normalizing the various spellings that the scheme permits ("1.0-alpha.2" =>
// "1.0a2").
func ParseVersion(str string) (*Version, error) {
	ver, err := parseVersion(str)
	if err != nil {
		return nil, fmt.Errorf("pep440.ParseVersion: %w", err)
	}
	return ver, nil
}

func parseVersion(str string) (*Version, error) {
	match := reVersion.FindStringSubmatch(str)
	if match == nil {
		return nil, fmt.Errorf("invalid version: %q", str)
	}

	var ver Version
	var err error
	if epoch := match[reVersion.SubexpIndex("epoch")]; epoch != "" {
		if ver.Epoch, err = strconv.Atoi(epoch); err != nil {
			return nil, err
		}
	}
	for _, segStr := range strings.Split(match[reVersion.SubexpIndex("release")], ".") {
		segInt, err := strconv.Atoi(segStr)
		if err != nil {
			return nil, err
		}
		ver.Release = append(ver.Release, segInt)
	}
	if l := match[reVersion.SubexpIndex("pre_l")]; l != "" {
		canonical, ok := map[string]string{
			"a": "a", "alpha": "a",
			"b": "b", "beta": "b",
			"rc": "rc", "c": "rc", "pre": "rc", "preview": "rc",
		}[strings.ToLower(l)]
		if !ok {
			return nil, fmt.Errorf("invalid pre-release string: %q", l)
		}
		n := 0
		if nStr := match[reVersion.SubexpIndex("pre_n")]; nStr != "" {
			if n, err = strconv.Atoi(nStr); err != nil {
				return nil, err
			}
		}
		ver.Pre = &PreRelease{L: canonical, N: n}
	}
	if match[reVersion.SubexpIndex("post_l")] != "" || match[reVersion.SubexpIndex("post_n1")] != "" {
		n := 0
		nStr := match[reVersion.SubexpIndex("post_n1")] + match[reVersion.SubexpIndex("post_n2")]
		if nStr != "" {
			if n, err = strconv.Atoi(nStr); err != nil {
				return nil, err
			}
		}
		ver.Post = &n
	}
	if match[reVersion.SubexpIndex("dev_l")] != "" {
		n := 0
		if nStr := match[reVersion.SubexpIndex("dev_n")]; nStr != "" {
			if n, err = strconv.Atoi(nStr); err != nil {
				return nil, err
			}
		}
		ver.Dev = &n
	}
	if local := match[reVersion.SubexpIndex("local")]; local != "" {
		for _, segStr := range strings.FieldsFunc(local, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			ver.Local = append(ver.Local, intstr.Parse(strings.ToLower(segStr)))
		}
	}
	return &ver, nil
}

func (ver PublicVersion) writeTo(ret *strings.Builder) {
	if ver.Epoch > 0 {
		fmt.Fprintf(ret, "%d!", ver.Epoch)
	}
	if len(ver.Release) == 0 {
		panic("invalid version: no release segments")
	}
	fmt.Fprintf(ret, "%d", ver.Release[0])
	for _, segment := range ver.Release[1:] {
		fmt.Fprintf(ret, ".%d", segment)
	}
	if ver.Pre != nil {
		fmt.Fprintf(ret, "%s%d", ver.Pre.L, ver.Pre.N)
	}
	if ver.Post != nil {
		fmt.Fprintf(ret, ".post%d", *ver.Post)
	}
	if ver.Dev != nil {
		fmt.Fprintf(ret, ".dev%d", *ver.Dev)
	}
}

// String returns the normalized string form of the public version.
func (ver PublicVersion) String() string {
	var ret strings.Builder
	ver.writeTo(&ret)
	return ret.String()
}

func (ver LocalVersion) String() string {
	var ret strings.Builder
	ver.PublicVersion.writeTo(&ret)
	sep := "+"
	for _, local := range ver.Local {
		ret.WriteString(sep)
		ret.WriteString(local.String())
		sep = "."
	}
	return ret.String()
}

// Public returns the normalized public version string, discarding any local
// version label.
func (ver LocalVersion) Public() string {
	return ver.PublicVersion.String()
}

// BaseVersion returns the release segment (plus epoch, if any) as a string,
// with all pre/post/dev qualifiers stripped.
func (ver PublicVersion) BaseVersion() string {
	base := PublicVersion{Epoch: ver.Epoch, Release: ver.Release}
	return base.String()
}

func (ver PublicVersion) IsPreRelease() bool {
	return ver.Pre != nil || ver.Dev != nil
}

func (ver PublicVersion) IsFinal() bool {
	return ver.Pre == nil && ver.Post == nil && ver.Dev == nil
}

func (ver LocalVersion) IsFinal() bool {
	return ver.PublicVersion.IsFinal() && len(ver.Local) == 0
}

func (ver PublicVersion) releaseSegment(n int) int {
	if n < len(ver.Release) {
		return ver.Release[n]
	}
	return 0
}

func (ver PublicVersion) Major() int { return ver.releaseSegment(0) }
func (ver PublicVersion) Minor() int { return ver.releaseSegment(1) }
func (ver PublicVersion) Micro() int { return ver.releaseSegment(2) }

func cmpRelease(a, b PublicVersion) int {
	for i := 0; i < len(a.Release) || i < len(b.Release); i++ {
		if diff := a.releaseSegment(i) - b.releaseSegment(i); diff != 0 {
			return diff
		}
	}
	return 0
}

// pre-release phase ranks; a dev release with no pre-release part sorts below
// every pre-release phase (rank -4), absence of both is rank 0.
var preReleaseOrder = map[string]int{
	"a":  -3,
	"b":  -2,
	"rc": -1,
}

func cmpPreRelease(a, b PublicVersion) int {
	var aL, aN, bL, bN int
	if a.Pre != nil {
		aL, aN = preReleaseOrder[a.Pre.L], a.Pre.N
	} else if a.Dev != nil && a.Post == nil {
		aL = -4
	}
	if b.Pre != nil {
		bL, bN = preReleaseOrder[b.Pre.L], b.Pre.N
	} else if b.Dev != nil && b.Post == nil {
		bL = -4
	}
	if aL != bL {
		return aL - bL
	}
	return aN - bN
}

func cmpPostRelease(a, b PublicVersion) int {
	aPost, bPost := -1, -1
	if a.Post != nil {
		aPost = *a.Post
	}
	if b.Post != nil {
		bPost = *b.Post
	}
	return aPost - bPost
}

func cmpDevRelease(a, b PublicVersion) int {
	switch {
	case a.Dev == nil && b.Dev == nil:
		return 0
	case a.Dev == nil:
		return 1
	case b.Dev == nil:
		return -1
	default:
		return (*a.Dev) - (*b.Dev)
	}
}

// Cmp returns a number <0 if a<b, 0 if a==b, or >0 if a>b; ordering per the
// PEP 440 version scheme.
func (a PublicVersion) Cmp(b PublicVersion) int {
	if d := a.Epoch - b.Epoch; d != 0 {
		return d
	}
	if d := cmpRelease(a, b); d != 0 {
		return d
	}
	if d := cmpPreRelease(a, b); d != 0 {
		return d
	}
	if d := cmpPostRelease(a, b); d != 0 {
		return d
	}
	return cmpDevRelease(a, b)
}

func cmpLocalSegment(a, b *intstr.IntOrString) int {
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	switch {
	case a.Type == intstr.Int && b.Type == intstr.Int:
		return int(a.IntVal - b.IntVal)
	case a.Type == intstr.String && b.Type == intstr.String:
		return strings.Compare(a.StrVal, b.StrVal)
	case a.Type == intstr.Int: // numeric segments sort after alphanumeric ones
		return 1
	default:
		return -1
	}
}

func (a LocalVersion) Cmp(b LocalVersion) int {
	if d := a.PublicVersion.Cmp(b.PublicVersion); d != 0 {
		return d
	}
	for i := 0; i < len(a.Local) || i < len(b.Local); i++ {
		var aSeg, bSeg *intstr.IntOrString
		if i < len(a.Local) {
			aSeg = &(a.Local[i])
		}
		if i < len(b.Local) {
			bSeg = &(b.Local[i])
		}
		if d := cmpLocalSegment(aSeg, bSeg); d != 0 {
			return d
		}
	}
	return 0
}
