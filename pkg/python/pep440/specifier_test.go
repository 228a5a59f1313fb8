// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pep440_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/renderspec/pkg/python/pep440"
)

func TestSpecifierMatch(t *testing.T) {
	t.Parallel()
	type testcase struct {
		Spec    string
		Version string
		Match   bool
	}
	testcases := []testcase{
		{">=1.1.2", "1.1.2", true},
		{">=1.1.2", "1.1.1", false},
		{">=1.1.2", "1.2", true},
		{">1.1.2", "1.1.2", false},
		{"<1.3", "1.2.9", true},
		{"<1.3", "1.3", false},
		{"<=1.3", "1.3", true},
		{"==1.3", "1.3.0", true},
		{"!=1.3", "1.3.0", false},
		{"==1.3.*", "1.3.7", true},
		{"==1.3.*", "1.4.0", false},
		{"!=1.3.*", "1.4.0", true},
		{"~=2.2", "2.3", true},
		{"~=2.2", "3.0", false},
		{"~=2.2.1", "2.2.7", true},
		{"~=2.2.1", "2.3.0", false},
		{">=1.1.2, <1.3, !=1.2.0", "1.2.5", true},
		{">=1.1.2, <1.3, !=1.2.0", "1.2.0", false},
	}
	for _, tc := range testcases {
		tc := tc
		t.Run(tc.Spec+"/"+tc.Version, func(t *testing.T) {
			t.Parallel()
			spec, err := pep440.ParseSpecifier(tc.Spec)
			require.NoError(t, err)
			ver, err := pep440.ParseVersion(tc.Version)
			require.NoError(t, err)
			assert.Equal(t, tc.Match, spec.Match(*ver))
		})
	}
}

func TestSpecifierParseErrors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"===1.2.3", // arbitrary equality is not supported
		"~=1",      // needs at least two release segments
		"1.2.3",    // missing operator
		">=not.a.version",
		">=1.3.*", // prefix-match only valid with == and !=
	} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := pep440.ParseSpecifier(input)
			assert.Error(t, err)
		})
	}
}

func TestSpecifierString(t *testing.T) {
	t.Parallel()
	spec, err := pep440.ParseSpecifier(" >= 1.1.2 , != 1.2.0, !=1.3b1 ,<1.3 ")
	require.NoError(t, err)
	assert.Equal(t, ">=1.1.2,!=1.2.0,!=1.3b1,<1.3", spec.String())
}
