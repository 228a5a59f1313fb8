// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package requirements_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/renderspec/pkg/requirements"
	"github.com/datawire/renderspec/pkg/testutil"
)

func TestParse(t *testing.T) {
	t.Parallel()
	type testcase struct {
		Input    []string
		Expected map[string]string
	}
	testcases := map[string]testcase{
		"lowest-bound": {
			// "!=" exclusions and upper bounds never become candidates
			Input:    []string{"six>=1.1.2,!=1.2.0,!=1.3b1,<1.3"},
			Expected: map[string]string{"six": "1.1.2"},
		},
		"lowest-bound-ordering": {
			// version ordering, not string ordering: 1.9.0 < 1.10.0
			Input:    []string{"pbr>=1.10.0,==1.9.0"},
			Expected: map[string]string{"pbr": "1.9.0"},
		},
		"no-floor": {
			Input:    []string{"six", "pbr<2.0"},
			Expected: map[string]string{"six": "", "pbr": ""},
		},
		"comments-and-blanks": {
			Input: []string{
				"# this is a comment",
				"",
				"   ",
				"six>=1.9.0  # trailing comment",
			},
			Expected: map[string]string{"six": "1.9.0"},
		},
		"markers": {
			Input: []string{
				"futures>=3.0;python_version=='2.7' or python_version=='2.6'",
				"typing>=3.6;python_version>='3.5'",
				"monotonic>=0.6;sys_platform!='win32'",
			},
			Expected: map[string]string{
				"futures":   "3.0",
				"monotonic": "0.6",
			},
		},
		"later-lines-win": {
			Input: []string{
				"six>=1.9.0",
				"six>=1.1.0",
			},
			Expected: map[string]string{"six": "1.1.0"},
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			actual, err := requirements.Parse(tc.Input)
			require.NoError(t, err)
			testutil.AssertEqual(t, tc.Expected, actual)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()
	// a malformed line fails the whole extraction; it is not skipped
	_, err := requirements.Parse([]string{
		"six>=1.9.0",
		">>>= what even is this",
	})
	assert.Error(t, err)
}

// TestParseIdempotent re-feeds an extraction's own output (as bare
// "name>=version" lines) back through extraction and expects the same map.
func TestParseIdempotent(t *testing.T) {
	t.Parallel()
	first, err := requirements.Parse([]string{
		"six>=1.1.2,!=1.2.0,<2.0",
		"oslo.config>=4.0.0  # comment",
		"futures>=3.0;python_version=='2.7'",
	})
	require.NoError(t, err)

	lines := make([]string, 0, len(first))
	for name, version := range first {
		lines = append(lines, fmt.Sprintf("%s>=%s", name, version))
	}
	sort.Strings(lines)

	second, err := requirements.Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseFilesMerge(t *testing.T) {
	t.Parallel()
	tmpdir := t.TempDir()
	f1 := filepath.Join(tmpdir, "global-requirements.txt")
	f2 := filepath.Join(tmpdir, "stable-requirements.txt")
	require.NoError(t, os.WriteFile(f1, []byte("pbr>=1.17.0\nsix>=1.9.0\n"), 0o666))
	require.NoError(t, os.WriteFile(f2, []byte("pbr>=1.16.0\n"), 0o666))

	merged, err := requirements.ParseFiles([]string{f1, f2})
	require.NoError(t, err)
	// the last-listed file wins per package, not per whole map
	assert.Equal(t, map[string]string{
		"pbr": "1.16.0",
		"six": "1.9.0",
	}, merged)
}

func TestFixedEnvironment(t *testing.T) {
	t.Parallel()
	env := requirements.FixedEnvironment()
	// frozen compatibility constants; see the FixedEnvironment doc
	assert.Equal(t, "2.7", env["python_version"])
	assert.Equal(t, "linux", env["sys_platform"])
}
