// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datawire/renderspec/pkg/cliutil"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("no-wrapping", func(t *testing.T) {
		t.Parallel()
		input := "a string with\nweird   existing\twhitespace"
		assert.Equal(t, input, cliutil.Wrap(0, input))
	})

	t.Run("width", func(t *testing.T) {
		t.Parallel()
		input := strings.Repeat("word ", 40)
		for _, line := range strings.Split(cliutil.Wrap(30, input), "\n") {
			assert.LessOrEqual(t, len(line), 30)
			assert.NotEmpty(t, line)
		}
	})

	t.Run("paragraphs", func(t *testing.T) {
		t.Parallel()
		out := cliutil.Wrap(80, "first paragraph\n\nsecond paragraph")
		assert.Equal(t, "first paragraph\n\nsecond paragraph", out)
	})

	t.Run("long-word", func(t *testing.T) {
		t.Parallel()
		// a word longer than the limit gets a line of its own rather than
		// being broken
		longWord := strings.Repeat("x", 50)
		out := cliutil.Wrap(30, "intro "+longWord+" outro")
		assert.Equal(t, "intro\n"+longWord+"\noutro", out)
	})
}

func TestWrapIndent(t *testing.T) {
	t.Parallel()
	out := cliutil.WrapIndent(4, 20, "one two three four five six")
	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	// the first line's indent is the caller's job
	assert.False(t, strings.HasPrefix(lines[0], " "))
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "    "), "continuation line %q must be indented", line)
	}
}
