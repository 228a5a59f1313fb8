// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	cobra.AddTemplateFunc("getTerminalWidth", GetTerminalWidth)
	cobra.AddTemplateFunc("wrap", Wrap)
	cobra.AddTemplateFunc("wrapIndent", WrapIndent)
	cobra.AddTemplateFunc("add", func(args ...int) int {
		ret := 0
		for _, arg := range args {
			ret += arg
		}
		return ret
	})
}

// GetTerminalWidth returns the width of the terminal that help text should
// wrap to: $COLUMNS if the shell or user sets it, else the detected stdout
// width, else 0 meaning "don't wrap".
func GetTerminalWidth() int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		return cols
	}
	if cols, _, err := term.GetSize(1); err == nil {
		return cols
	}
	if term.IsTerminal(1) {
		return 80
	}
	return 0
}

// Wrap word-wraps `s` to a maximum width `w`.  Pass `w` == 0 to do no
// wrapping.  Lines are actually wrapped to `w - 5`, leaving slop so that a
// short word doesn't end up on a line by itself.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// WrapIndent is Wrap with continuation lines indented by `i` spaces; the
// first line is not indented (the caller already printed the indent).
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, s string) string {
	if width == 0 {
		return s
	}
	limit := width - 5
	if limit <= indent {
		limit = indent + 20
	}
	var out strings.Builder
	for p, paragraph := range strings.Split(s, "\n\n") {
		if p > 0 {
			out.WriteString("\n\n")
		}
		col := indent
		for i, word := range strings.Fields(paragraph) {
			switch {
			case i == 0:
				out.WriteString(word)
				col += len(word)
			case col+1+len(word) > limit:
				out.WriteString("\n" + strings.Repeat(" ", indent) + word)
				col = indent + len(word)
			default:
				out.WriteString(" " + word)
				col += 1 + len(word)
			}
		}
	}
	return out.String()
}

// HelpTemplate is a cobra help template that wraps to the terminal width.
const HelpTemplate = `Usage: {{ .UseLine }}

{{- if .Short }}
{{ .Short }}
{{- end }}

{{- if .Long }}

{{ .Long | wrap getTerminalWidth | trimTrailingWhitespaces }}
{{- end }}

{{- if .Aliases }}

Aliases:
  {{ .NameAndAliases }}
{{- end }}

{{- if .HasExample }}

Examples:
{{ .Example }}
{{- end }}

{{- if .HasAvailableSubCommands }}

Available Commands:
{{- range .Commands}}
  {{- if (or .IsAvailableCommand (eq .Name "help")) }}
    {{- "\n" }}  {{ rpad .Name .NamePadding }}   {{ .Short | wrapIndent (add .NamePadding 5) getTerminalWidth }}
  {{- end }}
{{- end }}
{{- end }}

{{- if .HasAvailableLocalFlags }}

Flags:
{{ getTerminalWidth | .LocalFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- if .HasAvailableInheritedFlags }}

Global Flags:
{{ getTerminalWidth | .InheritedFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{ .CommandPath }} [command] --help" for more information about a command.
{{- end}}
`
