// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package render wires the version/name/license translators in to a template
// render session.
package render

import (
	"fmt"

	"github.com/datawire/renderspec/pkg/fetch"
	"github.com/datawire/renderspec/pkg/pymod2pkg"
)

// Context variable names that templates set with {{set}} and that the
// translation functions consult.
const (
	VarPypiName        = "pypi_name"
	VarUpstreamVersion = "upstream_version"
	VarRPMRelease      = "rpm_release"
)

// MissingVariableError is a usage error: a translation function ran before the
// template set a context variable it depends on.
type MissingVariableError struct {
	Variable  string
	Operation string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %q not available in context but needed for %q",
		e.Variable, e.Operation)
}

// Context is the read-only configuration for one render, plus the variable
// bag that the template itself writes in to as it evaluates.
type Context struct {
	// Style is the spec style being rendered ("suse", "fedora", or an
	// overlay style such as "epel7").
	Style string
	// Epochs maps package names to their RPM epoch; absent means 0.
	Epochs map[string]int
	// Requirements maps package names to their minimum version, used when
	// the template does not constrain a dependency explicitly.
	Requirements map[string]string
	// SkipPyversion drops that runtime variant from every translation
	// fan-out ("py2" or "py3").
	SkipPyversion string
	// OutputDir is where fetch_source downloads land and the first place
	// upstream-version autodetection looks; empty disables downloads.
	OutputDir string
	// TemplateDir is the directory the base template was loaded from.
	TemplateDir string

	// Translate maps module names to package names; nil means the
	// built-in pymod2pkg rules.
	Translate pymod2pkg.Translator
	// Fetch downloads a URL in to a directory; nil means the built-in
	// HTTP fetcher.
	Fetch fetch.Fetcher

	vars map[string]string
}

func (c *Context) setVar(name, value string) string {
	if c.vars == nil {
		c.vars = make(map[string]string)
	}
	c.vars[name] = value
	return ""
}

// getVar returns the named context variable, or a MissingVariableError naming
// the operation that needed it.
func (c *Context) getVar(name, neededBy string) (string, error) {
	val, ok := c.vars[name]
	if !ok {
		return "", &MissingVariableError{Variable: name, Operation: neededBy}
	}
	return val, nil
}

func (c *Context) translate(mod string, pyVersions []string) []string {
	translate := c.Translate
	if translate == nil {
		translate = pymod2pkg.Translate
	}
	return translate(mod, c.Style, pyVersions)
}
