// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/datawire/renderspec/pkg/spectemplate"
)

// A Session owns the template cache for repeated renders of one base
// template.  Rendering is one atomic call: on error no partial output is
// returned.  A Session is not safe for concurrent use.
type Session struct {
	loader  *spectemplate.Loader
	context *Context

	runCtx context.Context // valid during Render
}

// NewSession builds a render session for the given base template file and
// render context.
func NewSession(templateFile string, renderContext *Context) (*Session, error) {
	loader, err := spectemplate.NewLoader(templateFile)
	if err != nil {
		return nil, err
	}
	if renderContext.TemplateDir == "" {
		renderContext.TemplateDir = filepath.Dir(templateFile)
	}
	if renderContext.vars == nil {
		renderContext.vars = make(map[string]string)
	}
	return &Session{
		loader:  loader,
		context: renderContext,
	}, nil
}

// Styles returns the known template names: the base sentinel plus the bundled
// overlay styles.
func (s *Session) Styles() []string {
	return s.loader.List()
}

// Render resolves the context's style to a template and evaluates it.  Any
// error from a translation function aborts the whole render.
func (s *Session) Render(ctx context.Context) (string, error) {
	s.runCtx = ctx
	defer func() { s.runCtx = nil }()

	tmpl, err := s.loader.Get(s.context.Style, s.funcMap())
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", err
	}
	return out.String(), nil
}
