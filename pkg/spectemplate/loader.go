// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package spectemplate resolves a requested spec style to a template: either
// the user-supplied base template as-is, or one of the bundled per-distro
// overlay templates that extend the base template's blocks.
package spectemplate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

//go:embed dist-templates
var distTemplates embed.FS

const (
	// BaseRef is the name under which the user-supplied base template is
	// resolvable, and the name overlay templates extend.
	BaseRef = ".spec"

	overlaySuffix = ".spec.tmpl"
	overlayDir    = "dist-templates"
)

// reExtends is the declaration each overlay template must open with.
var reExtends = regexp.MustCompile(`^\{\{-?\s*/\*\s*extends\s+"\.spec"\s*\*/\s*-?\}\}`)

// TemplateNotFoundError indicates a requested template that resolves to
// neither the base template nor a bundled overlay.  It is distinct from
// render-time errors so that callers can tell a bad style name from bad
// template content.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %q", e.Name)
}

// A Loader resolves style names against one base template file and the
// bundled overlays.  It caches parses for its own lifetime, re-reading the
// base file whenever its modification time changes; a Loader is one render
// session and must not be shared between concurrent renders.
type Loader struct {
	baseFile string
	overlays map[string]string // style name -> path inside distTemplates
	cache    map[string]*cacheEntry
}

type cacheEntry struct {
	mtime time.Time
	tmpl  *template.Template
}

// NewLoader scans the bundled overlay directory (once) and returns a Loader
// for the given base template file.
func NewLoader(baseFile string) (*Loader, error) {
	entries, err := fs.ReadDir(distTemplates, overlayDir)
	if err != nil {
		return nil, err
	}
	overlays := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, overlaySuffix) {
			continue
		}
		style := strings.TrimSuffix(name, overlaySuffix)
		overlays[style] = overlayDir + "/" + name
	}
	return &Loader{
		baseFile: baseFile,
		overlays: overlays,
		cache:    make(map[string]*cacheEntry),
	}, nil
}

// List returns the available template names: BaseRef plus every bundled
// overlay's style name, sorted.
func (l *Loader) List() []string {
	ret := []string{BaseRef}
	for style := range l.overlays {
		ret = append(ret, style)
	}
	sort.Strings(ret)
	return ret
}

// Get resolves a style name to an executable template.  A style with a
// bundled overlay gets the base template with that overlay's block overrides
// spliced in; any other style gets the base template directly.  The funcs are
// bound at parse time, so pass the same funcs for every Get on one Loader.
func (l *Loader) Get(style string, funcs template.FuncMap) (*template.Template, error) {
	mtime, err := l.baseMtime()
	if err != nil {
		return nil, err
	}
	if entry, ok := l.cache[style]; ok && entry.mtime.Equal(mtime) {
		return entry.tmpl, nil
	}

	tmpl, err := l.parse(style, funcs)
	if err != nil {
		return nil, err
	}
	l.cache[style] = &cacheEntry{mtime: mtime, tmpl: tmpl}
	return tmpl, nil
}

func (l *Loader) baseMtime() (time.Time, error) {
	fi, err := os.Stat(l.baseFile)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, &TemplateNotFoundError{Name: BaseRef}
		}
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func (l *Loader) parse(style string, funcs template.FuncMap) (*template.Template, error) {
	baseSrc, err := os.ReadFile(l.baseFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateNotFoundError{Name: BaseRef}
		}
		return nil, err
	}
	tmpl, err := template.New(BaseRef).Funcs(funcs).Parse(string(baseSrc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.baseFile, err)
	}

	overlayPath, ok := l.overlays[style]
	if !ok || style == BaseRef {
		// no overlay for this style: render the base template directly
		return tmpl, nil
	}

	overlaySrc, err := fs.ReadFile(distTemplates, overlayPath)
	if err != nil {
		return nil, &TemplateNotFoundError{Name: style}
	}
	if !reExtends.Match(overlaySrc) {
		return nil, fmt.Errorf("overlay template %q does not declare `extends %q`", style, BaseRef)
	}
	// The overlay's top level is only the extends declaration and
	// {{define}}s, so this parse leaves the base body in place and just
	// replaces the blocks the overlay overrides.
	if _, err := tmpl.Parse(string(overlaySrc)); err != nil {
		return nil, fmt.Errorf("overlay template %q: %w", style, err)
	}
	return tmpl, nil
}
