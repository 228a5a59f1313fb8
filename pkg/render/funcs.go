// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/datawire/renderspec/pkg/fetch"
	"github.com/datawire/renderspec/pkg/pkginfo"
	"github.com/datawire/renderspec/pkg/python/pep440"
	"github.com/datawire/renderspec/pkg/rpm"
)

// funcMap binds every template function.  text/template exposes each name
// both as a plain call ({{py2pkg "six"}}) and as a pipeline filter
// ({{"six" | py2pkg}}), backed by the same function.
func (s *Session) funcMap() template.FuncMap {
	c := s.context
	return template.FuncMap{
		"set":              c.setVar,
		"basename":         filepath.Base,
		"epoch":            c.epoch,
		"license":          c.license,
		"py2pkg":           c.py2pkg,
		"py2":              c.py2,
		"py3":              c.py3,
		"py2name":          c.py2name,
		"py2rpmversion":    c.py2rpmversion,
		"py2rpmrelease":    c.py2rpmrelease,
		"url_pypi":         c.urlPypi,
		"upstream_version": s.upstreamVersion,
		"fetch_source":     s.fetchSource,
	}
}

func (c *Context) epoch(pkgName string) int {
	return c.Epochs[pkgName]
}

func (c *Context) license(id string) (string, error) {
	return rpm.LicenseSPDX(rpm.Style(c.Style), id)
}

// pkgSpec is the common body of py2pkg/py2/py3: translate the name for the
// requested runtime variants and append the version constraint.
func (c *Context) pkgSpec(pkgName string, pyVersions, verArgs []string) (string, error) {
	if len(pyVersions) > 0 && c.SkipPyversion != "" {
		kept := make([]string, 0, len(pyVersions))
		for _, pyVersion := range pyVersions {
			if pyVersion != c.SkipPyversion {
				kept = append(kept, pyVersion)
			}
		}
		if len(kept) == 0 {
			return "", nil
		}
		pyVersions = kept
	}

	var op, version string
	switch len(verArgs) {
	case 0:
		if floor := c.Requirements[pkgName]; floor != "" {
			op, version = ">=", floor
		}
	case 2:
		op, version = verArgs[0], verArgs[1]
	default:
		return "", fmt.Errorf("py2pkg %q: a version constraint is a comparator and a version (got %d arguments)",
			pkgName, len(verArgs))
	}

	return rpm.PackageSpec(c.translate(pkgName, pyVersions), op, version, c.Epochs[pkgName]), nil
}

// py2pkg renders the dependency token for a package:
//
//	{{py2pkg "oslo.config"}}
//	{{py2pkg "oslo.config" ">=" "1.2.3"}}
func (c *Context) py2pkg(pkgName string, verArgs ...string) (string, error) {
	return c.pkgSpec(pkgName, nil, verArgs)
}

func (c *Context) py2(pkgName string, verArgs ...string) (string, error) {
	return c.pkgSpec(pkgName, []string{"py2"}, verArgs)
}

func (c *Context) py3(pkgName string, verArgs ...string) (string, error) {
	return c.pkgSpec(pkgName, []string{"py3"}, verArgs)
}

// py2name renders just the translated package name(s), no version; the name
// defaults to the pypi_name context variable.
func (c *Context) py2name(pkgName ...string) (string, error) {
	var name string
	switch len(pkgName) {
	case 0:
		var err error
		if name, err = c.getVar(VarPypiName, "py2name"); err != nil {
			return "", err
		}
	case 1:
		name = pkgName[0]
	default:
		return "", fmt.Errorf("py2name: at most one name expected, got %d", len(pkgName))
	}
	return strings.Join(c.translate(name, nil), " "), nil
}

// py2rpmversion translates the upstream_version context variable in to the
// style's Version: tag value.
func (c *Context) py2rpmversion() (string, error) {
	verStr, err := c.getVar(VarUpstreamVersion, "py2rpmversion")
	if err != nil {
		return "", err
	}
	ver, err := pep440.ParseVersion(verStr)
	if err != nil {
		return "", err
	}
	return rpm.Version(rpm.Style(c.Style), *ver), nil
}

// py2rpmrelease computes the style's Release: tag value; the Fedora style
// additionally needs the rpm_release context variable (the build counter).
func (c *Context) py2rpmrelease() (string, error) {
	if rpm.Style(c.Style) != rpm.StyleFedora {
		// SUSE leaves release counting to the Open Build Service
		return "0", nil
	}
	verStr, err := c.getVar(VarUpstreamVersion, "py2rpmrelease")
	if err != nil {
		return "", err
	}
	counter, err := c.getVar(VarRPMRelease, "py2rpmrelease")
	if err != nil {
		return "", err
	}
	ver, err := pep440.ParseVersion(verStr)
	if err != nil {
		return "", err
	}
	return rpm.Release(rpm.StyleFedora, *ver, counter), nil
}

// urlPypi renders the canonical sdist URL for the pypi_name and
// upstream_version context variables.
func (c *Context) urlPypi() (string, error) {
	name, err := c.getVar(VarPypiName, "url_pypi")
	if err != nil {
		return "", err
	}
	version, err := c.getVar(VarUpstreamVersion, "url_pypi")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://files.pythonhosted.org/packages/source/%s/%s/%s-%s.tar.gz",
		name[:1], name, name, version), nil
}

// upstreamVersion returns the version to assign to the upstream_version
// context variable: the explicit argument if given, else the version dug out
// of a source archive found next to the output, the template, or the working
// directory.
func (s *Session) upstreamVersion(explicit ...string) (string, error) {
	if len(explicit) > 1 {
		return "", fmt.Errorf("upstream_version: at most one version expected, got %d", len(explicit))
	}
	if len(explicit) == 1 && explicit[0] != "" {
		return explicit[0], nil
	}

	c := s.context
	pypiName, err := c.getVar(VarPypiName, "upstream_version")
	if err != nil {
		return "", err
	}
	archives := pkginfo.FindArchives([]string{c.OutputDir, c.TemplateDir, "."}, pypiName)
	for _, archive := range archives {
		version, err := pkginfo.VersionFromArchive(s.runCtx, archive)
		if err == nil {
			return version, nil
		}
	}
	return "", fmt.Errorf("can not autodetect %q from the following archives: %q",
		VarUpstreamVersion, strings.Join(archives, ", "))
}

// fetchSource downloads the given URL in to the output directory (if there is
// one) and evaluates to the URL either way, so the template can use it in a
// Source: line.
func (s *Session) fetchSource(url string) (string, error) {
	if s.context.OutputDir == "" {
		return url, nil
	}
	fetcher := s.context.Fetch
	if fetcher == nil {
		fetcher = fetch.Fetch
	}
	if err := fetcher(s.runCtx, url, s.context.OutputDir); err != nil {
		return "", err
	}
	return url, nil
}
