// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pkginfo digs the upstream version out of Python source
// distributions, for renders that ask to autodetect the version instead of
// supplying one.
package pkginfo

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/h2non/filetype"
	"github.com/ulikunitz/xz"
)

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".zip"}

// FindArchives returns the source archives in the given directories whose
// filename starts with basename, newest first.  Empty directory names are
// skipped; a missing directory is not an error, it just contributes nothing.
func FindArchives(dirs []string, basename string) []string {
	var found []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, basename) {
				continue
			}
			for _, suffix := range archiveSuffixes {
				if strings.HasSuffix(name, suffix) {
					found = append(found, filepath.Join(dir, name))
					break
				}
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return mtime(found[i]).After(mtime(found[j]))
	})
	return found
}

func mtime(filename string) time.Time {
	fi, err := os.Stat(filename)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// ExtractToTempDir unpacks the archive in to a fresh temporary directory and
// returns that directory plus a cleanup function that removes it again.
func ExtractToTempDir(archive string) (string, func(), error) {
	tmpdir, err := os.MkdirTemp("", "renderspec_")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		_ = os.RemoveAll(tmpdir)
	}
	if err := extract(archive, tmpdir); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmpdir, cleanup, nil
}

// VersionFromArchive extracts the archive to a temporary directory, looks for
// a PKG-INFO file (PEP 314 metadata), and returns its Version header.
func VersionFromArchive(ctx context.Context, archive string) (string, error) {
	dlog.Debugf(ctx, "inspecting %q for a PKG-INFO version", archive)
	tmpdir, cleanup, err := ExtractToTempDir(archive)
	if err != nil {
		return "", err
	}
	defer cleanup()

	var pkgInfoFile string
	err = filepath.Walk(tmpdir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if pkgInfoFile == "" && !info.IsDir() && info.Name() == "PKG-INFO" {
			pkgInfoFile = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if pkgInfoFile == "" {
		return "", fmt.Errorf("no PKG-INFO file in %q", archive)
	}
	return versionFromPkgInfo(pkgInfoFile)
}

// versionFromPkgInfo reads the Version header from a PKG-INFO file; the
// format is RFC 822 headers, per PEP 314.
func versionFromPkgInfo(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()
	headers, err := textproto.NewReader(bufio.NewReader(file)).ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	version := headers.Get("Version")
	if version == "" {
		return "", fmt.Errorf("%s: no Version header", filename)
	}
	return version, nil
}

// extract unpacks a tarball (plain, gzip, bzip2, or xz) or a zip file in to
// destDir, sniffing the container format from the file contents rather than
// trusting the filename.
func extract(archive, destDir string) error {
	kind, err := filetype.MatchFile(archive)
	if err != nil {
		return err
	}
	switch kind.Extension {
	case "gz":
		return withFile(archive, func(f *os.File) error {
			zr, err := gzip.NewReader(f)
			if err != nil {
				return err
			}
			defer zr.Close()
			return extractTar(zr, destDir)
		})
	case "bz2":
		return withFile(archive, func(f *os.File) error {
			return extractTar(bzip2.NewReader(f), destDir)
		})
	case "xz":
		return withFile(archive, func(f *os.File) error {
			zr, err := xz.NewReader(f)
			if err != nil {
				return err
			}
			return extractTar(zr, destDir)
		})
	case "tar":
		return withFile(archive, func(f *os.File) error {
			return extractTar(f, destDir)
		})
	case "zip":
		return extractZip(archive, destDir)
	default:
		return fmt.Errorf("can not extract %q: not a tar or zip file (detected %q)",
			archive, kind.Extension)
	}
}

func withFile(filename string, fn func(*os.File) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return fn(file)
}

func extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr); err != nil {
				return err
			}
		default:
			// symlinks and the like are of no use for finding PKG-INFO
		}
	}
}

func extractZip(archive, destDir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, file := range zr.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := file.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeJoin joins name under destDir, rejecting entries that would escape it.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction directory: %q", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader) error {
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	_, err = io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}
