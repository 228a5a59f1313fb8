// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pkginfo_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/datawire/renderspec/pkg/pkginfo"
)

const pkgInfoSrc = "Metadata-Version: 1.1\r\n" +
	"Name: six\r\n" +
	"Version: 1.9.0\r\n" +
	"\r\n" +
	"Python 2 and 3 compatibility utilities\r\n"

func writeTarGz(t *testing.T, filename string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o666))
}

func writeTarXz(t *testing.T, filename string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o666))
}

func writeZip(t *testing.T, filename string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o666))
}

func TestVersionFromArchive(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	tmpdir := t.TempDir()

	targz := filepath.Join(tmpdir, "six-1.9.0.tar.gz")
	writeTarGz(t, targz, map[string]string{
		"six-1.9.0/README":   "readme\n",
		"six-1.9.0/PKG-INFO": pkgInfoSrc,
	})
	version, err := pkginfo.VersionFromArchive(ctx, targz)
	require.NoError(t, err)
	assert.Equal(t, "1.9.0", version)

	zipfile := filepath.Join(tmpdir, "six-1.9.0.zip")
	writeZip(t, zipfile, map[string]string{
		"six-1.9.0/PKG-INFO": pkgInfoSrc,
	})
	version, err = pkginfo.VersionFromArchive(ctx, zipfile)
	require.NoError(t, err)
	assert.Equal(t, "1.9.0", version)

	// every suffix FindArchives matches must also extract; xz included
	xzdir := t.TempDir()
	tarxz := filepath.Join(xzdir, "six-1.9.0.tar.xz")
	writeTarXz(t, tarxz, map[string]string{
		"six-1.9.0/PKG-INFO": pkgInfoSrc,
	})
	require.Equal(t, []string{tarxz}, pkginfo.FindArchives([]string{xzdir}, "six"))
	version, err = pkginfo.VersionFromArchive(ctx, tarxz)
	require.NoError(t, err)
	assert.Equal(t, "1.9.0", version)
}

func TestVersionFromArchiveErrors(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	tmpdir := t.TempDir()

	t.Run("no-pkg-info", func(t *testing.T) {
		archive := filepath.Join(tmpdir, "empty-1.0.tar.gz")
		writeTarGz(t, archive, map[string]string{
			"empty-1.0/README": "nothing here\n",
		})
		_, err := pkginfo.VersionFromArchive(ctx, archive)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no PKG-INFO")
	})

	t.Run("no-version-header", func(t *testing.T) {
		archive := filepath.Join(tmpdir, "headless-1.0.tar.gz")
		writeTarGz(t, archive, map[string]string{
			"headless-1.0/PKG-INFO": "Metadata-Version: 1.1\r\nName: headless\r\n\r\n",
		})
		_, err := pkginfo.VersionFromArchive(ctx, archive)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no Version header")
	})

	t.Run("not-an-archive", func(t *testing.T) {
		archive := filepath.Join(tmpdir, "bogus-1.0.tar.gz")
		require.NoError(t, os.WriteFile(archive, []byte("this is not a tarball\n"), 0o666))
		_, err := pkginfo.VersionFromArchive(ctx, archive)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can not extract")
	})

	t.Run("path-escape", func(t *testing.T) {
		archive := filepath.Join(tmpdir, "evil-1.0.tar.gz")
		writeTarGz(t, archive, map[string]string{
			"../evil": "muahaha\n",
		})
		_, err := pkginfo.VersionFromArchive(ctx, archive)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes")
	})
}

func TestFindArchives(t *testing.T) {
	t.Parallel()
	dirA := t.TempDir()
	dirB := t.TempDir()

	older := filepath.Join(dirA, "six-1.8.0.tar.gz")
	newer := filepath.Join(dirB, "six-1.9.0.tar.gz")
	for i, filename := range []string{older, newer} {
		require.NoError(t, os.WriteFile(filename, []byte("x"), 0o666))
		stamp := time.Now().Add(time.Duration(i-2) * time.Hour)
		require.NoError(t, os.Chtimes(filename, stamp, stamp))
	}
	// not archives, or not this package: never returned
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "six-1.9.0.txt"), []byte("x"), 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "seven-1.0.tar.gz"), []byte("x"), 0o666))

	// newest first, across directories; empty and missing dirs contribute
	// nothing
	found := pkginfo.FindArchives([]string{dirA, "", filepath.Join(dirA, "no-such-dir"), dirB}, "six")
	assert.Equal(t, []string{newer, older}, found)

	assert.Empty(t, pkginfo.FindArchives([]string{dirA}, "eight"))
}
