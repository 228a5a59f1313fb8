// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package fetch downloads source archives requested by a template's
// fetch_source call.  It is the only part of the renderer that touches the
// network, and only runs when a template explicitly asks for it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
)

type HTTPError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %q => HTTP %s", e.URL, e.Status)
}

// A Fetcher downloads a URL in to a destination directory, keeping the URL's
// basename as the filename.
type Fetcher func(ctx context.Context, rawURL, destDir string) error

// Fetch is the default Fetcher.
func Fetch(ctx context.Context, rawURL, destDir string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("fetch %q: %w", rawURL, err)
		}
	}()

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	filename := filepath.Join(destDir, path.Base(parsed.Path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "github.com/datawire/renderspec/pkg/fetch")

	dlog.Infof(ctx, "downloading %q to %q", rawURL, filename)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: rawURL, Status: resp.Status, StatusCode: resp.StatusCode}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}
