// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services implements the pipeline's collaborator contracts against
// real backends. This file defines the media fetcher used by the web tier:
// downloading a candidate URL to a local temp file. The primary path shells
// out to yt-dlp, which handles the video platforms the search engine is
// scoped to; direct file URLs fall back to a plain HTTP GET. Every fetched
// file is validated before it is accepted: it must exceed a minimum size
// (platforms serve tiny error pages with a 200 status) and sniff as a real
// video container.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// DefaultMinDownloadBytes is the floor below which a fetched file is
// treated as an error page rather than media.
const DefaultMinDownloadBytes int64 = 1000

// ErrInvalidMedia marks a fetch that completed but produced an unusable
// file (too small, or not a video container). Callers distinguish this
// from transport failures: retrying the same URL will not help.
var ErrInvalidMedia = errors.New("fetched file is not usable media")

// MediaFetcher is the contract for retrieving a remote video to local disk.
// The returned path points at a validated file the caller owns (and must
// remove).
type MediaFetcher interface {
	Download(ctx context.Context, url string) (string, error)
}

// YtDlpFetcher implements MediaFetcher by shelling out to the yt-dlp
// binary, with an HTTP GET fallback for direct media URLs.
type YtDlpFetcher struct {
	BinaryPath string       // Path to the yt-dlp executable ("yt-dlp" resolves via PATH).
	WorkDir    string       // Directory receiving downloads; empty means the OS temp dir.
	MinBytes   int64        // Minimum accepted file size.
	HTTPClient *http.Client // Client for the direct GET fallback.
}

// NewYtDlpFetcher builds a fetcher with the given working directory and
// size floor. Zero values fall back to the defaults.
func NewYtDlpFetcher(workDir string, minBytes int64) *YtDlpFetcher {
	if minBytes <= 0 {
		minBytes = DefaultMinDownloadBytes
	}
	return &YtDlpFetcher{
		BinaryPath: "yt-dlp",
		WorkDir:    workDir,
		MinBytes:   minBytes,
		HTTPClient: http.DefaultClient,
	}
}

// Download fetches the URL to a local file and validates the result.
//
// Inputs:
//   - ctx: The request context; its deadline bounds the whole attempt,
//     including the external process.
//   - url: The candidate URL to fetch.
//
// Outputs:
//   - string: Path of the validated local file.
//   - error: An error if the fetch fails or the file is not usable video.
func (f *YtDlpFetcher) Download(ctx context.Context, url string) (string, error) {
	workDir := f.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	outPath := filepath.Join(workDir, fmt.Sprintf("clip-%s.mp4", uuid.New().String()))

	var err error
	if _, lookErr := exec.LookPath(f.BinaryPath); lookErr == nil {
		err = f.runYtDlp(ctx, url, outPath)
	} else {
		err = f.httpGet(ctx, url, outPath)
	}
	if err != nil {
		_ = os.Remove(outPath)
		return "", err
	}

	if err := f.validate(outPath); err != nil {
		_ = os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}

// runYtDlp invokes the external downloader. yt-dlp picks the best mp4
// rendition and writes it to outPath.
func (f *YtDlpFetcher) runYtDlp(ctx context.Context, url string, outPath string) error {
	cmd := exec.CommandContext(ctx, f.BinaryPath,
		"--no-playlist",
		"-f", "mp4",
		"-o", outPath,
		url,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp failed for %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// httpGet streams a direct media URL to disk.
func (f *YtDlpFetcher) httpGet(ctx context.Context, url string, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get failed for %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http get for %s returned status %d", url, resp.StatusCode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return out.Close()
}

// validate rejects files that are too small to be media or that do not
// sniff as a video container.
func (f *YtDlpFetcher) validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: downloaded file missing: %v", ErrInvalidMedia, err)
	}
	if info.Size() <= f.MinBytes {
		return fmt.Errorf("%w: %s is %d bytes, below the %d byte minimum", ErrInvalidMedia, path, info.Size(), f.MinBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, 261)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return err
	}
	if !filetype.IsVideo(head[:n]) {
		return fmt.Errorf("%w: %s is not a recognized video container", ErrInvalidMedia, path)
	}
	return nil
}
