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

// Package services_test contains unit tests for the service layer. This
// file tests the media fetcher's direct HTTP path and its validation of
// downloaded files.
package services_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
	"github.com/zeebo/assert"
)

// mp4Payload builds a byte blob that sniffs as an MP4 container and is
// large enough to pass the size floor.
func mp4Payload(size int) []byte {
	header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	return append(header, bytes.Repeat([]byte{0x00}, size-len(header))...)
}

// newDirectFetcher builds a fetcher whose binary path cannot resolve, so
// every download takes the direct HTTP route.
func newDirectFetcher(t *testing.T) *services.YtDlpFetcher {
	fetcher := services.NewYtDlpFetcher(t.TempDir(), services.DefaultMinDownloadBytes)
	fetcher.BinaryPath = "yt-dlp-not-installed-for-tests"
	return fetcher
}

// TestFetcherDownloadsValidVideo verifies the happy path: a direct URL
// serving a real container larger than the size floor produces a local
// file the caller owns.
func TestFetcherDownloadsValidVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(mp4Payload(4096))
	}))
	defer server.Close()

	fetcher := newDirectFetcher(t)
	path, err := fetcher.Download(context.Background(), server.URL)
	assert.NoError(t, err)

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
	assert.NoError(t, os.Remove(path))
}

// TestFetcherRejectsUndersizedFile verifies that a tiny 200-status body
// (the error-page case) is classified as invalid media, not a transport
// failure, and leaves no file behind.
func TestFetcherRejectsUndersizedFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("video unavailable"))
	}))
	defer server.Close()

	fetcher := newDirectFetcher(t)
	path, err := fetcher.Download(context.Background(), server.URL)
	assert.True(t, errors.Is(err, services.ErrInvalidMedia))
	assert.Equal(t, "", path)
}

// TestFetcherRejectsNonVideoContent verifies that a body large enough to
// pass the size floor but not a video container is still invalid media.
func TestFetcherRejectsNonVideoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("<html>blocked</html>"), 200))
	}))
	defer server.Close()

	fetcher := newDirectFetcher(t)
	_, err := fetcher.Download(context.Background(), server.URL)
	assert.True(t, errors.Is(err, services.ErrInvalidMedia))
}

// TestFetcherTransportFailureIsNotInvalidMedia verifies the error
// taxonomy: a non-200 response is a transport-class failure, which the web
// tier retries, unlike invalid media which it never retries.
func TestFetcherTransportFailureIsNotInvalidMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newDirectFetcher(t)
	_, err := fetcher.Download(context.Background(), server.URL)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, services.ErrInvalidMedia))
}
