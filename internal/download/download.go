// Package download fetches extracted media URLs to local files.
// File writes stay within the target directory via sanitized filenames and
// path containment checks.
package download

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/drdon1234/weibo-parser/internal/httputil"
)

// weiboReferer is required by the media CDN for direct file access.
const weiboReferer = "https://weibo.com/"

// maxFileSize caps a single media download (512MB).
const maxFileSize = 512 * 1024 * 1024

// Result reports the outcome of one file download.
type Result struct {
	URL  string
	Path string
	Err  error
}

// Fetch downloads every media URL into dir, fanning out across at most
// concurrency workers. File order among results matches the input order;
// completion order is not guaranteed. Failures are reported per file rather
// than aborting the batch.
func Fetch(urls []string, dir, userAgent string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		results := make([]Result, len(urls))
		for i, u := range urls {
			results[i] = Result{URL: u, Err: fmt.Errorf("creating download dir: %w", err)}
		}
		return results
	}

	client := httputil.NewClient()
	results := make([]Result, len(urls))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for i, mediaURL := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, mediaURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			localPath, err := fetchOne(client, mediaURL, dir, userAgent, i)
			results[i] = Result{URL: mediaURL, Path: localPath, Err: err}
		}(i, mediaURL)
	}
	wg.Wait()

	return results
}

// fetchOne downloads a single media URL to a numbered file in dir.
func fetchOne(client *http.Client, mediaURL, dir, userAgent string, index int) (string, error) {
	resp, err := httputil.Get(client, mediaURL, userAgent, weiboReferer)
	if err != nil {
		return "", fmt.Errorf("requesting media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media request returned status %d", resp.StatusCode)
	}

	filename := fmt.Sprintf("%02d_%s", index+1, filenameFromURL(mediaURL))
	outputPath, err := httputil.SafeDownloadPath(dir, filename)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxFileSize)); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("writing file: %w", err)
	}

	return outputPath, nil
}

// filenameFromURL derives a safe local filename from a media URL.
func filenameFromURL(mediaURL string) string {
	name := "media"
	if u, err := url.Parse(mediaURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if !strings.Contains(name, ".") {
		name += ".bin"
	}
	return httputil.SanitizeFilename(name)
}
