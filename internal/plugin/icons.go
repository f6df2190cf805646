package plugin

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	iconDirPrefix = "youtube-plugin-icons-"
	iconWorkers   = 10
)

// IconFetcher downloads result thumbnails into a per-process temp directory
// so the launcher can render them as row icons. Files only live as long as
// the current query: each Fetch purges the previous query's downloads, and
// stale directories from crashed runs are removed on startup.
type IconFetcher struct {
	dir       string
	userAgent string
	http      *http.Client

	mu sync.Mutex // one query's downloads at a time
}

func NewIconFetcher(userAgent string, timeout time.Duration) (*IconFetcher, error) {
	cleanStaleIconDirs()

	dir := filepath.Join(os.TempDir(), iconDirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &IconFetcher{
		dir:       dir,
		userAgent: userAgent,
		http: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Close removes the fetcher's directory and everything in it.
func (f *IconFetcher) Close() error {
	return os.RemoveAll(f.dir)
}

// Fetch downloads each item's IconURL and sets IconPath on success. Failures
// leave IconPath empty; the row falls back to the bundled icon.
func (f *IconFetcher) Fetch(ctx context.Context, items []Item) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.purge()

	var wg sync.WaitGroup
	sem := make(chan struct{}, iconWorkers)
	for i := range items {
		if items[i].IconURL == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(it *Item) {
			defer wg.Done()
			defer func() { <-sem }()
			path, err := f.download(ctx, it.ID, it.IconURL)
			if err != nil {
				log.Printf("youtube-plugin: icon %s: %v", it.IconURL, err)
				return
			}
			it.IconPath = path
		}(&items[i])
	}
	wg.Wait()
}

func (f *IconFetcher) download(ctx context.Context, id, iconURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &iconStatusError{code: resp.StatusCode}
	}

	path := filepath.Join(f.dir, id+".jpg")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (f *IconFetcher) purge() {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		os.Remove(filepath.Join(f.dir, e.Name()))
	}
}

// cleanStaleIconDirs removes icon directories left behind by crashed runs.
func cleanStaleIconDirs() {
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), iconDirPrefix) {
			os.RemoveAll(filepath.Join(os.TempDir(), e.Name()))
		}
	}
}

type iconStatusError struct {
	code int
}

func (e *iconStatusError) Error() string {
	return "icon status " + itoa(e.code)
}
