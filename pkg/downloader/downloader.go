package downloader

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/cavaliergopher/grab/v3"
	"github.com/havrydotdev/catclient/pkg/utils"
)

// DownloadFailed is returned when a remote file could not be stored locally.
type DownloadFailed struct {
	URL   string
	Cause error
}

func (e *DownloadFailed) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Cause)
}

func (e *DownloadFailed) Unwrap() error {
	return e.Cause
}

// Downloader is a content store keyed by destination path. A file that is
// already present is never fetched again.
type Downloader struct {
	client    *http.Client
	grab      *grab.Client
	userAgent string
	verify    bool
	log       *slog.Logger

	locks pathLocks
}

func New() *Downloader {
	d := &Downloader{
		userAgent: utils.UserAgent,
		log:       slog.Default(),
		locks:     pathLocks{locks: make(map[string]*pathLock)},
	}

	return d.WithHTTPClient(&http.Client{Timeout: utils.DefaultDownloadTimeout})
}

func (d *Downloader) WithHTTPClient(client *http.Client) *Downloader {
	d.client = client
	d.grab = grab.NewClient()
	d.grab.HTTPClient = client
	d.grab.UserAgent = d.userAgent
	return d
}

func (d *Downloader) WithLogger(log *slog.Logger) *Downloader {
	d.log = log
	return d
}

// WithVerification makes FetchVerified compare sha1 sums of cached and
// freshly downloaded files. Off by default: presence alone marks a file as cached.
func (d *Downloader) WithVerification(enabled bool) *Downloader {
	d.verify = enabled
	return d
}

// Fetch stores url at dest unless dest already exists.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	return d.FetchVerified(ctx, url, dest, "")
}

// FetchVerified behaves like Fetch. With verification enabled and a non-empty
// sum, a cached file with a different sha1 is replaced and the new body is checked.
func (d *Downloader) FetchVerified(ctx context.Context, url, dest, expectedSHA1 string) error {
	if !d.verify {
		expectedSHA1 = ""
	}

	var h hash.Hash
	if expectedSHA1 != "" {
		h = sha1.New()
	}

	return d.fetch(ctx, url, dest, h, expectedSHA1)
}

func (d *Downloader) fetch(ctx context.Context, url, dest string, h hash.Hash, expected string) error {
	unlock := d.locks.lock(dest)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &DownloadFailed{URL: url, Cause: err}
	}

	if info, err := os.Stat(dest); err == nil {
		if info.IsDir() {
			return &DownloadFailed{URL: url, Cause: fmt.Errorf("%s is a directory", dest)}
		}

		if h == nil {
			return nil
		}

		if err := verifyChecksum(dest, h, expected); err == nil {
			return nil
		}

		d.log.Warn("cached file failed verification, refetching", slog.String("path", dest))
		if err := os.Remove(dest); err != nil {
			return &DownloadFailed{URL: url, Cause: err}
		}
		h.Reset()
	}

	tmpPath := dest + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &DownloadFailed{URL: url, Cause: err}
	}

	req, err := grab.NewRequest(tmpPath, url)
	if err != nil {
		return &DownloadFailed{URL: url, Cause: err}
	}
	req = req.WithContext(ctx)
	req.NoResume = true

	if h != nil {
		sum, err := hex.DecodeString(expected)
		if err != nil {
			return &DownloadFailed{URL: url, Cause: fmt.Errorf("invalid checksum %q: %w", expected, err)}
		}
		req.SetChecksum(h, sum, true)
	}

	d.log.Debug("downloading", slog.String("url", url), slog.String("path", dest))

	resp := d.grab.Do(req)
	if err := resp.Err(); err != nil {
		os.Remove(tmpPath)
		return &DownloadFailed{URL: url, Cause: err}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return &DownloadFailed{URL: url, Cause: err}
	}

	return nil
}

// GetJSON decodes the body of a GET request into v.
func (d *Downloader) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error status for %s: %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return nil
}

func verifyChecksum(filepath string, hasher hash.Hash, expected string) error {
	file, err := os.Open(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	hasher.Reset()
	if _, err := io.Copy(hasher, file); err != nil {
		return err
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}

	return nil
}

type pathLock struct {
	sync.Mutex
	refs int
}

type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

func (p *pathLocks) lock(path string) func() {
	p.mu.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = &pathLock{}
		p.locks[path] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, path)
		}
		p.mu.Unlock()
	}
}
