// Package archive ingests the external files §6 documents: Sources,
// Packages, Release, Hints/<user>, BugsV/Dates/Urgency, faux-packages and
// constraints. fetch.go handles retrieval (local path or HTTP mirror, with
// caching and retry); the per-format parsers live alongside it.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/distr1/archmigrate"
	"github.com/klauspost/pgzip"
	"golang.org/x/exp/mmap"
)

// ErrNotFound reports an HTTP 404 fetching u, mirroring the teacher's own
// sentinel error for the same condition.
type ErrNotFound struct{ URL *url.URL }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("%v: HTTP status 404", e.URL) }

type readCloser struct {
	io.Reader
	io.Closer
}

// Fetcher retrieves archive files from a Repo, caching HTTP responses under
// the user cache directory the same way the teacher's reader.go does, and
// retrying transient HTTP failures with exponential backoff (§5/§6). It
// starts no goroutines of its own.
type Fetcher struct {
	Client     *http.Client
	Cache      bool
	MaxElapsed time.Duration
}

// NewFetcher returns a Fetcher with the teacher's connection-pooling
// transport settings (disabled compression at the transport level so the
// explicit Accept-Encoding/pgzip path below is what actually runs).
func NewFetcher(cache bool) *Fetcher {
	return &Fetcher{
		Client: &http.Client{Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			DisableCompression:  true,
		}},
		Cache:      cache,
		MaxElapsed: 30 * time.Second,
	}
}

// Open returns a reader for fn under repo: a local file (optionally
// memory-mapped, for large uncompressed Packages/Sources files) or an HTTP
// fetch with retry and on-disk caching.
func (f *Fetcher) Open(ctx context.Context, repo archmigrate.Repo, fn string) (io.ReadCloser, error) {
	if !strings.HasPrefix(repo.PkgPath, "http://") && !strings.HasPrefix(repo.PkgPath, "https://") {
		return f.openLocal(repo, fn)
	}
	return f.openHTTP(ctx, repo, fn)
}

func (f *Fetcher) openLocal(repo archmigrate.Repo, fn string) (io.ReadCloser, error) {
	path := filepath.Join(repo.PkgPath, fn)
	if strings.HasSuffix(fn, ".gz") {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		zr, err := pgzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, Closer: fh}, nil
	}
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &readCloser{Reader: io.NewSectionReader(ra, 0, int64(ra.Len())), Closer: ra}, nil
}

func (f *Fetcher) cachePath(repo archmigrate.Repo, fn string) string {
	if !f.Cache {
		return ""
	}
	ucd, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(ucd, "archmigrate", strings.ReplaceAll(repo.PkgPath, "/", "_"), fn)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ""
	}
	return p
}

func (f *Fetcher) openHTTP(ctx context.Context, repo archmigrate.Repo, fn string) (io.ReadCloser, error) {
	cacheFn := f.cachePath(repo, fn)
	var ifModifiedSince time.Time
	if cacheFn != "" {
		if st, err := os.Stat(cacheFn); err == nil {
			ifModifiedSince = st.ModTime()
		}
	}

	var resp *http.Response
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, repo.PkgPath+"/"+fn, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ifModifiedSince.IsZero() {
			req.Header.Set("If-Modified-Since", ifModifiedSince.Format(http.TimeFormat))
		}
		req.Header.Set("Accept-Encoding", "gzip")
		r, err := f.Client.Do(req)
		if err != nil {
			return err // transient: retry
		}
		if r.StatusCode == http.StatusNotFound {
			r.Body.Close()
			return backoff.Permanent(&ErrNotFound{URL: req.URL})
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return fmt.Errorf("%s: HTTP status %v", req.URL, r.Status)
		}
		if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusNotModified {
			r.Body.Close()
			return backoff.Permanent(fmt.Errorf("%s: HTTP status %v", req.URL, r.Status))
		}
		resp = r
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = f.MaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}

	if cacheFn != "" && resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return os.Open(cacheFn)
	}

	rdc := io.ReadCloser(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := pgzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		rdc = &readCloser{Reader: zr, Closer: resp.Body}
	}

	var cacheFile *os.File
	if cacheFn != "" {
		cacheFile, _ = os.Create(cacheFn)
	}
	wr := io.Discard
	if cacheFile != nil {
		wr = cacheFile
	}
	mtime := time.Now()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(http.TimeFormat, lm); err == nil {
			mtime = t
		}
	}
	return &readCloser{
		Reader: io.TeeReader(rdc, wr),
		Closer: closerFunc(func() error {
			if err := rdc.Close(); err != nil {
				return err
			}
			if cacheFile != nil {
				if err := cacheFile.Close(); err != nil {
					return err
				}
				return os.Chtimes(cacheFn, mtime, mtime)
			}
			return nil
		}),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
