// Package httpsource is an external collaborator kept outside the core
// parsing/serialization package: a ByteSource that fetches an RDF document
// over HTTP and wires github.com/pquerna/cachecontrol so repeated
// dereferences of the same URI (e.g. resolving the same @base/prefix
// namespace document across many Reader instances) can reuse a cached
// response body instead of re-fetching it.
package httpsource

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

// entry is one cached response body plus the time it stops being usable
// without revalidation.
type entry struct {
	body    []byte
	expires time.Time
}

// Fetcher retrieves RDF documents over HTTP, consulting cachecontrol to
// decide whether a previously fetched body for the same URI may be reused.
// A Fetcher is safe for concurrent use by multiple goroutines, unlike the
// rdf package's single-owner types — HTTP fetching is an external
// collaborator, not bound by that discipline.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]entry
}

// NewFetcher builds a Fetcher. client, if nil, defaults to
// http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, cache: make(map[string]entry)}
}

// Open returns an io.ReadCloser over uri's body — the rdf package's byte
// source contract is satisfied directly by io.Reader, so the result can be
// passed straight to rdf.NewReader. A cached body is reused verbatim (no
// request is made) if cachecontrol's last-computed expiry for uri has not
// yet passed; otherwise Open performs a GET and re-evaluates cachability
// from the response's Cache-Control/Expires headers for next time.
func (f *Fetcher) Open(uri string) (io.ReadCloser, error) {
	f.mu.Lock()
	cached, ok := f.cache[uri]
	f.mu.Unlock()
	if ok && time.Now().Before(cached.expires) {
		return io.NopCloser(bytes.NewReader(cached.body)), nil
	}

	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("httpsource: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpsource: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpsource: reading body: %w", err)
	}

	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	if err == nil && len(reasons) == 0 && expires.After(time.Now()) {
		f.mu.Lock()
		f.cache[uri] = entry{body: body, expires: expires}
		f.mu.Unlock()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("httpsource: %s returned status %d", uri, resp.StatusCode)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Invalidate drops any cached body for uri, forcing the next Open to
// re-fetch regardless of its recorded expiry.
func (f *Fetcher) Invalidate(uri string) {
	f.mu.Lock()
	delete(f.cache, uri)
	f.mu.Unlock()
}
