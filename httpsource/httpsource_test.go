package httpsource

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetcherCachesResponseUntilExpiry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())

	rc1, err := f.Open(srv.URL)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	body1, _ := io.ReadAll(rc1)
	rc1.Close()

	rc2, err := f.Open(srv.URL)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	body2, _ := io.ReadAll(rc2)
	rc2.Close()

	if string(body1) != "cached body" || string(body2) != "cached body" {
		t.Fatalf("unexpected body contents: %q / %q", body1, body2)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected exactly one upstream request (second Open served from cache), got %d", hits)
	}
}

func TestFetcherRefetchesWhenNotCachable(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte("fresh body"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	for i := 0; i < 2; i++ {
		rc, err := f.Open(srv.URL)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		rc.Close()
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected no-store responses to force a re-fetch every time, got %d hits", hits)
	}
}

func TestFetcherInvalidateForcesRefetch(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	rc, _ := f.Open(srv.URL)
	rc.Close()
	f.Invalidate(srv.URL)
	rc2, _ := f.Open(srv.URL)
	rc2.Close()

	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected Invalidate to force a second request, got %d hits", hits)
	}
}

func TestFetcherSurfacesNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	if _, err := f.Open(srv.URL); err == nil {
		t.Fatalf("expected a 404 response to surface as an error")
	}
}
