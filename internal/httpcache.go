/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/mikeb26/topdeck-standings/s3cache"
)

// NewCache returns the S3-backed cache for the configured bucket. If S3 is
// unreachable it falls back to an in-memory cache so callers always get a
// usable httpcache.Cache.
func NewCache(ctx context.Context) httpcache.Cache {
	bucket := CacheBucket()
	cache := s3cache.New(ctx, bucket, true, true)
	if err := cache.Init(); err != nil {
		log.Printf("httpcache: warning failed to init S3 cache %v: %v; falling back to memory cache",
			bucket, err)
		return httpcache.NewMemoryCache()
	}

	return cache
}

// NewCachedHttpClient returns an http.Client whose GET/HEAD responses are
// cached in the given cache. It also enforces a client-side TTL by rewriting
// origin cache headers.
func NewCachedHttpClient(cache httpcache.Cache, maxAge time.Duration) *http.Client {
	hc := httpcache.NewTransport(cache)
	// we have to inject our own header overrides here in order to override
	// server responses that might indicate caching shouldn't be done
	override := NewHeaderOverrideTransport(http.DefaultTransport)
	override.Request = func(req *http.Request) {
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", UserAgent)
		}
	}
	override.Response = func(resp *http.Response) error {
		resp.Header.Del("Pragma")
		resp.Header.Del("Expires")
		resp.Header.Del("Cache-Control")
		resp.Header.Set("Cache-Control",
			fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
		return nil
	}
	hc.Transport = override

	return &http.Client{Transport: hc}
}

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// NewHeaderOverrideTransport wraps rt; a nil rt means http.DefaultTransport.
func NewHeaderOverrideTransport(rt http.RoundTripper) *HeaderOverrideTransport {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &HeaderOverrideTransport{wrappedRT: rt}
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}
