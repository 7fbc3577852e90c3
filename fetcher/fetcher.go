/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package fetcher retrieves standings entries matching a filter, either from
// the standings API or from an exported HTML standings table.
package fetcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/mitchellh/mapstructure"

	"github.com/mikeb26/topdeck-standings/internal"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
)

const (
	RequestPath     = "/api/req"
	RequestIDHeader = "X-Request-Id"
	DefaultMaxAge   = time.Hour
)

// Fetcher returns the entries matching filter.
type Fetcher interface {
	Fetch(ctx context.Context, filter query.FilterQuery) ([]standings.Entry, error)
}

// Client posts filters to the standings API. Because POST responses are not
// cacheable by an http transport, Client keeps its own response cache keyed
// on the request body.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      httpcache.Cache
	maxAge     time.Duration
	now        func() time.Time
}

// NewClient returns a Client for the API at baseURL. A nil httpClient means
// http.DefaultClient; a nil cache disables response caching.
func NewClient(baseURL string, httpClient *http.Client, cache httpcache.Cache,
	maxAge time.Duration) *Client {

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// NewDefaultClient returns a Client for the configured API, caching responses
// in S3 when available and in memory otherwise.
func NewDefaultClient(ctx context.Context) *Client {
	return NewClient(internal.ApiUri(), nil, internal.NewCache(ctx),
		DefaultMaxAge)
}

type cachedResponse struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Body      json.RawMessage `json:"body"`
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context,
	filter query.FilterQuery) ([]standings.Entry, error) {

	start := time.Now()
	entries, err := c.fetch(ctx, filter)
	observeFetch(sourceAPI, start, err)

	return entries, err
}

func (c *Client) fetch(ctx context.Context,
	filter query.FilterQuery) ([]standings.Entry, error) {

	if filter == nil {
		filter = query.FilterQuery{}
	}
	body, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("unable to encode filter %v: %w", filter, err)
	}
	url := c.baseURL + RequestPath
	key := cacheKey(url, body)

	if data, ok := c.cached(key); ok {
		entries, err := DecodeEntries(data)
		if err == nil {
			return entries, nil
		}
		log.Printf("fetcher.fetch: discarding corrupt cache entry: %v", err)
		cacheLookupsTotal.WithLabelValues("corrupt").Inc()
		c.cache.Delete(key)
	}

	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to fetch entries (new): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", internal.UserAgent)
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch entries (do) req:%v: %w", reqID,
			err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read entries req:%v: %w", reqID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch %v req:%v: http status: %v",
			url, reqID, resp.StatusCode)
	}

	entries, err := DecodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse entries req:%v: %w", reqID, err)
	}
	c.store(key, data)
	log.Printf("fetcher.fetch: req:%v filter:%v entries:%v", reqID, filter,
		len(entries))

	return entries, nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, ok := c.cache.Get(key)
	if !ok {
		cacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		cacheLookupsTotal.WithLabelValues("corrupt").Inc()
		c.cache.Delete(key)
		return nil, false
	}
	if c.now().Sub(cr.FetchedAt) > c.maxAge {
		cacheLookupsTotal.WithLabelValues("expired").Inc()
		return nil, false
	}
	cacheLookupsTotal.WithLabelValues("hit").Inc()
	return cr.Body, true
}

func (c *Client) store(key string, body []byte) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedResponse{FetchedAt: c.now(), Body: body})
	if err != nil {
		log.Printf("fetcher.store: %v", err)
		return
	}
	c.cache.Set(key, raw)
}

func cacheKey(url string, body []byte) string {
	sum := sha256.Sum256(body)
	return "POST " + url + "#" + hex.EncodeToString(sum[:])
}

// DecodeEntries decodes a JSON array of entry documents. Field types are
// loose: numbers sent as strings and whole floats for integer fields are
// accepted.
func DecodeEntries(data []byte) ([]standings.Entry, error) {
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	entries := make([]standings.Entry, 0, len(docs))
	for i, doc := range docs {
		var e standings.Entry
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &e,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("entry %v: %w", i, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
