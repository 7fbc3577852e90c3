/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceAPI  = "api"
	sourceHTML = "html"
)

var (
	fetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topdeck_fetch_requests_total",
			Help: "Total number of standings fetches",
		},
		[]string{"source", "status"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topdeck_fetch_duration_seconds",
			Help:    "Duration of standings fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// result is one of hit, miss, expired or corrupt
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topdeck_fetch_cache_lookups_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"},
	)
)

func observeFetch(source string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	fetchRequestsTotal.WithLabelValues(source, status).Inc()
	fetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}
