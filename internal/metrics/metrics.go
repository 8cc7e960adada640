// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus collectors for the HTTP surface and
// the image pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watesa_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "watesa_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	imageProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "watesa_image_process_duration_seconds",
		Help:    "Duration of image pipeline runs by content kind and result",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"kind", "result"})

	imageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watesa_image_cache_lookups_total",
		Help: "Image cache lookups by content kind and result",
	}, []string{"kind", "result"})

	resetEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watesa_password_reset_emails_total",
		Help: "Password reset emails by dispatch result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveImageProcess records one image pipeline run.
func ObserveImageProcess(kind, result string, duration time.Duration) {
	imageProcessDuration.WithLabelValues(kind, result).Observe(duration.Seconds())
}

// ObserveImageCache counts an image cache hit or miss.
func ObserveImageCache(kind string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	imageCacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveResetEmail counts a reset email dispatch attempt.
func ObserveResetEmail(result string) {
	resetEmails.WithLabelValues(result).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
