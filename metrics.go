// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricNamespace = "qsarview"

	MetricHTTPRequest             = "http_request_duration_seconds"
	MetricStructuresServed        = "structures_served_total"
	MetricCatalogEmpty            = "catalog_empty_total"
	MetricFileIntegrityMismatches = "file_integrity_mismatches_total"
	MetricExternalOpenFailures    = "external_open_failures_total"
	MetricOpensRateLimited        = "opens_rate_limited_total"
)

var SummaryHTTPRequests = prometheus.NewSummaryVec(
	prometheus.SummaryOpts{
		Namespace:  MetricNamespace,
		Name:       MetricHTTPRequest,
		Help:       "Duration of HTTP requests by route.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	},
	[]string{"path", "method"},
)

var CounterStructuresServed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: MetricNamespace,
		Name:      MetricStructuresServed,
		Help:      "Structure files read from disk and returned to a client.",
	},
	[]string{"receptor", "dataset"},
)

var CounterCatalogEmpty = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: MetricNamespace,
		Name:      MetricCatalogEmpty,
		Help:      "Catalog listings that found no ligands.",
	},
	[]string{"receptor", "dataset"},
)

var CounterFileIntegrityMismatches = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: MetricNamespace,
		Name:      MetricFileIntegrityMismatches,
		Help:      "Listed ligands whose structure file was missing on reopen.",
	},
)

var CounterExternalOpenFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: MetricNamespace,
		Name:      MetricExternalOpenFailures,
		Help:      "Failed attempts to open a structure file with the host's default application.",
	},
)

var CounterOpensRateLimited = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: MetricNamespace,
		Name:      MetricOpensRateLimited,
		Help:      "Open requests refused by the rate limit.",
	},
)

func init() {
	prometheus.MustRegister(SummaryHTTPRequests)
	prometheus.MustRegister(CounterStructuresServed)
	prometheus.MustRegister(CounterCatalogEmpty)
	prometheus.MustRegister(CounterFileIntegrityMismatches)
	prometheus.MustRegister(CounterExternalOpenFailures)
	prometheus.MustRegister(CounterOpensRateLimited)
}
