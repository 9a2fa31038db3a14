/*
Package monitoring provides metrics collection.

# Overview

Metrics are registered on a private Prometheus registry so several
collectors can coexist in one process (tests create one per case).

# Metrics

- HTTP request metrics (latency, throughput, size), labelled by route template
- bundlekit_bundles: installed bundles
- bundlekit_mutations_total{op,result}: install, remove and per-user changes
- bundlekit_intent_queries_total and bundlekit_intent_query_duration_seconds
- bundlekit_projections_total{view}: package, module, ability, application

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics)
	// ... run the query ...
	timer.Stop()
*/
package monitoring
