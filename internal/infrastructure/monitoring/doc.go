/*
Package monitoring provides Prometheus metrics for the workspace server.

# Overview

Metrics owns a private registry so tests can build as many collectors as
they like. It tracks HTTP requests, controller operations by outcome,
session message counts, and WebSocket traffic. It satisfies the
workspace controller's Recorder interface.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
