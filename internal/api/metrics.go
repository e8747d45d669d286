package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillswap",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, matched route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillswap",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and matched route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	requestTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillswap",
		Name:      "request_transitions_total",
		Help:      "Skill request status changes by target status.",
	}, []string{"status"})
)

// metricsHandler exposes the default Prometheus registry
func metricsHandler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
}
