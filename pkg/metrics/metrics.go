package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "uploads_total", Help: "Number of track upload requests by outcome."},
		[]string{"outcome"},
	)
	UploadFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "upload_fallbacks_total", Help: "Number of object-store failures substituted with the fallback asset, by asset kind."},
		[]string{"kind"},
	)
	BroadcastsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "broadcasts_sent_total", Help: "Number of realtime events published."},
	)
	BroadcastErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "broadcast_errors_total", Help: "Number of realtime publish failures (swallowed)."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "soundrift", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(UploadsTotal)
	reg.MustRegister(UploadFallbacks)
	reg.MustRegister(BroadcastsSent)
	reg.MustRegister(BroadcastErrors)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
