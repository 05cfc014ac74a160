package keystore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const lookupPath = "path"

var (
	ja = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keystore_join_accepted_count",
		Help: "The number of join-requests admitted with a resolved device-key.",
	})
	jn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keystore_join_used_nonce_count",
		Help: "The number of join-requests rejected because the dev-nonce was already used.",
	})
	jl = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keystore_join_lock_denied_count",
		Help: "The number of join-requests that lost the join-lock race.",
	})
	ju = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keystore_join_unknown_device_count",
		Help: "The number of join-requests for devices unknown to the registry.",
	})
	lc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keystore_lookup_count",
		Help: "The number of device-key lookups (per lookup path).",
	}, []string{lookupPath})
)

func joinAcceptedCounter() prometheus.Counter {
	return ja
}

func joinUsedNonceCounter() prometheus.Counter {
	return jn
}

func joinLockDeniedCounter() prometheus.Counter {
	return jl
}

func joinUnknownDeviceCounter() prometheus.Counter {
	return ju
}

func lookupCounter(path string) prometheus.Counter {
	return lc.With(prometheus.Labels{lookupPath: path})
}
