package monitoring

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lorahub/lorahub-keyserver/internal/storage"
)

func healthCheckHandlerFunc(w http.ResponseWriter, r *http.Request) {
	if err := storage.RedisClient().Ping(r.Context()).Err(); err != nil {
		log.WithError(err).Error("monitoring: redis ping error")
		http.Error(w, "redis ping error", http.StatusServiceUnavailable)
		return
	}

	if err := storage.DB().Ping(); err != nil {
		log.WithError(err).Error("monitoring: database ping error")
		http.Error(w, "database ping error", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}
