// Package api exposes the device-key lookup endpoint over HTTP.
package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lorahub/lorahub-keyserver/internal/config"
)

// Setup starts the API server.
func Setup(c config.Config) error {
	log.WithFields(log.Fields{
		"bind": c.KeyServer.API.Bind,
	}).Info("api: starting api server")

	server := http.Server{
		Handler: Handler(),
		Addr:    c.KeyServer.API.Bind,
	}

	go func() {
		err := server.ListenAndServe()
		log.WithError(err).Error("api: api server error")
	}()

	return nil
}

// Handler returns the http.Handler serving the API routes.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/device-key", deviceKeyHandlerFunc)
	return mux
}
