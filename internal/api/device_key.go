package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/keystore"
	"github.com/lorahub/lorahub-keyserver/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

// deviceKeyHandlerFunc dispatches on the given query parameters:
//   - DevEUI + DevNonce: join resolution (GatewayId is the lock token)
//   - DevEUI only:       direct lookup
//   - DevAddr only:      address fallback query
//
// A missing identifier and address is a client error. Unknown devices
// return an empty list; a used dev-nonce and a denied join-lock each map to
// their own status code so callers can tell them apart from not-found.
func deviceKeyHandlerFunc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	if ctxID, err := uuid.NewV4(); err == nil {
		ctx = context.WithValue(ctx, logging.ContextIDKey, ctxID)
	}

	q := r.URL.Query()
	devEUIStr := q.Get("DevEUI")
	devNonce := q.Get("DevNonce")
	devAddrStr := q.Get("DevAddr")
	gatewayID := q.Get("GatewayId")

	switch {
	case devEUIStr != "" && devNonce != "":
		var devEUI lorawan.EUI64
		if err := devEUI.UnmarshalText([]byte(devEUIStr)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid DevEUI")
			return
		}

		res, err := keystore.HandleJoin(ctx, devEUI, devNonce, gatewayID)
		if err != nil {
			writeInternalError(ctx, w, err)
			return
		}

		switch res.Status {
		case keystore.JoinUsedNonce:
			writeError(w, http.StatusConflict, "used dev nonce")
		case keystore.JoinLockDenied:
			writeError(w, http.StatusTooManyRequests, "join lock held")
		default:
			writeRecords(ctx, w, res.Keys)
		}
	case devEUIStr != "":
		var devEUI lorawan.EUI64
		if err := devEUI.UnmarshalText([]byte(devEUIStr)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid DevEUI")
			return
		}

		records, err := keystore.HandleLookup(ctx, devEUI)
		if err != nil {
			writeInternalError(ctx, w, err)
			return
		}
		writeRecords(ctx, w, records)
	case devAddrStr != "":
		var devAddr lorawan.DevAddr
		if err := devAddr.UnmarshalText([]byte(devAddrStr)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid DevAddr")
			return
		}

		records, err := keystore.HandleDevAddr(ctx, devAddr)
		if err != nil {
			writeInternalError(ctx, w, err)
			return
		}
		writeRecords(ctx, w, records)
	default:
		writeError(w, http.StatusBadRequest, "either DevEUI or DevAddr must be given")
	}
}

func writeRecords(ctx context.Context, w http.ResponseWriter, records []keystore.DeviceKeyRecord) {
	if records == nil {
		records = []keystore.DeviceKeyRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.WithFields(log.Fields{
			"ctx_id": ctx.Value(logging.ContextIDKey),
		}).WithError(err).Error("api: encode response error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter, err error) {
	log.WithFields(log.Fields{
		"ctx_id": ctx.Value(logging.ContextIDKey),
	}).WithError(err).Error("api: device-key request error")
	writeError(w, http.StatusInternalServerError, "internal error")
}
