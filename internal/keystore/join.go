package keystore

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/logging"
	"github.com/lorahub/lorahub-keyserver/internal/storage"
)

// HandleJoin resolves the device key for a join-request, admitting each
// (DevEUI, DevNonce) pair at most once across all gateways and server
// instances.
//
// The first caller to acquire the join lock is authoritative. Everyone else
// observes either a denied lock or, once the nonce marker exists, a used
// nonce. The marker is written before the registry is queried, so even when
// the lock lease expires mid-flight (e.g. a slow registry call) a second
// caller finds the marker and rejects; the lock only prevents a thundering
// herd on the registry, the marker is the safety net against double
// admission.
func HandleJoin(ctx context.Context, devEUI lorawan.EUI64, devNonce, gatewayID string) (JoinResult, error) {
	acquired, err := storage.AcquireJoinLock(ctx, devEUI, devNonce, gatewayID, joinLockDuration)
	if err != nil {
		return JoinResult{}, errors.Wrap(err, "acquire join lock error")
	}
	if !acquired {
		joinLockDeniedCounter().Inc()
		log.WithFields(log.Fields{
			"dev_eui":    devEUI,
			"dev_nonce":  devNonce,
			"gateway_id": gatewayID,
			"ctx_id":     ctx.Value(logging.ContextIDKey),
		}).Info("keystore: join lock held by other caller")
		return JoinResult{Status: JoinLockDenied}, nil
	}
	defer func() {
		if err := storage.ReleaseJoinLock(ctx, devEUI, devNonce, gatewayID); err != nil {
			log.WithFields(log.Fields{
				"dev_eui":   devEUI,
				"dev_nonce": devNonce,
				"ctx_id":    ctx.Value(logging.ContextIDKey),
			}).WithError(err).Error("keystore: release join lock error")
		}
	}()

	_, err = storage.GetJoinNonce(ctx, devEUI, devNonce)
	if err == nil {
		joinUsedNonceCounter().Inc()
		log.WithFields(log.Fields{
			"dev_eui":   devEUI,
			"dev_nonce": devNonce,
			"ctx_id":    ctx.Value(logging.ContextIDKey),
		}).Warning("keystore: dev-nonce already used")
		return JoinResult{Status: JoinUsedNonce}, nil
	}
	if err != storage.ErrDoesNotExist {
		return JoinResult{}, errors.Wrap(err, "get join-nonce error")
	}

	created, err := storage.CreateJoinNonce(ctx, devEUI, devNonce, joinNonceTTL)
	if err != nil {
		return JoinResult{}, errors.Wrap(err, "create join-nonce error")
	}
	if !created {
		// a concurrent caller raced past the lock boundary and marked the
		// nonce first, e.g. after a lock-provider failover
		joinUsedNonceCounter().Inc()
		return JoinResult{Status: JoinUsedNonce}, nil
	}

	dk, err := store.GetDeviceKey(ctx, devEUI)
	if err != nil {
		if err == storage.ErrDoesNotExist {
			// the nonce marker stays set, so the nonce can not be reused
			// even for devices unknown to the registry
			joinUnknownDeviceCounter().Inc()
			log.WithFields(log.Fields{
				"dev_eui":   devEUI,
				"dev_nonce": devNonce,
				"ctx_id":    ctx.Value(logging.ContextIDKey),
			}).Info("keystore: join-request for unknown device")
			return JoinResult{Status: JoinAccepted}, nil
		}
		return JoinResult{}, errors.Wrap(err, "get device-key error")
	}

	if err := storage.DeleteFrameCounter(ctx, devEUI); err != nil && err != storage.ErrDoesNotExist {
		return JoinResult{}, errors.Wrap(err, "delete frame-counter error")
	}

	joinAcceptedCounter().Inc()
	log.WithFields(log.Fields{
		"dev_eui":    devEUI,
		"dev_nonce":  devNonce,
		"gateway_id": gatewayID,
		"ctx_id":     ctx.Value(logging.ContextIDKey),
	}).Info("keystore: join-request admitted")

	return JoinResult{
		Status: JoinAccepted,
		Keys: []DeviceKeyRecord{
			{
				DevEUI:     dk.DevEUI,
				PrimaryKey: dk.PrimaryKey,
				DevAddr:    dk.DevAddr(),
			},
		},
	}, nil
}
