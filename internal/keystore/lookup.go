package keystore

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/logging"
	"github.com/lorahub/lorahub-keyserver/internal/storage"
)

// HandleLookup resolves the device key for the given DevEUI. An unknown
// device yields an empty list, not an error. This path does not touch the
// cache / lock subsystem.
func HandleLookup(ctx context.Context, devEUI lorawan.EUI64) ([]DeviceKeyRecord, error) {
	lookupCounter("dev_eui").Inc()

	dk, err := store.GetDeviceKey(ctx, devEUI)
	if err != nil {
		if err == storage.ErrDoesNotExist {
			return []DeviceKeyRecord{}, nil
		}
		return nil, errors.Wrap(err, "get device-key error")
	}

	return []DeviceKeyRecord{
		{
			DevEUI:     dk.DevEUI,
			PrimaryKey: dk.PrimaryKey,
			DevAddr:    dk.DevAddr(),
		},
	}, nil
}

// HandleDevAddr resolves the device keys for all devices bound to the given
// DevAddr. The address query returns identities only, so every match is
// followed by a secondary key fetch. All returned records carry the
// requested address.
func HandleDevAddr(ctx context.Context, devAddr lorawan.DevAddr) ([]DeviceKeyRecord, error) {
	lookupCounter("dev_addr").Inc()

	devEUIs, err := store.GetDeviceEUIsForDevAddr(ctx, devAddr)
	if err != nil {
		return nil, errors.Wrap(err, "get device euis for dev-addr error")
	}

	out := make([]DeviceKeyRecord, 0, len(devEUIs))
	for _, devEUI := range devEUIs {
		dk, err := store.GetDeviceKey(ctx, devEUI)
		if err != nil {
			if err == storage.ErrDoesNotExist {
				// the device was removed between the address query and
				// the key fetch
				log.WithFields(log.Fields{
					"dev_eui":  devEUI,
					"dev_addr": devAddr,
					"ctx_id":   ctx.Value(logging.ContextIDKey),
				}).Warning("keystore: device disappeared during dev-addr resolution")
				continue
			}
			return nil, errors.Wrap(err, "get device-key error")
		}

		addr := devAddr
		out = append(out, DeviceKeyRecord{
			DevEUI:     dk.DevEUI,
			PrimaryKey: dk.PrimaryKey,
			DevAddr:    &addr,
		})
	}

	return out, nil
}
