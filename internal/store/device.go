package store

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeviceID returns the stable per-install identifier, minting and
// persisting a UUID v4 on first call. A store that refuses the write still
// gets a usable id for the session.
func DeviceID(s Store, log zerolog.Logger) string {
	if data, ok := s.Get(KeyDeviceID); ok {
		if id, err := uuid.Parse(string(data)); err == nil {
			return id.String()
		}
		log.Warn().Msg("stored device id is not a UUID, reissuing")
	}
	id := uuid.New().String()
	if !s.Set(KeyDeviceID, []byte(id)) {
		log.Warn().Msg("device id could not be persisted; using session-only id")
	}
	return id
}
