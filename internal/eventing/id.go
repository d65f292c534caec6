package eventing

import (
	"crypto/rand"
	"encoding/hex"
)

// NewEventID generates a random event identifier: 16 random bytes with the
// UUIDv4 version and variant bits set, hex encoded.
func NewEventID() string {
	var buf [16]byte
	_, err := rand.Read(buf[:])
	if err == nil {
		buf[6] = (buf[6] & 0x0f) | 0x40
		buf[8] = (buf[8] & 0x3f) | 0x80
	}
	return hex.EncodeToString(buf[:])
}

func newEventID() string {
	return NewEventID()
}
