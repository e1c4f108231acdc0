package auditlog

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// PhoneHasher pseudonymizes phone numbers before they are stored. The same
// phone always hashes to the same value under one key, so events for a
// number can be correlated without keeping the number itself.
type PhoneHasher struct {
	key []byte
}

// NewPhoneHasher returns a hasher keyed with key. Keys longer than 64
// bytes are truncated; an empty key still hashes, unkeyed.
func NewPhoneHasher(key []byte) *PhoneHasher {
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &PhoneHasher{key: append([]byte(nil), key...)}
}

// Hash returns a 32-character hex digest of phone, or "" for an empty phone.
func (h *PhoneHasher) Hash(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || h == nil {
		return ""
	}
	mac, err := blake2b.New(16, h.key)
	if err != nil {
		return ""
	}
	mac.Write([]byte(phone))
	return hex.EncodeToString(mac.Sum(nil))
}
