// Package credentials turns a typed password into the comparable string
// that is stored in and matched against the user table.
package credentials

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 2
	argonKeyLen  = 32
)

// Encoder derives stored password strings with argon2id and an
// installation-wide salt. The same input always yields the same output,
// so the store can compare with plain equality.
type Encoder struct {
	salt []byte
}

// NewEncoder creates an encoder for the given salt.
func NewEncoder(salt string) *Encoder {
	return &Encoder{salt: []byte(salt)}
}

// Encode returns the hex encoded argon2id key for password.
func (e *Encoder) Encode(password string) string {
	key := argon2.IDKey([]byte(password), e.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}
