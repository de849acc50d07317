// Package auth provides password hashing, JWT issuance and request identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// Production argon2id cost.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// Password policy limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	// ErrInvalidHash means a stored hash is not a usable argon2id PHC string.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion means the hash was made by another argon2 revision.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrPasswordTooShort is returned for passwords under MinPasswordLength.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordTooLong is returned for passwords over MaxPasswordLength.
	ErrPasswordTooLong = errors.New("password too long")
)

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultParams returns the production cost parameters.
func DefaultParams() Params {
	return Params{Time: argon2Time, Memory: argon2Memory, Threads: argon2Threads}
}

// Hasher hashes and verifies passwords with argon2id.
type Hasher struct {
	params Params
	dummy  string
}

// NewHasher creates a Hasher. A zero Params value selects DefaultParams.
func NewHasher(params Params) *Hasher {
	if params == (Params{}) {
		params = DefaultParams()
	}
	h := &Hasher{params: params}
	// Verified against when the account does not exist.
	h.dummy, _ = h.Hash(base64.RawStdEncoding.EncodeToString(randomBytes(argon2SaltLen)))
	return h
}

// phcPrefix is the algorithm tag every stored hash starts with.
const phcPrefix = "$argon2id$"

// maxVerifyMemory caps the memory cost accepted from a stored hash (256 MiB).
const maxVerifyMemory = 256 * 1024

// Hash returns password as a PHC string:
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<key>
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, argon2KeyLen)
	return encodeHash(phc{params: h.params, salt: salt, key: key}), nil
}

// Verify reports whether password produces encoded. Cost parameters come
// from the stored hash, so hashes made under older params keep verifying.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	stored, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	p := stored.params
	key := argon2.IDKey([]byte(password), stored.salt, p.Time, p.Memory, p.Threads, uint32(len(stored.key)))
	return subtle.ConstantTimeCompare(key, stored.key) == 1, nil
}

// VerifyDummy burns the same time as a real verification and always fails.
func (h *Hasher) VerifyDummy(password string) {
	_, _ = h.Verify(password, h.dummy)
}

type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func encodeHash(v phc) string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		phcPrefix, argon2.Version,
		v.params.Memory, v.params.Time, v.params.Threads,
		base64.RawStdEncoding.EncodeToString(v.salt),
		base64.RawStdEncoding.EncodeToString(v.key),
	)
}

func decodeHash(encoded string) (phc, error) {
	rest, ok := strings.CutPrefix(encoded, phcPrefix)
	if !ok {
		return phc{}, ErrInvalidHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return phc{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return phc{}, ErrInvalidHash
	}
	if version != argon2.Version {
		return phc{}, ErrIncompatibleVersion
	}

	var v phc
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &v.params.Memory, &v.params.Time, &v.params.Threads); err != nil {
		return phc{}, ErrInvalidHash
	}
	if v.params.Time == 0 || v.params.Threads == 0 || v.params.Memory == 0 || v.params.Memory > maxVerifyMemory {
		return phc{}, ErrInvalidHash
	}

	var err error
	if v.salt, err = base64.RawStdEncoding.DecodeString(fields[2]); err != nil {
		return phc{}, ErrInvalidHash
	}
	if v.key, err = base64.RawStdEncoding.DecodeString(fields[3]); err != nil || len(v.key) == 0 {
		return phc{}, ErrInvalidHash
	}
	return v, nil
}

// ValidatePassword enforces the password length policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
