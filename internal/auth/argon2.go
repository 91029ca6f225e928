// Package auth provides credential hashing and session utilities.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost settings recorded in every encoded hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams is the OWASP recommended minimum for Argon2id.
// Student PINs are only four digits, so they get the same cost as vendor passwords.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var (
	// ErrInvalidHash indicates the stored hash is not an argon2id PHC string.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash was made by another argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// encodedHash is the decoded form of
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>.
type encodedHash struct {
	params Params
	salt   []byte
	key    []byte
}

func (h encodedHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func parseHash(encoded string) (encodedHash, error) {
	var h encodedHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return h, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return h, ErrInvalidHash
	}
	if version != argon2.Version {
		return h, ErrIncompatibleVersion
	}

	p := &h.params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return h, ErrInvalidHash
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, ErrInvalidHash
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return h, ErrInvalidHash
	}
	p.SaltLen = uint32(len(h.salt))
	p.KeyLen = uint32(len(h.key))

	return h, nil
}

func derive(secret string, salt []byte, p Params) []byte {
	return argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// HashSecret hashes a PIN or password with DefaultParams.
func HashSecret(secret string) (string, error) {
	return HashSecretWith(secret, DefaultParams)
}

// HashSecretWith hashes a secret with explicit cost parameters.
func HashSecretWith(secret string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return encodedHash{params: p, salt: salt, key: derive(secret, salt, p)}.String(), nil
}

// VerifySecret reports whether secret matches the encoded hash.
// The cost parameters are read from the hash, not from DefaultParams.
func VerifySecret(secret, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}

	computed := derive(secret, h.salt, h.params)
	return subtle.ConstantTimeCompare(computed, h.key) == 1, nil
}

// SessionKey derives the Redis key of a bearer token.
// Only the digest is stored, so a Redis dump never holds a usable token.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
