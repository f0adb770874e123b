// Package anon replaces identifying strings with salted one-way digests.
package anon

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// SaltSize is the number of random salt bytes generated per run.
const SaltSize = 32

// DigestLength is the number of hex characters kept from each digest.
const DigestLength = 16

// Anonymizer produces stable digests for the lifetime of one run.
// The salt is never persisted, so digests differ between runs.
type Anonymizer struct {
	enabled bool
	salt    []byte

	mu    sync.Mutex
	cache map[string]string
}

// New returns an Anonymizer with a fresh random salt.
// The salt is generated even when disabled because chart colors reuse the digest.
func New(enabled bool) (*Anonymizer, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return NewWithSalt(enabled, salt)
}

// NewWithSalt returns an Anonymizer with a caller-supplied salt.
func NewWithSalt(enabled bool, salt []byte) (*Anonymizer, error) {
	if len(salt) == 0 || len(salt) > blake2b.Size {
		return nil, fmt.Errorf("salt must be 1..%d bytes, got %d", blake2b.Size, len(salt))
	}
	return &Anonymizer{
		enabled: enabled,
		salt:    append([]byte(nil), salt...),
		cache:   make(map[string]string),
	}, nil
}

// Enabled reports whether Anonymize rewrites values.
func (a *Anonymizer) Enabled() bool { return a.enabled }

// Hash returns the last DigestLength hex characters of the keyed digest of value.
func (a *Anonymizer) Hash(value string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.cache[value]; ok {
		return h
	}
	mac, _ := blake2b.New256(a.salt) // key length checked in NewWithSalt
	mac.Write([]byte(value))
	sum := hex.EncodeToString(mac.Sum(nil))
	h := sum[len(sum)-DigestLength:]
	a.cache[value] = h
	return h
}

// Anonymize returns Hash(value) when enabled, otherwise value unchanged.
func (a *Anonymizer) Anonymize(value string) string {
	if !a.enabled {
		return value
	}
	return a.Hash(value)
}

// Color returns a chart color derived from the digest of value.
func (a *Anonymizer) Color(value string) string {
	h := a.Hash(value)
	return "#" + h[len(h)-6:]
}
