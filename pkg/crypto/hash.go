// Package crypto provides the cryptographic capability used by the pairing
// protocol: nonces, hashing, asymmetric key pairs with sealed-box encryption,
// and the deterministic integer derivation both peers use to build the same
// verification artifact from a shared digest.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// SHA-256 constants.
const (
	// SHA256LenBits is the SHA-256 output length in bits.
	SHA256LenBits = 256

	// SHA256LenBytes is the SHA-256 output length in bytes.
	SHA256LenBytes = 32

	// FingerprintBytes is the number of digest bytes shown in a fingerprint.
	FingerprintBytes = 10
)

// SHA256 computes the SHA-256 hash of a message.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 hash and returns it as a slice.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests incrementally.
func NewSHA256() hash.Hash {
	return sha256.New()
}

// Fingerprint returns a short hex fingerprint of a public key, suitable for
// logs. It is the first FingerprintBytes of the key's SHA-256 digest.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:FingerprintBytes])
}
