package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// LinkKeySize is the size of the symmetric key derived from a completed pairing.
const LinkKeySize = 32

// linkKeyInfo is the HKDF info string for link key derivation.
var linkKeyInfo = []byte("HoloPair LinkKey")

// HKDFSHA256 derives key material using HKDF-SHA256 (RFC 5869).
//
// Parameters:
//   - inputKey: Input keying material (IKM)
//   - salt: Optional salt value (can be nil or empty)
//   - info: Optional context/application-specific info (can be nil or empty)
//   - length: Number of bytes to derive
func HKDFSHA256(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeriveLinkKey derives the symmetric link key two paired devices share once
// the human comparison succeeded. The shared key itself is never used directly
// as an encryption key.
func DeriveLinkKey(sharedKey []byte) ([]byte, error) {
	if len(sharedKey) == 0 {
		return nil, ErrEmptySecret
	}
	return HKDFSHA256(sharedKey, nil, linkKeyInfo, LinkKeySize)
}
