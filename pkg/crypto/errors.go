package crypto

import "errors"

// Errors.
var (
	// ErrDecryption is returned when a ciphertext cannot be opened with the
	// local key pair.
	ErrDecryption = errors.New("crypto: decryption failed")

	// ErrInvalidPublicKey is returned when a peer public key has the wrong size.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrInvalidKeyPair is returned when a nil or incomplete key pair is used.
	ErrInvalidKeyPair = errors.New("crypto: invalid key pair")

	// ErrDigestExhausted is returned when a digest holds too little entropy
	// for the requested number of derived integers.
	ErrDigestExhausted = errors.New("crypto: digest exhausted")

	// ErrInvalidDerivation is returned for a negative count or a modulus below 2.
	ErrInvalidDerivation = errors.New("crypto: invalid derivation parameters")

	// ErrEmptySecret is returned when key derivation is given no input.
	ErrEmptySecret = errors.New("crypto: empty secret")
)
