package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

// Sizes of provider outputs.
const (
	// NonceSize is the size of a commitment pre-image.
	NonceSize = 32

	// PublicKeySize is the size of an exported public key.
	PublicKeySize = 32
)

// Hasher is the one-way hash used for commitments and artifact digests.
type Hasher interface {
	// Hash returns a fixed-length digest of input.
	Hash(input []byte) []byte
}

// Provider is the cryptographic capability a pairing session depends on.
// The protocol only relies on the hash being deterministic and
// preimage-resistant and on Decrypt rejecting ciphertexts that were not
// sealed to the key pair.
type Provider interface {
	Hasher

	// GenerateNonce returns an unpredictable value used as a commitment pre-image.
	GenerateNonce() ([]byte, error)

	// GenerateKeyPair returns a fresh asymmetric key pair.
	GenerateKeyPair() (*KeyPair, error)

	// Encrypt seals plaintext to the peer's exported public key.
	Encrypt(publicKey, plaintext []byte) ([]byte, error)

	// Decrypt opens a ciphertext sealed to kp.
	Decrypt(kp *KeyPair, ciphertext []byte) ([]byte, error)

	// DeriveIntegers expands a digest into count integers in [0, modulus).
	DeriveIntegers(digest []byte, count, modulus int) ([]int, error)
}

// KeyPair is a Curve25519 box key pair. Only the public half is ever exported.
type KeyPair struct {
	public  [PublicKeySize]byte
	private [PublicKeySize]byte
}

// PublicKey returns a copy of the exportable public key.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, kp.public[:])
	return out
}

// Wipe zeroes the private key. The key pair is unusable for decryption afterwards.
func (kp *KeyPair) Wipe() {
	for i := range kp.private {
		kp.private[i] = 0
	}
}

// DefaultProvider implements Provider with SHA-256 and NaCl anonymous sealed
// boxes (X25519 + XSalsa20-Poly1305).
type DefaultProvider struct {
	rand io.Reader
}

// NewProvider creates a provider that draws randomness from r.
// If r is nil, crypto/rand is used.
func NewProvider(r io.Reader) *DefaultProvider {
	if r == nil {
		r = rand.Reader
	}
	return &DefaultProvider{rand: r}
}

// GenerateNonce returns NonceSize random bytes.
func (p *DefaultProvider) GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(p.rand, nonce); err != nil {
		return nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	return nonce, nil
}

// Hash returns the SHA-256 digest of input.
func (p *DefaultProvider) Hash(input []byte) []byte {
	return SHA256Slice(input)
}

// GenerateKeyPair returns a fresh box key pair.
func (p *DefaultProvider) GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(p.rand)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key pair: %w", err)
	}
	return &KeyPair{public: *pub, private: *priv}, nil
}

// Encrypt seals plaintext to publicKey with an ephemeral sender key.
func (p *DefaultProvider) Encrypt(publicKey, plaintext []byte) ([]byte, error) {
	if len(publicKey) != PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	var recipient [PublicKeySize]byte
	copy(recipient[:], publicKey)

	ct, err := box.SealAnonymous(nil, plaintext, &recipient, p.rand)
	if err != nil {
		return nil, fmt.Errorf("crypto: seal: %w", err)
	}
	return ct, nil
}

// Decrypt opens a ciphertext sealed to kp.
func (p *DefaultProvider) Decrypt(kp *KeyPair, ciphertext []byte) ([]byte, error) {
	if kp == nil {
		return nil, ErrInvalidKeyPair
	}
	pt, ok := box.OpenAnonymous(nil, ciphertext, &kp.public, &kp.private)
	if !ok {
		return nil, ErrDecryption
	}
	return pt, nil
}

// DeriveIntegers implements Provider using the package-level DeriveIntegers.
func (p *DefaultProvider) DeriveIntegers(digest []byte, count, modulus int) ([]int, error) {
	return DeriveIntegers(digest, count, modulus)
}
