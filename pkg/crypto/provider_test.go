package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestProviderHash(t *testing.T) {
	p := NewProvider(nil)

	// NIST FIPS 180-4 Example B.1
	want, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	got := p.Hash([]byte("abc"))
	if !bytes.Equal(got, want) {
		t.Errorf("Hash(abc) = %x, want %x", got, want)
	}
	if len(p.Hash(nil)) != SHA256LenBytes {
		t.Errorf("expected %d byte digest", SHA256LenBytes)
	}
}

func TestProviderGenerateNonce(t *testing.T) {
	p := NewProvider(nil)

	a, err := p.GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce failed: %v", err)
	}
	b, err := p.GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce failed: %v", err)
	}
	if len(a) != NonceSize || len(b) != NonceSize {
		t.Fatalf("expected %d byte nonces, got %d and %d", NonceSize, len(a), len(b))
	}
	if bytes.Equal(a, b) {
		t.Error("two nonces should differ")
	}
}

func TestProviderGenerateNonceShortRandom(t *testing.T) {
	p := NewProvider(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := p.GenerateNonce(); err == nil {
		t.Error("expected error from exhausted random source")
	}
}

func TestProviderEncryptDecrypt(t *testing.T) {
	p := NewProvider(nil)

	kp, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if len(kp.PublicKey()) != PublicKeySize {
		t.Fatalf("expected %d byte public key", PublicKeySize)
	}

	secret := []byte("commitment pre-image")
	ct, err := p.Encrypt(kp.PublicKey(), secret)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ct, secret) {
		t.Error("ciphertext contains plaintext")
	}

	pt, err := p.Decrypt(kp, ct)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(pt, secret) {
		t.Errorf("Decrypt = %q, want %q", pt, secret)
	}
}

func TestProviderDecryptRejects(t *testing.T) {
	p := NewProvider(nil)

	kp, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	other, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	ct, err := p.Encrypt(kp.PublicKey(), []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	t.Run("wrong key pair", func(t *testing.T) {
		if _, err := p.Decrypt(other, ct); !errors.Is(err, ErrDecryption) {
			t.Errorf("expected ErrDecryption, got %v", err)
		}
	})

	t.Run("bit flip", func(t *testing.T) {
		tampered := append([]byte(nil), ct...)
		tampered[len(tampered)-1] ^= 0x01
		if _, err := p.Decrypt(kp, tampered); !errors.Is(err, ErrDecryption) {
			t.Errorf("expected ErrDecryption, got %v", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		if _, err := p.Decrypt(kp, ct[:10]); !errors.Is(err, ErrDecryption) {
			t.Errorf("expected ErrDecryption, got %v", err)
		}
	})

	t.Run("nil key pair", func(t *testing.T) {
		if _, err := p.Decrypt(nil, ct); !errors.Is(err, ErrInvalidKeyPair) {
			t.Errorf("expected ErrInvalidKeyPair, got %v", err)
		}
	})

	t.Run("wiped key pair", func(t *testing.T) {
		wiped, _ := p.GenerateKeyPair()
		ct, _ := p.Encrypt(wiped.PublicKey(), []byte("secret"))
		wiped.Wipe()
		if _, err := p.Decrypt(wiped, ct); !errors.Is(err, ErrDecryption) {
			t.Errorf("expected ErrDecryption, got %v", err)
		}
	})
}

func TestProviderEncryptInvalidPublicKey(t *testing.T) {
	p := NewProvider(nil)
	if _, err := p.Encrypt([]byte{1, 2, 3}, []byte("x")); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("expected ErrInvalidPublicKey, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint([]byte("abc"))
	if fp != "ba7816bf8f01cfea4141" {
		t.Errorf("Fingerprint = %s", fp)
	}
}
