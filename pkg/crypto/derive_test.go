package crypto

import (
	"errors"
	"reflect"
	"testing"
)

func TestDeriveIntegers(t *testing.T) {
	tests := []struct {
		name    string
		digest  []byte
		count   int
		modulus int
		want    []int
	}{
		{
			name:    "reference vector",
			digest:  []byte{10, 20, 30, 40},
			count:   3,
			modulus: 4,
			want:    []int{2, 0, 2},
		},
		{
			name:    "modulus 21",
			digest:  []byte{10, 20, 30, 40},
			count:   4,
			modulus: 21,
			want:    []int{10, 20, 9, 2},
		},
		{
			name:    "drains accumulator after digest end",
			digest:  []byte{10, 20, 30, 40},
			count:   5,
			modulus: 21,
			want:    []int{10, 20, 9, 2, 14},
		},
		{
			name:    "zero count",
			digest:  []byte{1, 2, 3},
			count:   0,
			modulus: 4,
			want:    []int{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeriveIntegers(tc.digest, tc.count, tc.modulus)
			if err != nil {
				t.Fatalf("DeriveIntegers failed: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DeriveIntegers() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeriveIntegersExhausted(t *testing.T) {
	tests := []struct {
		name    string
		digest  []byte
		count   int
		modulus int
	}{
		{"empty digest", nil, 1, 4},
		{"zero byte digest", []byte{0}, 2, 4},
		{"entropy runs out", []byte{10, 20, 30, 40}, 6, 21},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeriveIntegers(tc.digest, tc.count, tc.modulus)
			if !errors.Is(err, ErrDigestExhausted) {
				t.Errorf("expected ErrDigestExhausted, got %v", err)
			}
		})
	}
}

func TestDeriveIntegersInvalidParameters(t *testing.T) {
	digest := []byte{1, 2, 3, 4}

	if _, err := DeriveIntegers(digest, -1, 4); !errors.Is(err, ErrInvalidDerivation) {
		t.Errorf("negative count: expected ErrInvalidDerivation, got %v", err)
	}
	if _, err := DeriveIntegers(digest, 2, 1); !errors.Is(err, ErrInvalidDerivation) {
		t.Errorf("modulus 1: expected ErrInvalidDerivation, got %v", err)
	}
	if _, err := DeriveIntegers(digest, 2, 0); !errors.Is(err, ErrInvalidDerivation) {
		t.Errorf("modulus 0: expected ErrInvalidDerivation, got %v", err)
	}
}

func TestDeriveIntegersDeterministic(t *testing.T) {
	digest := SHA256Slice([]byte("shared secret"))

	for _, modulus := range []int{2, 4, 21, 255, 1000} {
		first, err := DeriveIntegers(digest, 16, modulus)
		if err != nil {
			t.Fatalf("DeriveIntegers(mod %d) failed: %v", modulus, err)
		}
		for i := 0; i < 5; i++ {
			again, err := DeriveIntegers(digest, 16, modulus)
			if err != nil {
				t.Fatalf("DeriveIntegers(mod %d) failed: %v", modulus, err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("mod %d: call %d returned %v, first call %v", modulus, i, again, first)
			}
		}
		for i, v := range first {
			if v < 0 || v >= modulus {
				t.Errorf("mod %d: value %d at index %d out of range", modulus, v, i)
			}
		}
	}
}

func TestDeriveIntegersFullDigestSkipsUnsafeRefill(t *testing.T) {
	// All-0xFF bytes force the accumulator up to the 31-bit bound, so some
	// slots must be served without a refill.
	digest := make([]byte, SHA256LenBytes)
	for i := range digest {
		digest[i] = 0xFF
	}

	got, err := DeriveIntegers(digest, 40, 2)
	if err != nil {
		t.Fatalf("DeriveIntegers failed: %v", err)
	}
	if len(got) != 40 {
		t.Fatalf("expected 40 values, got %d", len(got))
	}
	for i, v := range got {
		if v != 1 {
			t.Errorf("index %d: expected 1 for an all-ones digest, got %d", i, v)
		}
	}
}
