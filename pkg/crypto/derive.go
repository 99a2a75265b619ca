package crypto

import (
	"fmt"
	"math"
)

// derivationBound caps the accumulator so refills never leave 31-bit range.
const derivationBound = math.MaxInt32

// DeriveIntegers expands a digest into count integers in [0, modulus).
//
// The digest is read as a big-endian number and emitted as base-modulus
// digits, least significant first. An accumulator is refilled one byte per
// output slot, but only while the refill keeps it below 2^31-1; otherwise the
// slot is served from what the accumulator already holds. Both peers run this
// on the same digest and must get identical output, so the refill rule is part
// of the protocol and must not change.
//
// Example: digest [10 20 30 40], count 3, modulus 4 yields [2 0 2].
//
// Returns ErrDigestExhausted when the digest is consumed and the accumulator
// is empty before count values were produced.
func DeriveIntegers(digest []byte, count, modulus int) ([]int, error) {
	if count < 0 || modulus < 2 {
		return nil, ErrInvalidDerivation
	}

	out := make([]int, count)
	var acc int64
	cur := 0
	m := int64(modulus)

	for i := 0; i < count; i++ {
		refilled := false
		if cur < len(digest) {
			if next := acc*256 + int64(digest[cur]); next < derivationBound {
				acc = next
				cur++
				refilled = true
			}
		}

		if !refilled && cur >= len(digest) && acc == 0 {
			return nil, fmt.Errorf("%w: produced %d of %d values from %d bytes",
				ErrDigestExhausted, i, count, len(digest))
		}

		out[i] = int(acc % m)
		acc /= m
	}

	return out, nil
}
