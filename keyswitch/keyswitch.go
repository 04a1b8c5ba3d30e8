// Package keyswitch implements base-decomposition key-switching: given an
// "old" secret s_old and a "new" secret s_new, Generate produces ℓ
// encryptions of w^i * s_old under s_new (the key-switching key), and Apply
// digit-decomposes a ciphertext half expressed under s_old, multiplies
// component-wise against the key-switching key, and aggregates the result
// into a ciphertext delta decryptable under s_new. This is the single
// mechanism both relinearization (s_old = s^2, s_new = s) and rotation
// (s_old = the Galois-permuted s, s_new = s) build on, per the spec.
//
// This package depends only on crt and arith, not on package rlwe, so that
// rlwe's own evaluation-key generation can be expressed in terms of it
// without an import cycle.
package keyswitch

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
)

// Key is a base-w key-switching key: Value[i] = (c0_i, c1_i) encrypts
// w^i * s_old under s_new.
type Key struct {
	Value [][2]*crt.Polynomial
	Base  uint64
}

// Generate builds a key-switching key from sOld to sNew with decomposition
// base decompositionBase and length ell = ceil(log_base(Q)).
func Generate(basis *crt.Basis, sOld, sNew *crt.Polynomial, sigma float64, decompositionBase uint64, ell int, prng arith.PRNG) (*Key, error) {
	if decompositionBase < 2 {
		return nil, herrors.New(herrors.InvalidParameters, "keyswitch: decomposition base must be >= 2")
	}

	value := make([][2]*crt.Polynomial, ell)
	wPow := uint64(1)
	for i := 0; i < ell; i++ {
		e0, err := sampleGaussian(basis, prng, sigma)
		if err != nil {
			return nil, err
		}
		e1, err := sampleGaussian(basis, prng, sigma)
		if err != nil {
			return nil, err
		}
		a, err := sampleUniform(basis, prng)
		if err != nil {
			return nil, err
		}

		scaledOld := scale(basis, sOld, wPow)

		c1, err := basis.AddCRT(a, e1)
		if err != nil {
			return nil, err
		}

		negA := negate(basis, a)
		negAs, err := basis.MultiplyCRT(negA, sNew)
		if err != nil {
			return nil, err
		}
		c0tmp, err := basis.AddCRT(negAs, e0)
		if err != nil {
			return nil, err
		}
		c0, err := basis.AddCRT(c0tmp, scaledOld)
		if err != nil {
			return nil, err
		}

		value[i] = [2]*crt.Polynomial{c0, c1}

		if decompositionBase > (1 << 63) {
			return nil, herrors.New(herrors.InvalidParameters, "keyswitch: decomposition base too large")
		}
		wPow *= decompositionBase
	}

	return &Key{Value: value, Base: decompositionBase}, nil
}

// Apply digit-decomposes c1 (the half of a ciphertext expressed under
// s_old) in base ksk.Base and combines the digits against the
// key-switching key, returning a delta (c0Delta, c1Delta) to be added onto
// the ciphertext's existing (c0, c1) to complete the switch to s_new.
func Apply(basis *crt.Basis, c1 *crt.Polynomial, ksk *Key) (c0Delta, c1Delta *crt.Polynomial, err error) {
	digits, err := decompose(basis, c1, ksk.Base, len(ksk.Value))
	if err != nil {
		return nil, nil, err
	}

	c0Delta = zeroPolynomial(basis)
	c1Delta = zeroPolynomial(basis)
	for i, digit := range digits {
		term0, err := basis.MultiplyCRT(digit, ksk.Value[i][0])
		if err != nil {
			return nil, nil, err
		}
		term1, err := basis.MultiplyCRT(digit, ksk.Value[i][1])
		if err != nil {
			return nil, nil, err
		}
		c0Delta, err = basis.AddCRT(c0Delta, term0)
		if err != nil {
			return nil, nil, err
		}
		c1Delta, err = basis.AddCRT(c1Delta, term1)
		if err != nil {
			return nil, nil, err
		}
	}
	return c0Delta, c1Delta, nil
}

// decompose splits each coefficient of x's reconstructed integer
// representation into ell base-w digits, each re-lifted into a fresh CRT
// polynomial. This is the one place key-switching needs to leave the RNS
// representation (digit decomposition is inherently a big-integer
// operation on the true coefficient value, not something that factors
// limb-by-limb), so it goes through crt.Basis.FromCRT and back.
func decompose(basis *crt.Basis, x *crt.Polynomial, base uint64, ell int) ([]*crt.Polynomial, error) {
	coeffs, err := basis.FromCRT(x)
	if err != nil {
		return nil, err
	}

	n := len(coeffs)
	digitVals := make([][]int64, ell)
	for i := range digitVals {
		digitVals[i] = make([]int64, n)
	}

	baseBig := new(big.Int).SetUint64(base)
	for j, c := range coeffs {
		v := new(big.Int).Set(c)
		rem := new(big.Int)
		for i := 0; i < ell; i++ {
			v.DivMod(v, baseBig, rem)
			digitVals[i][j] = int64(rem.Uint64())
		}
	}

	out := make([]*crt.Polynomial, ell)
	for i := 0; i < ell; i++ {
		out[i] = liftSmall(basis, digitVals[i])
	}
	return out, nil
}

func zeroPolynomial(basis *crt.Basis) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		limbs[i] = r.NewPoly()
	}
	return &crt.Polynomial{Limbs: limbs}
}
