// Package fhe implements the BGV-style homomorphic encryption scheme: key
// generation (delegated to package rlwe), batched encode/decode, and the
// ciphertext operations Encrypt, Decrypt, Add, Subtract, ScalarMultiply,
// Multiply (with relinearization) and Rotate, each consulting package
// noise to decide whether a bootstrap is due before the result can be
// returned.
package fhe

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/noise"
	"github.com/privacyfl/hec/ring"
	"github.com/privacyfl/hec/rlwe"
)

// Scheme binds a BGV ciphertext operation set to one parameter instance.
// DepthMax and NoiseThresholdBits follow the spec's configuration table
// (noise_threshold) and state-machine description (max multiplicative
// depth before NeedsBootstrap).
type Scheme struct {
	params             rlwe.Parameters
	deltaModQi         []uint64
	slotIndex          []int
	refresher          Refresher
	DepthMax           int
	NoiseThresholdBits float64
	MaxOpsSinceFresh   int
}

// NewScheme builds a Scheme over params, precomputing Delta = floor(Q/T)
// reduced modulo every prime in the ciphertext modulus basis so that
// message encoding never has to materialize Delta as a single (possibly
// several-hundred-bit) big integer at encrypt time.
func NewScheme(params rlwe.Parameters) *Scheme {
	basis := params.QBasis
	tBig := new(big.Int).SetUint64(params.T)
	delta := new(big.Int).Div(basis.Q, tBig)

	deltaModQi := make([]uint64, len(basis.Primes))
	for i, p := range basis.Primes {
		pBig := new(big.Int).SetUint64(p)
		deltaModQi[i] = new(big.Int).Mod(delta, pBig).Uint64()
	}

	return &Scheme{
		params:             params,
		deltaModQi:         deltaModQi,
		slotIndex:          slotIndexMap(params.N),
		DepthMax:           2,
		NoiseThresholdBits: float64(params.LogQ()) - float64(mustLog2(params.T)) - 8,
		MaxOpsSinceFresh:   32,
	}
}

func mustLog2(t uint64) int {
	n := 0
	for v := t; v > 1; v >>= 1 {
		n++
	}
	return n
}

// Params returns the parameter set this Scheme is bound to.
func (s *Scheme) Params() rlwe.Parameters { return s.params }

// KeyGen produces a fresh key set for this Scheme's parameters.
func (s *Scheme) KeyGen(prng arith.PRNG) (*rlwe.KeySet, error) {
	return rlwe.KeyGen(s.params, prng)
}

// Encrypt encodes slots and encrypts the result under pk, per the spec:
// c0 = b*u + e1 + encode(m), c1 = a*u + e2, with u ternary and e1, e2
// discrete Gaussian.
func (s *Scheme) Encrypt(slots []uint64, pk *rlwe.PublicKey, prng arith.PRNG) (*rlwe.Ciphertext, error) {
	basis := s.params.QBasis

	m, err := s.Encode(slots)
	if err != nil {
		return nil, err
	}
	mLifted := liftPlainToCRT(basis, m.Coeffs)
	mScaled := scaleByConstPerLimb(basis, mLifted, s.deltaModQi)

	u, err := rlwe.SampleTernaryCRT(basis, prng)
	if err != nil {
		return nil, err
	}
	e1, err := rlwe.SampleGaussianCRT(basis, prng, s.params.Sigma)
	if err != nil {
		return nil, err
	}
	e2, err := rlwe.SampleGaussianCRT(basis, prng, s.params.Sigma)
	if err != nil {
		return nil, err
	}

	bu, err := basis.MultiplyCRT(pk.B, u)
	if err != nil {
		return nil, err
	}
	c0tmp, err := basis.AddCRT(bu, e1)
	if err != nil {
		return nil, err
	}
	c0, err := basis.AddCRT(c0tmp, mScaled)
	if err != nil {
		return nil, err
	}

	au, err := basis.MultiplyCRT(pk.A, u)
	if err != nil {
		return nil, err
	}
	c1, err := basis.AddCRT(au, e2)
	if err != nil {
		return nil, err
	}

	fresh := noise.Fresh(s.params.N, s.params.Sigma)
	return &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1,
		Fingerprint:   pk.Fingerprint,
		Level:         0,
		Noise:         fresh.Bits(),
		OpsSinceFresh: 0,
		State:         rlwe.Fresh,
	}, nil
}

// Decrypt computes c0 + c1*s, rescales by t/Q, reduces modulo t and decodes
// the resulting plaintext polynomial into a slot vector. It fails with
// NoiseExceeded when a coefficient's residual after rescaling exceeds
// q/(2t), i.e. when the rounding step is ambiguous.
func (s *Scheme) Decrypt(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) ([]uint64, error) {
	if ct.Fingerprint != sk.Fingerprint {
		return nil, herrors.New(herrors.KeyMismatch, "fhe: ciphertext and secret key fingerprints differ")
	}
	if ct.Degree() != 1 {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: cannot decrypt a degree-2 ciphertext, relinearize first")
	}
	basis := s.params.QBasis

	cs, err := basis.MultiplyCRT(ct.C1, sk.Value)
	if err != nil {
		return nil, err
	}
	x, err := basis.AddCRT(ct.C0, cs)
	if err != nil {
		return nil, err
	}

	coeffs, err := basis.FromCRT(x)
	if err != nil {
		return nil, err
	}

	q := basis.Q
	half := new(big.Int).Rsh(q, 1)
	tBig := new(big.Int).SetUint64(s.params.T)
	// residual threshold q/(2t): rounding is ambiguous once the coefficient
	// lies farther than this from its rounded lattice point.
	thresh := new(big.Int).Div(q, new(big.Int).Lsh(tBig, 1))

	plainCoeffs := make([]uint64, len(coeffs))
	for i, c := range coeffs {
		// round(c * t / q): (2*c*t + q) / (2*q), integer division.
		num := new(big.Int).Mul(c, tBig)
		num.Lsh(num, 1)
		num.Add(num, q)
		denom := new(big.Int).Lsh(q, 1)
		rounded := new(big.Int).Div(num, denom)
		rounded.Mod(rounded, tBig)

		delta := new(big.Int).Mul(rounded, new(big.Int).Div(q, tBig))
		residual := new(big.Int).Sub(c, delta)
		residual.Mod(residual, q)
		if residual.Cmp(half) > 0 {
			residual.Sub(residual, q)
			residual.Neg(residual)
		}
		if residual.CmpAbs(thresh) > 0 {
			return nil, herrors.New(herrors.NoiseExceeded, "fhe: decryption residual exceeds q/(2t), noise budget exhausted")
		}

		plainCoeffs[i] = rounded.Uint64()
	}

	plain := &ring.Poly{Coeffs: plainCoeffs, Domain: ring.Coefficient}
	return s.Decode(plain)
}
