package fhe

import (
	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/keyswitch"
	"github.com/privacyfl/hec/noise"
	"github.com/privacyfl/hec/ring"
	"github.com/privacyfl/hec/rlwe"
)

// automorphismCRT applies the Galois map X -> X^gal to every limb of x
// independently. The automorphism is a permutation-plus-sign-flip of
// coefficient positions that depends only on N, not on any limb's prime,
// so the same exponent is valid across the whole RNS basis.
func automorphismCRT(basis *crt.Basis, x *crt.Polynomial, gal int) (*crt.Polynomial, error) {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		if err := r.Automorphism(x.Limbs[i], gal, out); err != nil {
			return nil, err
		}
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}, nil
}

// checkFingerprint requires both ciphertexts to carry the same key
// fingerprint, per the spec's "key-mismatch errors are fatal" rule.
func checkFingerprint(a, b *rlwe.Ciphertext) error {
	if a.Fingerprint != b.Fingerprint {
		return herrors.New(herrors.KeyMismatch, "fhe: ciphertexts were encrypted under different keys")
	}
	return nil
}

func (s *Scheme) advanceState(ct *rlwe.Ciphertext) {
	exceeded := noise.ShouldBootstrap(noise.FromBits(ct.Noise), s.NoiseThresholdBits, ct.OpsSinceFresh, s.MaxOpsSinceFresh)
	if ct.Level >= s.DepthMax || exceeded {
		ct.State = rlwe.NeedsBootstrap
		return
	}
	if ct.Level > 0 {
		ct.State = rlwe.Linear
	}
}

// requireReady refuses any operation on a ciphertext already flagged
// NeedsBootstrap: per the spec, the next operation must pass through
// Bootstrapper first.
func requireReady(ct *rlwe.Ciphertext) error {
	if ct.State == rlwe.NeedsBootstrap {
		return herrors.New(herrors.BootstrapRequired, "fhe: ciphertext exceeded its noise budget, bootstrap before continuing")
	}
	return nil
}

// Add returns a + b, coefficient-wise over each half.
func (s *Scheme) Add(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := checkFingerprint(a, b); err != nil {
		return nil, err
	}
	if err := requireReady(a); err != nil {
		return nil, err
	}
	if err := requireReady(b); err != nil {
		return nil, err
	}
	if a.Degree() != 1 || b.Degree() != 1 {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: add requires degree-1 operands, relinearize first")
	}
	basis := s.params.QBasis
	c0, err := basis.AddCRT(a.C0, b.C0)
	if err != nil {
		return nil, err
	}
	c1, err := basis.AddCRT(a.C1, b.C1)
	if err != nil {
		return nil, err
	}

	out := &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1,
		Fingerprint:   a.Fingerprint,
		Level:         maxInt(a.Level, b.Level),
		Noise:         noise.AfterAdd(noise.FromBits(a.Noise), noise.FromBits(b.Noise)).Bits(),
		OpsSinceFresh: maxInt(a.OpsSinceFresh, b.OpsSinceFresh) + 1,
	}
	s.advanceState(out)
	return out, nil
}

// Subtract returns a - b = Add(a, Negate(b)).
func (s *Scheme) Subtract(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	neg, err := s.Negate(b)
	if err != nil {
		return nil, err
	}
	return s.Add(a, neg)
}

// Negate returns -ct.
func (s *Scheme) Negate(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	basis := s.params.QBasis
	out := &rlwe.Ciphertext{
		C0:            rlwe.NegateCRT(basis, ct.C0),
		C1:            rlwe.NegateCRT(basis, ct.C1),
		Fingerprint:   ct.Fingerprint,
		Level:         ct.Level,
		Noise:         ct.Noise,
		OpsSinceFresh: ct.OpsSinceFresh,
		State:         ct.State,
	}
	if ct.C2 != nil {
		out.C2 = rlwe.NegateCRT(basis, ct.C2)
	}
	return out, nil
}

// ScalarMultiply multiplies both halves of ct by the plaintext ring
// element encoded by slots, per the spec's "multiply each half by a
// constant (plaintext) ring element".
func (s *Scheme) ScalarMultiply(ct *rlwe.Ciphertext, slots []uint64) (*rlwe.Ciphertext, error) {
	if err := requireReady(ct); err != nil {
		return nil, err
	}
	basis := s.params.QBasis
	m, err := s.Encode(slots)
	if err != nil {
		return nil, err
	}
	k := liftPlainToCRT(basis, m.Coeffs)

	c0, err := basis.MultiplyCRT(ct.C0, k)
	if err != nil {
		return nil, err
	}
	c1, err := basis.MultiplyCRT(ct.C1, k)
	if err != nil {
		return nil, err
	}

	out := &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1,
		Fingerprint:   ct.Fingerprint,
		Level:         ct.Level,
		Noise:         noise.AfterScalarMultiply(noise.FromBits(ct.Noise), s.params.T).Bits(),
		OpsSinceFresh: ct.OpsSinceFresh + 1,
	}
	s.advanceState(out)
	return out, nil
}

// Multiply computes the degree-2 triple (d0, d1, d2) and immediately
// relinearizes it back to a degree-1 ciphertext using evk, per the spec.
func (s *Scheme) Multiply(a, b *rlwe.Ciphertext, evk *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := checkFingerprint(a, b); err != nil {
		return nil, err
	}
	if evk.Fingerprint != a.Fingerprint {
		return nil, herrors.New(herrors.KeyMismatch, "fhe: evaluation key fingerprint does not match ciphertexts")
	}
	if err := requireReady(a); err != nil {
		return nil, err
	}
	if err := requireReady(b); err != nil {
		return nil, err
	}
	if a.Degree() != 1 || b.Degree() != 1 {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: multiply requires degree-1 operands, relinearize first")
	}
	basis := s.params.QBasis

	d0, err := basis.MultiplyCRT(a.C0, b.C0)
	if err != nil {
		return nil, err
	}
	a0b1, err := basis.MultiplyCRT(a.C0, b.C1)
	if err != nil {
		return nil, err
	}
	a1b0, err := basis.MultiplyCRT(a.C1, b.C0)
	if err != nil {
		return nil, err
	}
	d1, err := basis.AddCRT(a0b1, a1b0)
	if err != nil {
		return nil, err
	}
	d2, err := basis.MultiplyCRT(a.C1, b.C1)
	if err != nil {
		return nil, err
	}

	triple := &rlwe.Ciphertext{
		C0:            d0,
		C1:            d1,
		C2:            d2,
		Fingerprint:   a.Fingerprint,
		Level:         maxInt(a.Level, b.Level) + 1,
		Noise:         noise.AfterMultiply(noise.FromBits(a.Noise), noise.FromBits(b.Noise), s.params.N, s.params.T).Bits(),
		OpsSinceFresh: maxInt(a.OpsSinceFresh, b.OpsSinceFresh) + 1,
	}

	out, err := s.Relinearize(triple, evk)
	if err != nil {
		return nil, err
	}
	s.advanceState(out)
	return out, nil
}

// Relinearize collapses a degree-2 ciphertext back to degree 1 using evk,
// key-switching d2 (the s^2 component) back onto s via package keyswitch.
// The returned ciphertext's State is left at its zero value; Multiply (the
// only internal caller) overwrites it via advanceState immediately after.
func (s *Scheme) Relinearize(ct *rlwe.Ciphertext, evk *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if ct.Degree() != 2 {
		return ct.CopyNew(), nil
	}
	basis := s.params.QBasis
	ksk := &keyswitch.Key{Value: evk.Value, Base: s.params.DecompositionBase}

	c0Delta, c1Delta, err := keyswitch.Apply(basis, ct.C2, ksk)
	if err != nil {
		return nil, err
	}
	c0, err := basis.AddCRT(ct.C0, c0Delta)
	if err != nil {
		return nil, err
	}
	c1, err := basis.AddCRT(ct.C1, c1Delta)
	if err != nil {
		return nil, err
	}

	return &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1,
		Fingerprint:   ct.Fingerprint,
		Level:         ct.Level,
		Noise:         noise.AfterKeySwitch(noise.FromBits(ct.Noise), s.params.DecompositionLength(), s.params.Sigma).Bits(),
		OpsSinceFresh: ct.OpsSinceFresh,
	}, nil
}

// GenRotationKey builds the key-switching key mapping the Galois-rotated
// secret back to sk, for rotation by the given number of slot steps.
func (s *Scheme) GenRotationKey(sk *rlwe.SecretKey, steps int, prng arith.PRNG) (*rlwe.RotationKey, error) {
	basis := s.params.QBasis
	gal := ring.GaloisElementForRotation(steps, s.params.N)

	sRotated, err := automorphismCRT(basis, sk.Value, gal)
	if err != nil {
		return nil, err
	}

	ell := s.params.DecompositionLength()
	ksk, err := keyswitch.Generate(basis, sRotated, sk.Value, s.params.Sigma, s.params.DecompositionBase, ell, prng)
	if err != nil {
		return nil, err
	}

	return &rlwe.RotationKey{Steps: steps, Value: ksk.Value, Fingerprint: sk.Fingerprint}, nil
}

// Rotate applies the Galois automorphism to both halves of ct and
// key-switches the result back onto the original key using rk.
func (s *Scheme) Rotate(ct *rlwe.Ciphertext, rk *rlwe.RotationKey) (*rlwe.Ciphertext, error) {
	if rk.Fingerprint != ct.Fingerprint {
		return nil, herrors.New(herrors.KeyMismatch, "fhe: rotation key fingerprint does not match ciphertext")
	}
	if err := requireReady(ct); err != nil {
		return nil, err
	}
	if ct.Degree() != 1 {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: rotate requires a degree-1 ciphertext, relinearize first")
	}
	basis := s.params.QBasis
	gal := ring.GaloisElementForRotation(rk.Steps, s.params.N)

	c0Rot, err := automorphismCRT(basis, ct.C0, gal)
	if err != nil {
		return nil, err
	}
	c1Rot, err := automorphismCRT(basis, ct.C1, gal)
	if err != nil {
		return nil, err
	}

	// (c0Rot, c1Rot) decrypts under the rotated secret s' = Automorphism(s);
	// rk switches it back to s entirely, so the switched c1 is c1Delta on
	// its own rather than added onto c1Rot (unlike relinearization, where
	// only the squared-secret term needs switching and the rest of the
	// ciphertext is already valid under s).
	ksk := &keyswitch.Key{Value: rk.Value, Base: s.params.DecompositionBase}
	c0Delta, c1Delta, err := keyswitch.Apply(basis, c1Rot, ksk)
	if err != nil {
		return nil, err
	}
	c0, err := basis.AddCRT(c0Rot, c0Delta)
	if err != nil {
		return nil, err
	}

	out := &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1Delta,
		Fingerprint:   ct.Fingerprint,
		Level:         ct.Level,
		Noise:         noise.AfterKeySwitch(noise.FromBits(ct.Noise), s.params.DecompositionLength(), s.params.Sigma).Bits(),
		OpsSinceFresh: ct.OpsSinceFresh + 1,
	}
	s.advanceState(out)
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
