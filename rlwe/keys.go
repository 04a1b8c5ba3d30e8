package rlwe

import (
	"time"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/keyswitch"
	"github.com/zeebo/blake3"
)

// Fingerprint identifies the key material a ciphertext was encrypted under.
// Binary ciphertext operations (Add, Multiply, Subtract) require both
// operands to carry the same Fingerprint.
type Fingerprint [16]byte

// SecretKey is a small ring element s with coefficients in {-1, 0, 1}.
type SecretKey struct {
	Value       *crt.Polynomial
	Fingerprint Fingerprint
}

// PublicKey is the pair (b, a) with b = -(a*s + e) mod Q.
type PublicKey struct {
	B, A        *crt.Polynomial
	Fingerprint Fingerprint
}

// EvaluationKey is a vector of base-w encryptions of s^2 under the same
// secret s, used by relinearization to collapse a degree-2 ciphertext back
// to degree 1.
type EvaluationKey struct {
	// Value[i] = (c0_i, c1_i) encrypts w^i * s^2.
	Value       [][2]*crt.Polynomial
	Fingerprint Fingerprint
}

// RotationKey is a key-switching-key mapping the Galois-rotated secret back
// to the original secret, one per requested rotation step.
type RotationKey struct {
	Steps       int
	Value       [][2]*crt.Polynomial
	Fingerprint Fingerprint
}

// BootstrapKey carries the material used to homomorphically evaluate the
// decryption circuit during bootstrapping: an encryption of each bit of the
// secret key under a small auxiliary modulus, plus a key-switching key back
// to the original secret.
type BootstrapKey struct {
	EncryptedSecretBits []*crt.Polynomial
	SwitchBack          [][2]*crt.Polynomial
	Fingerprint         Fingerprint
}

// KeySet bundles every key a scheme instance may need. KeyGen populates
// Secret, Public and Evaluation; Rotations and Bootstrap are populated on
// demand by the keyswitch and bootstrap packages, which depend on this
// package rather than the reverse (avoiding an import cycle), since
// generating them is itself a key-switching-key construction.
type KeySet struct {
	Secret     *SecretKey
	Public     *PublicKey
	Evaluation *EvaluationKey
	Rotations  map[int]*RotationKey
	Bootstrap  *BootstrapKey
	CreatedAt  time.Time
}

// NewFingerprint derives a Fingerprint deterministically from the secret
// key's serialized coefficients, so any two keys generated from the same
// secret (e.g. reloaded from the KeyStore) compare equal.
func NewFingerprint(secretBytes []byte) Fingerprint {
	h := blake3.New()
	h.Write(secretBytes)
	sum := h.Sum(nil)
	var fp Fingerprint
	copy(fp[:], sum[:16])
	return fp
}

// KeyGen produces a fresh BGV-style key set: a secret key with ternary
// coefficients, a public key (b, a) with a uniform and b = -(a*s+e), an
// evaluation key encrypting s^2 under a base-w decomposition, and (lazily,
// on demand via GenRotationKey/GenBootstrapKey) rotation and bootstrap
// keys.
func KeyGen(params Parameters, prng arith.PRNG) (*KeySet, error) {
	basis := params.QBasis

	sCRT, err := SampleTernaryCRT(basis, prng)
	if err != nil {
		return nil, err
	}

	aCRT, err := SampleUniformCRT(basis, prng)
	if err != nil {
		return nil, err
	}

	eCRT, err := SampleGaussianCRT(basis, prng, params.Sigma)
	if err != nil {
		return nil, err
	}

	as, err := basis.MultiplyCRT(aCRT, sCRT)
	if err != nil {
		return nil, err
	}
	ase, err := basis.AddCRT(as, eCRT)
	if err != nil {
		return nil, err
	}
	b := NegateCRT(basis, ase)

	secretBytes, err := MarshalCRT(sCRT)
	if err != nil {
		return nil, err
	}
	fp := NewFingerprint(secretBytes)

	sk := &SecretKey{Value: sCRT, Fingerprint: fp}
	pk := &PublicKey{B: b, A: aCRT, Fingerprint: fp}

	evk, err := genEvaluationKey(params, sk, prng)
	if err != nil {
		return nil, err
	}

	return &KeySet{
		Secret:     sk,
		Public:     pk,
		Evaluation: evk,
		Rotations:  make(map[int]*RotationKey),
		CreatedAt:  time.Now(),
	}, nil
}

// genEvaluationKey builds the relinearization key by delegating to
// package keyswitch with s_old = s^2 and s_new = s: an evaluation key is
// exactly a key-switching key for the squared secret, which is what lets
// relinearization reuse keyswitch.Apply unchanged.
func genEvaluationKey(params Parameters, sk *SecretKey, prng arith.PRNG) (*EvaluationKey, error) {
	basis := params.QBasis
	ell := params.DecompositionLength()

	s2, err := basis.MultiplyCRT(sk.Value, sk.Value)
	if err != nil {
		return nil, err
	}

	ksk, err := keyswitch.Generate(basis, s2, sk.Value, params.Sigma, params.DecompositionBase, ell, prng)
	if err != nil {
		return nil, err
	}

	return &EvaluationKey{Value: ksk.Value, Fingerprint: sk.Fingerprint}, nil
}
