// Package elgamal implements the multiplicative ElGamal scheme over Z_p*:
// safe-prime parameter generation, key-gen, per-slot encrypt/decrypt and
// ciphertext-ciphertext multiply. Unlike package fhe, this scheme only
// ever supports multiplicative homomorphism — Add, Relinearize, Rotate and
// Rescale are all structurally unsupported and fail with UnsupportedOp,
// per the spec.
package elgamal

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/zeebo/blake3"
)

// Parameters is a safe-prime group (p, q, g) with p = 2q+1 and g a
// generator of the order-q subgroup.
type Parameters struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

// GenerateParameters produces a fresh safe-prime group of the requested
// bit length.
func GenerateParameters(bits int) (Parameters, error) {
	p, q, err := arith.GenerateSafePrime(bits)
	if err != nil {
		return Parameters{}, err
	}
	g, err := arith.FindGenerator(p, q)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{P: p, Q: q, G: g}, nil
}

// SecretKey is x in [1, p-2].
type SecretKey struct {
	X           *big.Int
	Fingerprint [16]byte
}

// PublicKey is h = g^x mod p.
type PublicKey struct {
	H           *big.Int
	Fingerprint [16]byte
}

// KeyGen draws a fresh secret x in [1, p-2] and derives h = g^x mod p.
func KeyGen(params Parameters, prng arith.PRNG) (*SecretKey, *PublicKey, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	pMinus2 := new(big.Int).Sub(params.P, big.NewInt(2))
	x, err := arith.UniformBigInt(prng, pMinus2)
	if err != nil {
		return nil, nil, err
	}
	x.Add(x, big.NewInt(1)) // shift [0, p-3] to [1, p-2]

	h, err := arith.ModPow(params.G, x, params.P)
	if err != nil {
		return nil, nil, err
	}

	fp := fingerprint(params, h)
	sk := &SecretKey{X: x, Fingerprint: fp}
	pk := &PublicKey{H: h, Fingerprint: fp}
	return sk, pk, nil
}

func fingerprint(params Parameters, h *big.Int) [16]byte {
	hasher := blake3.New()
	hasher.Write(params.P.Bytes())
	hasher.Write(params.G.Bytes())
	hasher.Write(h.Bytes())
	sum := hasher.Sum(nil)
	var fp [16]byte
	copy(fp[:], sum[:16])
	return fp
}

// Ciphertext is a single ElGamal ciphertext slot (c1, c2).
type Ciphertext struct {
	C1, C2      *big.Int
	Fingerprint [16]byte
}

// Plaintext is a batch of slots, one ElGamal ciphertext per message.
type Plaintext []*big.Int

// Encrypt encrypts each message slot independently under a fresh random r,
// returning one Ciphertext per slot: c1 = g^r, c2 = m * h^r mod p.
func Encrypt(params Parameters, pk *PublicKey, messages Plaintext, prng arith.PRNG) ([]*Ciphertext, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	out := make([]*Ciphertext, len(messages))
	for i, m := range messages {
		if m.Sign() <= 0 || m.Cmp(params.P) >= 0 {
			return nil, herrors.New(herrors.InvalidParameters, "elgamal: message must be in [1, p)")
		}
		r, err := arith.UniformBigInt(prng, params.Q)
		if err != nil {
			return nil, err
		}
		c1, err := arith.ModPow(params.G, r, params.P)
		if err != nil {
			return nil, err
		}
		hr, err := arith.ModPow(pk.H, r, params.P)
		if err != nil {
			return nil, err
		}
		c2 := new(big.Int).Mul(m, hr)
		c2.Mod(c2, params.P)

		out[i] = &Ciphertext{C1: c1, C2: c2, Fingerprint: pk.Fingerprint}
	}
	return out, nil
}

// Decrypt recovers m = c2 * (c1^x)^-1 mod p for each slot.
func Decrypt(params Parameters, sk *SecretKey, cts []*Ciphertext) (Plaintext, error) {
	out := make(Plaintext, len(cts))
	for i, ct := range cts {
		if ct.Fingerprint != sk.Fingerprint {
			return nil, herrors.New(herrors.KeyMismatch, "elgamal: ciphertext and secret key fingerprints differ")
		}
		s, err := arith.ModPow(ct.C1, sk.X, params.P)
		if err != nil {
			return nil, err
		}
		sInv, err := arith.ModInverse(s, params.P)
		if err != nil {
			return nil, err
		}
		m := new(big.Int).Mul(ct.C2, sInv)
		m.Mod(m, params.P)
		out[i] = m
	}
	return out, nil
}

// Multiply computes the component-wise product of two same-length
// ciphertext batches mod p, yielding an encryption of the element-wise
// product of the underlying plaintexts (the scheme's one homomorphic
// operation).
func Multiply(params Parameters, a, b []*Ciphertext) ([]*Ciphertext, error) {
	if len(a) != len(b) {
		return nil, herrors.New(herrors.InvalidParameters, "elgamal: ciphertext batches must have equal length")
	}
	out := make([]*Ciphertext, len(a))
	for i := range a {
		if a[i].Fingerprint != b[i].Fingerprint {
			return nil, herrors.New(herrors.KeyMismatch, "elgamal: ciphertexts were encrypted under different keys")
		}
		c1 := new(big.Int).Mul(a[i].C1, b[i].C1)
		c1.Mod(c1, params.P)
		c2 := new(big.Int).Mul(a[i].C2, b[i].C2)
		c2.Mod(c2, params.P)
		out[i] = &Ciphertext{C1: c1, C2: c2, Fingerprint: a[i].Fingerprint}
	}
	return out, nil
}

// Add is structurally unsupported: ElGamal's group operation is
// multiplicative, so there is no ciphertext operation corresponding to
// plaintext addition.
func Add(a, b *Ciphertext) (*Ciphertext, error) {
	return nil, herrors.New(herrors.UnsupportedOp, "elgamal: addition is not supported by a multiplicative scheme")
}

// Relinearize is structurally unsupported: ElGamal ciphertexts never grow
// in degree, so there is nothing to relinearize.
func Relinearize(ct *Ciphertext) (*Ciphertext, error) {
	return nil, herrors.New(herrors.UnsupportedOp, "elgamal: relinearization does not apply to this scheme")
}

// Rotate is structurally unsupported: ElGamal has no batched-slot
// encoding and no Galois structure to rotate.
func Rotate(ct *Ciphertext, steps int) (*Ciphertext, error) {
	return nil, herrors.New(herrors.UnsupportedOp, "elgamal: rotation is not supported by this scheme")
}

// Rescale is structurally unsupported: ElGamal has no RNS modulus chain
// to switch down.
func Rescale(ct *Ciphertext) (*Ciphertext, error) {
	return nil, herrors.New(herrors.UnsupportedOp, "elgamal: rescaling does not apply to this scheme")
}

