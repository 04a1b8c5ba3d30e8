// Package secureagg implements federated-learning secure aggregation: a
// Shamir-shared masking key per client, pseudo-random per-layer masks
// derived via HKDF, blake3 commitments over share material, and dropout
// recovery via Lagrange interpolation at x=0.
//
// Per the spec's open question on its source material's byte-wise
// mod-256 Shamir arithmetic ("cryptographically weak and probably
// unintended"), shares here live in GF(p) for a fixed 256-bit prime, using
// github.com/holiman/uint256 for the field arithmetic. Such shares are not
// compatible with a byte-wise scheme; shareWireVersion names this share
// format, but this package has no share serializer or decoder that writes
// or checks it.
package secureagg

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
)

// fieldPrime is a fixed 256-bit prime used as the Shamir share field
// modulus: 2^256 - 189, the largest prime below 2^256 with a simple
// closed-form complement, chosen so both the secret and every coefficient
// fit in one uint256 limb with no modulus-specific precomputation needed.
var fieldPrime = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff43")

const shareWireVersion byte = 2

// Share is one Shamir share (x, y) in GF(fieldPrime), x in [1, 255].
type Share struct {
	X byte
	Y *uint256.Int
}

// polynomial holds degree t-1 coefficients with the secret as the constant
// term, matching the spec's "polynomial of degree t-1 with the secret as
// constant term".
type polynomial struct {
	coeffs []*uint256.Int // coeffs[0] is the secret
}

func newPolynomial(secret *uint256.Int, threshold int, prng arith.PRNG) (*polynomial, error) {
	coeffs := make([]*uint256.Int, threshold)
	coeffs[0] = secret
	for i := 1; i < threshold; i++ {
		c, err := randomFieldElement(prng)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}
	return &polynomial{coeffs: coeffs}, nil
}

func randomFieldElement(prng arith.PRNG) (*uint256.Int, error) {
	bound := fieldPrime.ToBig()
	v, err := arith.UniformBigInt(prng, bound)
	if err != nil {
		return nil, err
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, herrors.New(herrors.Internal, "secureagg: field element sampling overflowed uint256")
	}
	return out, nil
}

// eval evaluates the polynomial at x (nonzero, Shamir share identifiers
// never evaluate at 0 since that would leak the secret) using Horner's
// method over GF(fieldPrime).
func (p *polynomial) eval(x byte) *uint256.Int {
	xField := uint256.NewInt(uint64(x))
	acc := new(uint256.Int).Set(p.coeffs[len(p.coeffs)-1])
	for i := len(p.coeffs) - 2; i >= 0; i-- {
		acc = new(uint256.Int).MulMod(acc, xField, fieldPrime)
		acc = new(uint256.Int).AddMod(acc, p.coeffs[i], fieldPrime)
	}
	return acc
}

// splitSecret generates n shares of secret with reconstruction threshold
// t, labeled with x = 1..n.
func splitSecret(secret *uint256.Int, n, t int, prng arith.PRNG) ([]Share, error) {
	if t < 1 || t > n || n > 255 {
		return nil, herrors.New(herrors.InvalidParameters, "secureagg: invalid (t, n) for Shamir split")
	}
	poly, err := newPolynomial(secret, t, prng)
	if err != nil {
		return nil, err
	}
	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		x := byte(i + 1)
		shares[i] = Share{X: x, Y: poly.eval(x)}
	}
	return shares, nil
}

// reconstruct recovers the secret (the polynomial's value at x=0) from at
// least t shares via Lagrange interpolation over GF(fieldPrime).
func reconstruct(shares []Share, t int) (*uint256.Int, error) {
	if len(shares) < t {
		return nil, herrors.New(herrors.InsufficientShares, "secureagg: fewer than threshold shares available")
	}
	used := shares[:t]

	acc := new(uint256.Int)
	for i, si := range used {
		num := uint256.NewInt(1)
		den := uint256.NewInt(1)
		xi := uint256.NewInt(uint64(si.X))
		for j, sj := range used {
			if i == j {
				continue
			}
			xj := uint256.NewInt(uint64(sj.X))
			// Lagrange basis at 0: prod over j!=i of (0 - xj) / (xi - xj).
			negXj := new(uint256.Int).Sub(fieldPrime, xj)
			if xj.IsZero() {
				negXj = uint256.NewInt(0)
			}
			num = new(uint256.Int).MulMod(num, negXj, fieldPrime)

			diff := fieldSub(xi, xj)
			den = new(uint256.Int).MulMod(den, diff, fieldPrime)
		}
		denInv, err := fieldInverse(den)
		if err != nil {
			return nil, err
		}
		term := new(uint256.Int).MulMod(num, denInv, fieldPrime)
		term = new(uint256.Int).MulMod(term, si.Y, fieldPrime)
		acc = new(uint256.Int).AddMod(acc, term, fieldPrime)
	}
	return acc, nil
}

func fieldSub(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return new(uint256.Int).Sub(a, b)
	}
	diff := new(uint256.Int).Sub(b, a)
	return new(uint256.Int).Sub(fieldPrime, diff)
}

// fieldInverse computes a^-1 mod fieldPrime via Fermat's little theorem
// (fieldPrime is prime, so a^(p-2) = a^-1).
func fieldInverse(a *uint256.Int) (*uint256.Int, error) {
	if a.IsZero() {
		return nil, herrors.New(herrors.InvalidParameters, "secureagg: zero has no inverse in GF(p)")
	}
	exp := new(uint256.Int).Sub(fieldPrime, uint256.NewInt(2))
	// uint256's Exp reduces modulo 2^256, so exponentiate in math/big.
	inv, _ := uint256.FromBig(new(big.Int).Exp(a.ToBig(), exp.ToBig(), fieldPrime.ToBig()))
	return inv, nil
}
