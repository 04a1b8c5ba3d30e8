// Package arith implements the modular big-integer primitives the rest of
// HEC is built on: modular exponentiation and inversion, Miller-Rabin
// primality, safe-prime generation, subgroup generator search, and the
// uniform/Gaussian samplers used by every key-generation routine in the
// repository.
package arith

import (
	"crypto/rand"
	"math/big"

	"github.com/privacyfl/hec/herrors"
)

// MillerRabinRounds is the minimum number of Miller-Rabin rounds used by
// IsProbablePrime, matching the "≥ 40 rounds" floor from the spec.
const MillerRabinRounds = 40

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// ModPow computes base^exp mod m. It fails only when m is zero, matching the
// documented contract; a zero or negative exponent is otherwise well defined.
func ModPow(base, exp, m *big.Int) (*big.Int, error) {
	if m.Sign() == 0 {
		return nil, herrors.New(herrors.InvalidParameters, "modpow: modulus is zero")
	}
	return new(big.Int).Exp(base, exp, m), nil
}

// ModInverse computes the multiplicative inverse of a modulo m via the
// extended Euclidean algorithm. It fails with NoInverse (surfaced as
// InvalidParameters) when gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, herrors.New(herrors.InvalidParameters, "modinverse: no inverse exists (gcd != 1)")
	}
	return inv, nil
}

// IsProbablePrime runs at least MillerRabinRounds rounds of the Miller-Rabin
// test. math/big.Int.ProbablyPrime already implements Miller-Rabin with a
// Lucas follow-up; we pass MillerRabinRounds directly as the round count to
// make the security margin explicit at call sites rather than relying on the
// standard library default.
func IsProbablePrime(p *big.Int) bool {
	if p.Sign() <= 0 {
		return false
	}
	return p.ProbablyPrime(MillerRabinRounds)
}

// GenerateSafePrime returns a prime p of the requested bit length such that
// q = (p-1)/2 is also prime ("safe prime"), along with q itself. Generation
// retries with fresh candidates for q until both primality checks pass.
func GenerateSafePrime(bits int) (p, q *big.Int, err error) {
	if bits < 3 {
		return nil, nil, herrors.New(herrors.InvalidParameters, "safe prime: bit length too small")
	}
	for {
		q, err = rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, nil, herrors.Wrap(herrors.Internal, "safe prime: sampling q", err)
		}
		p = new(big.Int).Lsh(q, 1)
		p.Add(p, one)
		if IsProbablePrime(p) {
			return p, q, nil
		}
	}
}

// FindGenerator searches for a generator g of the order-q subgroup of Z_p*,
// where p = 2q+1. It draws random candidates h in [2, p-2] and outputs
// g = h^((p-1)/q) mod p, retrying whenever g == 1.
func FindGenerator(p, q *big.Int) (*big.Int, error) {
	pMinus3 := new(big.Int).Sub(p, big.NewInt(3))
	exp := new(big.Int).Div(new(big.Int).Sub(p, one), q)
	for {
		h, err := rand.Int(rand.Reader, pMinus3)
		if err != nil {
			return nil, herrors.Wrap(herrors.Internal, "generator search: sampling h", err)
		}
		h.Add(h, two) // shift into [2, p-2]

		g := new(big.Int).Exp(h, exp, p)
		if g.Cmp(one) != 0 {
			return g, nil
		}
	}
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, a, b)
}
