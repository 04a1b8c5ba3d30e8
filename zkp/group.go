// Package zkp implements Schnorr proofs of discrete-log knowledge,
// Chaum-Pedersen proofs of equal discrete logs, Pedersen commitments,
// OR-proofs, bit-decomposed range proofs, and their composition with FHE
// ciphertexts, all over the same safe-prime multiplicative group package
// elgamal uses (Z_p*, order-q subgroup, generator g), via Fiat-Shamir
// challenges hashed with github.com/zeebo/blake3.
package zkp

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
)

// Group is the order-q subgroup of Z_p* proofs in this package operate
// over, with a second generator H (nothing-up-my-sleeve, derived from G) for
// Pedersen commitments.
type Group struct {
	P *big.Int
	Q *big.Int
	G *big.Int
	H *big.Int
}

// NewGroup builds a Group from a safe prime p = 2q+1 and generator g,
// deriving h deterministically from g so that nobody (including the
// generator of the parameters) knows log_g(h).
func NewGroup(p, q, g *big.Int) (*Group, error) {
	h, err := deriveH(p, q, g)
	if err != nil {
		return nil, err
	}
	return &Group{P: p, Q: q, G: g, H: h}, nil
}

// GenerateGroup samples a fresh safe-prime group of the requested bit
// length, the same construction package elgamal uses for its own
// parameters.
func GenerateGroup(bits int) (*Group, error) {
	p, q, err := arith.GenerateSafePrime(bits)
	if err != nil {
		return nil, err
	}
	g, err := arith.FindGenerator(p, q)
	if err != nil {
		return nil, err
	}
	return NewGroup(p, q, g)
}

// deriveH hashes g's canonical encoding repeatedly until the result, raised
// to (p-1)/q, lands away from the identity, giving a second generator with
// no known discrete-log relationship to g.
func deriveH(p, q, g *big.Int) (*big.Int, error) {
	exp := new(big.Int).Div(new(big.Int).Sub(p, one), q)
	counter := byte(0)
	for {
		digest := hashToBig(p.BitLen(), []byte("hec/zkp/second-generator"), g.Bytes(), []byte{counter})
		digest.Mod(digest, p)
		h := new(big.Int).Exp(digest, exp, p)
		if h.Cmp(one) != 0 {
			return h, nil
		}
		counter++
		if counter == 0 {
			return nil, herrors.New(herrors.Internal, "zkp: exhausted candidates deriving second generator")
		}
	}
}

var one = big.NewInt(1)

// modExp is a small convenience wrapper around arith.ModPow that discards
// its zero-modulus error, which cannot occur for a well-formed Group (P is
// always a safe prime).
func (grp *Group) modExp(base, exp *big.Int) *big.Int {
	v, _ := arith.ModPow(base, exp, grp.P)
	return v
}
