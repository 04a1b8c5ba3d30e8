package zkp

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
)

// SchnorrProof attests knowledge of x such that y = g^x mod p without
// revealing x.
type SchnorrProof struct {
	Commitment *big.Int // t = g^r mod p
	Challenge  *big.Int // c = H(g, y, t) mod q
	Response   *big.Int // s = r + x*c mod q
}

// ProveSchnorr generates a Schnorr proof of knowledge of x for y = g^x mod p.
func (grp *Group) ProveSchnorr(x *big.Int, prng arith.PRNG) (*SchnorrProof, *big.Int, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	y := grp.modExp(grp.G, x)

	r, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, nil, err
	}
	t := grp.modExp(grp.G, r)

	c := grp.challenge(grp.G.Bytes(), y.Bytes(), t.Bytes())

	s := new(big.Int).Mul(x, c)
	s.Add(s, r)
	s.Mod(s, grp.Q)

	return &SchnorrProof{Commitment: t, Challenge: c, Response: s}, y, nil
}

// VerifySchnorr checks proof against the public value y = g^x mod p,
// recomputing the challenge from (g, y, t) rather than trusting the
// challenge embedded in proof, so a tampered challenge is also rejected.
func (grp *Group) VerifySchnorr(y *big.Int, proof *SchnorrProof) bool {
	want := grp.challenge(grp.G.Bytes(), y.Bytes(), proof.Commitment.Bytes())
	if want.Cmp(proof.Challenge) != 0 {
		return false
	}

	lhs := grp.modExp(grp.G, proof.Response)
	yc := grp.modExp(y, proof.Challenge)
	rhs := new(big.Int).Mul(proof.Commitment, yc)
	rhs.Mod(rhs, grp.P)

	return lhs.Cmp(rhs) == 0
}

// ChaumPedersenProof attests log_g(y1) = log_h(y2) for a shared witness x,
// without revealing x.
type ChaumPedersenProof struct {
	T1        *big.Int
	T2        *big.Int
	Challenge *big.Int
	Response  *big.Int
}

// ProveChaumPedersen generates a proof that y1 = g^x and y2 = base2^x share
// the same exponent x.
func (grp *Group) ProveChaumPedersen(x *big.Int, base2 *big.Int, prng arith.PRNG) (*ChaumPedersenProof, *big.Int, *big.Int, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	y1 := grp.modExp(grp.G, x)
	y2 := grp.modExp(base2, x)

	r, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, nil, nil, err
	}
	t1 := grp.modExp(grp.G, r)
	t2 := grp.modExp(base2, r)

	c := grp.challenge(grp.G.Bytes(), base2.Bytes(), y1.Bytes(), y2.Bytes(), t1.Bytes(), t2.Bytes())

	s := new(big.Int).Mul(x, c)
	s.Add(s, r)
	s.Mod(s, grp.Q)

	return &ChaumPedersenProof{T1: t1, T2: t2, Challenge: c, Response: s}, y1, y2, nil
}

// VerifyChaumPedersen checks proof against (y1, y2, base2).
func (grp *Group) VerifyChaumPedersen(y1, y2, base2 *big.Int, proof *ChaumPedersenProof) bool {
	want := grp.challenge(grp.G.Bytes(), base2.Bytes(), y1.Bytes(), y2.Bytes(), proof.T1.Bytes(), proof.T2.Bytes())
	if want.Cmp(proof.Challenge) != 0 {
		return false
	}

	lhs1 := grp.modExp(grp.G, proof.Response)
	rhs1 := new(big.Int).Mul(proof.T1, grp.modExp(y1, proof.Challenge))
	rhs1.Mod(rhs1, grp.P)
	if lhs1.Cmp(rhs1) != 0 {
		return false
	}

	lhs2 := grp.modExp(base2, proof.Response)
	rhs2 := new(big.Int).Mul(proof.T2, grp.modExp(y2, proof.Challenge))
	rhs2.Mod(rhs2, grp.P)
	return lhs2.Cmp(rhs2) == 0
}
