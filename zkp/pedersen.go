package zkp

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
)

// Commitment is a Pedersen commitment C = g^m * h^r mod p.
type Commitment struct {
	Value *big.Int
}

// Commit computes C = g^m * h^r mod p for message m and blinding factor r.
func (grp *Group) Commit(m, r *big.Int) *Commitment {
	gm := grp.modExp(grp.G, m)
	hr := grp.modExp(grp.H, r)
	c := new(big.Int).Mul(gm, hr)
	c.Mod(c, grp.P)
	return &Commitment{Value: c}
}

// Open checks that commitment was honestly formed from (m, r).
func (grp *Group) Open(commitment *Commitment, m, r *big.Int) bool {
	return grp.Commit(m, r).Value.Cmp(commitment.Value) == 0
}

// Combine computes the homomorphic sum of two commitments:
// commit(m1,r1) * commit(m2,r2) = commit(m1+m2, r1+r2).
func (grp *Group) Combine(a, b *Commitment) *Commitment {
	c := new(big.Int).Mul(a.Value, b.Value)
	c.Mod(c, grp.P)
	return &Commitment{Value: c}
}

// CommitOpening samples a fresh random blinding factor and returns the
// resulting commitment alongside it, the common case where the caller does
// not already have a specific r in mind.
func (grp *Group) CommitOpening(m *big.Int, prng arith.PRNG) (*Commitment, *big.Int, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	r, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, nil, err
	}
	return grp.Commit(m, r), r, nil
}
