package zkp

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
)

// BitProof shows a Pedersen commitment opens to 0 or 1, via an OR-proof that
// the commitment is either h^r (bit 0) or (C/g)=h^r (bit 1).
type BitProof struct {
	Commitment *Commitment
	Proof      *ORProof
}

// ProveBit commits to bit (which must be 0 or 1) with blinding r and proves
// the opening is one of the two valid bit values.
func (grp *Group) ProveBit(bit int, r *big.Int, prng arith.PRNG) (*BitProof, error) {
	if bit != 0 && bit != 1 {
		return nil, herrors.New(herrors.InvalidParameters, "zkp: bit must be 0 or 1")
	}
	c := grp.Commit(big.NewInt(int64(bit)), r)

	target0 := c.Value
	gInv, err := arith.ModInverse(grp.G, grp.P)
	if err != nil {
		return nil, err
	}
	target1 := new(big.Int).Mul(c.Value, gInv)
	target1.Mod(target1, grp.P)

	proof, err := grp.ProveOR(target0, target1, r, bit, prng)
	if err != nil {
		return nil, err
	}
	return &BitProof{Commitment: c, Proof: proof}, nil
}

// VerifyBit checks a BitProof.
func (grp *Group) VerifyBit(bp *BitProof) bool {
	gInv, err := arith.ModInverse(grp.G, grp.P)
	if err != nil {
		return false
	}
	target0 := bp.Commitment.Value
	target1 := new(big.Int).Mul(bp.Commitment.Value, gInv)
	target1.Mod(target1, grp.P)
	return grp.VerifyOR(target0, target1, bp.Proof)
}

// RangeProof attests that a committed value lies in [0, 2^bits) by
// committing to each bit separately, proving each is a valid bit, and
// showing the weighted product of the bit commitments recombines to the
// top-level commitment.
type RangeProof struct {
	Commitment *Commitment // commitment to the full value
	Bits       []*BitProof // one per bit, least significant first
	RCheck     *big.Int    // blinding factor consistency: r - sum(2^i * r_i)
}

// ProveRange proves 0 <= value < 2^bits, given the value's own commitment
// randomness r.
func (grp *Group) ProveRange(value *big.Int, r *big.Int, bits int, prng arith.PRNG) (*RangeProof, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	if value.Sign() < 0 || value.BitLen() > bits {
		return nil, herrors.New(herrors.InvalidParameters, "zkp: value out of range for requested bit width")
	}

	commitment := grp.Commit(value, r)

	bitProofs := make([]*BitProof, bits)
	rSum := new(big.Int)
	for i := 0; i < bits; i++ {
		bitVal := int(value.Bit(i))
		ri, err := arith.UniformBigInt(prng, grp.Q)
		if err != nil {
			return nil, err
		}
		bp, err := grp.ProveBit(bitVal, ri, prng)
		if err != nil {
			return nil, err
		}
		bitProofs[i] = bp

		weighted := new(big.Int).Lsh(ri, uint(i))
		rSum.Add(rSum, weighted)
	}
	rSum.Mod(rSum, grp.Q)

	rCheck := new(big.Int).Sub(r, rSum)
	rCheck.Mod(rCheck, grp.Q)

	return &RangeProof{Commitment: commitment, Bits: bitProofs, RCheck: rCheck}, nil
}

// VerifyRange checks that every bit proof is individually valid and that the
// weighted product of the bit commitments, adjusted by RCheck, reconstructs
// the top-level commitment, i.e. that the committed value really is the
// binary number the bit commitments encode.
func (grp *Group) VerifyRange(proof *RangeProof) bool {
	for _, bp := range proof.Bits {
		if !grp.VerifyBit(bp) {
			return false
		}
	}

	product := big.NewInt(1)
	for i, bp := range proof.Bits {
		weight := new(big.Int).Lsh(big.NewInt(1), uint(i))
		weighted := grp.modExp(bp.Commitment.Value, weight)
		product.Mul(product, weighted)
		product.Mod(product, grp.P)
	}
	adjust := grp.modExp(grp.H, proof.RCheck)
	product.Mul(product, adjust)
	product.Mod(product, grp.P)

	return product.Cmp(proof.Commitment.Value) == 0
}
