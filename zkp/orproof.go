package zkp

import (
	"math/big"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
)

// ORProof proves knowledge of the discrete log (base h) of exactly one of
// two targets, without revealing which. It is the building block BitProof
// uses to show a Pedersen commitment opens to 0 or 1.
type ORProof struct {
	T0, T1 *big.Int // per-branch commitments
	C0, C1 *big.Int // per-branch challenges, summing to the Fiat-Shamir challenge
	S0, S1 *big.Int // per-branch responses
}

// ProveOR proves knowledge of w such that h^w = target0 (branch 0) or
// h^w = target1 (branch 1). realBranch selects which target the caller
// actually knows the witness for; the other branch is simulated.
func (grp *Group) ProveOR(target0, target1, w *big.Int, realBranch int, prng arith.PRNG) (*ORProof, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	if realBranch != 0 && realBranch != 1 {
		return nil, herrors.New(herrors.InvalidParameters, "zkp: realBranch must be 0 or 1")
	}

	// Simulate the branch the prover does not know a witness for: pick its
	// challenge and response at random, then derive the commitment that
	// makes the verification equation hold.
	simBranch := 1 - realBranch
	simC, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, err
	}
	simS, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, err
	}
	simTarget := target1
	if simBranch == 0 {
		simTarget = target0
	}
	simT := simulatedCommitment(grp, simTarget, simC, simS)

	// Real branch: standard Schnorr commitment with fresh randomness.
	r, err := arith.UniformBigInt(prng, grp.Q)
	if err != nil {
		return nil, err
	}
	realT := grp.modExp(grp.H, r)

	var t0, t1 *big.Int
	if realBranch == 0 {
		t0, t1 = realT, simT
	} else {
		t0, t1 = simT, realT
	}

	cTotal := grp.challenge(target0.Bytes(), target1.Bytes(), t0.Bytes(), t1.Bytes())
	realC := new(big.Int).Sub(cTotal, simC)
	realC.Mod(realC, grp.Q)

	realS := new(big.Int).Mul(w, realC)
	realS.Add(realS, r)
	realS.Mod(realS, grp.Q)

	var c0, c1, s0, s1 *big.Int
	if realBranch == 0 {
		c0, s0 = realC, realS
		c1, s1 = simC, simS
	} else {
		c1, s1 = realC, realS
		c0, s0 = simC, simS
	}

	return &ORProof{T0: t0, T1: t1, C0: c0, C1: c1, S0: s0, S1: s1}, nil
}

// simulatedCommitment computes the commitment t = h^s * target^-c mod p
// that makes (t, c, s) a valid-looking transcript for target without
// knowing its discrete log, the standard OR-proof simulation trick.
func simulatedCommitment(grp *Group, target, c, s *big.Int) *big.Int {
	hs := grp.modExp(grp.H, s)
	targetNegC := grp.modExp(target, new(big.Int).Sub(grp.Q, c))
	t := new(big.Int).Mul(hs, targetNegC)
	t.Mod(t, grp.P)
	return t
}

// VerifyOR checks proof against (target0, target1), recomputing the
// combined Fiat-Shamir challenge and checking both branch equations plus
// that the branch challenges sum to it.
func (grp *Group) VerifyOR(target0, target1 *big.Int, proof *ORProof) bool {
	cTotal := grp.challenge(target0.Bytes(), target1.Bytes(), proof.T0.Bytes(), proof.T1.Bytes())
	sum := new(big.Int).Add(proof.C0, proof.C1)
	sum.Mod(sum, grp.Q)
	if sum.Cmp(cTotal) != 0 {
		return false
	}

	lhs0 := grp.modExp(grp.H, proof.S0)
	rhs0 := new(big.Int).Mul(proof.T0, grp.modExp(target0, proof.C0))
	rhs0.Mod(rhs0, grp.P)
	if lhs0.Cmp(rhs0) != 0 {
		return false
	}

	lhs1 := grp.modExp(grp.H, proof.S1)
	rhs1 := new(big.Int).Mul(proof.T1, grp.modExp(target1, proof.C1))
	rhs1.Mod(rhs1, grp.P)
	return lhs1.Cmp(rhs1) == 0
}
