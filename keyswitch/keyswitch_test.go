package keyswitch

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
)

func smallBasis(t *testing.T) *crt.Basis {
	t.Helper()
	basis, err := crt.NewBasis(1024, []uint64{576460752308273153})
	require.NoError(t, err)
	return basis
}

func TestGenerateRejectsSmallBase(t *testing.T) {
	basis := smallBasis(t)
	sOld, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)
	sNew, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = Generate(basis, sOld, sNew, 3.2, 1, 8, arith.DefaultPRNG)
	require.Error(t, err)
}

func TestGenerateProducesOneEntryPerDecompositionDigit(t *testing.T) {
	basis := smallBasis(t)
	sOld, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)
	sNew, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	const ell = 8
	key, err := Generate(basis, sOld, sNew, 3.2, 1<<8, ell, arith.DefaultPRNG)
	require.NoError(t, err)
	require.Len(t, key.Value, ell)
}

// balancedResidual returns a - b mod Q mapped into (-Q/2, Q/2], the signed
// magnitude a noise-budget check cares about.
func balancedResidual(basis *crt.Basis, a, b *big.Int) *big.Int {
	diff := new(big.Int).Sub(a, b)
	diff.Mod(diff, basis.Q)
	half := new(big.Int).Rsh(basis.Q, 1)
	if diff.Cmp(half) > 0 {
		diff.Sub(diff, basis.Q)
	}
	return diff
}

// TestApplyRecoversSwitchedSecretUpToNoise checks keyswitch's core
// algebraic identity: switching x = s_old itself from s_old to s_new
// should yield c0Delta + c1Delta*s_new == x*s_old, up to the small noise
// terms Generate's Gaussian sampling introduces.
func TestApplyRecoversSwitchedSecretUpToNoise(t *testing.T) {
	basis := smallBasis(t)
	sOld, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)
	sNew, err := sampleTernary(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	const ell = 8
	key, err := Generate(basis, sOld, sNew, 3.2, 1<<8, ell, arith.DefaultPRNG)
	require.NoError(t, err)

	c0Delta, c1Delta, err := Apply(basis, sOld, key)
	require.NoError(t, err)

	c1DeltaSNew, err := basis.MultiplyCRT(c1Delta, sNew)
	require.NoError(t, err)
	lhsPoly, err := basis.AddCRT(c0Delta, c1DeltaSNew)
	require.NoError(t, err)

	want, err := basis.MultiplyCRT(sOld, sOld)
	require.NoError(t, err)

	lhsCoeffs, err := basis.FromCRT(lhsPoly)
	require.NoError(t, err)
	wantCoeffs, err := basis.FromCRT(want)
	require.NoError(t, err)

	// noise bound: ell digits, each up to base-1 in magnitude, gaussian
	// terms bounded by ~6 sigma; comfortably under 2^40 while Q is ~2^60.
	bound := new(big.Int).Lsh(big.NewInt(1), 40)
	for i := range lhsCoeffs {
		residual := balancedResidual(basis, lhsCoeffs[i], wantCoeffs[i])
		require.LessOrEqual(t, residual.CmpAbs(bound), 0, "coefficient %d residual too large", i)
	}
}
