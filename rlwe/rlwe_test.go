package rlwe

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/arith"
)

func TestNewParametersRejectsNonPowerOfTwoDegree(t *testing.T) {
	_, err := NewParameters(1000, 65537, []uint64{576460752308273153}, 3.2, DefaultDecompositionBase, Security128)
	require.Error(t, err)
}

func TestNewParametersRejectsDegreeBelowMinimum(t *testing.T) {
	_, err := NewParameters(512, 65537, []uint64{576460752308273153}, 3.2, DefaultDecompositionBase, Security128)
	require.Error(t, err)
}

func TestNewParametersRejectsDuplicatePrimes(t *testing.T) {
	_, err := NewParameters(1024, 65537, []uint64{576460752308273153, 576460752308273153}, 3.2, DefaultDecompositionBase, Security128)
	require.Error(t, err)
}

func TestNewParametersRejectsNonNTTFriendlyPlainModulus(t *testing.T) {
	_, err := NewParameters(1024, 101, []uint64{576460752308273153}, 3.2, DefaultDecompositionBase, Security128)
	require.Error(t, err)
}

func TestNewParametersFromSecurityLevelScalesWithTier(t *testing.T) {
	p128, err := NewParametersFromSecurityLevel(Security128)
	require.NoError(t, err)
	p192, err := NewParametersFromSecurityLevel(Security192)
	require.NoError(t, err)
	p256, err := NewParametersFromSecurityLevel(Security256)
	require.NoError(t, err)

	require.Less(t, p128.N, p192.N)
	require.Less(t, p192.N, p256.N)
	require.Less(t, p128.LogQ(), p192.LogQ())
	require.Less(t, p192.LogQ(), p256.LogQ())
}

func TestNewParametersFromSecurityLevelRejectsUnknownTier(t *testing.T) {
	_, err := NewParametersFromSecurityLevel(SecurityLevel(1))
	require.Error(t, err)
}

func TestDecompositionLengthGrowsAsBaseShrinks(t *testing.T) {
	wide, err := NewParameters(1024, 65537, []uint64{576460752308273153, 576460752315482113}, 3.2, 1<<8, Security128)
	require.NoError(t, err)
	narrow, err := NewParameters(1024, 65537, []uint64{576460752308273153, 576460752315482113}, 3.2, 1<<2, Security128)
	require.NoError(t, err)

	require.Greater(t, narrow.DecompositionLength(), wide.DecompositionLength())
}

func testParams(t *testing.T) Parameters {
	t.Helper()
	p, err := NewParameters(1024, 65537, []uint64{576460752308273153, 576460752315482113}, 3.2, DefaultDecompositionBase, Security128)
	require.NoError(t, err)
	return p
}

func TestLiftSmallCRTRoundTripsThroughFromCRT(t *testing.T) {
	basis := testParams(t).QBasis
	vals := make([]int64, basis.Rings[0].N)
	for i := range vals {
		vals[i] = int64(i%7) - 3
	}

	lifted := LiftSmallCRT(basis, vals)
	coeffs, err := basis.FromCRT(lifted)
	require.NoError(t, err)

	q := basis.Q
	for i, want := range vals {
		wantMod := new(big.Int).Mod(big.NewInt(want), q)
		require.Equal(t, 0, coeffs[i].Cmp(wantMod), "coefficient %d", i)
	}
}

func TestNegateCRTIsInvolution(t *testing.T) {
	basis := testParams(t).QBasis
	x, err := SampleTernaryCRT(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	negated := NegateCRT(basis, x)
	back := NegateCRT(basis, negated)

	xCoeffs, err := basis.FromCRT(x)
	require.NoError(t, err)
	backCoeffs, err := basis.FromCRT(back)
	require.NoError(t, err)
	require.Equal(t, xCoeffs, backCoeffs)
}

func TestScaleCRTByOneIsIdentity(t *testing.T) {
	basis := testParams(t).QBasis
	x, err := SampleUniformCRT(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	scaled := ScaleCRT(basis, x, 1)

	xCoeffs, err := basis.FromCRT(x)
	require.NoError(t, err)
	scaledCoeffs, err := basis.FromCRT(scaled)
	require.NoError(t, err)
	require.Equal(t, xCoeffs, scaledCoeffs)
}

func TestMarshalCRTIsDeterministic(t *testing.T) {
	basis := testParams(t).QBasis
	x, err := SampleTernaryCRT(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	a, err := MarshalCRT(x)
	require.NoError(t, err)
	b, err := MarshalCRT(x)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNewFingerprintIsDeterministicAndSensitiveToInput(t *testing.T) {
	fp1 := NewFingerprint([]byte("secret-material-a"))
	fp2 := NewFingerprint([]byte("secret-material-a"))
	fp3 := NewFingerprint([]byte("secret-material-b"))

	require.Equal(t, fp1, fp2)
	require.NotEqual(t, fp1, fp3)
}

func TestKeyGenProducesConsistentFingerprintsAcrossKeySet(t *testing.T) {
	params := testParams(t)
	keys, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)

	require.Equal(t, keys.Secret.Fingerprint, keys.Public.Fingerprint)
	require.Equal(t, keys.Secret.Fingerprint, keys.Evaluation.Fingerprint)
	require.Len(t, keys.Evaluation.Value, params.DecompositionLength())
	require.NotNil(t, keys.Rotations)
	require.Empty(t, keys.Rotations)
}

func TestCiphertextDegreeReflectsC2Presence(t *testing.T) {
	basis := testParams(t).QBasis
	c0, err := SampleUniformCRT(basis, arith.DefaultPRNG)
	require.NoError(t, err)
	c1, err := SampleUniformCRT(basis, arith.DefaultPRNG)
	require.NoError(t, err)

	ct := &Ciphertext{C0: c0, C1: c1}
	require.Equal(t, 1, ct.Degree())

	ct.C2 = c0
	require.Equal(t, 2, ct.Degree())

	cp := ct.CopyNew()
	require.Equal(t, ct.Degree(), cp.Degree())
}
