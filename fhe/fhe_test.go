package fhe

import (
	"testing"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/rlwe"
	"github.com/stretchr/testify/require"
)

// testParams builds a small-N parameter set so tests run fast: N=1024 still
// satisfies t ≡ 1 mod 2N for the default plaintext modulus, and two 60-bit Q
// primes are enough to exercise every ciphertext operation.
func testParams(t *testing.T) rlwe.Parameters {
	t.Helper()
	params, err := rlwe.NewParameters(1024, 65537, []uint64{576460752308273153, 576460752315482113}, 3.2, rlwe.DefaultDecompositionBase, rlwe.Security128)
	require.NoError(t, err)
	return params
}

func slotVector(n int, fill func(i int) uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = fill(i)
	}
	return out
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := slotVector(params.N, func(i int) uint64 { return uint64(i % 100) })
	ct, err := scheme.Encrypt(slots, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	got, err := scheme.Decrypt(ct, keySet.Secret)
	require.NoError(t, err)
	require.Equal(t, slots, got)
}

func TestHomomorphicAdd(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	a := slotVector(params.N, func(i int) uint64 { return uint64(i % 50) })
	b := slotVector(params.N, func(i int) uint64 { return uint64((i + 7) % 50) })

	ctA, err := scheme.Encrypt(a, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)
	ctB, err := scheme.Encrypt(b, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	ctSum, err := scheme.Add(ctA, ctB)
	require.NoError(t, err)

	got, err := scheme.Decrypt(ctSum, keySet.Secret)
	require.NoError(t, err)

	want := slotVector(params.N, func(i int) uint64 { return (a[i] + b[i]) % params.T })
	require.Equal(t, want, got)
}

func TestAddRejectsFingerprintMismatch(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySetA, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)
	keySetB, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := slotVector(params.N, func(i int) uint64 { return uint64(i % 10) })
	ctA, err := scheme.Encrypt(slots, keySetA.Public, arith.DefaultPRNG)
	require.NoError(t, err)
	ctB, err := scheme.Encrypt(slots, keySetB.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = scheme.Add(ctA, ctB)
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyMismatch))
}

func TestHomomorphicMultiplyAndRelinearize(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	a := slotVector(params.N, func(i int) uint64 { return uint64(i % 5) })
	b := slotVector(params.N, func(i int) uint64 { return uint64((i + 1) % 5) })

	ctA, err := scheme.Encrypt(a, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)
	ctB, err := scheme.Encrypt(b, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	ctProduct, err := scheme.Multiply(ctA, ctB, keySet.Evaluation)
	require.NoError(t, err)
	require.Equal(t, 1, ctProduct.Degree(), "relinearization must collapse the product back to degree 1")

	got, err := scheme.Decrypt(ctProduct, keySet.Secret)
	require.NoError(t, err)

	want := slotVector(params.N, func(i int) uint64 { return (a[i] * b[i]) % params.T })
	require.Equal(t, want, got)
}

// rotateRightPerRow computes the expected result of rotating a slot vector
// by step per spec.md §8's cyclic_shift property: the n slots split into
// two independent rows of n/2 (see slotIndexMap), each rotated right by
// step on its own, matching spec.md §8's seed case 4 direction
// ([1,2,3,4] rotated by 1 -> [4,1,2,3]) within each row.
func rotateRightPerRow(slots []uint64, step int) []uint64 {
	n := len(slots)
	m := n / 2
	out := make([]uint64, n)
	for i := 0; i < m; i++ {
		out[i] = slots[((i-step)%m+m)%m]
		out[m+i] = slots[m+((i-step)%m+m)%m]
	}
	return out
}

func TestRotateBySingleStep(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := slotVector(params.N, func(i int) uint64 { return uint64(i % 97) })
	ct, err := scheme.Encrypt(slots, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	rk, err := scheme.GenRotationKey(keySet.Secret, 1, arith.DefaultPRNG)
	require.NoError(t, err)

	rotated, err := scheme.Rotate(ct, rk)
	require.NoError(t, err)

	got, err := scheme.Decrypt(rotated, keySet.Secret)
	require.NoError(t, err)
	require.Equal(t, rotateRightPerRow(slots, 1), got)
}

func TestRotateBySeveralStepsMatchesRepeatedSingleStep(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySet, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := slotVector(params.N, func(i int) uint64 { return uint64((i*31 + 3) % 97) })
	ct, err := scheme.Encrypt(slots, keySet.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	const steps = 3
	rk, err := scheme.GenRotationKey(keySet.Secret, steps, arith.DefaultPRNG)
	require.NoError(t, err)

	rotated, err := scheme.Rotate(ct, rk)
	require.NoError(t, err)

	got, err := scheme.Decrypt(rotated, keySet.Secret)
	require.NoError(t, err)
	require.Equal(t, rotateRightPerRow(slots, steps), got)
}

func TestDecryptFailsOnKeyMismatch(t *testing.T) {
	params := testParams(t)
	scheme := NewScheme(params)
	keySetA, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)
	keySetB, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := slotVector(params.N, func(i int) uint64 { return uint64(i % 10) })
	ct, err := scheme.Encrypt(slots, keySetA.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = scheme.Decrypt(ct, keySetB.Secret)
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyMismatch))
}
