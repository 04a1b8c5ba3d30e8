package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/bootstrap"
	"github.com/privacyfl/hec/fhe"
	"github.com/privacyfl/hec/rlwe"
)

func testParams(t *testing.T) rlwe.Parameters {
	t.Helper()
	params, err := rlwe.NewParameters(1024, 65537, []uint64{576460752308273153, 576460752315482113}, 3.2, rlwe.DefaultDecompositionBase, rlwe.Security128)
	require.NoError(t, err)
	return params
}

func TestRefreshPreservesPlaintext(t *testing.T) {
	params := testParams(t)
	scheme := fhe.NewScheme(params)

	keys, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := make([]uint64, params.N)
	for i := range slots {
		slots[i] = uint64(i % 17)
	}
	ct, err := scheme.Encrypt(slots, keys.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	b := bootstrap.New(params)
	bk, err := b.GenBootstrapKey(keys.Secret, arith.DefaultPRNG)
	require.NoError(t, err)

	refreshed, err := b.Refresh(ct, bk)
	require.NoError(t, err)
	require.Equal(t, rlwe.Fresh, refreshed.State)
	require.Equal(t, 0, refreshed.Level)

	got, err := scheme.Decrypt(refreshed, keys.Secret)
	require.NoError(t, err)
	require.Equal(t, slots, got)
}

func TestRefreshRejectsFingerprintMismatch(t *testing.T) {
	params := testParams(t)
	scheme := fhe.NewScheme(params)

	keysA, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)
	keysB, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := make([]uint64, params.N)
	ct, err := scheme.Encrypt(slots, keysA.Public, arith.DefaultPRNG)
	require.NoError(t, err)

	b := bootstrap.New(params)
	bk, err := b.GenBootstrapKey(keysB.Secret, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = b.Refresh(ct, bk)
	require.Error(t, err)
}

func TestRefreshRejectsDegreeTwoCiphertext(t *testing.T) {
	params := testParams(t)
	scheme := fhe.NewScheme(params)

	keys, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	slots := make([]uint64, params.N)
	ct, err := scheme.Encrypt(slots, keys.Public, arith.DefaultPRNG)
	require.NoError(t, err)
	ct.C2 = ct.C1 // force Degree() == 2

	b := bootstrap.New(params)
	bk, err := b.GenBootstrapKey(keys.Secret, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = b.Refresh(ct, bk)
	require.Error(t, err)
}

func TestGenBootstrapKeyEncryptsOneBitPerAuxModulusWidth(t *testing.T) {
	params := testParams(t)
	scheme := fhe.NewScheme(params)

	keys, err := scheme.KeyGen(arith.DefaultPRNG)
	require.NoError(t, err)

	b := bootstrap.New(params)
	bk, err := b.GenBootstrapKey(keys.Secret, arith.DefaultPRNG)
	require.NoError(t, err)

	require.Len(t, bk.EncryptedSecretBits, 32)
	require.Equal(t, keys.Secret.Fingerprint, bk.Fingerprint)
}
