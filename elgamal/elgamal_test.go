package elgamal

import (
	"math/big"
	"testing"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/stretchr/testify/require"
)

func testParameters(t *testing.T) Parameters {
	t.Helper()
	params, err := GenerateParameters(64)
	require.NoError(t, err)
	return params
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	params := testParameters(t)
	sk, pk, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)

	messages := Plaintext{big.NewInt(7), big.NewInt(42), big.NewInt(1)}
	cts, err := Encrypt(params, pk, messages, arith.DefaultPRNG)
	require.NoError(t, err)

	got, err := Decrypt(params, sk, cts)
	require.NoError(t, err)
	for i, m := range messages {
		require.Equal(t, 0, m.Cmp(got[i]))
	}
}

func TestMultiplyYieldsProductOfPlaintexts(t *testing.T) {
	params := testParameters(t)
	sk, pk, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)

	a := Plaintext{big.NewInt(5)}
	b := Plaintext{big.NewInt(6)}
	ctA, err := Encrypt(params, pk, a, arith.DefaultPRNG)
	require.NoError(t, err)
	ctB, err := Encrypt(params, pk, b, arith.DefaultPRNG)
	require.NoError(t, err)

	product, err := Multiply(params, ctA, ctB)
	require.NoError(t, err)

	got, err := Decrypt(params, sk, product)
	require.NoError(t, err)

	want := new(big.Int).Mul(a[0], b[0])
	want.Mod(want, params.P)
	require.Equal(t, 0, want.Cmp(got[0]))
}

func TestAddIsUnsupported(t *testing.T) {
	_, err := Add(&Ciphertext{}, &Ciphertext{})
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.UnsupportedOp))
}

func TestRotateAndRelinearizeAndRescaleAreUnsupported(t *testing.T) {
	_, err := Rotate(&Ciphertext{}, 1)
	require.True(t, herrors.Is(err, herrors.UnsupportedOp))

	_, err = Relinearize(&Ciphertext{})
	require.True(t, herrors.Is(err, herrors.UnsupportedOp))

	_, err = Rescale(&Ciphertext{})
	require.True(t, herrors.Is(err, herrors.UnsupportedOp))
}

func TestMultiplyRejectsFingerprintMismatch(t *testing.T) {
	params := testParameters(t)
	_, pkA, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)
	_, pkB, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)

	ctA, err := Encrypt(params, pkA, Plaintext{big.NewInt(3)}, arith.DefaultPRNG)
	require.NoError(t, err)
	ctB, err := Encrypt(params, pkB, Plaintext{big.NewInt(4)}, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = Multiply(params, ctA, ctB)
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyMismatch))
}

func TestDecryptRejectsKeyMismatch(t *testing.T) {
	params := testParameters(t)
	_, pkA, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)
	skB, _, err := KeyGen(params, arith.DefaultPRNG)
	require.NoError(t, err)

	cts, err := Encrypt(params, pkA, Plaintext{big.NewInt(9)}, arith.DefaultPRNG)
	require.NoError(t, err)

	_, err = Decrypt(params, skB, cts)
	require.Error(t, err)
	require.True(t, herrors.Is(err, herrors.KeyMismatch))
}
