package crt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// Two of rlwe's default 60-bit NTT-friendly primes, pairwise coprime.
var testPrimes = []uint64{576460752308273153, 576460752315482113}

func TestToCRTFromCRTRoundTrip(t *testing.T) {
	n := 16
	basis, err := NewBasis(n, testPrimes)
	require.NoError(t, err)

	coeffs := make([]*big.Int, n)
	for i := range coeffs {
		coeffs[i] = big.NewInt(int64(i * 12345))
	}

	poly, err := basis.ToCRT(coeffs)
	require.NoError(t, err)

	back, err := basis.FromCRT(poly)
	require.NoError(t, err)

	for i := range coeffs {
		require.Equal(t, 0, coeffs[i].Cmp(back[i]), "coefficient %d mismatch", i)
	}
}

func TestAddCRTMatchesBigIntAddition(t *testing.T) {
	n := 8
	basis, err := NewBasis(n, testPrimes)
	require.NoError(t, err)

	a := make([]*big.Int, n)
	b := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		a[i] = big.NewInt(int64(100 + i))
		b[i] = big.NewInt(int64(200 + i))
	}

	polyA, err := basis.ToCRT(a)
	require.NoError(t, err)
	polyB, err := basis.ToCRT(b)
	require.NoError(t, err)

	sum, err := basis.AddCRT(polyA, polyB)
	require.NoError(t, err)

	back, err := basis.FromCRT(sum)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		want := new(big.Int).Add(a[i], b[i])
		want.Mod(want, basis.Q)
		require.Equal(t, 0, want.Cmp(back[i]))
	}
}

func TestNewBasisRejectsEmptyPrimeList(t *testing.T) {
	_, err := NewBasis(8, nil)
	require.Error(t, err)
}
