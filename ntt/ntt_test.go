package ntt

import (
	"context"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/workerpool"
)

const testPrime = 576460752308273153

func TestNewParamsRejectsNonPowerOfTwoLength(t *testing.T) {
	_, err := NewParams(17, testPrime)
	require.Error(t, err)
}

func TestNewParamsRejectsModulusNotCongruentToOneModTwoN(t *testing.T) {
	_, err := NewParams(1024, 97)
	require.Error(t, err)
}

func TestTransformRoundTrip(t *testing.T) {
	p, err := NewParams(1024, testPrime)
	require.NoError(t, err)

	coeffs := make([]uint64, 1024)
	r := rand.New(rand.NewSource(1))
	for i := range coeffs {
		coeffs[i] = uint64(r.Int63n(int64(p.Q)))
	}

	transformed, err := p.Transform(coeffs)
	require.NoError(t, err)
	back, err := p.InverseTransform(transformed)
	require.NoError(t, err)
	require.Equal(t, coeffs, back)
}

func TestTransformRejectsWrongLength(t *testing.T) {
	p, err := NewParams(1024, testPrime)
	require.NoError(t, err)
	_, err = p.Transform(make([]uint64, 512))
	require.Error(t, err)
}

// naiveNegacyclic computes the schoolbook negacyclic product of a and b
// modulo q, i.e. multiplication in Z_q[X]/(X^n+1), used as an independent
// check on Multiply's NTT-based result.
func naiveNegacyclic(a, b []uint64, q uint64) []uint64 {
	n := len(a)
	out := make([]uint64, n)
	for i, ai := range a {
		for j, bj := range b {
			k := i + j
			term := arith.MulMod64(ai, bj, q)
			if k >= n {
				k -= n
				term = arith.SubMod64(0, term, q)
			}
			out[k] = arith.AddMod64(out[k], term, q)
		}
	}
	return out
}

func TestMultiplyMatchesNaiveNegacyclicConvolution(t *testing.T) {
	params, err := NewParams(1024, testPrime)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(2))
	a := make([]uint64, 1024)
	b := make([]uint64, 1024)
	for i := range a {
		a[i] = uint64(r.Int63n(1000))
		b[i] = uint64(r.Int63n(1000))
	}

	got, err := params.Multiply(a, b)
	require.NoError(t, err)
	want := naiveNegacyclic(a, b, params.Q)
	require.Equal(t, want, got)
}

func TestFFTInverseFFTRoundTrip(t *testing.T) {
	in := make([]complex128, 8)
	for i := range in {
		in[i] = complex(float64(i), float64(-i))
	}
	transformed, err := FFT(in)
	require.NoError(t, err)
	back, err := InverseFFT(transformed)
	require.NoError(t, err)

	for i := range in {
		require.InDelta(t, 0, cmplx.Abs(in[i]-back[i]), 1e-9)
	}
}

func TestFFTRejectsNonPowerOfTwoLength(t *testing.T) {
	_, err := FFT(make([]complex128, 5))
	require.Error(t, err)
}

func TestParallelTransformMatchesSerialTransform(t *testing.T) {
	params, err := NewParams(1024, testPrime)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(3))
	polys := make([][]uint64, 6)
	for i := range polys {
		poly := make([]uint64, 1024)
		for j := range poly {
			poly[j] = uint64(r.Int63n(int64(params.Q)))
		}
		polys[i] = poly
	}

	pool := workerpool.New(3)
	got, err := params.ParallelTransform(context.Background(), pool, polys)
	require.NoError(t, err)

	for i, poly := range polys {
		want, err := params.Transform(poly)
		require.NoError(t, err)
		require.Equal(t, want, got[i])
	}
}

func TestParallelInverseTransformMatchesSerialInverseTransform(t *testing.T) {
	params, err := NewParams(1024, testPrime)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(4))
	evalSets := make([][]uint64, 4)
	for i := range evalSets {
		vals := make([]uint64, 1024)
		for j := range vals {
			vals[j] = uint64(r.Int63n(int64(params.Q)))
		}
		evalSets[i] = vals
	}

	pool := workerpool.New(2)
	got, err := params.ParallelInverseTransform(context.Background(), pool, evalSets)
	require.NoError(t, err)

	for i, evals := range evalSets {
		want, err := params.InverseTransform(evals)
		require.NoError(t, err)
		require.Equal(t, want, got[i])
	}
}
