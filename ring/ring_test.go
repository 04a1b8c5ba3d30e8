package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testNTTPrime = 576460752308273153 // a 60-bit NTT-friendly prime from rlwe's default chain

func TestNTTRoundTrip(t *testing.T) {
	r, err := NewRing(1024, testNTTPrime)
	require.NoError(t, err)
	require.True(t, r.AllowsNTT())

	a := r.NewPoly()
	for i := range a.Coeffs {
		a.Coeffs[i] = uint64(i * 7 % int(r.Q))
	}

	evalDomain := r.NewPoly()
	require.NoError(t, r.ToNTT(a, evalDomain))
	require.Equal(t, Evaluation, evalDomain.Domain)

	back := r.NewPoly()
	require.NoError(t, r.FromNTT(evalDomain, back))
	require.Equal(t, Coefficient, back.Domain)
	require.True(t, a.Equal(back))
}

func TestMultiplyViaNTTMatchesSchoolbook(t *testing.T) {
	r, err := NewRing(64, testNTTPrime)
	require.NoError(t, err)

	a := r.NewPoly()
	b := r.NewPoly()
	for i := 0; i < 64; i++ {
		a.Coeffs[i] = uint64(i + 1)
		b.Coeffs[i] = uint64(2*i + 1)
	}

	viaNTT := r.NewPoly()
	require.NoError(t, r.Multiply(a, b, viaNTT))

	viaSchoolbook := r.schoolbookMultiply(a.Coeffs, b.Coeffs)
	require.Equal(t, viaSchoolbook, viaNTT.Coeffs)
}

func TestDomainAwareEquality(t *testing.T) {
	r, err := NewRing(8, testNTTPrime)
	require.NoError(t, err)

	a := r.NewPoly()
	b := r.NewPoly()
	copy(b.Coeffs, a.Coeffs)
	b.Domain = Evaluation

	require.False(t, a.Equal(b), "polys with identical coefficients in different domains must compare unequal")
}

func TestMarshalUnmarshalRejectsOutOfRangeCoefficient(t *testing.T) {
	p := &Poly{Coeffs: []uint64{1, 2, 3}}
	data, err := p.MarshalBinary()
	require.NoError(t, err)

	var q uint64 = 2
	var decoded Poly
	err = decoded.UnmarshalBinaryWithModulus(data, q)
	require.Error(t, err)
}
