package ntt

import (
	"math"
	"math/cmplx"

	"github.com/privacyfl/hec/herrors"
)

// FFT computes the forward complex FFT of a length-n (power of two) slice,
// for floating-point polynomial multiplication outside the integer NTT in
// ntt.go.
func FFT(a []complex128) ([]complex128, error) {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return nil, herrors.New(herrors.InvalidParameters, "fft: length must be a power of two")
	}
	out := make([]complex128, n)
	copy(out, a)
	fftRecursive(out, false)
	return out, nil
}

// InverseFFT computes the inverse complex FFT, scaling by 1/n.
func InverseFFT(a []complex128) ([]complex128, error) {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return nil, herrors.New(herrors.InvalidParameters, "fft: length must be a power of two")
	}
	out := make([]complex128, n)
	copy(out, a)
	fftRecursive(out, true)
	for i := range out {
		out[i] /= complex(float64(n), 0)
	}
	return out, nil
}

// fftRecursive implements the textbook radix-2 Cooley-Tukey FFT recursively;
// n is small in every call site in this repository (bounded by the ring
// degree), so the recursion depth and allocation overhead are not a
// practical concern.
func fftRecursive(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	fftRecursive(even, inverse)
	fftRecursive(odd, inverse)

	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for k := 0; k < n/2; k++ {
		angle := sign * 2 * math.Pi * float64(k) / float64(n)
		twiddle := cmplx.Exp(complex(0, angle))
		t := twiddle * odd[k]
		a[k] = even[k] + t
		a[k+n/2] = even[k] - t
	}
}
