package ring

import "github.com/privacyfl/hec/herrors"

// Automorphism applies the Galois map X -> X^k (k must be odd, 0 < k < 2N)
// to a coefficient-domain polynomial, storing the result in out. This is
// the ring-level primitive behind ciphertext rotation: applying it to both
// halves of a BGV ciphertext under the Galois element 5^steps mod 2N
// permutes the encoded batch slots by steps positions.
func (r *Ring) Automorphism(a *Poly, k int, out *Poly) error {
	if a.Domain != Coefficient {
		return herrors.New(herrors.InvalidParameters, "ring: automorphism requires coefficient-domain input")
	}
	if k%2 == 0 {
		return herrors.New(herrors.InvalidParameters, "ring: automorphism exponent must be odd")
	}
	n := r.N
	mask := 2*n - 1
	result := make([]uint64, n)
	for i := 0; i < n; i++ {
		// Destination exponent of X^i under X -> X^k is (i*k) mod 2N; values
		// >= N fold back with a sign flip since X^N = -1 in R_q.
		dst := (i * k) & mask
		coeff := a.Coeffs[i]
		if dst >= n {
			dst -= n
			coeff = r.negCoeff(coeff)
		}
		result[dst] = coeff
	}
	out.Coeffs = result
	out.Domain = Coefficient
	return nil
}

func (r *Ring) negCoeff(c uint64) uint64 {
	if c == 0 {
		return 0
	}
	return r.Q - c
}

// GaloisElementForRotation returns the Galois automorphism exponent
// 5^steps mod 2N implementing a cyclic rotation of `steps` batch slots,
// matching the spec's "X ↦ X^(5^steps mod 2n)" rule. Using 5 as the
// generator (rather than a primitive root found per-modulus) is the
// standard BGV/BFV convention, since 5 generates the order-N/2 subgroup of
// (Z/2NZ)* needed to realize every cyclic rotation of a power-of-two-length
// batch.
func GaloisElementForRotation(steps, n int) int {
	twoN := 2 * n
	g := 1
	base := 5 % twoN
	e := steps % (n / 2)
	if e < 0 {
		e += n / 2
	}
	for i := 0; i < e; i++ {
		g = (g * base) % twoN
	}
	return g
}
