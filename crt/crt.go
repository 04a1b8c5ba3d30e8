// Package crt implements residue-number-system (Chinese Remainder Theorem)
// split/join between a big integer modulo Q = prod(q_i) and a matrix of
// residues modulo each pairwise-coprime prime q_i in the basis. This is the
// RNS layer the teacher library's ring.Ring uses internally across many
// moduli at once (ring/ring.go's ModulusAtLevel / per-prime table indexing)
// — here it is factored out as its own component per the spec, operating on
// a basis of independently-held *ring.Ring instances.
package crt

import (
	"math/big"

	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
)

// Basis is a pairwise-coprime set of NTT-friendly primes together with the
// precomputed cross-conversion constants N_i = Q/q_i and y_i = N_i^-1 mod
// q_i. Primes keep the order they were passed to NewBasis in, so every
// Polynomial built over the same Basis lines its columns up positionally.
type Basis struct {
	Rings   []*ring.Ring // one Ring per prime, Rings[i] uses Primes[i]
	Primes  []uint64
	Q       *big.Int   // product of all primes
	Ni      []*big.Int // Q / q_i
	Yi      []*big.Int // N_i^-1 mod q_i
}

// NewBasis constructs a Basis over the given degree N and list of
// pairwise-coprime NTT-friendly primes.
func NewBasis(n int, primes []uint64) (*Basis, error) {
	if len(primes) == 0 {
		return nil, herrors.New(herrors.InvalidParameters, "crt: empty prime basis")
	}
	b := &Basis{Primes: append([]uint64(nil), primes...)}

	b.Q = big.NewInt(1)
	for _, p := range b.Primes {
		b.Q.Mul(b.Q, new(big.Int).SetUint64(p))
	}

	b.Rings = make([]*ring.Ring, len(b.Primes))
	b.Ni = make([]*big.Int, len(b.Primes))
	b.Yi = make([]*big.Int, len(b.Primes))
	for i, p := range b.Primes {
		r, err := ring.NewRing(n, p)
		if err != nil {
			return nil, herrors.Wrap(herrors.InvalidParameters, "crt: constructing per-prime ring", err)
		}
		b.Rings[i] = r

		pBig := new(big.Int).SetUint64(p)
		ni := new(big.Int).Div(b.Q, pBig)
		b.Ni[i] = ni

		yi := new(big.Int).Mod(ni, pBig)
		if yi.ModInverse(yi, pBig) == nil {
			return nil, herrors.New(herrors.InvalidParameters, "crt: non-coprime prime basis")
		}
		b.Yi[i] = yi
	}
	return b, nil
}

// Polynomial is the n x k residue matrix: one *ring.Poly column per prime
// in the basis, each already reduced modulo its own prime.
type Polynomial struct {
	Limbs []*ring.Poly
}

// ToCRT converts a polynomial given as big.Int coefficients modulo Q (one
// entry per ring degree position) into its residue representation across
// the basis.
func (b *Basis) ToCRT(coeffs []*big.Int) (*Polynomial, error) {
	n := b.Rings[0].N
	if len(coeffs) != n {
		return nil, herrors.New(herrors.InvalidParameters, "crt: coefficient count mismatch")
	}
	limbs := make([]*ring.Poly, len(b.Primes))
	for i, p := range b.Primes {
		poly := b.Rings[i].NewPoly()
		pBig := new(big.Int).SetUint64(p)
		for j, c := range coeffs {
			r := new(big.Int).Mod(c, pBig)
			poly.Coeffs[j] = r.Uint64()
		}
		limbs[i] = poly
	}
	return &Polynomial{Limbs: limbs}, nil
}

// FromCRT reconstructs the big.Int-coefficient polynomial modulo Q from its
// residues, using the precomputed N_i and y_i: x = sum_i (x_i * y_i mod q_i)
// * N_i, reduced mod Q.
func (b *Basis) FromCRT(p *Polynomial) ([]*big.Int, error) {
	if len(p.Limbs) != len(b.Primes) {
		return nil, herrors.New(herrors.InvalidParameters, "crt: limb count mismatch with basis")
	}
	n := b.Rings[0].N
	out := make([]*big.Int, n)
	for j := 0; j < n; j++ {
		acc := new(big.Int)
		for i, prime := range b.Primes {
			pBig := new(big.Int).SetUint64(prime)
			xi := new(big.Int).SetUint64(p.Limbs[i].Coeffs[j])
			term := new(big.Int).Mul(xi, b.Yi[i])
			term.Mod(term, pBig)
			term.Mul(term, b.Ni[i])
			acc.Add(acc, term)
		}
		acc.Mod(acc, b.Q)
		out[j] = acc
	}
	return out, nil
}

// AddCRT adds two CRT polynomials limb-by-limb.
func (b *Basis) AddCRT(x, y *Polynomial) (*Polynomial, error) {
	out := &Polynomial{Limbs: make([]*ring.Poly, len(b.Primes))}
	for i := range b.Primes {
		out.Limbs[i] = b.Rings[i].NewPoly()
		if err := b.Rings[i].Add(x.Limbs[i], y.Limbs[i], out.Limbs[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MultiplyCRT multiplies two CRT polynomials limb-by-limb. Because each
// limb lives in an independent Z_{q_i}, multiplying within the RNS
// representation is exactly a per-prime ring multiplication: this is the
// entire point of the RNS split, avoiding any single big-Q multiplication.
func (b *Basis) MultiplyCRT(x, y *Polynomial) (*Polynomial, error) {
	out := &Polynomial{Limbs: make([]*ring.Poly, len(b.Primes))}
	for i := range b.Primes {
		out.Limbs[i] = b.Rings[i].NewPoly()
		if err := b.Rings[i].Multiply(x.Limbs[i], y.Limbs[i], out.Limbs[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
