package arith

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/privacyfl/hec/herrors"
)

// PRNG is the sampling source shared by every component in the repository
// that needs randomness: ring samplers, ElGamal nonces, ZKP witnesses and
// SecureAgg mask derivation all draw from a value implementing this
// interface, so tests can substitute a deterministic PRNG without touching
// call sites.
type PRNG interface {
	// Read fills p with random bytes, following io.Reader's contract.
	Read(p []byte) (n int, err error)
}

// cryptoPRNG adapts crypto/rand.Reader to the PRNG interface.
type cryptoPRNG struct{}

func (cryptoPRNG) Read(p []byte) (int, error) { return rand.Read(p) }

// DefaultPRNG is the crypto/rand-backed PRNG used when no explicit PRNG is
// supplied to a key-generation or sampling call.
var DefaultPRNG PRNG = cryptoPRNG{}

// UniformUint64 draws a uniformly random value in [0, bound) using rejection
// sampling over whole-byte draws, avoiding the bias a naive modulo reduction
// would introduce.
func UniformUint64(prng PRNG, bound uint64) (uint64, error) {
	if bound == 0 {
		return 0, herrors.New(herrors.InvalidParameters, "uniform sampling: zero bound")
	}

	// Number of bytes needed to cover bound, plus the largest multiple of
	// bound that fits in that many bytes (the rejection threshold).
	nbytes := (bitLen64(bound) + 7) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	span := uint64(1) << (uint(nbytes) * 8)
	limit := span - (span % bound)
	if nbytes == 8 {
		// 2^64 does not fit in a uint64, so span wrapped to 0; take the
		// largest multiple of bound below 2^64 directly (0 means no rejection).
		limit = 0 - (math.MaxUint64%bound+1)%bound
	}

	buf := make([]byte, nbytes)
	for {
		if _, err := prng.Read(buf); err != nil {
			return 0, herrors.Wrap(herrors.Internal, "uniform sampling: PRNG read", err)
		}
		var v uint64
		for _, b := range buf {
			v = (v << 8) | uint64(b)
		}
		if limit == 0 || v < limit {
			return v % bound, nil
		}
	}
}

// UniformBigInt draws a uniformly random value in [0, bound) using the same
// rejection strategy as UniformUint64, for bounds wider than 64 bits (safe
// primes, ElGamal/ZKP group elements).
func UniformBigInt(prng PRNG, bound *big.Int) (*big.Int, error) {
	if bound.Sign() <= 0 {
		return nil, herrors.New(herrors.InvalidParameters, "uniform sampling: non-positive bound")
	}
	nbytes := (bound.BitLen() + 7) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	buf := make([]byte, nbytes)
	for {
		if _, err := prng.Read(buf); err != nil {
			return nil, herrors.Wrap(herrors.Internal, "uniform sampling: PRNG read", err)
		}
		v := new(big.Int).SetBytes(buf)
		if v.Cmp(bound) < 0 {
			return v, nil
		}
	}
}

func bitLen64(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// GaussianSampler draws integers from a discrete Gaussian distribution
// centered at zero, approximated via Box-Muller sampling of the continuous
// Gaussian with rejection outside [-6*sigma, 6*sigma].
type GaussianSampler struct {
	prng  PRNG
	sigma float64
}

// NewGaussianSampler constructs a GaussianSampler with the given standard
// deviation, drawing entropy from prng (DefaultPRNG if nil).
func NewGaussianSampler(prng PRNG, sigma float64) *GaussianSampler {
	if prng == nil {
		prng = DefaultPRNG
	}
	return &GaussianSampler{prng: prng, sigma: sigma}
}

const gaussianBoundSigmas = 6.0

// Sample returns one discrete Gaussian sample, rejecting draws whose
// magnitude exceeds gaussianBoundSigmas standard deviations.
func (g *GaussianSampler) Sample() (int64, error) {
	bound := gaussianBoundSigmas * g.sigma
	for {
		u1, err := g.uniformFloat()
		if err != nil {
			return 0, err
		}
		u2, err := g.uniformFloat()
		if err != nil {
			return 0, err
		}
		// Box-Muller transform: u1, u2 uniform on (0,1) -> z standard normal.
		r := math.Sqrt(-2 * math.Log(u1))
		z := r * math.Cos(2*math.Pi*u2)
		x := z * g.sigma
		if x >= -bound && x <= bound {
			return int64(math.Round(x)), nil
		}
	}
}

// SampleVector fills out with n independent Gaussian samples.
func (g *GaussianSampler) SampleVector(n int) ([]int64, error) {
	out := make([]int64, n)
	for i := range out {
		v, err := g.Sample()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// uniformFloat draws a value in (0, 1), replacing an exact zero with 2^-53
// so log(u1) never diverges.
func (g *GaussianSampler) uniformFloat() (float64, error) {
	var buf [8]byte
	if _, err := g.prng.Read(buf[:]); err != nil {
		return 0, herrors.Wrap(herrors.Internal, "gaussian sampling: PRNG read", err)
	}
	v := uint64(0)
	for _, b := range buf {
		v = (v << 8) | uint64(b)
	}
	// Keep the top 53 bits, which a float64 mantissa holds exactly, and map
	// into [0, 1).
	f := float64(v>>11) / float64(1<<53)
	if f == 0 {
		f = 1.0 / float64(1<<53)
	}
	return f, nil
}

// TernarySample draws a single coefficient in {-1, 0, 1} with equal
// probability of -1 and 1 and the remainder on 0, used for BGV secret-key
// coefficients.
func TernarySample(prng PRNG) (int64, error) {
	v, err := UniformUint64(prng, 3)
	if err != nil {
		return 0, err
	}
	switch v {
	case 0:
		return -1, nil
	case 1:
		return 0, nil
	default:
		return 1, nil
	}
}
