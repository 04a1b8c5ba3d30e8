package fhe

import (
	"encoding/binary"
	"math"

	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
	"github.com/privacyfl/hec/rlwe"
	"github.com/privacyfl/hec/wire"
)

// MarshalCiphertext serializes ct into the shared wire format with the
// SchemeBGV tag: a wire.Header carrying the fingerprint and noise budget,
// followed by level, op count, state and the limb-concatenated C0/C1 (and
// C2, for a not-yet-relinearized ciphertext).
func (s *Scheme) MarshalCiphertext(ct *rlwe.Ciphertext) ([]byte, error) {
	payload, err := marshalPolys(ct)
	if err != nil {
		return nil, err
	}
	h := wire.Header{
		Scheme:      wire.SchemeBGV,
		Version:     wire.CurrentVersion,
		Fingerprint: ct.Fingerprint,
		NoiseBudget: math.Float64bits(ct.Noise),
	}
	return wire.Encode(h, payload), nil
}

func marshalPolys(ct *rlwe.Ciphertext) ([]byte, error) {
	var out []byte

	var header [10]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(ct.Level))
	binary.LittleEndian.PutUint32(header[4:8], uint32(ct.OpsSinceFresh))
	header[8] = byte(ct.State)
	if ct.C2 != nil {
		header[9] = 1
	}
	out = append(out, header[:]...)

	for _, poly := range []*crt.Polynomial{ct.C0, ct.C1, ct.C2} {
		if poly == nil {
			continue
		}
		b, err := rlwe.MarshalCRT(poly)
		if err != nil {
			return nil, err
		}
		out = wire.PutLengthPrefixed(out, b)
	}
	return out, nil
}

// UnmarshalCiphertext decodes a ciphertext previously produced by
// MarshalCiphertext, reconstructing each polynomial limb against this
// Scheme's ciphertext modulus basis.
func (s *Scheme) UnmarshalCiphertext(b []byte) (*rlwe.Ciphertext, error) {
	h, payload, err := wire.Decode(b)
	if err != nil {
		return nil, err
	}
	if h.Scheme != wire.SchemeBGV {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: wire payload is not a BGV ciphertext")
	}
	if len(payload) < 10 {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: truncated ciphertext body")
	}

	level := binary.LittleEndian.Uint32(payload[0:4])
	ops := binary.LittleEndian.Uint32(payload[4:8])
	state := payload[8]
	hasC2 := payload[9] == 1
	rest := payload[10:]

	basis := s.params.QBasis

	c0Bytes, rest, err := wire.ReadLengthPrefixed(rest)
	if err != nil {
		return nil, err
	}
	c1Bytes, rest, err := wire.ReadLengthPrefixed(rest)
	if err != nil {
		return nil, err
	}
	c0, err := unmarshalCRT(basis, c0Bytes)
	if err != nil {
		return nil, err
	}
	c1, err := unmarshalCRT(basis, c1Bytes)
	if err != nil {
		return nil, err
	}

	var c2 *crt.Polynomial
	if hasC2 {
		c2Bytes, _, err := wire.ReadLengthPrefixed(rest)
		if err != nil {
			return nil, err
		}
		c2, err = unmarshalCRT(basis, c2Bytes)
		if err != nil {
			return nil, err
		}
	}

	return &rlwe.Ciphertext{
		C0:            c0,
		C1:            c1,
		C2:            c2,
		Fingerprint:   h.Fingerprint,
		Level:         int(level),
		Noise:         math.Float64frombits(h.NoiseBudget),
		OpsSinceFresh: int(ops),
		State:         rlwe.State(state),
	}, nil
}

// unmarshalCRT splits a limb-concatenated byte slice back into per-prime
// Poly values, each limb being a fixed 8*N bytes per Ring.MarshalBinary.
func unmarshalCRT(basis *crt.Basis, b []byte) (*crt.Polynomial, error) {
	n := basis.Rings[0].N
	limbSize := 8 * n
	if len(b) != limbSize*len(basis.Rings) {
		return nil, herrors.New(herrors.InvalidCiphertext, "fhe: ciphertext limb data has unexpected length")
	}
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		p := &ring.Poly{}
		if err := p.UnmarshalBinaryWithModulus(b[i*limbSize:(i+1)*limbSize], r.Q); err != nil {
			return nil, err
		}
		limbs[i] = p
	}
	return &crt.Polynomial{Limbs: limbs}, nil
}
