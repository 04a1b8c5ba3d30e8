// Package wire implements the shared ciphertext wire-format header defined
// by the spec's external-interfaces section: a 4-byte magic, scheme tag,
// version, flags, key fingerprint and noise-budget field, with scheme tags
// for BGV and ElGamal and the scheme-specific payload left opaque to this
// package. Package fhe's BGV encoding is the one encoder in this repository
// built on it.
package wire

import (
	"encoding/binary"

	"github.com/privacyfl/hec/herrors"
)

// Magic is the 4-byte ciphertext file/blob magic, "CT\0\0".
var Magic = [4]byte{'C', 'T', 0, 0}

// SchemeTag identifies which scheme produced a ciphertext's payload.
type SchemeTag byte

const (
	SchemeBGV     SchemeTag = 1
	SchemeElGamal SchemeTag = 2
)

const headerVersion byte = 1

// Header is the fixed-size prefix shared by every serialized ciphertext.
type Header struct {
	Scheme      SchemeTag
	Version     byte
	Flags       uint16
	Fingerprint [16]byte
	NoiseBudget uint64
}

// HeaderSize is the encoded size of Header in bytes: 4 (magic) + 1 (scheme)
// + 1 (version) + 2 (flags) + 16 (fingerprint) + 8 (noise) = 32.
const HeaderSize = 4 + 1 + 1 + 2 + 16 + 8

// Encode serializes h followed by payload into one byte slice.
func Encode(h Header, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	copy(out[0:4], Magic[:])
	out[4] = byte(h.Scheme)
	out[5] = h.Version
	binary.LittleEndian.PutUint16(out[6:8], h.Flags)
	copy(out[8:24], h.Fingerprint[:])
	binary.LittleEndian.PutUint64(out[24:32], h.NoiseBudget)
	copy(out[32:], payload)
	return out
}

// Decode parses the header prefix of b and returns it along with the
// remaining payload bytes. It fails with InvalidCiphertext on a magic,
// length or version mismatch.
func Decode(b []byte) (Header, []byte, error) {
	if len(b) < HeaderSize {
		return Header{}, nil, herrors.New(herrors.InvalidCiphertext, "wire: buffer shorter than header")
	}
	if string(b[0:4]) != string(Magic[:]) {
		return Header{}, nil, herrors.New(herrors.InvalidCiphertext, "wire: bad magic")
	}
	h := Header{
		Scheme:  SchemeTag(b[4]),
		Version: b[5],
		Flags:   binary.LittleEndian.Uint16(b[6:8]),
	}
	copy(h.Fingerprint[:], b[8:24])
	h.NoiseBudget = binary.LittleEndian.Uint64(b[24:32])
	if h.Version != headerVersion {
		return Header{}, nil, herrors.New(herrors.InvalidCiphertext, "wire: unsupported version")
	}
	return h, b[HeaderSize:], nil
}

// CurrentVersion is exported so scheme packages can stamp new headers with
// it rather than hardcoding the version byte.
const CurrentVersion = headerVersion

// PutLengthPrefixed appends a uint32 length-prefixed blob to buf.
func PutLengthPrefixed(buf []byte, blob []byte) []byte {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(blob)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, blob...)
	return buf
}

// ReadLengthPrefixed reads one uint32 length-prefixed blob from the front
// of b, returning the blob and the remaining bytes.
func ReadLengthPrefixed(b []byte) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, herrors.New(herrors.InvalidCiphertext, "wire: truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	rest := b[4:]
	if uint64(len(rest)) < uint64(n) {
		return nil, nil, herrors.New(herrors.InvalidCiphertext, "wire: truncated blob")
	}
	return rest[:n], rest[n:], nil
}
