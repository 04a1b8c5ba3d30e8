package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Scheme:      SchemeBGV,
		Version:     CurrentVersion,
		Flags:       0x0102,
		NoiseBudget: 99,
	}
	copy(h.Fingerprint[:], []byte("0123456789abcdef"))
	payload := []byte("ciphertext payload bytes")

	encoded := Encode(h, payload)
	decodedHeader, decodedPayload, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, h, decodedHeader)
	require.Equal(t, payload, decodedPayload)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	encoded := Encode(Header{Scheme: SchemeElGamal, Version: CurrentVersion}, nil)
	encoded[0] = 'X'
	_, _, err := Decode(encoded)
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	_, _, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	encoded := Encode(Header{Scheme: SchemeBGV, Version: CurrentVersion + 1}, []byte("x"))
	_, _, err := Decode(encoded)
	require.Error(t, err)
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	buf := PutLengthPrefixed(nil, []byte("first"))
	buf = PutLengthPrefixed(buf, []byte("second"))

	first, rest, err := ReadLengthPrefixed(buf)
	require.NoError(t, err)
	require.Equal(t, []byte("first"), first)

	second, rest, err := ReadLengthPrefixed(rest)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), second)
	require.Empty(t, rest)
}

func TestReadLengthPrefixedRejectsTruncatedBlob(t *testing.T) {
	_, _, err := ReadLengthPrefixed([]byte{5, 0, 0, 0, 'a'})
	require.Error(t, err)
}
