package arith

import "crypto/subtle"

// ConstantTimeEq reports whether a and b hold the same bytes, in time that
// does not depend on where the first difference occurs. Every ZKP verifier
// and the KeyStore MAC check route their byte comparisons through this
// function rather than bytes.Equal.
func ConstantTimeEq(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
