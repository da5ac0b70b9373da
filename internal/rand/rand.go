package rand

import (
	cryptorand "crypto/rand"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" // reduced base64

// Token returns a random base62 string of length n. The modulo mapping
// is slightly biased toward the low end of the alphabet; acceptable for
// fake tokens and request IDs.
func Token(n int) string {
	buf := make([]byte, n)
	if _, err := cryptorand.Read(buf); err != nil {
		panic("unreachable")
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf)
}
