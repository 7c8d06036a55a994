package utils

import (
	"crypto/rand"
	"math/big"
)

const codeDigits = "0123456789"

// GenerateRandomCode returns n random decimal digits.
func GenerateRandomCode(n int) string {
	buf := make([]byte, n)
	n64 := big.NewInt(int64(len(codeDigits)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, n64)
		if err != nil {
			panic(err)
		}
		buf[i] = codeDigits[idx.Int64()]
	}
	return string(buf)
}
