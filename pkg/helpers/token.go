package helpers

import (
	"crypto/rand"
	"math/big"
)

const verifyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenVerifyCode returns a 6-character email verification code. The
// alphabet skips easily confused glyphs (0/O, 1/I) since users may
// have to type the code by hand.
func GenVerifyCode() (string, error) {
	out := make([]byte, 6)
	max := big.NewInt(int64(len(verifyCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = verifyCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
