// Package password generates random access credentials for accounts and
// provisioned servers.
package password

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength matches the credential length users receive at registration.
const DefaultLength = 16

// Generate returns a random alphanumeric string of n characters.
// It panics only if the system randomness source is unavailable.
func Generate(n int) string {
	if n <= 0 {
		n = DefaultLength
	}
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("password: crypto/rand unavailable: " + err.Error())
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
