package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/gosimple/slug"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()"

const maxStemLength = 24

func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = 12
	}
	limit := big.NewInt(int64(len(passwordAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// UsernameStem turns a team name into a lowercase identifier made of [a-z0-9_].
func UsernameStem(teamName string) string {
	stem := strings.ReplaceAll(slug.Make(teamName), "-", "_")
	if len(stem) > maxStemLength {
		stem = strings.TrimRight(stem[:maxStemLength], "_")
	}
	if stem == "" {
		stem = "team"
	}
	return stem
}

// GenerateUsername returns "<stem>_NNNN_<tag>" where NNNN is a random number in 1000..9999.
func GenerateUsername(teamName, tag string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate username: %w", err)
	}
	return fmt.Sprintf("%s_%d_%s", UsernameStem(teamName), 1000+n.Int64(), tag), nil
}
