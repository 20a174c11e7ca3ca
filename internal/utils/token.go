package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// AccessTokenLength is the fixed length of public access tokens.
const AccessTokenLength = 20

// GenerateAccessToken produces an opaque random token drawn from the
// alphanumeric alphabet. A fresh token is issued on every finalisation, so a
// re-finalised submission invalidates any previously shared link.
func GenerateAccessToken() (string, error) {
	token := make([]byte, AccessTokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate access token: %w", err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
