package paymentlink

import (
	"crypto/rand"
	"fmt"
)

const (
	LinkIDPrefix = "pl_"
	linkIDLength = 10
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewLinkID returns "pl_" followed by 10 random alphanumerics.
func NewLinkID() (string, error) {
	out := make([]byte, 0, linkIDLength)
	buf := make([]byte, linkIDLength*2)
	// bytes >= 248 are rejected so every character is equally likely
	limit := byte(256 - 256%len(alphabet))
	for len(out) < linkIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == linkIDLength {
				break
			}
		}
	}
	return LinkIDPrefix + string(out), nil
}
