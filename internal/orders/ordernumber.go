package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// orderNumberAlphabet omits 0/O/1/I to keep references unambiguous when read
// aloud or typed from a printed confirmation.
const orderNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const orderNumberSuffixLen = 4

// NewOrderNumber generates a human-facing reference like "CP26-K7QD".
// Collisions are handled by the unique index and a retry at insert time.
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, orderNumberSuffixLen)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("CP%02d-%s", now.Year()%100, suffix), nil
}
