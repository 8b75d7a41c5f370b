package random

import (
	"context"
	"crypto/rand"
	"math/big"
)

// Source draws values in [0, 1). It matches the battle engine's source
// contract without importing it.
type Source interface {
	Draw(ctx context.Context) (float64, error)
}

// cryptoSource draws two-decimal fractions from crypto/rand. It mirrors the
// granularity of the remote service so the two sources are interchangeable.
type cryptoSource struct{}

// NewCryptoSource returns a local Source backed by crypto/rand.
//
// Postcondition: Every value returned by Draw is in {0.00, 0.01, ..., 0.99}.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Draw returns a uniformly distributed two-decimal fraction in [0, 1).
// The context is accepted for interface compatibility; no I/O occurs.
func (c *cryptoSource) Draw(_ context.Context) (float64, error) {
	val, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return 0, err
	}
	return float64(val.Int64()) / 100, nil
}
