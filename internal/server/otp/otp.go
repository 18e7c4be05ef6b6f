// Package otp generates fixed-width numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Generator produces codes of a fixed number of digits. Every code of that
// width, leading zeros included, is equally likely.
type Generator struct {
	length int
	rand   io.Reader
}

func NewGenerator(length int) *Generator {
	return &Generator{length: length, rand: rand.Reader}
}

// Length reports the configured code width.
func (g *Generator) Length() int { return g.length }

func (g *Generator) Generate() (string, error) {
	ten := big.NewInt(10)
	b := make([]byte, g.length)
	for i := range b {
		n, err := rand.Int(g.rand, ten)
		if err != nil {
			return "", fmt.Errorf("otp digit: %w", err)
		}
		b[i] = byte('0' + n.Int64())
	}
	return string(b), nil
}

// Valid reports whether code has the generator's shape.
func (g *Generator) Valid(code string) bool {
	if len(code) != g.length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
