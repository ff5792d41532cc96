// Package roomcode generates the short join codes players type to enter
// a room. Codes are exactly 6 characters from [A-Z0-9].
package roomcode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the character set room codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the fixed code length.
const Length = 6

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles room code generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator. A nil RandSource falls back to
// crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new 6-character room code.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's RandSource.
func (g *Generator) Generate() string {
	code := make([]byte, Length)

	if g.randSource != nil {
		for i := range code {
			code[i] = Alphabet[g.randSource.IntN(len(Alphabet))]
		}
		return string(code)
	}

	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for i := range code {
		code[i] = Alphabet[int(buf[i])%len(Alphabet)]
	}
	return string(code)
}

// GenerateUnique keeps generating until taken reports an unused code.
// taken is consulted against the currently open rooms; the code space
// (36^6) is large enough that collisions are a retry, not an error.
func (g *Generator) GenerateUnique(taken func(string) bool) string {
	for {
		code := g.Generate()
		if !taken(code) {
			return code
		}
	}
}

// Validate checks that a code is exactly 6 characters from the alphabet.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}

	return nil
}
