// Package roomcode generates the short join codes players type to enter
// a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Codes avoid lowercase and ambiguous characters so they survive being
// read aloud or typed from a phone screen.
const alphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

// Length is the fixed code length.
const Length = 6

// RandSource allows deterministic code generation in tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes with configurable randomness.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource means crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns a new code. Uniqueness is the caller's problem; the
// registry retries on collision.
func (g *Generator) Generate() string {
	b := make([]byte, Length)
	if g.randSource != nil {
		for i := range b {
			b[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		return string(b)
	}
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}

// Normalize upper-cases a user-supplied code so joins are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the shape of a code without consulting the registry.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, ch := range code {
		if !strings.ContainsRune(alphabet, ch) {
			return fmt.Errorf("invalid character %c at position %d", ch, i)
		}
	}
	return nil
}
