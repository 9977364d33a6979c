// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"math/rand/v2"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	letters    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 20
)

// RandStr returns n random letters. Not suitable for secrets.
func RandStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}

	return string(b)
}

// NewID generates a record ID
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}
