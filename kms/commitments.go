// Package kms
package kms

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// Avoid Rogue Key Attacks
type Commitments [32]byte
type Nonce [32]byte

func NewCommit(data []byte) (Commitments, Nonce, error) {
	var nonce Nonce
	_, err := io.ReadFull(rand.Reader, nonce[:])
	if err != nil {
		return Commitments{}, nonce, err
	}

	return commitWithNonce(data, &nonce), nonce, nil
}

func (c *Commitments) Verify(data []byte, nonce *Nonce) error {
	if *c == commitWithNonce(data, nonce) {
		return nil
	}

	return ErrInvalidCommitments
}

func (c Commitments) MarshalText() ([]byte, error) {
	return marshalHex(c[:]), nil
}

func (c *Commitments) UnmarshalText(input []byte) error {
	return unmarshalHex(c[:], input)
}

func (n Nonce) MarshalText() ([]byte, error) {
	return marshalHex(n[:]), nil
}

func (n *Nonce) UnmarshalText(input []byte) error {
	return unmarshalHex(n[:], input)
}

func marshalHex(b []byte) []byte {
	dst := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(dst, b)
	return dst
}

func unmarshalHex(dst []byte, input []byte) error {
	if len(input) != hex.EncodedLen(len(dst)) {
		return errors.New("invalid commit length")
	}

	_, err := hex.Decode(dst, input)
	return err
}

// data: the content being committed to
func commitWithNonce(data []byte, nonce *Nonce) Commitments {
	h := sha256.New()
	h.Write(data)
	h.Write(nonce[:])

	var comm Commitments
	copy(comm[:], h.Sum(nil))
	return comm
}
