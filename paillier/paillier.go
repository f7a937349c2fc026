// Package paillier
package paillier

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MinBits is the smallest modulus accepted from a counterparty.
const MinBits = 1024

var one = big.NewInt(1)

var (
	// ErrMessageTooLong is returned when attempting to encrypt a message which is
	// too large for the size of the public key.
	ErrMessageTooLong = errors.New("paillier: message too long for Paillier public key size")

	ErrInvalidPublicKey = errors.New("paillier: invalid public key")
	ErrInvalidCipher    = errors.New("paillier: ciphertext out of range")
)

// GenerateKey generates an Paillier keypair of the given bit size using the
// random source random (for example, crypto/rand.Reader).
func GenerateKey(random io.Reader, bits int) (*PrivateKey, error) {
	for {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, err
		}

		q, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, err
		}

		if p.Cmp(q) == 0 {
			continue
		}

		return newPrivateKey(p, q), nil
	}
}

// PrivateKey represents a Paillier key.
type PrivateKey struct {
	PublicKey
	p         *big.Int
	pp        *big.Int
	pminusone *big.Int
	q         *big.Int
	qq        *big.Int
	qminusone *big.Int
	pinvq     *big.Int
	hp        *big.Int
	hq        *big.Int
}

func newPrivateKey(p, q *big.Int) *PrivateKey {
	n := new(big.Int).Mul(p, q)
	pp := new(big.Int).Mul(p, p)
	qq := new(big.Int).Mul(q, q)

	return &PrivateKey{
		PublicKey: *newPublicKey(n),
		p:         p,
		pp:        pp,
		pminusone: new(big.Int).Sub(p, one),
		q:         q,
		qq:        qq,
		qminusone: new(big.Int).Sub(q, one),
		pinvq:     new(big.Int).ModInverse(p, q),
		hp:        h(p, pp, n),
		hq:        h(q, qq, n),
	}
}

type privateKeyJSON struct {
	P hexutil.Bytes `json:"p"`
	Q hexutil.Bytes `json:"q"`
}

func (k *PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&privateKeyJSON{
		P: k.p.Bytes(),
		Q: k.q.Bytes(),
	})
}

func (k *PrivateKey) UnmarshalJSON(input []byte) error {
	var dec privateKeyJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	p := new(big.Int).SetBytes(dec.P)
	q := new(big.Int).SetBytes(dec.Q)
	if p.Cmp(one) <= 0 || q.Cmp(one) <= 0 || p.Cmp(q) == 0 {
		return errors.New("paillier: invalid private key factors")
	}

	*k = *newPrivateKey(p, q)
	return nil
}

// PublicKey represents the public part of a Paillier key.
type PublicKey struct {
	N        *big.Int // modulus
	G        *big.Int // n+1, since p and q are same length
	NSquared *big.Int
}

func newPublicKey(n *big.Int) *PublicKey {
	return &PublicKey{
		N:        n,
		NSquared: new(big.Int).Mul(n, n),
		G:        new(big.Int).Add(n, one),
	}
}

// NewPublicKey validates n and derives g and n^2 from it.
func NewPublicKey(n *big.Int) (*PublicKey, error) {
	if n == nil || n.BitLen() < MinBits || n.Bit(0) == 0 {
		return nil, ErrInvalidPublicKey
	}
	return newPublicKey(new(big.Int).Set(n)), nil
}

type publicKeyJSON struct {
	N hexutil.Bytes `json:"n"`
}

// MarshalJSON only carries n; g and n^2 are recomputed on decode.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&publicKeyJSON{N: pk.N.Bytes()})
}

func (pk *PublicKey) UnmarshalJSON(input []byte) error {
	var dec publicKeyJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	key, err := NewPublicKey(new(big.Int).SetBytes(dec.N))
	if err != nil {
		return err
	}

	*pk = *key
	return nil
}

// ValidCipher reports whether c is a unit of Z*_{n^2}.
func (pk *PublicKey) ValidCipher(c *big.Int) bool {
	if c == nil || c.Sign() <= 0 || c.Cmp(pk.NSquared) >= 0 {
		return false
	}
	return new(big.Int).GCD(nil, nil, c, pk.N).Cmp(one) == 0
}

func h(p *big.Int, pp *big.Int, n *big.Int) *big.Int {
	gp := new(big.Int).Mod(new(big.Int).Sub(one, n), pp)
	lp := l(gp, p)
	hp := new(big.Int).ModInverse(lp, p)
	return hp
}

// L(u) = (u-1)/n
func l(u *big.Int, n *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Sub(u, one), n)
}
