// Package kms
package kms

import (
	"math/big"
	"sync"

	"github.com/chain5j/mpc-party2/eckey"
)

// EcKeyPair is a secret scalar generated for one protocol round together with
// its public point. The secret can be taken exactly once; afterwards the pair
// is zeroed and further use fails with ErrStateConsumed.
type EcKeyPair struct {
	PublicShare *eckey.Point

	mu       sync.Mutex
	secret   *big.Int
	consumed bool
}

func newEcKeyPair(modulus *big.Int) (*EcKeyPair, error) {
	x, err := eckey.RandScalar(modulus)
	if err != nil {
		return nil, err
	}

	pub, err := eckey.ScalarBaseMult(x)
	if err != nil {
		return nil, err
	}

	return &EcKeyPair{PublicShare: pub, secret: x}, nil
}

// consume hands the secret to its single use and zeroes the pair.
func (kp *EcKeyPair) consume() (*big.Int, error) {
	if kp == nil {
		return nil, ErrStateConsumed
	}

	kp.mu.Lock()
	defer kp.mu.Unlock()

	if kp.consumed {
		return nil, ErrStateConsumed
	}

	x := new(big.Int).Set(kp.secret)
	kp.secret.SetInt64(0)
	kp.consumed = true
	return x, nil
}

// peek is for proofs generated while the pair is still live.
func (kp *EcKeyPair) peek() (*big.Int, error) {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if kp.consumed {
		return nil, ErrStateConsumed
	}
	return kp.secret, nil
}

// Zero discards the secret without using it.
func (kp *EcKeyPair) Zero() {
	if kp == nil {
		return
	}

	kp.mu.Lock()
	defer kp.mu.Unlock()

	if kp.secret != nil {
		kp.secret.SetInt64(0)
	}
	kp.consumed = true
}

// Consumed reports whether the secret was used or discarded.
func (kp *EcKeyPair) Consumed() bool {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	return kp.consumed
}
