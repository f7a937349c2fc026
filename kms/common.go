// Package kms implements both party views of the two-party ECDSA protocol
// (Lindell 2017) together with the chain-code exchange and the child-key
// derivation used on top of it.
package kms

import (
	"errors"
	"math/big"

	"github.com/chain5j/mpc-party2/eckey"
)

var (
	ErrInvalidCommitments     = errors.New("invalid commitments")
	ErrInvalidDlogProof       = errors.New("invalid dlog proof")
	ErrPublicShareMismatch    = errors.New("public share doesn't match its proof")
	ErrInvalidCorrectKeyProof = errors.New("invalid paillier correct key proof")
	ErrInvalidEncryptedShare  = errors.New("encrypted secret share out of range")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrInvalidDerivation      = errors.New("invalid child key derivation")
	ErrStateConsumed          = errors.New("ephemeral round state already consumed")
	ErrInvalidMasterKey       = errors.New("inconsistent master key")
	ErrMessageTooLarge        = errors.New("message digest exceeds 256 bits")
)

// DefaultSalt is the domain separator of the Paillier correct-key proof.
const DefaultSalt = "KZen"

type KeyGenParams struct {
	Q             *big.Int // group order
	Q3            *big.Int // q/3, upper bound of party one's secret share
	QSquared      *big.Int
	NPaillierBits int
}

var (
	defaultKeyParams *KeyGenParams
	one              = big.NewInt(1)
	maxDigest        = new(big.Int).Lsh(one, 256)
)

func init() {
	q := new(big.Int).Set(eckey.N())

	defaultKeyParams = &KeyGenParams{
		Q:             q,
		Q3:            new(big.Int).Div(q, big.NewInt(3)),
		QSquared:      new(big.Int).Mul(q, q),
		NPaillierBits: 2048,
	}
}

// DefaultParams returns a copy of the protocol parameters.
func DefaultParams() KeyGenParams {
	return *defaultKeyParams
}

// ValidDigest reports whether m can be signed.
func ValidDigest(m *big.Int) error {
	if m == nil || m.Sign() < 0 || m.Cmp(maxDigest) >= 0 {
		return ErrMessageTooLarge
	}
	return nil
}

func modInverse(k *big.Int) *big.Int {
	return new(big.Int).ModInverse(k, defaultKeyParams.Q)
}
