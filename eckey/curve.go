// Package eckey
package eckey

import (
	"crypto/ecdsa"
	"crypto/rand"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// S256 returns the secp256k1 curve every share and point in this module lives on.
func S256() *btcec.KoblitzCurve {
	return btcec.S256()
}

// N returns the order of the secp256k1 base point.
func N() *big.Int {
	return S256().N
}

// ToECDSA builds a private key from a big-endian scalar of at most 32 bytes.
func ToECDSA(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) > 32 {
		return nil, errors.Errorf("private scalar is %d bytes, want at most 32", len(d))
	}
	return crypto.ToECDSA(common.LeftPadBytes(d, 32))
}

// FromECDSAPub serializes a public key in uncompressed form.
func FromECDSAPub(pub *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(pub)
}

// UnmarshalPubkey parses an uncompressed public key.
func UnmarshalPubkey(pub []byte) (*ecdsa.PublicKey, error) {
	return crypto.UnmarshalPubkey(pub)
}

// RandScalar samples a uniform scalar in [1, modulus).
func RandScalar(modulus *big.Int) (*big.Int, error) {
	for {
		k, err := rand.Int(rand.Reader, modulus)
		if err != nil {
			return nil, err
		}
		if k.Sign() > 0 {
			return k, nil
		}
	}
}
