// Package kms
package kms

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/chain5j/mpc-party2/eckey"
)

// DerivationPath is a two level, non-hardened path: coin type then account.
type DerivationPath struct {
	CoinType uint32 `json:"coin_type"`
	Account  uint32 `json:"account"`
}

func (p DerivationPath) indices() []uint32 {
	return []uint32{p.CoinType, p.Account}
}

// hdKey returns the multiplicative tweak f_l and the chain code factor f_r for
// one derivation level:
//
//	I = HMAC-SHA512(compress(chainCode), compress(Q) || index)
//	f_l = I[:32] mod n, f_r = I[32:] mod n
func hdKey(chainCode, q *eckey.Point, index uint32) (*big.Int, *big.Int, error) {
	key, err := chainCode.Compress()
	if err != nil {
		return nil, nil, err
	}
	data, err := q.Compress()
	if err != nil {
		return nil, nil, err
	}

	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)

	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	mac.Write(idx[:])
	I := mac.Sum(nil)

	N := defaultKeyParams.Q
	fl := new(big.Int).SetBytes(I[:32])
	fl.Mod(fl, N)
	fr := new(big.Int).SetBytes(I[32:])
	fr.Mod(fr, N)

	if fl.Sign() == 0 || fr.Sign() == 0 {
		return nil, nil, ErrInvalidDerivation
	}

	return fl, fr, nil
}

// GetChild derives the share for path. Paillier data and P1 are carried over
// unchanged; x2, P2, Q and the chain code are tweaked level by level.
func (mk *MasterKey2) GetChild(path DerivationPath) (*MasterKey2, error) {
	if err := mk.validate(); err != nil {
		return nil, err
	}

	child := mk.clone()
	for _, index := range path.indices() {
		fl, fr, err := hdKey(child.ChainCode, child.Public.Q, index)
		if err != nil {
			return nil, err
		}

		child.Private.X2.Mul(child.Private.X2, fl)
		child.Private.X2.Mod(child.Private.X2, defaultKeyParams.Q)

		if child.Public.P2, err = child.Public.P2.ScalarMult(fl); err != nil {
			return nil, ErrInvalidDerivation
		}
		if child.Public.Q, err = child.Public.Q.ScalarMult(fl); err != nil {
			return nil, ErrInvalidDerivation
		}
		if child.ChainCode, err = child.ChainCode.ScalarMult(fr); err != nil {
			return nil, ErrInvalidDerivation
		}
	}

	return child, nil
}

// GetChild applies the same tweaks to party one's view; x1 is unchanged.
func (mk *MasterKey1) GetChild(path DerivationPath) (*MasterKey1, error) {
	if mk.ChainCode == nil {
		return nil, ErrInvalidMasterKey
	}

	child := *mk
	for _, index := range path.indices() {
		fl, fr, err := hdKey(child.ChainCode, child.Public.Q, index)
		if err != nil {
			return nil, err
		}

		if child.Public.P2, err = child.Public.P2.ScalarMult(fl); err != nil {
			return nil, ErrInvalidDerivation
		}
		if child.Public.Q, err = child.Public.Q.ScalarMult(fl); err != nil {
			return nil, ErrInvalidDerivation
		}
		if child.ChainCode, err = child.ChainCode.ScalarMult(fr); err != nil {
			return nil, ErrInvalidDerivation
		}
	}

	return &child, nil
}
