package party2

import (
	"github.com/chain5j/mpc-party2/eckey"
	"github.com/chain5j/mpc-party2/kms"
)

// DerivedKey is a child share together with the path it was derived on.
type DerivedKey struct {
	MasterKey *kms.MasterKey2 `json:"master_key"`
	XPos      uint32          `json:"x_pos"`
	YPos      uint32          `json:"y_pos"`
}

// DeriveKey derives the child of mk at coin type xPos and account yPos.
func DeriveKey(mk *kms.MasterKey2, xPos, yPos uint32) (*DerivedKey, error) {
	child, err := mk.GetChild(kms.DerivationPath{CoinType: xPos, Account: yPos})
	if err != nil {
		return nil, err
	}

	return &DerivedKey{MasterKey: child, XPos: xPos, YPos: yPos}, nil
}

// Path is the derivation path of the key.
func (k *DerivedKey) Path() kms.DerivationPath {
	return kms.DerivationPath{CoinType: k.XPos, Account: k.YPos}
}

// PublicKey returns the joint public key of the child share.
func (k *DerivedKey) PublicKey() *eckey.Point {
	return k.MasterKey.PublicPoint()
}
