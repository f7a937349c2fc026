// Package kms
package kms

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chain5j/mpc-party2/eckey"
	"github.com/chain5j/mpc-party2/paillier"
)

// Party2Public is everything party two may share about its key: the joint
// public key Q, both public shares, party one's Paillier key and the
// encryption of x1 under it.
type Party2Public struct {
	Q           *eckey.Point
	P2          *eckey.Point
	P1          *eckey.Point
	PaillierPub *paillier.PublicKey
	CKey        *big.Int
}

type Party2Private struct {
	X2 *big.Int
}

// MasterKey2 is party two's key share. A child share produced by GetChild has
// the same shape.
type MasterKey2 struct {
	Public    Party2Public
	Private   Party2Private
	ChainCode *eckey.Point
}

// SetMasterKey assembles party two's master key from the key generation and
// chain code rounds. kp is consumed.
func SetMasterKey(chainCode *eckey.Point, kp *EcKeyPair, party1Public *eckey.Point, p *Party2Paillier) (*MasterKey2, error) {
	if chainCode == nil || party1Public == nil || p == nil {
		kp.Zero()
		return nil, ErrInvalidMasterKey
	}

	x2, err := kp.consume()
	if err != nil {
		return nil, err
	}

	q, err := party1Public.ScalarMult(x2)
	if err != nil {
		return nil, err
	}

	return &MasterKey2{
		Public: Party2Public{
			Q:           q,
			P2:          kp.PublicShare,
			P1:          party1Public,
			PaillierPub: p.EK,
			CKey:        p.CKey,
		},
		Private:   Party2Private{X2: x2},
		ChainCode: chainCode,
	}, nil
}

// PublicPoint returns the joint public key.
func (mk *MasterKey2) PublicPoint() *eckey.Point {
	return &eckey.Point{
		X: new(big.Int).Set(mk.Public.Q.X),
		Y: new(big.Int).Set(mk.Public.Q.Y),
	}
}

func (mk *MasterKey2) validate() error {
	x2 := mk.Private.X2
	if x2 == nil || x2.Sign() <= 0 || x2.Cmp(defaultKeyParams.Q) >= 0 {
		return ErrInvalidMasterKey
	}
	if mk.ChainCode == nil || mk.Public.Q == nil || mk.Public.P1 == nil || mk.Public.P2 == nil {
		return ErrInvalidMasterKey
	}

	p2, err := eckey.ScalarBaseMult(x2)
	if err != nil || !p2.Equal(mk.Public.P2) {
		return ErrInvalidMasterKey
	}

	q, err := mk.Public.P1.ScalarMult(x2)
	if err != nil || !q.Equal(mk.Public.Q) {
		return ErrInvalidMasterKey
	}

	return nil
}

func (mk *MasterKey2) clone() *MasterKey2 {
	return &MasterKey2{
		Public: Party2Public{
			Q:           mk.Public.Q,
			P2:          mk.Public.P2,
			P1:          mk.Public.P1,
			PaillierPub: mk.Public.PaillierPub,
			CKey:        mk.Public.CKey,
		},
		Private:   Party2Private{X2: new(big.Int).Set(mk.Private.X2)},
		ChainCode: mk.ChainCode,
	}
}

type party2PublicJSON struct {
	Q           *eckey.Point        `json:"q"`
	P2          *eckey.Point        `json:"p2"`
	P1          *eckey.Point        `json:"p1"`
	PaillierPub *paillier.PublicKey `json:"paillier_pub"`
	CKey        hexutil.Bytes       `json:"c_key"`
}

func (p Party2Public) MarshalJSON() ([]byte, error) {
	enc := party2PublicJSON{
		Q:           p.Q,
		P2:          p.P2,
		P1:          p.P1,
		PaillierPub: p.PaillierPub,
	}
	if p.CKey != nil {
		enc.CKey = p.CKey.Bytes()
	}
	return json.Marshal(&enc)
}

func (p *Party2Public) UnmarshalJSON(input []byte) error {
	var dec party2PublicJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	if dec.Q == nil || dec.P2 == nil || dec.P1 == nil {
		return errors.New("missing public points")
	}
	if dec.PaillierPub == nil {
		return errors.New("missing paillier_pub")
	}

	ckey := new(big.Int).SetBytes(dec.CKey)
	if !dec.PaillierPub.ValidCipher(ckey) {
		return ErrInvalidEncryptedShare
	}

	*p = Party2Public{
		Q:           dec.Q,
		P2:          dec.P2,
		P1:          dec.P1,
		PaillierPub: dec.PaillierPub,
		CKey:        ckey,
	}
	return nil
}

type party2PrivateJSON struct {
	X2 *hexutil.Big `json:"x2"`
}

func (p Party2Private) MarshalJSON() ([]byte, error) {
	return json.Marshal(&party2PrivateJSON{X2: (*hexutil.Big)(p.X2)})
}

func (p *Party2Private) UnmarshalJSON(input []byte) error {
	var dec party2PrivateJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.X2 == nil {
		return errors.New("missing x2")
	}

	p.X2 = dec.X2.ToInt()
	return nil
}

type masterKey2JSON struct {
	Public    Party2Public  `json:"public"`
	Private   Party2Private `json:"private"`
	ChainCode *eckey.Point  `json:"chain_code"`
}

func (mk *MasterKey2) MarshalJSON() ([]byte, error) {
	return json.Marshal(&masterKey2JSON{
		Public:    mk.Public,
		Private:   mk.Private,
		ChainCode: mk.ChainCode,
	})
}

// UnmarshalJSON only assigns mk once every component is present and
// consistent.
func (mk *MasterKey2) UnmarshalJSON(input []byte) error {
	var dec masterKey2JSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	key := &MasterKey2{
		Public:    dec.Public,
		Private:   dec.Private,
		ChainCode: dec.ChainCode,
	}
	if err := key.validate(); err != nil {
		return err
	}

	*mk = *key
	return nil
}

type Party1Public struct {
	Q           *eckey.Point
	P1          *eckey.Point
	P2          *eckey.Point
	PaillierPub *paillier.PublicKey
}

// MasterKey1 is party one's key share, held by the counterparty.
type MasterKey1 struct {
	Public      Party1Public
	X1          *big.Int
	PaillierKey *paillier.PrivateKey
	ChainCode   *eckey.Point
}

// SetChainCode completes the master key once the chain code rounds are done.
func (mk *MasterKey1) SetChainCode(cc *eckey.Point) error {
	if cc == nil {
		return ErrInvalidMasterKey
	}

	p1, err := eckey.ScalarBaseMult(mk.X1)
	if err != nil || !p1.Equal(mk.Public.P1) {
		return ErrInvalidMasterKey
	}

	mk.ChainCode = cc
	return nil
}
