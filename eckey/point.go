// Package eckey
package eckey

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"

	hdeckey "github.com/NebulousLabs/hdkey/eckey"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrPublicKeyNotOnCurve indicates that the public key's (X, Y) coordinates do
	// not lie on the secp256k1 curve.
	ErrPublicKeyNotOnCurve = errors.New("Public key is not on secp256k1 curve")
)

// Point is an affine secp256k1 point. The point at infinity is never a valid Point.
type Point struct {
	X *big.Int
	Y *big.Int
}

// NewPoint checks (x, y) is on the curve before returning it.
func NewPoint(x, y *big.Int) (*Point, error) {
	if x == nil || y == nil {
		return nil, ErrPublicKeyNotOnCurve
	}

	if !S256().IsOnCurve(x, y) {
		return nil, ErrPublicKeyNotOnCurve
	}

	return &Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}, nil
}

// NewPublicKeyCoords serializes an (X, Y) coordinate pair into a public key.
func NewPublicKeyCoords(x, y *big.Int) (*ecdsa.PublicKey, error) {
	p, err := NewPoint(x, y)
	if err != nil {
		return nil, err
	}
	return p.ToECDSA(), nil
}

// PointFromECDSA copies the coordinates of pub.
func PointFromECDSA(pub *ecdsa.PublicKey) (*Point, error) {
	if pub == nil {
		return nil, ErrPublicKeyNotOnCurve
	}
	return NewPoint(pub.X, pub.Y)
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k *big.Int) (*Point, error) {
	x, y := S256().ScalarBaseMult(scalarBytes(k))
	return NewPoint(x, y)
}

// ScalarMult returns k*p.
func (p *Point) ScalarMult(k *big.Int) (*Point, error) {
	x, y := S256().ScalarMult(p.X, p.Y, scalarBytes(k))
	return NewPoint(x, y)
}

// Add returns p+q.
func (p *Point) Add(q *Point) (*Point, error) {
	x, y := S256().Add(p.X, p.Y, q.X, q.Y)
	return NewPoint(x, y)
}

func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

func (p *Point) ToECDSA() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{
		Curve: S256(),
		X:     new(big.Int).Set(p.X),
		Y:     new(big.Int).Set(p.Y),
	}
}

// Bytes is the 65-byte uncompressed encoding.
func (p *Point) Bytes() []byte {
	return FromECDSAPub(p.ToECDSA())
}

// Compress is the 33-byte SEC1 compressed encoding.
func (p *Point) Compress() ([]byte, error) {
	pk, err := hdeckey.NewPublicKeyCoords(p.X, p.Y)
	if err != nil {
		return nil, err
	}
	cpk := pk.Compress()
	return cpk[:], nil
}

// Address is the Ethereum address of the point.
func (p *Point) Address() string {
	return crypto.PubkeyToAddress(*p.ToECDSA()).Hex()
}

type pointJSON struct {
	X *hexutil.Big `json:"x"`
	Y *hexutil.Big `json:"y"`
}

func (p *Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(&pointJSON{
		X: (*hexutil.Big)(p.X),
		Y: (*hexutil.Big)(p.Y),
	})
}

func (p *Point) UnmarshalJSON(input []byte) error {
	var dec pointJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.X == nil || dec.Y == nil {
		return errors.New("point requires x and y")
	}

	pt, err := NewPoint(dec.X.ToInt(), dec.Y.ToInt())
	if err != nil {
		return err
	}

	*p = *pt
	return nil
}

func scalarBytes(k *big.Int) []byte {
	return new(big.Int).Mod(k, N()).Bytes()
}
