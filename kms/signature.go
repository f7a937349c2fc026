// Package kms
package kms

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/chain5j/mpc-party2/eckey"
)

var secp256k1halfN = new(big.Int).Rsh(eckey.N(), 1)

// SignatureRecid is a low-s ECDSA signature with its recovery id: bit 0 is the
// parity of R.y, bit 1 is set when R.x overflowed the group order.
type SignatureRecid struct {
	R     *big.Int
	S     *big.Int
	Recid uint8
}

type signatureJSON struct {
	R     *hexutil.Big `json:"r"`
	S     *hexutil.Big `json:"s"`
	Recid uint8        `json:"recid"`
}

func (sig *SignatureRecid) MarshalJSON() ([]byte, error) {
	return json.Marshal(&signatureJSON{
		R:     (*hexutil.Big)(sig.R),
		S:     (*hexutil.Big)(sig.S),
		Recid: sig.Recid,
	})
}

func (sig *SignatureRecid) UnmarshalJSON(input []byte) error {
	var dec signatureJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.R == nil || dec.S == nil {
		return errors.New("signature requires r and s")
	}
	if dec.Recid > 3 {
		return errors.New("recid out of range")
	}

	sig.R = dec.R.ToInt()
	sig.S = dec.S.ToInt()
	sig.Recid = dec.Recid
	return nil
}

// Bytes is the 65-byte [R || S || V] form with V = recid.
func (sig *SignatureRecid) Bytes() []byte {
	b := make([]byte, 65)
	copy(b[:32], math.PaddedBigBytes(sig.R, 32))
	copy(b[32:64], math.PaddedBigBytes(sig.S, 32))
	b[64] = sig.Recid
	return b
}

// Verify checks the signature over digest under pub and that the recovery id
// recovers pub.
func (sig *SignatureRecid) Verify(digest *big.Int, pub *eckey.Point) error {
	if sig == nil || sig.R == nil || sig.S == nil || pub == nil {
		return ErrInvalidSignature
	}
	if err := ValidDigest(digest); err != nil {
		return err
	}

	N := eckey.N()
	if sig.R.Sign() <= 0 || sig.R.Cmp(N) >= 0 || sig.S.Sign() <= 0 || sig.S.Cmp(secp256k1halfN) > 0 {
		return ErrInvalidSignature
	}

	hash := math.PaddedBigBytes(digest, 32)
	btcSig := &btcec.Signature{R: sig.R, S: sig.S}
	if !btcSig.Verify(hash, (*btcec.PublicKey)(pub.ToECDSA())) {
		return ErrInvalidSignature
	}

	compact := make([]byte, 65)
	compact[0] = 27 + sig.Recid
	copy(compact[1:33], math.PaddedBigBytes(sig.R, 32))
	copy(compact[33:], math.PaddedBigBytes(sig.S, 32))

	recovered, _, err := btcec.RecoverCompact(eckey.S256(), compact, hash)
	if err != nil {
		return ErrInvalidSignature
	}
	if recovered.X.Cmp(pub.X) != 0 || recovered.Y.Cmp(pub.Y) != 0 {
		return ErrInvalidSignature
	}

	return nil
}
