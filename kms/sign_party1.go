// Package kms
package kms

import (
	"math/big"

	"github.com/chain5j/mpc-party2/paillier"
)

// EphKeyGenParty1First samples party one's ephemeral nonce k1 and proves
// knowledge of it in the clear.
func EphKeyGenParty1First() (*EphKeyGenParty1FirstMsg, *EcKeyPair, error) {
	kp, err := newEcKeyPair(defaultKeyParams.Q)
	if err != nil {
		return nil, nil, err
	}

	msg, err := createDLogMsg(kp)
	if err != nil {
		kp.Zero()
		return nil, nil, err
	}

	return msg, kp, nil
}

// SignSecondMessage opens party two's ephemeral commitment, decrypts the
// partial signature and completes it to a low-s signature with recovery id.
// The signature is verified under the joint key before it is returned. kp is
// consumed.
func (mk *MasterKey1) SignSecondMessage(kp *EcKeyPair, p2first *EphKeyGenParty2FirstMsg, msg *SignMessage, m *big.Int) (*SignatureRecid, error) {
	if msg == nil || msg.PartialSig == nil || msg.SecondMessage == nil {
		kp.Zero()
		return nil, ErrInvalidCommitments
	}
	if err := VerifyWitness(p2first, msg.SecondMessage.CommWitness); err != nil {
		kp.Zero()
		return nil, err
	}

	k1, err := kp.consume()
	if err != nil {
		return nil, err
	}
	defer k1.SetInt64(0)

	R, err := msg.SecondMessage.CommWitness.PublicShare.ScalarMult(k1)
	if err != nil {
		return nil, err
	}

	q := defaultKeyParams.Q
	r := new(big.Int).Mod(R.X, q)
	if r.Sign() == 0 {
		return nil, ErrInvalidSignature
	}

	c3 := new(big.Int).SetBytes(msg.PartialSig.C3)
	if !mk.PaillierKey.ValidCipher(c3) {
		return nil, ErrInvalidSignature
	}

	plain, err := paillier.Decrypt(mk.PaillierKey, msg.PartialSig.C3)
	if err != nil {
		return nil, err
	}

	sTag := new(big.Int).SetBytes(plain)
	sTag.Mod(sTag, q)

	s := modInverse(k1)
	s.Mul(s, sTag)
	s.Mod(s, q)
	if s.Sign() == 0 {
		return nil, ErrInvalidSignature
	}

	recid := uint8(R.Y.Bit(0))
	if R.X.Cmp(q) >= 0 {
		recid |= 2
	}

	if s.Cmp(secp256k1halfN) > 0 {
		s.Sub(q, s)
		recid ^= 1
	}

	sig := &SignatureRecid{R: r, S: s, Recid: recid}
	if err := sig.Verify(m, mk.Public.Q); err != nil {
		return nil, err
	}

	return sig, nil
}
