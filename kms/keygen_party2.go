// Package kms
package kms

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chain5j/mpc-party2/eckey"
	"github.com/chain5j/mpc-party2/paillier"
)

type (
	// KeyGenFirstMsg is party one's commitment to its key share.
	KeyGenFirstMsg = CommitmentMsg
	// KeyGenParty2FirstMsg carries party two's key share and its DLog proof.
	KeyGenParty2FirstMsg = DLogMsg
)

type KeyGenParty1SecondMsg struct {
	EcdhSecondMessage *WitnessMsg         `json:"ecdh_second_message"`
	EK                *paillier.PublicKey `json:"ek"`
	CKey              hexutil.Bytes       `json:"c_key"`
	CorrectKeyProof   *NICorrectKeyProof  `json:"correct_key_proof"`
}

// Party1Public is the public share party one opened in its second message.
func (m *KeyGenParty1SecondMsg) Party1Public() *eckey.Point {
	if m == nil || m.EcdhSecondMessage == nil || m.EcdhSecondMessage.CommWitness == nil {
		return nil
	}
	return m.EcdhSecondMessage.CommWitness.PublicShare
}

// Party2Paillier is party one's Paillier key together with the encryption of
// party one's secret share under it.
type Party2Paillier struct {
	EK   *paillier.PublicKey
	CKey *big.Int
}

// KeyGenFirstMessage samples party two's key share x2 and proves knowledge of it.
func KeyGenFirstMessage() (*KeyGenParty2FirstMsg, *EcKeyPair, error) {
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

// KeyGenSecondMessage checks party one's decommitment against its first
// message, the correct-key proof of its Paillier key and the range of the
// encrypted share.
func KeyGenSecondMessage(first *KeyGenFirstMsg, second *KeyGenParty1SecondMsg, salt []byte) (*Party2Paillier, error) {
	if second == nil || second.EcdhSecondMessage == nil {
		return nil, ErrInvalidCommitments
	}

	if err := VerifyWitness(first, second.EcdhSecondMessage.CommWitness); err != nil {
		return nil, err
	}

	if second.EK == nil || second.EK.N == nil {
		return nil, ErrInvalidCorrectKeyProof
	}
	if err := second.CorrectKeyProof.Verify(second.EK, salt); err != nil {
		return nil, err
	}

	ckey := new(big.Int).SetBytes(second.CKey)
	if !second.EK.ValidCipher(ckey) {
		return nil, ErrInvalidEncryptedShare
	}

	return &Party2Paillier{
		EK:   second.EK,
		CKey: ckey,
	}, nil
}
