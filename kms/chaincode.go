// Package kms
package kms

import (
	"github.com/chain5j/mpc-party2/eckey"
)

type (
	ChainCodeParty1FirstMsg  = CommitmentMsg
	ChainCodeParty2FirstMsg  = DLogMsg
	ChainCodeParty1SecondMsg = WitnessMsg
)

// ChainCodeFirstMessage samples party two's chain code contribution.
func ChainCodeFirstMessage() (*ChainCodeParty2FirstMsg, *EcKeyPair, error) {
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

// ChainCodeSecondMessage opens party one's chain code commitment.
func ChainCodeSecondMessage(first *ChainCodeParty1FirstMsg, second *ChainCodeParty1SecondMsg) error {
	if second == nil {
		return ErrInvalidCommitments
	}
	return VerifyWitness(first, second.CommWitness)
}

// ComputeChainCode is the Diffie-Hellman point of both contributions. It
// consumes kp.
func ComputeChainCode(other *eckey.Point, kp *EcKeyPair) (*eckey.Point, error) {
	if other == nil {
		kp.Zero()
		return nil, ErrPublicShareMismatch
	}
	return computePubkey(kp, other)
}

// ChainCodeParty1FirstMessage commits to party one's chain code contribution.
func ChainCodeParty1FirstMessage() (*ChainCodeParty1FirstMsg, *CommWitness, *EcKeyPair, error) {
	kp, err := newEcKeyPair(defaultKeyParams.Q)
	if err != nil {
		return nil, nil, nil, err
	}

	comm, witness, err := createCommitments(kp)
	if err != nil {
		kp.Zero()
		return nil, nil, nil, err
	}

	return comm, witness, kp, nil
}

// ChainCodeParty1SecondMessage verifies party two's contribution, opens party
// one's commitment and returns the agreed chain code.
func ChainCodeParty1SecondMessage(witness *CommWitness, kp *EcKeyPair, p2 *DLogProof) (*ChainCodeParty1SecondMsg, *eckey.Point, error) {
	if err := p2.Verify(); err != nil {
		kp.Zero()
		return nil, nil, err
	}

	cc, err := computePubkey(kp, p2.PublicShare)
	if err != nil {
		return nil, nil, err
	}

	return &ChainCodeParty1SecondMsg{CommWitness: witness}, cc, nil
}
