// Package kms
package kms

import (
	"github.com/chain5j/mpc-party2/eckey"
)

// CommitmentMsg commits to a public share and to the random commitment of its
// DLog proof, to be opened by a CommWitness in a later round.
type CommitmentMsg struct {
	PkCommitment    Commitments `json:"pk_commitment"`
	ZkPokCommitment Commitments `json:"zk_pok_commitment"`
}

type CommWitness struct {
	PkCommitmentBlindFactor Nonce        `json:"pk_commitment_blind_factor"`
	ZkPokBlindFactor        Nonce        `json:"zk_pok_blind_factor"`
	PublicShare             *eckey.Point `json:"public_share"`
	DLogProof               *DLogProof   `json:"d_log_proof"`
}

// DLogMsg publishes a public share with its DLog proof in the clear.
type DLogMsg struct {
	DLogProof   *DLogProof   `json:"d_log_proof"`
	PublicShare *eckey.Point `json:"public_share"`
}

// EphCommWitness opens party two's ephemeral signing commitment.
type EphCommWitness = CommWitness

// WitnessMsg opens an earlier CommitmentMsg.
type WitnessMsg struct {
	CommWitness *CommWitness `json:"comm_witness"`
}

func createCommitments(kp *EcKeyPair) (*CommitmentMsg, *CommWitness, error) {
	x, err := kp.peek()
	if err != nil {
		return nil, nil, err
	}

	proof, err := dlogProve(x)
	if err != nil {
		return nil, nil, err
	}

	pkComm, pkNonce, err := NewCommit(kp.PublicShare.Bytes())
	if err != nil {
		return nil, nil, err
	}

	zkPokComm, zkPokNonce, err := NewCommit(proof.PkRandComm.Bytes())
	if err != nil {
		return nil, nil, err
	}

	return &CommitmentMsg{
			PkCommitment:    pkComm,
			ZkPokCommitment: zkPokComm,
		}, &CommWitness{
			PkCommitmentBlindFactor: pkNonce,
			ZkPokBlindFactor:        zkPokNonce,
			PublicShare:             kp.PublicShare,
			DLogProof:               proof,
		}, nil
}

func createDLogMsg(kp *EcKeyPair) (*DLogMsg, error) {
	x, err := kp.peek()
	if err != nil {
		return nil, err
	}

	proof, err := dlogProve(x)
	if err != nil {
		return nil, err
	}

	return &DLogMsg{
		DLogProof:   proof,
		PublicShare: kp.PublicShare,
	}, nil
}

// VerifyWitness opens comm with w and checks the enclosed proof.
func VerifyWitness(comm *CommitmentMsg, w *CommWitness) error {
	if comm == nil || w == nil || w.PublicShare == nil || w.DLogProof == nil || w.DLogProof.PkRandComm == nil {
		return ErrInvalidCommitments
	}

	if err := comm.PkCommitment.Verify(w.PublicShare.Bytes(), &w.PkCommitmentBlindFactor); err != nil {
		return err
	}

	if err := comm.ZkPokCommitment.Verify(w.DLogProof.PkRandComm.Bytes(), &w.ZkPokBlindFactor); err != nil {
		return err
	}

	if err := w.DLogProof.Verify(); err != nil {
		return err
	}

	if !w.DLogProof.PublicShare.Equal(w.PublicShare) {
		return ErrPublicShareMismatch
	}

	return nil
}

func (m *DLogMsg) Verify() error {
	if m == nil || m.DLogProof == nil {
		return ErrInvalidDlogProof
	}

	if err := m.DLogProof.Verify(); err != nil {
		return err
	}

	if m.PublicShare != nil && !m.DLogProof.PublicShare.Equal(m.PublicShare) {
		return ErrPublicShareMismatch
	}

	return nil
}

// Share is the proven public share.
func (m *DLogMsg) Share() *eckey.Point {
	return m.DLogProof.PublicShare
}

func computePubkey(kp *EcKeyPair, other *eckey.Point) (*eckey.Point, error) {
	x, err := kp.consume()
	if err != nil {
		return nil, err
	}
	defer x.SetInt64(0)

	return other.ScalarMult(x)
}

// Zero clears the blinding factors once the witness is no longer needed.
func (w *CommWitness) Zero() {
	if w == nil {
		return
	}
	w.PkCommitmentBlindFactor = Nonce{}
	w.ZkPokBlindFactor = Nonce{}
}

// PkCommitment recomputes the public-share commitment w opens.
func (w *CommWitness) PkCommitment() (Commitments, error) {
	if w == nil || w.PublicShare == nil {
		return Commitments{}, ErrInvalidCommitments
	}
	return commitWithNonce(w.PublicShare.Bytes(), &w.PkCommitmentBlindFactor), nil
}
