// Package kms
package kms

import (
	"crypto/rand"

	"golang.org/x/sync/errgroup"

	"github.com/chain5j/mpc-party2/paillier"
)

// KeyGenParty1FirstMessage samples party one's key share x1 in [1, q/3) and
// commits to it.
func KeyGenParty1FirstMessage() (*KeyGenFirstMsg, *CommWitness, *EcKeyPair, error) {
	kp, err := newEcKeyPair(defaultKeyParams.Q3)
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

// KeyGenParty1SecondMessage verifies party two's DLog proof, then opens party
// one's commitment together with a fresh Paillier key of the given size, the
// encryption of x1 under it and the correct-key proof. The key pair is
// consumed into the returned master key, which still lacks its chain code.
func KeyGenParty1SecondMessage(witness *CommWitness, kp *EcKeyPair, p2 *DLogProof, paillierBits int, salt []byte) (*KeyGenParty1SecondMsg, *MasterKey1, error) {
	var dk *paillier.PrivateKey

	g := new(errgroup.Group)
	g.Go(func() error {
		return p2.Verify()
	})
	g.Go(func() error {
		var err error
		dk, err = paillier.GenerateKey(rand.Reader, paillierBits)
		return err
	})
	if err := g.Wait(); err != nil {
		kp.Zero()
		return nil, nil, err
	}

	x1, err := kp.consume()
	if err != nil {
		return nil, nil, err
	}

	ckey, err := paillier.Encrypt(&dk.PublicKey, x1.Bytes())
	if err != nil {
		return nil, nil, err
	}

	q, err := p2.PublicShare.ScalarMult(x1)
	if err != nil {
		return nil, nil, err
	}

	msg := &KeyGenParty1SecondMsg{
		EcdhSecondMessage: &WitnessMsg{CommWitness: witness},
		EK:                &dk.PublicKey,
		CKey:              ckey,
		CorrectKeyProof:   NewCorrectKeyProof(dk, salt),
	}

	mk := &MasterKey1{
		Public: Party1Public{
			Q:           q,
			P1:          witness.PublicShare,
			P2:          p2.PublicShare,
			PaillierPub: &dk.PublicKey,
		},
		X1:          x1,
		PaillierKey: dk,
	}

	return msg, mk, nil
}
