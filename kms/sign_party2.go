// Package kms
package kms

import (
	"crypto/rand"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"

	"github.com/chain5j/mpc-party2/paillier"
)

type (
	EphKeyGenParty2FirstMsg = CommitmentMsg
	EphKeyGenParty1FirstMsg = DLogMsg
)

type PartialSig struct {
	C3 hexutil.Bytes `json:"c3"`
}

// SignMessage is party two's second signing message: the encrypted partial
// signature and the opening of its ephemeral commitment.
type SignMessage struct {
	PartialSig    *PartialSig `json:"partial_sig"`
	SecondMessage *WitnessMsg `json:"second_message"`
}

// SignFirstMessage samples the ephemeral nonce k2 and commits to R2 = k2*G.
func SignFirstMessage() (*EphKeyGenParty2FirstMsg, *EphCommWitness, *EcKeyPair, error) {
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

// SignSecondMessage verifies party one's ephemeral share and computes
//
//	c3 = Enc(rho*q + k2^-1*m) * c_key^(k2^-1*r*x2) mod N^2
//
// kp is consumed whether or not it succeeds.
func (mk *MasterKey2) SignSecondMessage(kp *EcKeyPair, witness *EphCommWitness, p1 *EphKeyGenParty1FirstMsg, m *big.Int) (*SignMessage, error) {
	if err := ValidDigest(m); err != nil {
		kp.Zero()
		return nil, err
	}
	if err := p1.Verify(); err != nil {
		kp.Zero()
		return nil, err
	}

	k2, err := kp.consume()
	if err != nil {
		return nil, err
	}
	defer k2.SetInt64(0)

	R, err := p1.Share().ScalarMult(k2)
	if err != nil {
		return nil, err
	}

	q := defaultKeyParams.Q
	r := new(big.Int).Mod(R.X, q)
	k2Inv := modInverse(k2)
	defer k2Inv.SetInt64(0)

	ek := mk.Public.PaillierPub
	var c1, c2 []byte

	g := new(errgroup.Group)
	g.Go(func() error {
		rho, err := rand.Int(rand.Reader, defaultKeyParams.QSquared)
		if err != nil {
			return err
		}

		// rho*q + k2^-1*m mod q
		partial := new(big.Int).Mul(k2Inv, m)
		partial.Mod(partial, q)
		partial.Add(partial, rho.Mul(rho, q))

		c1, err = paillier.Encrypt(ek, partial.Bytes())
		return err
	})
	g.Go(func() error {
		// k2^-1 * r * x2 mod q
		v := new(big.Int).Mul(k2Inv, r)
		v.Mul(v, mk.Private.X2)
		v.Mod(v, q)

		c2 = paillier.Mul(ek, mk.Public.CKey.Bytes(), v.Bytes())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SignMessage{
		PartialSig:    &PartialSig{C3: paillier.AddCipher(ek, c1, c2)},
		SecondMessage: &WitnessMsg{CommWitness: witness},
	}, nil
}
