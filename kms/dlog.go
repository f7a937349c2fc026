// Package kms
package kms

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chain5j/mpc-party2/eckey"
)

// DLogProof is a Schnorr proof of knowledge of the discrete log of PublicShare.
type DLogProof struct {
	PublicShare       *eckey.Point `json:"pk"`
	PkRandComm        *eckey.Point `json:"pk_t_rand_commitment"`
	ChallengeResponse *hexutil.Big `json:"challenge_response"`
}

func dlogProve(sk *big.Int) (*DLogProof, error) {
	N := eckey.N()

	r, err := eckey.RandScalar(N)
	if err != nil {
		return nil, err
	}
	defer r.SetInt64(0)

	pk, err := eckey.ScalarBaseMult(sk)
	if err != nil {
		return nil, err
	}
	pkRand, err := eckey.ScalarBaseMult(r)
	if err != nil {
		return nil, err
	}

	challenge := dlogChallenge(pk, pkRand)

	challengeMulSk := new(big.Int).Mul(challenge, sk)
	challengeMulSk.Mod(challengeMulSk, N)

	challengeResponse := new(big.Int).Sub(r, challengeMulSk)
	challengeResponse.Mod(challengeResponse, N)

	return &DLogProof{
		PublicShare:       pk,
		PkRandComm:        pkRand,
		ChallengeResponse: (*hexutil.Big)(challengeResponse),
	}, nil
}

// Verify checks pkRand == resp*G + challenge*pk.
func (proof *DLogProof) Verify() error {
	if proof == nil || proof.PublicShare == nil || proof.PkRandComm == nil || proof.ChallengeResponse == nil {
		return ErrInvalidDlogProof
	}

	resp := proof.ChallengeResponse.ToInt()
	if resp.Sign() <= 0 || resp.Cmp(eckey.N()) >= 0 {
		return ErrInvalidDlogProof
	}

	challenge := dlogChallenge(proof.PublicShare, proof.PkRandComm)

	pkChallenge, err := proof.PublicShare.ScalarMult(challenge)
	if err != nil {
		return ErrInvalidDlogProof
	}

	pkVerifier, err := eckey.ScalarBaseMult(resp)
	if err != nil {
		return ErrInvalidDlogProof
	}
	pkVerifier, err = pkVerifier.Add(pkChallenge)
	if err != nil {
		return ErrInvalidDlogProof
	}

	if !pkVerifier.Equal(proof.PkRandComm) {
		return ErrInvalidDlogProof
	}

	return nil
}

func dlogChallenge(pk, pkRand *eckey.Point) *big.Int {
	h := sha256.New()
	h.Write(pk.Bytes())
	h.Write(pkRand.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}
