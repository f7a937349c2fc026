// Package kms
package kms

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chain5j/mpc-party2/paillier"
)

const (
	correctKeyProofReps = 11
	smallPrimeBound     = 6370
)

var smallPrimes = sieve(smallPrimeBound)

// NICorrectKeyProof proves non-interactively that the Paillier modulus n is
// such that x -> x^n is a permutation of Z*_n, by revealing n-th roots of
// eleven values derived from n and a salt.
type NICorrectKeyProof struct {
	SigmaVec []hexutil.Bytes `json:"sigma_vec"`
}

func NewCorrectKeyProof(dk *paillier.PrivateKey, salt []byte) *NICorrectKeyProof {
	sigma := make([]hexutil.Bytes, correctKeyProofReps)
	for i := range sigma {
		rho := correctKeyRho(dk.N, salt, i)
		sigma[i] = dk.ExtractNroot(rho).Bytes()
	}

	return &NICorrectKeyProof{SigmaVec: sigma}
}

func (p *NICorrectKeyProof) Verify(ek *paillier.PublicKey, salt []byte) error {
	if p == nil || ek == nil || len(p.SigmaVec) != correctKeyProofReps {
		return ErrInvalidCorrectKeyProof
	}

	m := new(big.Int)
	for _, prime := range smallPrimes {
		if m.Mod(ek.N, prime).Sign() == 0 {
			return ErrInvalidCorrectKeyProof
		}
	}

	for i, s := range p.SigmaVec {
		sigma := new(big.Int).SetBytes(s)
		if sigma.Sign() == 0 || sigma.Cmp(ek.N) >= 0 {
			return ErrInvalidCorrectKeyProof
		}

		rho := correctKeyRho(ek.N, salt, i)
		if new(big.Int).Exp(sigma, ek.N, ek.N).Cmp(rho) != 0 {
			return ErrInvalidCorrectKeyProof
		}
	}

	return nil
}

// correctKeyRho expands H(n || salt || i) to the length of n and reduces it mod n.
func correctKeyRho(n *big.Int, salt []byte, i int) *big.Int {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(i))

	h := sha256.New()
	h.Write(n.Bytes())
	h.Write(salt)
	h.Write(idx[:])
	seed := h.Sum(nil)

	size := (n.BitLen() + 7) / 8
	out := make([]byte, 0, size+sha256.Size)
	for ctr := uint32(0); len(out) < size; ctr++ {
		var c [4]byte
		binary.BigEndian.PutUint32(c[:], ctr)

		h.Reset()
		h.Write(seed)
		h.Write(c[:])
		out = h.Sum(out)
	}

	return new(big.Int).Mod(new(big.Int).SetBytes(out[:size]), n)
}

func sieve(bound int) []*big.Int {
	composite := make([]bool, bound)
	var primes []*big.Int
	for i := 2; i < bound; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, big.NewInt(int64(i)))
		for j := i * i; j < bound; j += i {
			composite[j] = true
		}
	}
	return primes
}
