// Package paillier
package paillier

import (
	"crypto/rand"
	"math/big"
)

// Encrypt encrypts a plain text represented as a byte array. The passed plain
// text MUST NOT be larger than the modulus of the passed public key.
func Encrypt(pubKey *PublicKey, plainText []byte) ([]byte, error) {
	c, _, err := EncryptAndNonce(pubKey, plainText)
	return c, err
}

// EncryptAndNonce encrypts a plain text represented as a byte array, and in
// addition, returns the nonce used during encryption.
func EncryptAndNonce(pubKey *PublicKey, plainText []byte) ([]byte, *big.Int, error) {
	r, err := randUnit(pubKey.N)
	if err != nil {
		return nil, nil, err
	}

	c, err := EncryptWithNonce(pubKey, r, plainText)
	if err != nil {
		return nil, nil, err
	}

	return c.Bytes(), r, nil
}

// EncryptWithNonce encrypts a plain text represented as a byte array using the
// provided nonce to perform encryption.
func EncryptWithNonce(pubKey *PublicKey, r *big.Int, plainText []byte) (*big.Int, error) {
	m := new(big.Int).SetBytes(plainText)
	if pubKey.N.Cmp(m) < 1 { // N <= m
		return nil, ErrMessageTooLong
	}

	// c = g^m * r^n mod n^2 = ((m*n+1) mod n^2) * r^n mod n^2
	n := pubKey.N
	c := new(big.Int).Mod(
		new(big.Int).Mul(
			new(big.Int).Mod(new(big.Int).Add(one, new(big.Int).Mul(m, n)), pubKey.NSquared),
			new(big.Int).Exp(r, n, pubKey.NSquared),
		),
		pubKey.NSquared,
	)

	return c, nil
}

// Decrypt decrypts the passed cipher text.
func Decrypt(privKey *PrivateKey, cipherText []byte) ([]byte, error) {
	c := new(big.Int).SetBytes(cipherText)
	if privKey.NSquared.Cmp(c) < 1 { // c >= n^2
		return nil, ErrInvalidCipher
	}

	cp := new(big.Int).Exp(c, privKey.pminusone, privKey.pp)
	lp := l(cp, privKey.p)
	mp := new(big.Int).Mod(new(big.Int).Mul(lp, privKey.hp), privKey.p)
	cq := new(big.Int).Exp(c, privKey.qminusone, privKey.qq)
	lq := l(cq, privKey.q)
	mq := new(big.Int).Mod(new(big.Int).Mul(lq, privKey.hq), privKey.q)

	return crtCombine(mp, mq, privKey.p, privKey.q, privKey.pinvq).Bytes(), nil
}

// AddCipher homomorphically adds together two cipher texts.
func AddCipher(pubKey *PublicKey, cipher1, cipher2 []byte) []byte {
	x := new(big.Int).SetBytes(cipher1)
	y := new(big.Int).SetBytes(cipher2)

	// x * y mod n^2
	return new(big.Int).Mod(
		new(big.Int).Mul(x, y),
		pubKey.NSquared,
	).Bytes()
}

// Add homomorphically adds a plaintext constant to a cipher text.
func Add(pubKey *PublicKey, cipher, constant []byte) []byte {
	c := new(big.Int).SetBytes(cipher)
	x := new(big.Int).SetBytes(constant)

	// c * g ^ x mod n^2
	return new(big.Int).Mod(
		new(big.Int).Mul(c, new(big.Int).Exp(pubKey.G, x, pubKey.NSquared)),
		pubKey.NSquared,
	).Bytes()
}

// Mul homomorphically multiplies a cipher text by a plaintext constant.
func Mul(pubKey *PublicKey, cipher []byte, constant []byte) []byte {
	c := new(big.Int).SetBytes(cipher)
	x := new(big.Int).SetBytes(constant)

	// c ^ x mod n^2
	return new(big.Int).Exp(c, x, pubKey.NSquared).Bytes()
}

// ExtractNroot returns the n-th root of z modulo n.
func (dk *PrivateKey) ExtractNroot(z *big.Int) *big.Int {
	phi := new(big.Int).Mul(dk.pminusone, dk.qminusone)
	dn := new(big.Int).ModInverse(dk.N, phi)
	dp, dq := crtDecompose(dn, dk.pminusone, dk.qminusone)
	zp, zq := crtDecompose(z, dk.p, dk.q)

	rp := new(big.Int).Exp(zp, dp, dk.p)
	rq := new(big.Int).Exp(zq, dq, dk.q)

	return crtCombine(rp, rq, dk.p, dk.q, dk.pinvq)
}

func randUnit(n *big.Int) (*big.Int, error) {
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if r.Sign() > 0 && new(big.Int).GCD(nil, nil, r, n).Cmp(one) == 0 {
			return r, nil
		}
	}
}

func crtDecompose(x *big.Int, m1 *big.Int, m2 *big.Int) (*big.Int, *big.Int) {
	return new(big.Int).Mod(x, m1), new(big.Int).Mod(x, m2)
}

// crtCombine returns the x mod m1*m2 with x = x1 mod m1 and x = x2 mod m2.
func crtCombine(x1 *big.Int, x2 *big.Int, m1 *big.Int, m2 *big.Int, m1Inv *big.Int) *big.Int {
	diff := new(big.Int).Sub(x2, x1)
	diff.Mod(diff, m2)

	u := new(big.Int).Mul(diff, m1Inv)
	u.Mod(u, m2)

	return new(big.Int).Add(x1, new(big.Int).Mul(u, m1))
}
