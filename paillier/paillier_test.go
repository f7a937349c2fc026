package paillier

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"testing"

	gadget "github.com/roasbeef/go-go-gadget-paillier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBits = 1024

func TestEncryptDecrypt(t *testing.T) {
	sk, err := GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)

	m := big.NewInt(123456789)
	c, err := Encrypt(&sk.PublicKey, m.Bytes())
	require.NoError(t, err)

	d, err := Decrypt(sk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(new(big.Int).SetBytes(d)))

	_, err = Encrypt(&sk.PublicKey, sk.N.Bytes())
	assert.Equal(t, ErrMessageTooLong, err)
}

func TestHomomorphic(t *testing.T) {
	sk, err := GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)
	pk := &sk.PublicKey

	c1, err := Encrypt(pk, big.NewInt(20).Bytes())
	require.NoError(t, err)
	c2, err := Encrypt(pk, big.NewInt(22).Bytes())
	require.NoError(t, err)

	sum, err := Decrypt(sk, AddCipher(pk, c1, c2))
	require.NoError(t, err)
	assert.Equal(t, int64(42), new(big.Int).SetBytes(sum).Int64())

	plus, err := Decrypt(sk, Add(pk, c1, big.NewInt(5).Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int64(25), new(big.Int).SetBytes(plus).Int64())

	prod, err := Decrypt(sk, Mul(pk, c2, big.NewInt(3).Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int64(66), new(big.Int).SetBytes(prod).Int64())
}

func TestExtractNroot(t *testing.T) {
	sk, err := GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)

	z := big.NewInt(987654321)
	root := sk.ExtractNroot(z)
	assert.Equal(t, 0, new(big.Int).Exp(root, sk.N, sk.N).Cmp(z))
}

func TestKeyJSON(t *testing.T) {
	sk, err := GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)

	enc, err := json.Marshal(sk)
	require.NoError(t, err)
	var sk2 PrivateKey
	require.NoError(t, json.Unmarshal(enc, &sk2))
	assert.Equal(t, 0, sk.N.Cmp(sk2.N))

	enc, err = json.Marshal(&sk.PublicKey)
	require.NoError(t, err)
	var pk PublicKey
	require.NoError(t, json.Unmarshal(enc, &pk))
	assert.Equal(t, 0, sk.NSquared.Cmp(pk.NSquared))
	assert.Equal(t, 0, sk.G.Cmp(pk.G))
}

func TestPublicKeyValidation(t *testing.T) {
	_, err := NewPublicKey(big.NewInt(15))
	assert.Equal(t, ErrInvalidPublicKey, err)

	var pk PublicKey
	assert.Error(t, json.Unmarshal([]byte(`{"n":"0x0f"}`), &pk))

	sk, err := GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)
	assert.False(t, sk.ValidCipher(big.NewInt(0)))
	assert.False(t, sk.ValidCipher(sk.NSquared))
	assert.False(t, sk.ValidCipher(sk.N))

	c, err := Encrypt(&sk.PublicKey, []byte{1})
	require.NoError(t, err)
	assert.True(t, sk.ValidCipher(new(big.Int).SetBytes(c)))
}

// Ciphertexts must be interchangeable with the go-go-gadget-paillier implementation.
func TestInteropWithGadget(t *testing.T) {
	ref, err := gadget.GenerateKey(rand.Reader, testBits)
	require.NoError(t, err)

	pk, err := NewPublicKey(ref.N)
	require.NoError(t, err)

	c, err := Encrypt(pk, big.NewInt(1000).Bytes())
	require.NoError(t, err)
	c = Mul(pk, c, big.NewInt(7).Bytes())

	m, err := gadget.Decrypt(ref, c)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), new(big.Int).SetBytes(m).Int64())

	refC, err := gadget.Encrypt(&ref.PublicKey, big.NewInt(11).Bytes())
	require.NoError(t, err)
	refC = Add(pk, refC, big.NewInt(31).Bytes())

	m, err = gadget.Decrypt(ref, refC)
	require.NoError(t, err)
	assert.Equal(t, int64(42), new(big.Int).SetBytes(m).Int64())
}
