package eckey

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointJSON(t *testing.T) {
	p, err := ScalarBaseMult(big.NewInt(7))
	require.NoError(t, err)

	enc, err := json.Marshal(p)
	require.NoError(t, err)

	var dec Point
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.True(t, p.Equal(&dec))
}

func TestPointRejectsOffCurve(t *testing.T) {
	var dec Point
	err := json.Unmarshal([]byte(`{"x":"0x1","y":"0x2"}`), &dec)
	assert.Equal(t, ErrPublicKeyNotOnCurve, err)

	err = json.Unmarshal([]byte(`{"x":"0x1"}`), &dec)
	assert.Error(t, err)
}

func TestScalarMultMatchesBase(t *testing.T) {
	g, err := ScalarBaseMult(big.NewInt(1))
	require.NoError(t, err)

	a, err := g.ScalarMult(big.NewInt(12))
	require.NoError(t, err)
	b, err := ScalarBaseMult(big.NewInt(12))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	sum, err := a.Add(b)
	require.NoError(t, err)
	c, err := ScalarBaseMult(big.NewInt(24))
	require.NoError(t, err)
	assert.True(t, sum.Equal(c))

	_, err = g.ScalarMult(N())
	assert.Equal(t, ErrPublicKeyNotOnCurve, err)
}

func TestCompress(t *testing.T) {
	p, err := ScalarBaseMult(big.NewInt(3))
	require.NoError(t, err)

	c, err := p.Compress()
	require.NoError(t, err)
	require.Len(t, c, 33)
	assert.Equal(t, p.X.Bytes(), new(big.Int).SetBytes(c[1:]).Bytes())
	assert.Equal(t, byte(0x02+p.Y.Bit(0)), c[0])
}

func TestToECDSARoundTrip(t *testing.T) {
	sk, err := ToECDSA(big.NewInt(42).Bytes())
	require.NoError(t, err)

	pub, err := UnmarshalPubkey(FromECDSAPub(&sk.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, 0, pub.X.Cmp(sk.X))

	_, err = ToECDSA(make([]byte, 33))
	assert.Error(t, err)
}
