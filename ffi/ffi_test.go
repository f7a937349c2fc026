package ffi

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chain5j/mpc-party2/eckey"
	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/mpcerr"
	"github.com/chain5j/mpc-party2/party1sim"
	"github.com/chain5j/mpc-party2/party2"
	"github.com/chain5j/mpc-party2/transport"
)

const testToken = "token"

type counterparty struct {
	srv *party1sim.Server
	url string

	mu     sync.Mutex
	bodies map[string][]string
	calls  int
}

func newCounterparty(t *testing.T, opts ...party1sim.Option) *counterparty {
	t.Helper()

	cp := &counterparty{bodies: make(map[string][]string)}
	opts = append([]party1sim.Option{
		party1sim.WithPaillierBits(1024),
		party1sim.WithAuthToken(testToken),
		party1sim.WithObserver(func(path string, body []byte) {
			cp.mu.Lock()
			defer cp.mu.Unlock()
			cp.calls++
			cp.bodies[path] = append(cp.bodies[path], string(body))
		}),
	}, opts...)

	cp.srv = party1sim.New(opts...)
	ts := httptest.NewServer(cp.srv)
	t.Cleanup(func() {
		ts.Close()
		cp.srv.Close()
	})
	cp.url = ts.URL
	return cp
}

func (cp *counterparty) callCount() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.calls
}

// checkEnvelope asserts the envelope invariant and returns the envelope.
func checkEnvelope(t *testing.T, s string) *Envelope {
	t.Helper()

	env, err := ParseEnvelope(s)
	require.NoError(t, err)
	if env.RetCode == 0 {
		assert.Equal(t, "OK", env.RetMsg)
		assert.NotEmpty(t, env.Result)
	} else {
		assert.Empty(t, env.Result)
		assert.Regexp(t, "^Error: ", env.RetMsg)
	}
	return env
}

func masterKey(t *testing.T, cp *counterparty) (*party2.PrivateShare, string) {
	t.Helper()

	env := checkEnvelope(t, GetClientMasterKey(cp.url, testToken))
	require.Equal(t, 0, env.RetCode, env.RetMsg)

	var share party2.PrivateShare
	require.NoError(t, json.Unmarshal([]byte(env.Result), &share))

	mk, err := json.Marshal(share.MasterKey)
	require.NoError(t, err)
	return &share, string(mk)
}

func TestGetClientMasterKey(t *testing.T) {
	cp := newCounterparty(t)
	share, _ := masterKey(t, cp)

	p1, ok := cp.srv.Party1Public(share.ID)
	require.True(t, ok)
	assert.True(t, p1.Equal(share.MasterKey.Public.P1))
	assert.Equal(t, 4, cp.callCount())
}

func TestGetClientMasterKeyProtocolError(t *testing.T) {
	cp := newCounterparty(t, party1sim.FailOn(transport.KeyGenPath("first"), 42, "busy"))

	env := checkEnvelope(t, GetClientMasterKey(cp.url, testToken))
	assert.Equal(t, mpcerr.KindProtocol.Code(), env.RetCode)
	assert.Contains(t, env.RetMsg, "42:busy")
	assert.Equal(t, 1, cp.callCount())
}

func TestGetClientMasterKeyUnauthorized(t *testing.T) {
	cp := newCounterparty(t)

	env := checkEnvelope(t, GetClientMasterKey(cp.url, "wrong"))
	assert.Equal(t, mpcerr.KindProtocol.Code(), env.RetCode)
	assert.Contains(t, env.RetMsg, fmt.Sprint(party1sim.CodeUnauthorized))
}

func TestDeriveAndPublicKeys(t *testing.T) {
	cp := newCounterparty(t)
	share, mk := masterKey(t, cp)

	first := checkEnvelope(t, KeyDerive(mk, 60, 0))
	second := checkEnvelope(t, KeyDerive(mk, 60, 0))
	require.Equal(t, 0, first.RetCode)
	assert.JSONEq(t, first.Result, second.Result)

	var derived party2.DerivedKey
	require.NoError(t, json.Unmarshal([]byte(first.Result), &derived))
	assert.Equal(t, uint32(60), derived.XPos)
	assert.Equal(t, uint32(0), derived.YPos)

	env := checkEnvelope(t, GetPublicShareKeyWithDerive(mk, 60, 0))
	require.Equal(t, 0, env.RetCode)
	var childPub eckey.Point
	require.NoError(t, json.Unmarshal([]byte(env.Result), &childPub))
	assert.True(t, childPub.Equal(derived.PublicKey()))
	assert.False(t, childPub.Equal(share.MasterKey.PublicPoint()))

	other := checkEnvelope(t, GetPublicShareKeyWithDerive(mk, 60, 1))
	require.Equal(t, 0, other.RetCode)
	assert.NotEqual(t, env.Result, other.Result)

	pubJSON, err := json.Marshal(share.MasterKey.Public)
	require.NoError(t, err)
	env = checkEnvelope(t, GetPublicShareKey(string(pubJSON)))
	require.Equal(t, 0, env.RetCode)
	var pub eckey.Point
	require.NoError(t, json.Unmarshal([]byte(env.Result), &pub))
	assert.True(t, pub.Equal(share.MasterKey.PublicPoint()))
}

func TestSignMessage(t *testing.T) {
	cp := newCounterparty(t)
	share, mk := masterKey(t, cp)

	derived, err := party2.DeriveKey(share.MasterKey, 60, 0)
	require.NoError(t, err)

	const digest = "0x00ab4f8e39b7c1d9a36f2e5d4c3b2a1908f7e6d5c4b3a29180706f5e4d3c2b1a"
	for _, message := range []string{`"` + digest + `"`, digest, digest[2:]} {
		env := checkEnvelope(t, SignMessage(cp.url, testToken, message, mk, 60, 0, share.ID))
		require.Equal(t, 0, env.RetCode, env.RetMsg)

		var sig kms.SignatureRecid
		require.NoError(t, json.Unmarshal([]byte(env.Result), &sig))
		m, err := parseMessage("test", digest)
		require.NoError(t, err)
		require.NoError(t, sig.Verify(m, derived.PublicKey()))
	}

	for _, path := range []string{transport.SignPath("first"), transport.SignPath("second")} {
		bodies := cp.bodies[path]
		require.Len(t, bodies, 3)
		for _, body := range bodies {
			var req struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &req))
			assert.Equal(t, share.ID, req.ID)
		}
	}
}

func TestSignMessageRoundTwoError(t *testing.T) {
	cp := newCounterparty(t, party1sim.FailOn(transport.SignPath("second"), 42, "denied"))
	share, mk := masterKey(t, cp)

	env := checkEnvelope(t, SignMessage(cp.url, testToken, "0x01", mk, 60, 0, share.ID))
	assert.NotEqual(t, 0, env.RetCode)
	assert.Contains(t, env.RetMsg, "42")
}

func TestInputErrorsMakeNoCalls(t *testing.T) {
	cp := newCounterparty(t)
	share, mk := masterKey(t, cp)
	before := cp.callCount()

	cases := map[string]string{
		"bad endpoint":      GetClientMasterKey("not a url", testToken),
		"empty endpoint":    GetClientMasterKey("", testToken),
		"invalid utf8":      GetClientMasterKey(cp.url, "\xff"),
		"empty key":         KeyDerive("", 1, 1),
		"malformed key":     KeyDerive("{", 1, 1),
		"negative index":    KeyDerive(mk, -1, 0),
		"bad public":        GetPublicShareKey(`{"q":{"x":"0x1","y":"0x2"}}`),
		"utf8 public":       GetPublicShareKey("\xff"),
		"derive negative":   GetPublicShareKeyWithDerive(mk, 0, -5),
		"bad message":       SignMessage(cp.url, testToken, "zz", mk, 0, 0, share.ID),
		"long message":      SignMessage(cp.url, testToken, "0x01"+digest64(), mk, 0, 0, share.ID),
		"empty message":     SignMessage(cp.url, testToken, "0x", mk, 0, 0, share.ID),
		"empty id":          SignMessage(cp.url, testToken, "0x01", mk, 0, 0, " "),
		"padded id":         SignMessage(cp.url, testToken, "0x01", mk, 0, 0, " "+share.ID+"\n"),
		"padded token":      SignMessage(cp.url, testToken+" ", "0x01", mk, 0, 0, share.ID),
		"sign bad key":      SignMessage(cp.url, testToken, "0x01", "[]", 0, 0, share.ID),
		"sign negative":     SignMessage(cp.url, testToken, "0x01", mk, -1, 0, share.ID),
		"sign utf8 message": SignMessage(cp.url, testToken, "\xff", mk, 0, 0, share.ID),
	}

	for name, out := range cases {
		env := checkEnvelope(t, out)
		assert.Equal(t, mpcerr.KindInputDecode.Code(), env.RetCode, name)
	}
	assert.Equal(t, before, cp.callCount())
}

func TestPanicBecomesFailure(t *testing.T) {
	call := func() (out string) {
		defer recoverFailure("boom", &out)
		var mk *kms.MasterKey2
		return success(mk.PublicPoint())
	}

	env := checkEnvelope(t, call())
	assert.Equal(t, mpcerr.KindUnknown.Code(), env.RetCode)
	assert.Contains(t, env.RetMsg, "panic")
}

func TestTamperedMasterKeyIsRejected(t *testing.T) {
	cp := newCounterparty(t)
	_, mk := masterKey(t, cp)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(mk), &raw))
	raw["private"] = json.RawMessage(`{"x2":"0x2"}`)
	bad, err := json.Marshal(raw)
	require.NoError(t, err)

	env := checkEnvelope(t, KeyDerive(string(bad), 60, 0))
	assert.Equal(t, mpcerr.KindInputDecode.Code(), env.RetCode)
}

func TestTransportFailure(t *testing.T) {
	env := checkEnvelope(t, GetClientMasterKey("http://127.0.0.1:1", ""))
	assert.Equal(t, mpcerr.KindTransport.Code(), env.RetCode)
}

func digest64() string {
	return "0000000000000000000000000000000000000000000000000000000000000000"
}
