package party1sim

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/transport"
)

func post(t *testing.T, url, token, body string) (int, *transport.ServerReply) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var reply transport.ServerReply
	require.NoError(t, json.Unmarshal(raw, &reply))
	return resp.StatusCode, &reply
}

func TestKeyGenFirstReturnsSession(t *testing.T) {
	srv := New(WithPaillierBits(1024))
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	status, reply := post(t, ts.URL+"/"+transport.KeyGenPath("first"), "", "{}")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, transport.SuccessCode, reply.RetCode)

	var tuple []json.RawMessage
	require.NoError(t, reply.Decode(&tuple))
	require.Len(t, tuple, 2)

	var id string
	require.NoError(t, json.Unmarshal(tuple[0], &id))
	assert.NotEmpty(t, id)

	var comm kms.KeyGenFirstMsg
	require.NoError(t, json.Unmarshal(tuple[1], &comm))

	_, ok := srv.MasterKey(id)
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.requests.WithLabelValues(transport.KeyGenPath("first"), "ok")))
}

func TestRequiresToken(t *testing.T) {
	srv := New(WithAuthToken("secret"))
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	status, reply := post(t, ts.URL+"/"+transport.SignPath("first"), "wrong", "{}")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, CodeUnauthorized, reply.RetCode)
	assert.Nil(t, reply.Result)

	status, reply = post(t, ts.URL+"/"+transport.SignPath("first"), "secret", `{"id":"x","ephKeyGenFirstMsg":"{}"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, CodeSessionNotFound, reply.RetCode)
}

func TestMalformedRequests(t *testing.T) {
	srv := New()
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, reply := post(t, ts.URL+"/"+transport.KeyGenPath("second"), "", `not json`)
	assert.Equal(t, CodeBadRequest, reply.RetCode)

	_, reply = post(t, ts.URL+"/"+transport.KeyGenPath("second"), "", `{"id":"x","d_log_proof":"{"}`)
	assert.Equal(t, CodeBadRequest, reply.RetCode)

	_, reply = post(t, ts.URL+"/"+transport.KeyGenPath("chaincode/first"), "", `{"id":"missing"}`)
	assert.Equal(t, CodeSessionNotFound, reply.RetCode)
}

func TestFailOnAndObserver(t *testing.T) {
	var seen []string
	srv := New(
		FailOn(transport.KeyGenPath("first"), 42, "maintenance"),
		WithObserver(func(path string, body []byte) {
			seen = append(seen, path+" "+string(body))
		}),
	)
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, reply := post(t, ts.URL+"/"+transport.KeyGenPath("first"), "", "{}")
	assert.Equal(t, 42, reply.RetCode)
	assert.Equal(t, "maintenance", reply.RetMsg)
	assert.Equal(t, []string{transport.KeyGenPath("first") + " {}"}, seen)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "party1sim_requests_total")
}
