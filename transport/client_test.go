package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chain5j/mpc-party2/mpcerr"
)

type echoMsg struct {
	ID string `json:"id"`
}

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(Config{Endpoint: srv.URL + "/", AuthToken: "token", Timeout: time.Second})
}

func TestPostSendsEmptyObjectAndToken(t *testing.T) {
	var gotPath, gotAuth, gotType, gotBody string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPath, gotAuth, gotType, gotBody = r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type"), string(b)
		_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":"{\"id\":\"abc\"}"}`))
	})

	var msg echoMsg
	require.NoError(t, PostAndDecode(context.Background(), c, KeyGenPath("first"), nil, &msg))

	assert.Equal(t, "/"+KeyGenPathPrefix+"/first", gotPath)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "{}", gotBody)
	assert.Equal(t, "abc", msg.ID)
}

func TestPostWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body echoMsg
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sid", body.ID)
		_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":"{}"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	reply, err := c.Post(context.Background(), SignPath("first"), &echoMsg{ID: "sid"})
	require.NoError(t, err)
	assert.Equal(t, SuccessCode, reply.RetCode)
}

func TestProtocolError(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"retCode":42,"retMsg":"session expired","result":null}`))
	})

	var msg echoMsg
	err := PostAndDecode(context.Background(), c, SignPath("second"), nil, &msg)
	require.Error(t, err)
	assert.Equal(t, mpcerr.KindProtocol, mpcerr.KindOf(err))
	assert.Contains(t, err.Error(), "42:session expired")
}

func TestTransportErrors(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	reply, err := c.Post(context.Background(), "x", nil)
	assert.Nil(t, reply)
	assert.Equal(t, mpcerr.KindTransport, mpcerr.KindOf(err))
	assert.Contains(t, err.Error(), "502")

	_, c = newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"Bad Gateway"}`))
	})
	var msg echoMsg
	err = PostAndDecode(context.Background(), c, KeyGenPath("first"), nil, &msg)
	assert.Equal(t, mpcerr.KindTransport, mpcerr.KindOf(err))
	assert.Contains(t, err.Error(), "HTTP 502")

	_, c = newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"retCode":42,"retMsg":"busy"}`))
	})
	err = PostAndDecode(context.Background(), c, KeyGenPath("first"), nil, &msg)
	assert.Equal(t, mpcerr.KindProtocol, mpcerr.KindOf(err))

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = NewClient(Config{Endpoint: closed.URL}).Post(context.Background(), "x", nil)
	assert.Equal(t, mpcerr.KindTransport, mpcerr.KindOf(err))
}

func TestDecodeErrors(t *testing.T) {
	var msg echoMsg

	err := (&ServerReply{RetCode: SuccessCode}).Decode(&msg)
	assert.Equal(t, mpcerr.KindDecode, mpcerr.KindOf(err))

	bad := "not json"
	err = (&ServerReply{RetCode: SuccessCode, Result: &bad}).Decode(&msg)
	assert.Equal(t, mpcerr.KindDecode, mpcerr.KindOf(err))

	err = NewErrorReply(7, "nope").Decode(&msg)
	assert.Equal(t, mpcerr.KindProtocol, mpcerr.KindOf(err))
	assert.Equal(t, "7:nope", err.Error())
}

func TestNewReply(t *testing.T) {
	reply, err := NewReply([]interface{}{"id", echoMsg{ID: "x"}})
	require.NoError(t, err)

	var tuple []json.RawMessage
	require.NoError(t, reply.Decode(&tuple))
	require.Len(t, tuple, 2)
	assert.Equal(t, "OK", reply.RetMsg)
}
