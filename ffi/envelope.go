// Package ffi exposes the party two operations as flat string-in string-out
// calls. Every call returns a JSON Envelope and never panics across the
// boundary.
package ffi

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/chain5j/mpc-party2/mpcerr"
)

const okMsg = "OK"

// Envelope is the result of every boundary call. Result is the JSON encoded
// value on success and empty on failure.
type Envelope struct {
	RetCode int    `json:"ret_code"`
	RetMsg  string `json:"ret_msg"`
	Result  string `json:"result"`
}

func success(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return failure("encode result", err)
	}
	return encode(&Envelope{RetCode: 0, RetMsg: okMsg, Result: string(b)})
}

func failure(op string, err error) string {
	log.Debug().Str("op", op).Err(err).Msg("boundary call failed")

	return encode(&Envelope{
		RetCode: mpcerr.KindOf(err).Code(),
		RetMsg:  "Error: " + err.Error(),
	})
}

// recoverFailure turns a panic in a boundary call into a failure envelope.
func recoverFailure(op string, out *string) {
	if r := recover(); r != nil {
		*out = failure(op, errors.Errorf("%s: panic: %v", op, r))
	}
}

func encode(env *Envelope) string {
	b, err := json.Marshal(env)
	if err != nil {
		return `{"ret_code":10104000,"ret_msg":"Error: encode envelope","result":""}`
	}
	return string(b)
}

// ParseEnvelope decodes the string returned by a boundary call.
func ParseEnvelope(s string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, err
	}
	return &env, nil
}
