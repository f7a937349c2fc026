package transport

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/chain5j/mpc-party2/mpcerr"
)

// SuccessCode is the retCode of a successful reply.
const SuccessCode = 0

// ServerReply is the envelope of every counterparty reply. Result holds the
// JSON encoded round message and is only present on success.
type ServerReply struct {
	RetCode int     `json:"retCode"`
	RetMsg  string  `json:"retMsg"`
	Result  *string `json:"result"`
}

// NewReply wraps v as a successful reply.
func NewReply(v interface{}) (*ServerReply, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	result := string(b)
	return &ServerReply{RetCode: SuccessCode, RetMsg: "OK", Result: &result}, nil
}

// NewErrorReply builds a failed reply without result.
func NewErrorReply(code int, msg string) *ServerReply {
	return &ServerReply{RetCode: code, RetMsg: msg}
}

// Decode checks the status of the reply and parses its result into v.
func (r *ServerReply) Decode(v interface{}) error {
	return r.decode("", v)
}

func (r *ServerReply) decode(op string, v interface{}) error {
	if r.RetCode != SuccessCode {
		return mpcerr.Protocol(op, r.RetCode, r.RetMsg)
	}

	if r.Result == nil || *r.Result == "" {
		return mpcerr.Decode(op, errors.New("reply has no result"))
	}

	if err := json.Unmarshal([]byte(*r.Result), v); err != nil {
		return mpcerr.Decode(op, errors.Wrap(err, "malformed result"))
	}

	return nil
}
