package party2

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/mpcerr"
	"github.com/chain5j/mpc-party2/transport"
)

// PrivateShare is the result of key generation: the session id assigned by
// the counterparty and party two's master key.
type PrivateShare struct {
	ID        string          `json:"id"`
	MasterKey *kms.MasterKey2 `json:"master_key"`
}

type KeyGenSecondReq struct {
	ID        string `json:"id"`
	DLogProof string `json:"d_log_proof"`
}

type ChainCodeFirstReq struct {
	ID string `json:"id"`
}

type ChainCodeSecondReq struct {
	ID        string `json:"id"`
	DLogProof string `json:"d_log_proof"`
}

// keyGenFirstReply is the [id, message] pair of the first key generation reply.
type keyGenFirstReply struct {
	ID  string
	Msg kms.KeyGenFirstMsg
}

func (r *keyGenFirstReply) UnmarshalJSON(input []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(input, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return errors.Errorf("want [id, message], got %d elements", len(tuple))
	}

	if err := json.Unmarshal(tuple[0], &r.ID); err != nil {
		return errors.Wrap(err, "session id")
	}
	if r.ID == "" {
		return errors.New("empty session id")
	}

	return json.Unmarshal(tuple[1], &r.Msg)
}

// GetMasterKey runs the two key generation rounds followed by the two chain
// code rounds. Any failure aborts the whole exchange and nothing is returned.
func GetMasterKey(ctx context.Context, client transport.Poster, opts ...Option) (*PrivateShare, error) {
	o := newOptions(opts)
	start := time.Now()

	var first keyGenFirstReply
	if err := transport.PostAndDecode(ctx, client, transport.KeyGenPath("first"), nil, &first); err != nil {
		return nil, err
	}
	id := first.ID

	p2First, kp, err := kms.KeyGenFirstMessage()
	if err != nil {
		return nil, errors.Wrap(err, "key gen first message")
	}
	defer kp.Zero()

	proof, err := json.Marshal(p2First.DLogProof)
	if err != nil {
		return nil, err
	}

	var second kms.KeyGenParty1SecondMsg
	err = transport.PostAndDecode(ctx, client, transport.KeyGenPath("second"),
		&KeyGenSecondReq{ID: id, DLogProof: string(proof)}, &second)
	if err != nil {
		return nil, err
	}

	paillierKey, err := kms.KeyGenSecondMessage(&first.Msg, &second, o.salt)
	if err != nil {
		return nil, mpcerr.Verification("keygen", err)
	}

	var ccFirst kms.ChainCodeParty1FirstMsg
	err = transport.PostAndDecode(ctx, client, transport.KeyGenPath("chaincode/first"),
		&ChainCodeFirstReq{ID: id}, &ccFirst)
	if err != nil {
		return nil, err
	}

	ccP2First, ccKp, err := kms.ChainCodeFirstMessage()
	if err != nil {
		return nil, errors.Wrap(err, "chain code first message")
	}
	defer ccKp.Zero()

	ccProof, err := json.Marshal(ccP2First.DLogProof)
	if err != nil {
		return nil, err
	}

	var ccSecond kms.ChainCodeParty1SecondMsg
	err = transport.PostAndDecode(ctx, client, transport.KeyGenPath("chaincode/second"),
		&ChainCodeSecondReq{ID: id, DLogProof: string(ccProof)}, &ccSecond)
	if err != nil {
		return nil, err
	}

	if err := kms.ChainCodeSecondMessage(&ccFirst, &ccSecond); err != nil {
		return nil, mpcerr.Verification("chain code", err)
	}

	chainCode, err := kms.ComputeChainCode(ccSecond.CommWitness.PublicShare, ccKp)
	if err != nil {
		return nil, mpcerr.Verification("chain code", err)
	}

	mk, err := kms.SetMasterKey(chainCode, kp, second.Party1Public(), paillierKey)
	if err != nil {
		return nil, mpcerr.Verification("master key", err)
	}

	o.log.Debug().
		Str("id", id).
		Dur("took", time.Since(start)).
		Msg("keygen done")

	return &PrivateShare{ID: id, MasterKey: mk}, nil
}
