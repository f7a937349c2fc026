package party2

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/mpcerr"
	"github.com/chain5j/mpc-party2/transport"
)

type SignFirstReq struct {
	ID                string `json:"id"`
	EphKeyGenFirstMsg string `json:"ephKeyGenFirstMsg"`
}

type SignSecondReq struct {
	ID               string `json:"id"`
	SignSecondMsgReq string `json:"signSecondMsgReq"`
}

// SignSecondMsgRequest forwards the digest and the derivation path with the
// partial signature so the counterparty can derive the matching child share.
type SignSecondMsgRequest struct {
	Message             *hexutil.Big     `json:"message"`
	PartyTwoSignMessage *kms.SignMessage `json:"party_two_sign_message"`
	XPosChildKey        uint32           `json:"x_pos_child_key"`
	YPosChildKey        uint32           `json:"y_pos_child_key"`
}

// Sign signs digest with child, the share derived from the master key of
// session id on path. The returned signature has been checked to verify, and
// to recover, under child's public key.
func Sign(ctx context.Context, client transport.Poster, digest *big.Int, child *kms.MasterKey2, path kms.DerivationPath, id string, opts ...Option) (*kms.SignatureRecid, error) {
	o := newOptions(opts)
	start := time.Now()

	if err := kms.ValidDigest(digest); err != nil {
		return nil, mpcerr.InputDecode("sign", err)
	}
	if child == nil {
		return nil, mpcerr.InputDecode("sign", errors.New("missing key share"))
	}
	if id == "" {
		return nil, mpcerr.InputDecode("sign", errors.New("missing session id"))
	}

	ephFirst, witness, kp, err := kms.SignFirstMessage()
	if err != nil {
		return nil, errors.Wrap(err, "sign first message")
	}
	defer kp.Zero()
	defer witness.Zero()

	ephMsg, err := json.Marshal(ephFirst)
	if err != nil {
		return nil, err
	}

	var p1First kms.EphKeyGenParty1FirstMsg
	err = transport.PostAndDecode(ctx, client, transport.SignPath("first"),
		&SignFirstReq{ID: id, EphKeyGenFirstMsg: string(ephMsg)}, &p1First)
	if err != nil {
		return nil, err
	}

	partial, err := child.SignSecondMessage(kp, witness, &p1First, digest)
	if err != nil {
		return nil, mpcerr.Verification("sign", err)
	}

	secondMsg, err := json.Marshal(&SignSecondMsgRequest{
		Message:             (*hexutil.Big)(digest),
		PartyTwoSignMessage: partial,
		XPosChildKey:        path.CoinType,
		YPosChildKey:        path.Account,
	})
	if err != nil {
		return nil, err
	}

	var sig kms.SignatureRecid
	err = transport.PostAndDecode(ctx, client, transport.SignPath("second"),
		&SignSecondReq{ID: id, SignSecondMsgReq: string(secondMsg)}, &sig)
	if err != nil {
		return nil, err
	}

	if err := sig.Verify(digest, child.PublicPoint()); err != nil {
		return nil, mpcerr.Verification("signature", err)
	}

	o.log.Debug().
		Str("id", id).
		Uint32("x_pos", path.CoinType).
		Uint32("y_pos", path.Account).
		Dur("took", time.Since(start)).
		Msg("sign done")

	return &sig, nil
}
