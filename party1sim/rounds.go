package party1sim

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/chain5j/mpc-party2/kms"
)

type idReq struct {
	ID string `json:"id"`
}

type dlogReq struct {
	ID        string `json:"id"`
	DLogProof string `json:"d_log_proof"`
}

type signFirstReq struct {
	ID                string `json:"id"`
	EphKeyGenFirstMsg string `json:"ephKeyGenFirstMsg"`
}

type signSecondReq struct {
	ID               string `json:"id"`
	SignSecondMsgReq string `json:"signSecondMsgReq"`
}

type signSecondMsgReq struct {
	Message             *hexutil.Big     `json:"message"`
	PartyTwoSignMessage *kms.SignMessage `json:"party_two_sign_message"`
	XPosChildKey        uint32           `json:"x_pos_child_key"`
	YPosChildKey        uint32           `json:"y_pos_child_key"`
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fail(CodeBadRequest, "malformed request: %v", err)
	}
	return nil
}

// decodeField parses a JSON document carried as a string field.
func decodeField(name, field string, v interface{}) error {
	if err := json.Unmarshal([]byte(field), v); err != nil {
		return fail(CodeBadRequest, "malformed %s: %v", name, err)
	}
	return nil
}

func (s *Server) keyGenFirst(body []byte) (interface{}, error) {
	comm, witness, kp, err := kms.KeyGenParty1FirstMessage()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.sessions.Set(id, &session{kgWitness: witness, kgKp: kp}, ttlcache.DefaultTTL)

	return []interface{}{id, comm}, nil
}

func (s *Server) keyGenSecond(body []byte) (interface{}, error) {
	var req dlogReq
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	var proof kms.DLogProof
	if err := decodeField("d_log_proof", req.DLogProof, &proof); err != nil {
		return nil, err
	}

	sess, err := s.session(req.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.kgKp == nil || sess.master != nil {
		return nil, fail(CodeBadRequest, "key generation round out of order")
	}

	msg, mk, err := kms.KeyGenParty1SecondMessage(sess.kgWitness, sess.kgKp, &proof, s.opts.paillierBits, s.opts.salt)
	sess.kgKp = nil
	if err != nil {
		return nil, fail(CodeVerification, "%v", err)
	}
	sess.master = mk

	return msg, nil
}

func (s *Server) chainCodeFirst(body []byte) (interface{}, error) {
	var req idReq
	if err := decode(body, &req); err != nil {
		return nil, err
	}

	sess, err := s.session(req.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.master == nil || sess.master.ChainCode != nil {
		return nil, fail(CodeBadRequest, "chain code round out of order")
	}

	comm, witness, kp, err := kms.ChainCodeParty1FirstMessage()
	if err != nil {
		return nil, err
	}
	sess.ccKp.Zero()
	sess.ccWitness, sess.ccKp = witness, kp

	return comm, nil
}

func (s *Server) chainCodeSecond(body []byte) (interface{}, error) {
	var req dlogReq
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	var proof kms.DLogProof
	if err := decodeField("d_log_proof", req.DLogProof, &proof); err != nil {
		return nil, err
	}

	sess, err := s.session(req.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.ccKp == nil {
		return nil, fail(CodeBadRequest, "chain code round out of order")
	}

	msg, cc, err := kms.ChainCodeParty1SecondMessage(sess.ccWitness, sess.ccKp, &proof)
	sess.ccKp = nil
	if err != nil {
		return nil, fail(CodeVerification, "%v", err)
	}
	if err := sess.master.SetChainCode(cc); err != nil {
		return nil, err
	}

	return msg, nil
}

func (s *Server) signFirst(body []byte) (interface{}, error) {
	var req signFirstReq
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	var comm kms.EphKeyGenParty2FirstMsg
	if err := decodeField("ephKeyGenFirstMsg", req.EphKeyGenFirstMsg, &comm); err != nil {
		return nil, err
	}

	sess, err := s.session(req.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.master == nil || sess.master.ChainCode == nil {
		return nil, fail(CodeBadRequest, "key generation not finished")
	}

	if _, ok := sess.signs[comm.PkCommitment]; ok {
		return nil, fail(CodeBadRequest, "duplicate sign commitment")
	}
	if len(sess.signs) >= maxPendingSigns {
		return nil, fail(CodeBadRequest, "too many pending signatures")
	}

	msg, kp, err := kms.EphKeyGenParty1First()
	if err != nil {
		return nil, err
	}
	if sess.signs == nil {
		sess.signs = make(map[kms.Commitments]*pendingSign)
	}
	sess.signs[comm.PkCommitment] = &pendingSign{comm: &comm, kp: kp}

	return msg, nil
}

func (s *Server) signSecond(body []byte) (interface{}, error) {
	var req signSecondReq
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	var msg signSecondMsgReq
	if err := decodeField("signSecondMsgReq", req.SignSecondMsgReq, &msg); err != nil {
		return nil, err
	}
	if msg.Message == nil || msg.PartyTwoSignMessage == nil || msg.PartyTwoSignMessage.SecondMessage == nil {
		return nil, fail(CodeBadRequest, "missing message")
	}
	key, err := msg.PartyTwoSignMessage.SecondMessage.CommWitness.PkCommitment()
	if err != nil {
		return nil, fail(CodeBadRequest, "missing commitment opening")
	}

	sess, err := s.session(req.ID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	pending, ok := sess.signs[key]
	delete(sess.signs, key)
	master := sess.master
	sess.mu.Unlock()

	if !ok {
		return nil, fail(CodeBadRequest, "sign round out of order")
	}
	kp, comm := pending.kp, pending.comm

	child, err := master.GetChild(kms.DerivationPath{
		CoinType: msg.XPosChildKey,
		Account:  msg.YPosChildKey,
	})
	if err != nil {
		kp.Zero()
		return nil, err
	}

	sig, err := child.SignSecondMessage(kp, comm, msg.PartyTwoSignMessage, msg.Message.ToInt())
	if err != nil {
		return nil, fail(CodeVerification, "%v", err)
	}

	return sig, nil
}
