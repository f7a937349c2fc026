package ffi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/mpcerr"
	"github.com/chain5j/mpc-party2/party2"
	"github.com/chain5j/mpc-party2/transport"
)

// timeout is shared by every call and fixed at init from PARTY2_TIMEOUT.
var timeout time.Duration

func init() {
	v := viper.New()
	v.SetEnvPrefix("PARTY2")
	v.AutomaticEnv()
	v.SetDefault("timeout", transport.DefaultTimeout)

	timeout = v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}
}

func newClient(endpoint, authToken string) *transport.Client {
	return transport.NewClient(transport.Config{
		Endpoint:  endpoint,
		AuthToken: authToken,
		Timeout:   timeout,
	})
}

// GetClientMasterKey runs key generation against endpoint and returns the
// PrivateShare.
func GetClientMasterKey(endpoint, authToken string) (out string) {
	const op = "get_client_master_key"
	defer recoverFailure(op, &out)

	endpoint, err := parseEndpoint(op, endpoint)
	if err != nil {
		return failure(op, err)
	}
	authToken, err = parseAuthToken(op, authToken)
	if err != nil {
		return failure(op, err)
	}

	share, err := party2.GetMasterKey(context.Background(), newClient(endpoint, authToken))
	if err != nil {
		return failure(op, err)
	}
	return success(share)
}

// KeyDerive returns the DerivedKey of the master key at (xPos, yPos).
func KeyDerive(masterKeyJSON string, xPos, yPos int32) (out string) {
	const op = "key_derive"
	defer recoverFailure(op, &out)

	derived, err := derive(op, masterKeyJSON, xPos, yPos)
	if err != nil {
		return failure(op, err)
	}
	return success(derived)
}

// GetPublicShareKey returns the joint public key of a Party2Public.
func GetPublicShareKey(party2PublicJSON string) (out string) {
	const op = "get_public_share_key"
	defer recoverFailure(op, &out)

	if err := requireText(op, "public share", party2PublicJSON); err != nil {
		return failure(op, err)
	}

	var pub kms.Party2Public
	if err := json.Unmarshal([]byte(party2PublicJSON), &pub); err != nil {
		return failure(op, mpcerr.InputDecode(op, errors.Wrap(err, "public share")))
	}
	return success(pub.Q)
}

// GetPublicShareKeyWithDerive returns the public key of the child at
// (xPos, yPos).
func GetPublicShareKeyWithDerive(masterKeyJSON string, xPos, yPos int32) (out string) {
	const op = "get_public_share_key_with_derive"
	defer recoverFailure(op, &out)

	derived, err := derive(op, masterKeyJSON, xPos, yPos)
	if err != nil {
		return failure(op, err)
	}
	return success(derived.PublicKey())
}

// SignMessage derives the child at (xPos, yPos) and signs messageHex with it
// in session id.
func SignMessage(endpoint, authToken, messageHex, masterKeyJSON string, xPos, yPos int32, id string) (out string) {
	const op = "sign_message"
	defer recoverFailure(op, &out)

	endpoint, err := parseEndpoint(op, endpoint)
	if err != nil {
		return failure(op, err)
	}
	authToken, err = parseAuthToken(op, authToken)
	if err != nil {
		return failure(op, err)
	}
	m, err := parseMessage(op, messageHex)
	if err != nil {
		return failure(op, err)
	}
	id, err = parseSessionID(op, id)
	if err != nil {
		return failure(op, err)
	}

	derived, err := derive(op, masterKeyJSON, xPos, yPos)
	if err != nil {
		return failure(op, err)
	}

	sig, err := party2.Sign(context.Background(), newClient(endpoint, authToken), m, derived.MasterKey, derived.Path(), id)
	if err != nil {
		return failure(op, err)
	}
	return success(sig)
}

func derive(op, masterKeyJSON string, xPos, yPos int32) (*party2.DerivedKey, error) {
	path, err := parsePath(op, xPos, yPos)
	if err != nil {
		return nil, err
	}
	mk, err := parseMasterKey(op, masterKeyJSON)
	if err != nil {
		return nil, err
	}

	return party2.DeriveKey(mk, path.CoinType, path.Account)
}
