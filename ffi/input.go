package ffi

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/mpcerr"
)

func requireText(op, name, s string) error {
	if !utf8.ValidString(s) {
		return mpcerr.InputDecode(op, errors.Errorf("%s is not valid UTF-8", name))
	}
	if strings.TrimSpace(s) == "" {
		return mpcerr.InputDecode(op, errors.Errorf("%s is empty", name))
	}
	return nil
}

func parseEndpoint(op, endpoint string) (string, error) {
	if err := requireText(op, "endpoint", endpoint); err != nil {
		return "", err
	}

	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", mpcerr.InputDecode(op, errors.Wrap(err, "endpoint"))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", mpcerr.InputDecode(op, errors.Errorf("endpoint %q is not an http(s) URL", endpoint))
	}
	return u.String(), nil
}

func parseAuthToken(op, token string) (string, error) {
	if !utf8.ValidString(token) {
		return "", mpcerr.InputDecode(op, errors.New("auth token is not valid UTF-8"))
	}
	if strings.TrimSpace(token) != token {
		return "", mpcerr.InputDecode(op, errors.New("auth token has surrounding whitespace"))
	}
	return token, nil
}

// parseSessionID returns id unchanged; ids that would need trimming are
// rejected.
func parseSessionID(op, id string) (string, error) {
	if err := requireText(op, "id", id); err != nil {
		return "", err
	}
	if strings.TrimSpace(id) != id {
		return "", mpcerr.InputDecode(op, errors.New("id has surrounding whitespace"))
	}
	return id, nil
}

func parseMasterKey(op, masterKeyJSON string) (*kms.MasterKey2, error) {
	if err := requireText(op, "master key", masterKeyJSON); err != nil {
		return nil, err
	}

	var mk kms.MasterKey2
	if err := json.Unmarshal([]byte(masterKeyJSON), &mk); err != nil {
		return nil, mpcerr.InputDecode(op, errors.Wrap(err, "master key"))
	}
	return &mk, nil
}

func parsePath(op string, xPos, yPos int32) (kms.DerivationPath, error) {
	if xPos < 0 || yPos < 0 {
		return kms.DerivationPath{}, mpcerr.InputDecode(op, errors.Errorf("negative derivation index (%d, %d)", xPos, yPos))
	}
	return kms.DerivationPath{CoinType: uint32(xPos), Account: uint32(yPos)}, nil
}

// parseMessage accepts the digest as a JSON string or as bare hex, with or
// without 0x.
func parseMessage(op, messageHex string) (*big.Int, error) {
	if err := requireText(op, "message", messageHex); err != nil {
		return nil, err
	}

	s := strings.TrimSpace(messageHex)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal([]byte(s), &s); err != nil {
			return nil, mpcerr.InputDecode(op, errors.Wrap(err, "message"))
		}
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, mpcerr.InputDecode(op, errors.New("message is empty"))
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, mpcerr.InputDecode(op, errors.Wrap(err, "message"))
	}

	m := new(big.Int).SetBytes(b)
	if err := kms.ValidDigest(m); err != nil {
		return nil, mpcerr.InputDecode(op, err)
	}
	return m, nil
}
