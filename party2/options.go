// Package party2 drives the client side of the two-party ECDSA protocol:
// key generation with the chain code exchange, and signing under a derived
// child key.
package party2

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chain5j/mpc-party2/kms"
)

type options struct {
	salt []byte
	log  zerolog.Logger
}

type Option func(*options)

// WithSalt sets the domain separator of the Paillier correct-key proof.
func WithSalt(salt string) Option {
	return func(o *options) {
		o.salt = []byte(salt)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		salt: []byte(kms.DefaultSalt),
		log:  log.Logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
