// Package party1sim is an in-process counterparty for the party two client.
// It serves the six key generation and signing endpoints with the party one
// side of the protocol and keeps per-session state in memory.
package party1sim

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chain5j/mpc-party2/kms"
)

const (
	DefaultPaillierBits = 2048
	DefaultSessionTTL   = 30 * time.Minute
)

type fault struct {
	code int
	msg  string
}

type options struct {
	paillierBits int
	authToken    string
	sessionTTL   time.Duration
	salt         []byte
	faults       map[string]fault
	observer     func(path string, body []byte)
	log          zerolog.Logger
}

type Option func(*options)

// WithPaillierBits sets the modulus size of generated Paillier keys.
func WithPaillierBits(bits int) Option {
	return func(o *options) {
		o.paillierBits = bits
	}
}

// WithAuthToken requires every request to carry "Bearer <token>".
func WithAuthToken(token string) Option {
	return func(o *options) {
		o.authToken = token
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.sessionTTL = ttl
	}
}

func WithSalt(salt string) Option {
	return func(o *options) {
		o.salt = []byte(salt)
	}
}

// FailOn makes every request to path answer with retCode code and retMsg msg.
func FailOn(path string, code int, msg string) Option {
	return func(o *options) {
		o.faults[path] = fault{code: code, msg: msg}
	}
}

// WithObserver is called with the path and raw body of every request.
func WithObserver(fn func(path string, body []byte)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		paillierBits: DefaultPaillierBits,
		sessionTTL:   DefaultSessionTTL,
		salt:         []byte(kms.DefaultSalt),
		faults:       make(map[string]fault),
		log:          log.Logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
