package party1sim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/jellydator/ttlcache/v3"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chain5j/mpc-party2/eckey"
	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/transport"
)

// retCodes of failed replies.
const (
	CodeBadRequest      = 10001
	CodeSessionNotFound = 10002
	CodeVerification    = 10003
	CodeUnauthorized    = 10004
	CodeInternal        = 10005
)

type replyError struct {
	code int
	msg  string
}

func (e *replyError) Error() string {
	return fmt.Sprintf("%d:%s", e.code, e.msg)
}

func fail(code int, format string, args ...interface{}) error {
	return &replyError{code: code, msg: fmt.Sprintf(format, args...)}
}

// session is the party one state of one key, from key generation through any
// number of signatures.
type session struct {
	mu sync.Mutex

	kgWitness *kms.CommWitness
	kgKp      *kms.EcKeyPair
	ccWitness *kms.CommWitness
	ccKp      *kms.EcKeyPair
	master    *kms.MasterKey1

	signs map[kms.Commitments]*pendingSign
}

// pendingSign is one signature between its two rounds, keyed by party two's
// public-share commitment.
type pendingSign struct {
	comm *kms.EphKeyGenParty2FirstMsg
	kp   *kms.EcKeyPair
}

const maxPendingSigns = 256

type Server struct {
	opts     *options
	echo     *echo.Echo
	sessions *ttlcache.Cache[string, *session]

	registry *prometheus.Registry
	requests *prometheus.CounterVec

	closeOnce sync.Once
}

func New(opts ...Option) *Server {
	o := newOptions(opts)

	s := &Server{
		opts: o,
		echo: echo.New(),
		sessions: ttlcache.New[string, *session](
			ttlcache.WithTTL[string, *session](o.sessionTTL),
		),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "party1sim",
			Name:      "requests_total",
			Help:      "Requests served per endpoint and outcome.",
		}, []string{"path", "outcome"}),
	}
	s.registry.MustRegister(s.requests)
	go s.sessions.Start()

	s.echo.HideBanner = true
	s.echo.HidePort = true

	kg := s.echo.Group("/" + transport.KeyGenPathPrefix)
	kg.POST("/first", s.round(transport.KeyGenPath("first"), s.keyGenFirst))
	kg.POST("/second", s.round(transport.KeyGenPath("second"), s.keyGenSecond))
	kg.POST("/chaincode/first", s.round(transport.KeyGenPath("chaincode/first"), s.chainCodeFirst))
	kg.POST("/chaincode/second", s.round(transport.KeyGenPath("chaincode/second"), s.chainCodeSecond))

	sg := s.echo.Group("/" + transport.SignPathPrefix)
	sg.POST("/first", s.round(transport.SignPath("first"), s.signFirst))
	sg.POST("/second", s.round(transport.SignPath("second"), s.signSecond))

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	return s.echo.Shutdown(ctx)
}

// Close stops the session expiry loop.
func (s *Server) Close() {
	s.closeOnce.Do(s.sessions.Stop)
}

// Registry exposes the metrics of the server.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// MasterKey returns party one's master key of session id once key generation
// has completed.
func (s *Server) MasterKey(id string) (*kms.MasterKey1, bool) {
	sess, err := s.session(id)
	if err != nil {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.master == nil || sess.master.ChainCode == nil {
		return nil, false
	}
	return sess.master, true
}

// Party1Public is the public share party one published for session id.
func (s *Server) Party1Public(id string) (*eckey.Point, bool) {
	mk, ok := s.MasterKey(id)
	if !ok {
		return nil, false
	}
	return mk.Public.P1, true
}

func (s *Server) session(id string) (*session, error) {
	item := s.sessions.Get(id)
	if item == nil {
		return nil, fail(CodeSessionNotFound, "session %q not found", id)
	}
	return item.Value(), nil
}

// round wraps a handler with authentication, fault injection, metrics and the
// reply envelope.
func (s *Server) round(path string, fn func(body []byte) (interface{}, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return s.reply(c, path, nil, fail(CodeBadRequest, "read body: %v", err))
		}

		if s.opts.observer != nil {
			s.opts.observer(path, body)
		}

		if s.opts.authToken != "" && c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer "+s.opts.authToken {
			s.requests.WithLabelValues(path, "unauthorized").Inc()
			return c.JSON(http.StatusUnauthorized, transport.NewErrorReply(CodeUnauthorized, "unauthorized"))
		}

		if f, ok := s.opts.faults[path]; ok {
			return s.reply(c, path, nil, &replyError{code: f.code, msg: f.msg})
		}

		v, err := fn(body)
		return s.reply(c, path, v, err)
	}
}

func (s *Server) reply(c echo.Context, path string, v interface{}, err error) error {
	if err != nil {
		re, ok := err.(*replyError)
		if !ok {
			re = &replyError{code: CodeInternal, msg: err.Error()}
		}

		s.opts.log.Debug().Str("path", path).Int("ret_code", re.code).Str("ret_msg", re.msg).Msg("round failed")
		s.requests.WithLabelValues(path, "error").Inc()
		return c.JSON(http.StatusOK, transport.NewErrorReply(re.code, re.msg))
	}

	reply, err := transport.NewReply(v)
	if err != nil {
		s.requests.WithLabelValues(path, "error").Inc()
		return c.JSON(http.StatusOK, transport.NewErrorReply(CodeInternal, err.Error()))
	}

	s.opts.log.Debug().Str("path", path).Msg("round done")
	s.requests.WithLabelValues(path, "ok").Inc()
	return c.JSON(http.StatusOK, reply)
}
