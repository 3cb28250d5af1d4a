// Package server exposes the interpreter as a gRPC service. The service is
// described by an embedded .proto file parsed at startup; requests and
// replies are dynamic messages built from those descriptors.
package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/decisivestrike/uncommon-lisp/internal/config"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
)

// EvalResult is the outcome of one Eval call.
type EvalResult struct {
	Session   string
	Values    []string
	Output    string
	Error     string
	ErrorKind string
}

type session struct {
	mu       sync.Mutex
	scope    *evaluator.Scope
	lastUsed time.Time
}

type Server struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxDepth    int
	timeout     time.Duration
	idle        time.Duration
	maxSessions int
	now         func() time.Time
	logf        func(format string, args ...interface{})

	desc *descriptors
}

type Option func(*Server)

func WithMaxDepth(n int) Option {
	return func(s *Server) { s.maxDepth = n }
}

// WithTimeout bounds the evaluation time of a single request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithSessionIdle drops sessions unused for longer than d. Zero keeps
// them until the session cap evicts them.
func WithSessionIdle(d time.Duration) Option {
	return func(s *Server) { s.idle = d }
}

// WithMaxSessions caps the number of live sessions. Opening one more
// evicts the least recently used.
func WithMaxSessions(n int) Option {
	return func(s *Server) { s.maxSessions = n }
}

func WithLogger(logf func(format string, args ...interface{})) Option {
	return func(s *Server) { s.logf = logf }
}

func New(opts ...Option) (*Server, error) {
	d, err := loadDescriptors()
	if err != nil {
		return nil, err
	}
	s := &Server{
		sessions:    make(map[string]*session),
		maxDepth:    config.DefaultMaxDepth,
		timeout:     10 * time.Second,
		idle:        30 * time.Minute,
		maxSessions: 1024,
		now:         time.Now,
		logf:        func(string, ...interface{}) {},
		desc:        d,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register adds the Interpreter service to g.
func (s *Server) Register(g *grpc.Server) {
	sd := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: evalMethod, Handler: s.unary(evalMethod, s.handleEval)},
			{MethodName: tokenizeMethod, Handler: s.unary(tokenizeMethod, s.handleTokenize)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: protoFile,
	}
	g.RegisterService(sd, s)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	g := grpc.NewServer()
	s.Register(g)

	go func() {
		<-ctx.Done()
		g.GracefulStop()
	}()

	s.logf("serving %s on %s", ServiceName, lis.Addr())
	if err := g.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) unary(method string, h grpc.UnaryHandler) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	md := s.desc.service.FindMethodByName(method)
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newMessage(md.GetInputType())
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return h(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPath(method)}
		return interceptor(ctx, in, info, h)
	}
}

func (s *Server) handleEval(ctx context.Context, req interface{}) (interface{}, error) {
	in := req.(*dynamicpb.Message)
	res, err := s.Eval(ctx, getString(in, "session"), getString(in, "source"))
	if err != nil {
		return nil, err
	}

	out := newMessage(s.desc.eval.GetOutputType())
	setString(out, "session", res.Session)
	setStrings(out, "values", res.Values)
	setString(out, "output", res.Output)
	setString(out, "error", res.Error)
	setString(out, "error_kind", res.ErrorKind)
	return out, nil
}

func (s *Server) handleTokenize(ctx context.Context, req interface{}) (interface{}, error) {
	in := req.(*dynamicpb.Message)
	forms, err := Tokenize(getString(in, "source"))

	out := newMessage(s.desc.tokenize.GetOutputType())
	setStrings(out, "forms", forms)
	if err != nil {
		setString(out, "error", err.Error())
	}
	return out, nil
}

// Eval runs source in the named session. An empty id opens a new session;
// an unknown one is NotFound. Forms run in order until the first error.
func (s *Server) Eval(ctx context.Context, id, source string) (*EvalResult, error) {
	id, sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var output bytes.Buffer
	ev := evaluator.New()
	ev.Out = &output
	ev.Context = ctx
	ev.MaxDepth = s.maxDepth

	res := &EvalResult{Session: id}
	forms, perr := parser.Parse(source)
	for _, form := range forms {
		val, err := ev.Evaluate(form, sess.scope)
		if err != nil {
			res.Error, res.ErrorKind = err.Error(), errorKind(err)
			break
		}
		res.Values = append(res.Values, val.String())
	}
	if res.Error == "" && perr != nil {
		res.Error, res.ErrorKind = perr.Error(), errorKind(perr)
	}
	res.Output = output.String()

	if res.Error != "" {
		s.logf("session %s: %s", id, res.Error)
	}
	return res, nil
}

func (s *Server) session(id string) (string, *session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	if id == "" {
		if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
			s.evictOldest()
		}
		id = uuid.NewString()
		sess := &session{scope: evaluator.NewScope(), lastUsed: now}
		s.sessions[id] = sess
		s.logf("session %s opened", id)
		return id, sess, nil
	}
	sess, ok := s.sessions[id]
	if !ok {
		return "", nil, status.Errorf(codes.NotFound, "unknown session %q", id)
	}
	sess.lastUsed = now
	return id, sess, nil
}

// expire drops idle sessions. s.mu must be held.
func (s *Server) expire(now time.Time) {
	if s.idle <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.idle {
			delete(s.sessions, id)
			s.logf("session %s expired", id)
		}
	}
}

// evictOldest drops the least recently used session. s.mu must be held.
func (s *Server) evictOldest() {
	var oldest string
	var at time.Time
	for id, sess := range s.sessions {
		if oldest == "" || sess.lastUsed.Before(at) {
			oldest, at = id, sess.lastUsed
		}
	}
	if oldest != "" {
		delete(s.sessions, oldest)
		s.logf("session %s evicted", oldest)
	}
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Tokenize parses source and renders each top-level form.
func Tokenize(source string) ([]string, error) {
	forms, err := parser.Parse(source)
	out := make([]string, len(forms))
	for i, form := range forms {
		out[i] = form.String()
	}
	return out, err
}

func errorKind(err error) string {
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		return rerr.Kind.String()
	}
	var perr *diagnostics.ParseError
	if errors.As(err, &perr) {
		return perr.Kind()
	}
	return ""
}
