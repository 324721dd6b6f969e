package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-bridge/internal/collection"
	"github.com/viant/mcp-bridge/internal/conv"
	"github.com/viant/mcp-bridge/internal/diag"
	"github.com/viant/mcp-bridge/schema"
	"golang.org/x/sync/errgroup"
)

const (
	// protocolVersion is sent in the initialize handshake.
	protocolVersion = "2024-11-05"
	// maxReplyLine caps a single child stdout line.
	maxReplyLine = 10 * 1024 * 1024
)

// Service exposes a line protocol child process behind an HTTP JSON-RPC
// endpoint. Request bodies are written to the child stdin as single
// lines; child stdout lines are matched back to waiting HTTP calls by
// their JSON-RPC identifier bytes.
type Service struct {
	options  *Options
	logger   *diag.Logger
	session  string
	creator  CommandCreator
	child    *child
	pending  *collection.SyncMap[string, chan json.RawMessage]
	timeout  time.Duration
	listener net.Listener
	done     chan struct{}
	// stderrDone gates cmd.Wait until the stderr pump stopped reading.
	stderrDone chan struct{}
}

// Option customises a Service.
type Option func(*Service)

// WithLogger overrides the diagnostics logger.
func WithLogger(logger *diag.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCommandCreator overrides how the child command is built.
func WithCommandCreator(creator CommandCreator) Option {
	return func(s *Service) {
		s.creator = creator
	}
}

// WithListener serves HTTP on a prepared listener instead of the
// configured address.
func WithListener(listener net.Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithReplyTimeout overrides the child reply timeout.
func WithReplyTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// New creates a gateway service with the supplied options.
func New(options *Options, opts ...Option) *Service {
	srv := &Service{
		options:    options,
		session:    uuid.NewString(),
		creator:    defaultCommandCreator,
		pending:    collection.NewSyncMap[string, chan json.RawMessage](),
		done:       make(chan struct{}),
		stderrDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.logger == nil {
		srv.logger = diag.Default()
	}
	if srv.timeout == 0 {
		seconds := options.TimeoutSec
		if seconds <= 0 {
			seconds = defaultTimeoutSec
		}
		srv.timeout = time.Duration(seconds) * time.Second
	}
	return srv
}

// Start spawns the child process, begins pumping its stderr and stdout
// and, unless disabled, performs the initialize handshake. A handshake
// error reply from the child is logged but tolerated; only transport
// problems fail startup.
func (s *Service) Start(ctx context.Context) error {
	if s.options.Command == "" {
		return errors.New("gateway child command was empty")
	}
	proc, err := startChild(s.creator, s.options.Command, s.options.Arguments...)
	if err != nil {
		return fmt.Errorf("failed to start %v: %w", s.options.Command, err)
	}
	s.child = proc
	s.logf("child started: %v %v", s.options.Command, s.options.Arguments)
	go s.pumpStderr()
	go s.readReplies()
	if s.options.NoHandshake {
		return nil
	}
	if err := s.handshake(ctx); err != nil {
		s.shutdownChild()
		return err
	}
	return nil
}

// Serve starts the child and the HTTP server, blocking until the
// context is cancelled or the listener fails. A child exit does not
// stop the server; calls arriving afterwards get an error envelope.
func (s *Service) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.shutdownChild()
	mux := http.NewServeMux()
	mux.Handle(s.options.Route, s)
	server := &http.Server{Addr: s.options.Addr, Handler: mux}
	s.logf("listening on %v%v", s.options.Addr, s.options.Route)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if s.listener != nil {
			err = server.Serve(s.listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return server.Shutdown(context.Background())
	})
	return group.Wait()
}

// ServeHTTP bridges one HTTP call to the child. Bodies without an
// identifier are notifications: written and acknowledged with 202.
func (s *Service) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(request.Body)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	message, err := schema.ParseMessage(body)
	if err != nil {
		s.logf("failed to parse request body: %v, raw: %s", err, body)
		s.reply(writer, message, jsonrpc.NewParsingError(err.Error(), nil))
		return
	}
	// the child frames by newline, so whatever whitespace the HTTP
	// client used has to collapse into a single line
	compacted := &bytes.Buffer{}
	if err := json.Compact(compacted, body); err == nil {
		body = compacted.Bytes()
	}
	if message.Notification() {
		if err := s.child.write(body); err != nil {
			s.logf("failed to write notification to child: %v", err)
			http.Error(writer, "child process unavailable", http.StatusBadGateway)
			return
		}
		writer.WriteHeader(http.StatusAccepted)
		return
	}
	answer, err := s.roundTrip(request.Context(), *message.Id, body)
	if err != nil {
		s.logf("%v failed: %v", message.Method, err)
		s.reply(writer, message, schema.NewServerError(err.Error()))
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	if _, err := writer.Write(answer); err != nil {
		s.logf("failed to write reply: %v", err)
	}
}

// roundTrip writes one identified message to the child and waits for
// the stdout line echoing the same identifier bytes.
func (s *Service) roundTrip(ctx context.Context, id json.RawMessage, payload []byte) (json.RawMessage, error) {
	key := conv.IdKey(id)
	waiter := make(chan json.RawMessage, 1)
	if _, exists := s.pending.Get(key); exists {
		s.logf("replacing in-flight waiter for id %s", id)
	}
	s.pending.Put(key, waiter)
	defer s.pending.Delete(key)
	if err := s.child.write(payload); err != nil {
		return nil, fmt.Errorf("failed to write to child: %w", err)
	}
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case answer, ok := <-waiter:
		if !ok {
			return nil, errors.New("child process exited")
		}
		return answer, nil
	case <-s.done:
		select {
		case answer := <-waiter:
			if answer != nil {
				return answer, nil
			}
		default:
		}
		return nil, errors.New("child process exited")
	case <-timer.C:
		return nil, fmt.Errorf("timed out after %v waiting for child reply", s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handshake sends the initialize request and waits for the child's
// answer. The answer is only logged, an error body is the child's
// business, not a startup failure.
func (s *Service) handshake(ctx context.Context) error {
	id := "init-" + s.session
	idBytes, err := json.Marshal(id)
	if err != nil {
		return err
	}
	params, err := json.Marshal(&initializeParams{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]interface{}{},
		ClientInfo:      clientInfo{Name: "mcp-gateway", Version: "0.1.0"},
	})
	if err != nil {
		return err
	}
	request := &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: id, Method: "initialize", Params: params}
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}
	s.logf("sending initialize handshake")
	answer, err := s.roundTrip(ctx, idBytes, payload)
	if err != nil {
		return fmt.Errorf("initialize handshake failed: %w", err)
	}
	s.logf("initialize handshake reply: %s", answer)
	return nil
}

// readReplies consumes child stdout until it closes, routing each line
// to the waiter registered under its identifier. When the stream ends
// all waiters are released with a closed channel.
func (s *Service) readReplies() {
	scanner := bufio.NewScanner(s.child.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplyLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		message, err := schema.ParseMessage(line)
		if err != nil {
			s.logf("child emitted an undecodable line: %v, raw: %s", err, line)
			continue
		}
		if message.Notification() {
			s.logf("child notification: %v", message.Method)
			continue
		}
		answer := make(json.RawMessage, len(line))
		copy(answer, line)
		waiter, ok := s.pending.Get(conv.IdKey(*message.Id))
		if !ok {
			s.logf("no waiter for child reply id %s", *message.Id)
			continue
		}
		select {
		case waiter <- answer:
		default:
			s.logf("duplicate child reply for id %s dropped", *message.Id)
		}
	}
	if err := scanner.Err(); err != nil {
		s.logf("child stdout error: %v", err)
	}
	close(s.done)
	for _, waiter := range s.pending.RemoveAll() {
		close(waiter)
	}
	<-s.stderrDone
	if err := s.child.stop(); err != nil {
		s.logf("child exited: %v", err)
	} else {
		s.logf("child exited")
	}
}

// pumpStderr relays child stderr lines into the diagnostics log.
func (s *Service) pumpStderr() {
	defer close(s.stderrDone)
	scanner := bufio.NewScanner(s.child.stderr)
	for scanner.Scan() {
		s.logf("child stderr: %s", scanner.Text())
	}
}

// reply writes a synthesized JSON-RPC error body for message, which may
// be nil when the request never parsed.
func (s *Service) reply(writer http.ResponseWriter, message *schema.Message, rpcError *jsonrpc.Error) {
	var id *json.RawMessage
	if message != nil {
		id = message.Id
	}
	payload, err := schema.NewErrorResponse(id, rpcError)
	if err != nil {
		s.logf("failed to build error reply: %v", err)
		http.Error(writer, rpcError.Message, http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	if _, err := writer.Write(payload); err != nil {
		s.logf("failed to write reply: %v", err)
	}
}

// shutdownChild asks the child to exit by closing its stdin, killing it
// if it lingers.
func (s *Service) shutdownChild() {
	if s.child == nil {
		return
	}
	_ = s.child.stdin.Close()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		_ = s.child.cmd.Process.Kill()
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	s.logger.Logf("gateway %v: "+format, append([]interface{}{s.session}, args...)...)
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ClientInfo      clientInfo             `json:"clientInfo"`
}
