package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/viant/mcp-bridge/internal/diag"
	"github.com/viant/mcp-bridge/schema"
)

// Service bridges newline delimited JSON-RPC 2.0 messages between a local
// stream pair and a backend HTTP endpoint.
type Service struct {
	options *Options
	client  *http.Client
	logger  *diag.Logger
	input   io.Reader
	output  io.Writer
	outMux  sync.Mutex
	taskWg  sync.WaitGroup
}

// Option customises a Service.
type Option func(*Service)

// WithInput overrides the input stream, os.Stdin by default.
func WithInput(input io.Reader) Option {
	return func(s *Service) {
		s.input = input
	}
}

// WithOutput overrides the output stream, os.Stdout by default.
func WithOutput(output io.Writer) Option {
	return func(s *Service) {
		s.output = output
	}
}

// WithHTTPClient overrides the backend HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithLogger overrides the diagnostics logger.
func WithLogger(logger *diag.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a bridge service with the supplied options.
func New(options *Options, opts ...Option) *Service {
	srv := &Service{
		options: options,
		input:   os.Stdin,
		output:  os.Stdout,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.client == nil {
		client := &http.Client{}
		if options.TimeoutSec > 0 {
			client.Timeout = time.Duration(options.TimeoutSec) * time.Second
		}
		srv.client = client
	}
	if srv.logger == nil {
		srv.logger = diag.Default()
	}
	return srv
}

// Run consumes the input stream until end of stream, dispatching every
// line as its own task. It returns once the stream is drained and all in
// flight messages have completed.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Logf("bridge started, backend: %v", s.options.URL)
	reader := bufio.NewReader(s.input)
	var readErr error
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if err == nil || line != "" {
			s.taskWg.Add(1)
			go func(payload string) {
				defer s.taskWg.Done()
				s.handle(ctx, []byte(payload))
			}(line)
		}
		if err != nil {
			if err != io.EOF {
				readErr = err
			}
			break
		}
	}
	s.taskWg.Wait()
	if readErr != nil {
		s.logger.Logf("input stream error: %v", readErr)
	}
	return readErr
}

// handle owns one message end to end: parse, forward, emit.
func (s *Service) handle(ctx context.Context, line []byte) {
	message, err := schema.ParseMessage(line)
	if err != nil {
		s.logger.Logf("failed to parse input line: %v, raw: %s", err, line)
		return
	}
	body, err := s.forward(ctx, line)
	if err != nil {
		s.logger.Logf("failed to forward %v: %v", message.Method, err)
		s.emitError(message.Id, err.Error())
		return
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		s.logger.Logf("backend reply for %v is not decodable JSON: %s", message.Method, body)
		s.emitError(message.Id, "backend reply is not decodable JSON")
		return
	}
	s.inspect(message.Method, body)
	s.emit(body)
}

// forward issues the single HTTP attempt for one message. The status code
// is deliberately ignored, the reply body is the authoritative JSON-RPC
// answer whatever the code says.
func (s *Service) forward(ctx context.Context, payload []byte) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.options.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := s.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	return io.ReadAll(response.Body)
}

// inspect records whether the backend reply carries a method field. The
// check is informational, bodies are forwarded untouched either way.
func (s *Service) inspect(method string, body []byte) {
	probe := struct {
		Method *string `json:"method"`
	}{}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Method == nil {
		s.logger.Logf("backend reply for %v carries no method field", method)
	}
}

// emit writes one newline terminated reply. A body spanning multiple
// lines would corrupt the output framing, so such bodies are compacted
// first.
func (s *Service) emit(payload []byte) {
	if bytes.IndexByte(payload, '\n') != -1 {
		compacted := &bytes.Buffer{}
		if err := json.Compact(compacted, payload); err == nil {
			payload = compacted.Bytes()
		}
	}
	payload = append(payload, '\n')
	s.outMux.Lock()
	defer s.outMux.Unlock()
	if _, err := s.output.Write(payload); err != nil {
		s.logger.Logf("failed to write reply: %v", err)
	}
}

func (s *Service) emitError(id *json.RawMessage, description string) {
	payload, err := schema.NewErrorResponse(id, schema.NewServerError(description))
	if err != nil {
		s.logger.Logf("failed to build error reply: %v", err)
		return
	}
	s.emit(payload)
}
