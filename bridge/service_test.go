package bridge_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-bridge/bridge"
	"github.com/viant/mcp-bridge/internal/diag"
)

// runBridge pumps input through a bridge pointed at URL and returns the
// emitted output lines.
func runBridge(t *testing.T, URL, input, logPath string) []string {
	t.Helper()
	output := &bytes.Buffer{}
	srv := bridge.New(&bridge.Options{URL: URL},
		bridge.WithInput(strings.NewReader(input)),
		bridge.WithOutput(output),
		bridge.WithLogger(diag.New(logPath)))
	require.NoError(t, srv.Run(context.Background()))
	text := output.String()
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// echoBackend answers every request with a result naming the request
// method and echoing its id; a "slow" method stalls before answering.
func echoBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		var message struct {
			Id     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.Unmarshal(body, &message))
		if message.Method == "slow" {
			time.Sleep(150 * time.Millisecond)
		}
		_, _ = fmt.Fprintf(writer, `{"jsonrpc":"2.0","id":%s,"result":%q}`, message.Id, message.Method)
	}))
}

type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeLine(t *testing.T, line string) *envelope {
	t.Helper()
	decoded := &envelope{}
	require.NoError(t, json.Unmarshal([]byte(line), decoded), "line: %s", line)
	return decoded
}

func TestService_passThrough(t *testing.T) {
	reply := `{"jsonrpc":"2.0","id":1,"result":"pong"}`
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
		_, _ = writer.Write([]byte(reply))
	}))
	defer backend.Close()

	lines := runBridge(t, backend.URL, `{"jsonrpc":"2.0","id":1,"method":"ping","params":{}}`+"\n", "")
	require.Len(t, lines, 1)
	assert.Equal(t, reply, lines[0])
}

func TestService_statusCodeIgnored(t *testing.T) {
	// the body is authoritative whatever the HTTP status says
	reply := `{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"no such method"}}`
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		_, _ = writer.Write([]byte(reply))
	}))
	defer backend.Close()

	lines := runBridge(t, backend.URL, `{"jsonrpc":"2.0","id":2,"method":"x"}`+"\n", "")
	require.Len(t, lines, 1)
	assert.Equal(t, reply, lines[0])
}

func TestService_malformedInput(t *testing.T) {
	backend := echoBackend(t)
	defer backend.Close()
	logPath := filepath.Join(t.TempDir(), "bridge.log")

	input := "not json at all\n" +
		"\n" +
		`{"jsonrpc":"2.0","id":3,"method":"ok"}` + "\n"
	lines := runBridge(t, backend.URL, input, logPath)

	// only the valid line produced output
	require.Len(t, lines, 1)
	assert.Equal(t, "3", string(decodeLine(t, lines[0]).Id))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	log := string(data)
	assert.Equal(t, 1, strings.Count(log, "not json at all"))
	assert.Contains(t, log, "failed to parse input line")
}

func TestService_backendUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	URL := backend.URL
	backend.Close()
	logPath := filepath.Join(t.TempDir(), "bridge.log")

	lines := runBridge(t, URL, `{"jsonrpc":"2.0","id":5,"method":"x"}`+"\n", logPath)
	require.Len(t, lines, 1)
	decoded := decodeLine(t, lines[0])
	assert.Equal(t, "2.0", decoded.Jsonrpc)
	assert.Equal(t, "5", string(decoded.Id))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, -32000, decoded.Error.Code)
	assert.NotEmpty(t, decoded.Error.Message)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "failed to forward")
}

func TestService_failureWithoutIdentifier(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	URL := backend.URL
	backend.Close()

	lines := runBridge(t, URL, `{"jsonrpc":"2.0","method":"x"}`+"\n", "")
	require.Len(t, lines, 1)
	decoded := decodeLine(t, lines[0])
	assert.Equal(t, "null", string(decoded.Id))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, -32000, decoded.Error.Code)
}

func TestService_nonJSONReply(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte("<html>oops</html>"))
	}))
	defer backend.Close()

	lines := runBridge(t, backend.URL, `{"jsonrpc":"2.0","id":6,"method":"x"}`+"\n", "")
	require.Len(t, lines, 1)
	decoded := decodeLine(t, lines[0])
	assert.Equal(t, "6", string(decoded.Id))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, -32000, decoded.Error.Code)
}

func TestService_multilineReplyCompacted(t *testing.T) {
	reply := "{\n  \"jsonrpc\": \"2.0\",\n  \"id\": 7,\n  \"result\": \"pong\"\n}"
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(reply))
	}))
	defer backend.Close()

	lines := runBridge(t, backend.URL, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n", "")
	require.Len(t, lines, 1)
	assert.JSONEq(t, reply, lines[0])
}

func TestService_repeatedLine(t *testing.T) {
	backend := echoBackend(t)
	defer backend.Close()

	line := `{"jsonrpc":"2.0","id":8,"method":"twice"}` + "\n"
	lines := runBridge(t, backend.URL, line+line, "")
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0], lines[1])
	assert.Equal(t, "8", string(decodeLine(t, lines[0]).Id))
}

func TestService_outOfOrderCompletion(t *testing.T) {
	backend := echoBackend(t)
	defer backend.Close()

	input := `{"jsonrpc":"2.0","id":1,"method":"slow"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"fast"}` + "\n"
	lines := runBridge(t, backend.URL, input, "")
	require.Len(t, lines, 2)
	assert.Equal(t, "2", string(decodeLine(t, lines[0]).Id))
	assert.Equal(t, "1", string(decodeLine(t, lines[1]).Id))
}

func TestService_identifierBytesEchoed(t *testing.T) {
	backend := echoBackend(t)
	defer backend.Close()

	input := `{"jsonrpc":"2.0","id":"abc-1","method":"x"}` + "\n" +
		`{"jsonrpc":"2.0","id":9007199254740993,"method":"x"}` + "\n"
	lines := runBridge(t, backend.URL, input, "")
	require.Len(t, lines, 2)
	ids := []string{string(decodeLine(t, lines[0]).Id), string(decodeLine(t, lines[1]).Id)}
	assert.ElementsMatch(t, []string{`"abc-1"`, "9007199254740993"}, ids)
}

func TestService_concurrentFraming(t *testing.T) {
	backend := echoBackend(t)
	defer backend.Close()

	count := 40
	input := &strings.Builder{}
	for i := 0; i < count; i++ {
		method := "fast"
		if i%5 == 0 {
			method = "slow"
		}
		_, _ = fmt.Fprintf(input, `{"jsonrpc":"2.0","id":%d,"method":%q}`+"\n", i, method)
	}
	lines := runBridge(t, backend.URL, input.String(), "")
	require.Len(t, lines, count)
	seen := map[string]bool{}
	for _, line := range lines {
		decoded := decodeLine(t, line)
		assert.Nil(t, decoded.Error)
		seen[string(decoded.Id)] = true
	}
	assert.Len(t, seen, count)
}

func TestService_methodFieldDiagnostic(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"jsonrpc":"2.0","id":10,"result":"pong"}`))
	}))
	defer backend.Close()
	logPath := filepath.Join(t.TempDir(), "bridge.log")

	lines := runBridge(t, backend.URL, `{"jsonrpc":"2.0","id":10,"method":"ping"}`+"\n", logPath)
	require.Len(t, lines, 1)

	// the reply is forwarded verbatim, the missing method field is a
	// diagnostic only
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "carries no method field")
}
