package httpie

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nojima/ht/config"
	"github.com/nojima/ht/flags"
	"github.com/nojima/ht/version"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redirectedEnv() *flags.Environment {
	return &flags.Environment{
		Stdin:            strings.NewReader(""),
		StdinIsTerminal:  true,
		StdoutIsTerminal: false,
		StderrIsTerminal: false,
		Config:           config.DefaultConfig(),
	}
}

func newEchoServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "not here")
		default:
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("X-Method", r.Method)
			io.WriteString(w, r.Method+" "+r.URL.RequestURI()+" "+r.Header.Get("Content-Type")+" "+string(body))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, env *flags.Environment, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(append([]string{"ht"}, args...), env, &stdout, &stderr, &Options{})
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	server := newEchoServer(t)

	testCases := []struct {
		title    string
		args     []string
		expected string
	}{
		{
			title:    "GET",
			args:     []string{server.URL + "/hello", "q==1"},
			expected: "GET /hello?q=1  ",
		},
		{
			title:    "JSON body",
			args:     []string{server.URL + "/post", "name=John", "age:=29"},
			expected: `POST /post application/json {"name":"John","age":29}`,
		},
		{
			title:    "Form body",
			args:     []string{"--form", "PUT", server.URL + "/put", "a=1", "b=2"},
			expected: "PUT /put application/x-www-form-urlencoded; charset=utf-8 a=1&b=2",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			stdout, _, err := run(t, redirectedEnv(), tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestRun_Verbose(t *testing.T) {
	server := newEchoServer(t)

	stdout, _, err := run(t, redirectedEnv(), "-v", "POST", server.URL+"/post", "X-Trace:abc", "a=1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "POST "+server.URL+"/post HTTP/1.1\n")
	assert.Contains(t, stdout, "X-Trace: abc\n")
	assert.Contains(t, stdout, "{\"a\":\"1\"}\n\n")
	assert.Contains(t, stdout, "HTTP/1.1 200 OK\n")
	assert.Contains(t, stdout, "X-Method: POST\n")
}

func TestRun_CheckStatus(t *testing.T) {
	server := newEchoServer(t)

	stdout, _, err := run(t, redirectedEnv(), "--check-status", server.URL+"/missing")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 4, statusErr.ExitStatus())
	assert.Equal(t, "not here", stdout)

	_, _, err = run(t, redirectedEnv(), server.URL+"/missing")
	assert.NoError(t, err)
}

func TestRun_Output(t *testing.T) {
	server := newEchoServer(t)
	path := filepath.Join(t.TempDir(), "out.txt")
	env := redirectedEnv()
	env.StdoutIsTerminal = true

	stdout, _, err := run(t, env, "--output="+path, "--print=b", server.URL+"/saved")

	require.NoError(t, err)
	assert.Empty(t, stdout)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GET /saved  ", string(content))
}

func TestRun_DownloadToStdout(t *testing.T) {
	server := newEchoServer(t)

	stdout, stderr, err := run(t, redirectedEnv(), "--download", server.URL+"/file")

	require.NoError(t, err)
	assert.Equal(t, "GET /file  ", stdout)
	assert.Contains(t, stderr, "HTTP/1.1 200 OK")
	assert.Contains(t, stderr, "Done.")
}

func TestRun_Errors(t *testing.T) {
	t.Run("Usage", func(t *testing.T) {
		_, stderr, err := run(t, redirectedEnv())

		assert.Error(t, err)
		assert.Contains(t, stderr, "Usage")
	})

	t.Run("Traceback", func(t *testing.T) {
		_, _, err := run(t, redirectedEnv(), "--traceback", "--print=x", "example.com")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "flags.processOutputOptions")
	})

	t.Run("Debug dumps the request", func(t *testing.T) {
		server := newEchoServer(t)

		_, stderr, err := run(t, redirectedEnv(), "--debug", server.URL+"/x", "a=1")

		require.NoError(t, err)
		assert.Contains(t, stderr, ">>> POST "+server.URL+"/x")
	})
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := run(t, redirectedEnv(), "--version")

	require.NoError(t, err)
	assert.Equal(t, version.Current().String()+"\n", stdout)
}
