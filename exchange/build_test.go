package exchange

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nojima/ht/input"
	"github.com/nojima/ht/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseInput(t *testing.T, options input.Options, stdin string, args ...string) *input.Input {
	t.Helper()
	in, err := input.ParseArgs(args, strings.NewReader(stdin), &options)
	require.NoError(t, err)
	return in
}

func userAgent() string {
	return fmt.Sprintf("ht/%s", version.Current())
}

func TestBuildRequest_Body(t *testing.T) {
	testCases := []struct {
		title          string
		inputOptions   input.Options
		stdin          string
		args           []string
		expectedHeader http.Header
		expectedBody   []byte
		expectedForm   []Field
	}{
		{
			title: "No body",
			args:  []string{"GET", "example.com"},
			expectedHeader: http.Header{
				"User-Agent": {userAgent()},
			},
		},
		{
			title: "JSON body in argument order",
			args:  []string{"POST", "example.com", "name=John", "age:=29", "tags:=[\"a\",1.0]"},
			expectedHeader: http.Header{
				"User-Agent":   {userAgent()},
				"Accept":       {"application/json"},
				"Content-Type": {"application/json"},
			},
			expectedBody: []byte(`{"name":"John","age":29,"tags":["a",1.0]}`),
		},
		{
			title:        "Explicit JSON without data",
			inputOptions: input.Options{JSON: true},
			args:         []string{"GET", "example.com"},
			expectedHeader: http.Header{
				"User-Agent": {userAgent()},
				"Accept":     {"application/json"},
			},
			expectedBody: []byte{},
		},
		{
			title: "Explicit header overrides defaults",
			args:  []string{"POST", "example.com", "a=1", "content-type:text/plain", "User-Agent:curl"},
			expectedHeader: http.Header{
				"User-Agent":   {"curl"},
				"Accept":       {"application/json"},
				"Content-Type": {"text/plain"},
			},
			expectedBody: []byte(`{"a":"1"}`),
		},
		{
			title:        "Raw body from stdin",
			inputOptions: input.Options{ReadStdin: true},
			stdin:        "hello",
			args:         []string{"example.com"},
			expectedHeader: http.Header{
				"User-Agent":   {userAgent()},
				"Accept":       {"application/json"},
				"Content-Type": {"application/json"},
			},
			expectedBody: []byte("hello"),
		},
		{
			title:        "Form",
			inputOptions: input.Options{Form: true},
			args:         []string{"POST", "example.com", "a=1", "b:=true", "a=2"},
			expectedHeader: http.Header{
				"User-Agent":   {userAgent()},
				"Content-Type": {"application/x-www-form-urlencoded; charset=utf-8"},
			},
			expectedForm: []Field{
				{Name: "a", Value: "1"},
				{Name: "a", Value: "2"},
				{Name: "b", Value: "true"},
			},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			// Setup
			in := parseInput(t, tt.inputOptions, tt.stdin, tt.args...)
			options := &Options{JSON: tt.inputOptions.JSON, Form: tt.inputOptions.Form}

			// Exercise
			req, err := BuildRequest(in, options)

			// Verify
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHeader, req.Header)
			assert.Equal(t, tt.expectedBody, req.Body)
			assert.Equal(t, tt.expectedForm, req.Form)
		})
	}
}

func TestBuildRequest_FormWithFiles(t *testing.T) {
	// Setup
	fileName := makeTempFile(t, "love & peace")
	in := parseInput(t, input.Options{Form: true}, "", "POST", "example.com", "a=1", "doc@"+fileName)

	// Exercise
	req, err := BuildRequest(in, &Options{Form: true})

	// Verify
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Equal(t, []Field{{Name: "a", Value: "1"}}, req.Form)
	require.Len(t, req.Files, 1)
	assert.Equal(t, "doc", req.Files[0].Name)
	assert.Equal(t, []byte("love & peace"), req.Files[0].Content)
	assert.True(t, req.IsMultipart())
}

func TestBuildRequest_Params(t *testing.T) {
	in := parseInput(t, input.Options{}, "", "GET", "example.com", "q==2", "a==1", "q==3")

	req, err := BuildRequest(in, &Options{})

	require.NoError(t, err)
	assert.Equal(t, []Field{
		{Name: "q", Value: "2"},
		{Name: "q", Value: "3"},
		{Name: "a", Value: "1"},
	}, req.Params)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "http://example.com", req.URL)
}

func TestBuildRequest_Options(t *testing.T) {
	// Setup
	in := parseInput(t, input.Options{}, "", "GET", "example.com")
	options := &Options{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
		Stream:          true,
		Auth:            AuthOptions{Enabled: true, UserName: "alice", Password: "open sesame"},
		Verify:          "/etc/ssl/custom.pem",
		Cert:            "client.crt",
		CertKey:         "client.key",
		Proxies:         []string{"http:http://proxy:3128", "https:http://secure-proxy:8080"},
		BaseHeader:      http.Header{"X-Base": {"1"}, "User-Agent": {"base"}},
	}

	// Exercise
	req, err := BuildRequest(in, options)

	// Verify
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, req.Timeout)
	assert.True(t, req.FollowRedirects)
	assert.True(t, req.Stream)
	assert.Equal(t, &Credentials{Type: "basic", UserName: "alice", Password: "open sesame"}, req.Auth)
	assert.Equal(t, Verify{Enabled: true, CABundle: "/etc/ssl/custom.pem"}, req.Verify)
	assert.Equal(t, &ClientCert{CertFile: "client.crt", KeyFile: "client.key"}, req.Cert)
	assert.Equal(t, map[string]string{
		"http":  "http://proxy:3128",
		"https": "http://secure-proxy:8080",
	}, req.Proxies)
	assert.Equal(t, "1", req.Header.Get("X-Base"))
	assert.Equal(t, userAgent(), req.Header.Get("User-Agent"))
}

func TestBuildRequest_InvalidProxy(t *testing.T) {
	in := parseInput(t, input.Options{}, "", "GET", "example.com")

	req, err := BuildRequest(in, &Options{Proxies: []string{"no-separator"}})

	assert.Error(t, err)
	assert.Nil(t, req)
}

func TestParseVerify(t *testing.T) {
	assert.Equal(t, Verify{Enabled: true}, parseVerify("yes"))
	assert.Equal(t, Verify{Enabled: true}, parseVerify(""))
	assert.Equal(t, Verify{Enabled: false}, parseVerify("no"))
	assert.Equal(t, Verify{Enabled: true, CABundle: "ca.pem"}, parseVerify("ca.pem"))
}
