package exchange

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

// BuildHTTPClient configures a client for the descriptor's redirect, timeout,
// TLS and proxy settings. A nil transport means a clone of http.DefaultTransport.
func BuildHTTPClient(req *Request, transport http.RoundTripper) (*http.Client, error) {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		// Do not follow redirects
		return http.ErrUseLastResponse
	}
	if req.FollowRedirects {
		checkRedirect = nil
	}

	client := http.Client{
		CheckRedirect: checkRedirect,
		Timeout:       req.Timeout,
	}

	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	if httpTransport, ok := transport.(*http.Transport); ok {
		tlsConfig, err := buildTLSConfig(req)
		if err != nil {
			return nil, err
		}
		httpTransport.TLSClientConfig = tlsConfig
		if len(req.Proxies) > 0 {
			httpTransport.Proxy = proxyFunc(req.Proxies)
		}
	}
	client.Transport = transport

	return &client, nil
}

func buildTLSConfig(req *Request) (*tls.Config, error) {
	config := &tls.Config{
		InsecureSkipVerify: !req.Verify.Enabled,
	}

	if req.Verify.Enabled && req.Verify.CABundle != "" {
		pem, err := os.ReadFile(req.Verify.CABundle)
		if err != nil {
			return nil, errors.Wrapf(err, "reading CA bundle %s", req.Verify.CABundle)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in CA bundle %s", req.Verify.CABundle)
		}
		config.RootCAs = pool
	}

	if req.Cert != nil {
		keyFile := req.Cert.KeyFile
		if keyFile == "" {
			keyFile = req.Cert.CertFile
		}
		cert, err := tls.LoadX509KeyPair(req.Cert.CertFile, keyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "loading client certificate %s", req.Cert.CertFile)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// proxyFunc picks the proxy by the request URL's scheme and falls back to
// the environment for schemes without one.
func proxyFunc(proxies map[string]string) func(*http.Request) (*url.URL, error) {
	return func(r *http.Request) (*url.URL, error) {
		p, ok := proxies[r.URL.Scheme]
		if !ok {
			return http.ProxyFromEnvironment(r)
		}
		u, err := url.Parse(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proxy URL for %s", r.URL.Scheme)
		}
		return u, nil
	}
}
