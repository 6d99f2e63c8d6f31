package exchange

import (
	"net/http"
	"time"
)

type Options struct {
	JSON bool
	Form bool

	Timeout         time.Duration
	FollowRedirects bool
	Stream          bool
	Auth            AuthOptions

	// Verify is "yes", "no" or the path of a CA bundle.
	Verify  string
	Cert    string
	CertKey string
	// Proxies are PROTOCOL:PROXY_URL pairs.
	Proxies []string

	// BaseHeader is merged beneath default and explicit headers.
	BaseHeader http.Header
}

type AuthOptions struct {
	Enabled  bool
	Type     string
	UserName string
	Password string
}
