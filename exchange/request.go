package exchange

import (
	"net/http"
	"time"
)

// Request is the fully resolved, transport-agnostic description of one
// HTTP request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	// Params are appended to the query string of URL in order.
	Params []Field

	// Body is the raw or JSON-serialized body. It is empty for form bodies.
	Body []byte
	// Form holds the fields of a form body.
	Form []Field
	// Files are sent as multipart/form-data together with Form.
	Files []FileField

	Auth            *Credentials
	Verify          Verify
	Cert            *ClientCert
	Proxies         map[string]string
	Timeout         time.Duration
	FollowRedirects bool
	Stream          bool
}

type Field struct {
	Name  string
	Value string
}

type FileField struct {
	Name     string
	Filename string
	Content  []byte
}

type Credentials struct {
	Type     string
	UserName string
	Password string
}

// Verify tells whether and how the server certificate is checked.
type Verify struct {
	Enabled bool
	// CABundle is a custom CA bundle to verify against instead of the system pool.
	CABundle string
}

type ClientCert struct {
	CertFile string
	// KeyFile is empty when the key is contained in CertFile.
	KeyFile string
}

// IsMultipart reports whether the request is sent as multipart/form-data.
func (r *Request) IsMultipart() bool {
	return len(r.Files) > 0
}

// IsForm reports whether the request has a URL-encoded form body.
func (r *Request) IsForm() bool {
	return len(r.Form) > 0 && len(r.Files) == 0
}
