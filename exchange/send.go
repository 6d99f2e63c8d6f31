package exchange

import (
	"net/http"

	"github.com/pkg/errors"
)

// SendRequest performs the exchange described by req. prepare, when not nil,
// may adjust or inspect the outgoing request before it is sent.
func SendRequest(req *Request, transport http.RoundTripper, prepare func(*http.Request) error) (*http.Response, error) {
	client, err := BuildHTTPClient(req, transport)
	if err != nil {
		return nil, err
	}
	r, err := BuildHTTPRequest(req)
	if err != nil {
		return nil, err
	}
	if prepare != nil {
		if err := prepare(r); err != nil {
			return nil, err
		}
	}

	resp, err := client.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "sending HTTP request")
	}

	return resp, nil
}
