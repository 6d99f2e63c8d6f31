package exchange

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nojima/ht/input"
	"github.com/nojima/ht/version"
	"github.com/pkg/errors"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded; charset=utf-8"
)

func defaultUserAgent() string {
	return fmt.Sprintf("ht/%s", version.Current())
}

// BuildRequest assembles the request descriptor from parsed input and the
// resolved options. Nothing is returned on error.
func BuildRequest(in *input.Input, options *Options) (*Request, error) {
	header := buildHeader(in, options)

	req := &Request{
		Method:          string(in.Method),
		URL:             in.URL.String(),
		Header:          header,
		Params:          buildParams(in),
		Timeout:         options.Timeout,
		FollowRedirects: options.FollowRedirects,
		Stream:          options.Stream,
	}

	if err := buildBody(in, req); err != nil {
		return nil, err
	}

	if options.Auth.Enabled {
		authType := options.Auth.Type
		if authType == "" {
			authType = "basic"
		}
		req.Auth = &Credentials{
			Type:     authType,
			UserName: options.Auth.UserName,
			Password: options.Auth.Password,
		}
	}

	req.Verify = parseVerify(options.Verify)
	if options.Cert != "" {
		req.Cert = &ClientCert{CertFile: options.Cert, KeyFile: options.CertKey}
	}

	proxies, err := parseProxies(options.Proxies)
	if err != nil {
		return nil, err
	}
	req.Proxies = proxies

	return req, nil
}

func hasBody(in *input.Input) bool {
	return in.Body.Fields.Len() > 0 || in.Body.BodyType == input.RawBody
}

// buildHeader merges base headers, defaults and explicit headers, later ones
// replacing earlier ones.
func buildHeader(in *input.Input, options *Options) http.Header {
	header := make(http.Header)
	for name, values := range options.BaseHeader {
		header[name] = append([]string(nil), values...)
	}

	header.Set("User-Agent", defaultUserAgent())
	autoJSON := hasBody(in) && !options.Form
	if options.JSON || autoJSON {
		header.Set("Accept", contentTypeJSON)
		if hasBody(in) {
			header.Set("Content-Type", contentTypeJSON)
		}
	} else if options.Form && in.Body.Files.Len() == 0 {
		// With files the multipart writer sets Content-Type with its boundary.
		header.Set("Content-Type", contentTypeForm)
	}

	in.Header.Each(func(name string, v input.Value[string]) {
		header.Set(name, v.First())
	})
	return header
}

func buildParams(in *input.Input) []Field {
	var params []Field
	for _, p := range in.Parameters.Pairs() {
		params = append(params, Field{Name: p.Key, Value: p.Value})
	}
	return params
}

func buildBody(in *input.Input, req *Request) error {
	switch in.Body.BodyType {
	case input.EmptyBody:
		return nil
	case input.JSONBody:
		body, err := buildJSONBody(in)
		if err != nil {
			return err
		}
		req.Body = body
		return nil
	case input.FormBody:
		return buildFormBody(in, req)
	case input.RawBody:
		req.Body = in.Body.Raw
		return nil
	default:
		return errors.Errorf("unknown body type: %v", in.Body.BodyType)
	}
}

// buildJSONBody serializes the body fields as one JSON object in argument
// order. No fields means an empty body, not "{}".
func buildJSONBody(in *input.Input) ([]byte, error) {
	if in.Body.Fields.Len() == 0 {
		return []byte{}, nil
	}
	obj := input.NewObject()
	in.Body.Fields.Each(func(name string, v input.Value[interface{}]) {
		if v.IsMultiple() {
			obj.Set(name, v.All())
		} else {
			obj.Set(name, v.First())
		}
	})
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling JSON of HTTP body")
	}
	return body, nil
}

func buildFormBody(in *input.Input, req *Request) error {
	for _, p := range in.Body.Fields.Pairs() {
		value, err := formValue(p.Value)
		if err != nil {
			return errors.Wrapf(err, "encoding form field '%s'", p.Key)
		}
		req.Form = append(req.Form, Field{Name: p.Key, Value: value})
	}
	for _, p := range in.Body.Files.Pairs() {
		req.Files = append(req.Files, FileField{
			Name:     p.Key,
			Filename: p.Value.Name,
			Content:  p.Value.Content,
		})
	}
	return nil
}

// formValue renders a body field value for a form. Raw JSON values other
// than strings are sent as their JSON text.
func formValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func parseVerify(s string) Verify {
	switch s {
	case "", "yes":
		return Verify{Enabled: true}
	case "no":
		return Verify{Enabled: false}
	default:
		return Verify{Enabled: true, CABundle: s}
	}
}

func parseProxies(values []string) (map[string]string, error) {
	proxies := map[string]string{}
	for _, value := range values {
		item, err := input.SplitItem(value, []input.Separator{input.SepProxy})
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --proxy value")
		}
		proxies[item.Key] = item.Value
	}
	return proxies, nil
}
