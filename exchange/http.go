package exchange

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BuildHTTPRequest converts the descriptor into a net/http request.
func BuildHTTPRequest(req *Request) (*http.Request, error) {
	u, err := buildURL(req)
	if err != nil {
		return nil, err
	}

	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	bodyTuple, err := buildHTTPBody(req)
	if err != nil {
		return nil, err
	}

	if header.Get("Content-Type") == "" && bodyTuple.contentType != "" {
		header.Set("Content-Type", bodyTuple.contentType)
	}

	r := http.Request{
		Method:        req.Method,
		URL:           u,
		Header:        header,
		Host:          header.Get("Host"),
		Body:          bodyTuple.body,
		ContentLength: bodyTuple.contentLength,
	}
	if req.Auth != nil {
		r.SetBasicAuth(req.Auth.UserName, req.Auth.Password)
	}
	return &r, nil
}

// buildURL appends the query parameters after any query already in the URL.
func buildURL(req *Request) (*url.URL, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing URL %s", req.URL)
	}
	if len(req.Params) == 0 {
		return u, nil
	}
	query := encodeFields(req.Params)
	if u.RawQuery == "" {
		u.RawQuery = query
	} else {
		u.RawQuery = u.RawQuery + "&" + query
	}
	return u, nil
}

// encodeFields URL-encodes fields keeping their order.
func encodeFields(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

type bodyTuple struct {
	body          io.ReadCloser
	contentLength int64
	contentType   string
}

func buildHTTPBody(req *Request) (bodyTuple, error) {
	switch {
	case req.IsMultipart():
		return buildMultipartBody(req)
	case req.IsForm():
		body := encodeFields(req.Form)
		return bodyTuple{
			body:          io.NopCloser(strings.NewReader(body)),
			contentLength: int64(len(body)),
		}, nil
	case req.Body != nil:
		return bodyTuple{
			body:          io.NopCloser(bytes.NewReader(req.Body)),
			contentLength: int64(len(req.Body)),
		}, nil
	default:
		return bodyTuple{}, nil
	}
}

func buildMultipartBody(req *Request) (bodyTuple, error) {
	var buffer bytes.Buffer
	multipartWriter := multipart.NewWriter(&buffer)
	if err := multipartWriter.SetBoundary(strings.ReplaceAll(uuid.NewString(), "-", "")); err != nil {
		return bodyTuple{}, errors.Wrap(err, "setting multipart boundary")
	}

	for _, field := range req.Form {
		part, err := multipartWriter.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {formDataDisposition(field.Name, "")},
		})
		if err != nil {
			return bodyTuple{}, errors.Wrap(err, "creating multipart field")
		}
		if _, err := part.Write([]byte(field.Value)); err != nil {
			return bodyTuple{}, errors.Wrapf(err, "writing multipart field '%s'", field.Name)
		}
	}
	for _, file := range req.Files {
		part, err := multipartWriter.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {formDataDisposition(file.Name, file.Filename)},
		})
		if err != nil {
			return bodyTuple{}, errors.Wrap(err, "creating multipart file")
		}
		if _, err := part.Write(file.Content); err != nil {
			return bodyTuple{}, errors.Wrapf(err, "writing multipart file '%s'", file.Name)
		}
	}

	if err := multipartWriter.Close(); err != nil {
		return bodyTuple{}, errors.Wrap(err, "closing multipart writer")
	}

	return bodyTuple{
		body:          io.NopCloser(&buffer),
		contentLength: int64(buffer.Len()),
		contentType:   multipartWriter.FormDataContentType(),
	}, nil
}

func formDataDisposition(name, filename string) string {
	d := "form-data; " + dispositionParam("name", name)
	if filename != "" {
		d += "; " + dispositionParam("filename", filename)
	}
	return d
}

// dispositionParam falls back to RFC 5987 encoding for values that cannot
// be written as a quoted string.
func dispositionParam(key, value string) string {
	for _, c := range value {
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return key + "*=utf-8''" + url.PathEscape(value)
		}
	}
	return key + `="` + value + `"`
}
