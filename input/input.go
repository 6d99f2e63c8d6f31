package input

import "net/url"

type Input struct {
	Method     Method
	URL        *url.URL
	Parameters *Bucket[string]
	Header     *Bucket[string]
	Body       Body

	// StdinConsumed is set when the request body was read from stdin.
	StdinConsumed bool
}

type Method string

type BodyType int

const (
	EmptyBody BodyType = iota
	JSONBody
	FormBody
	RawBody
)

type Body struct {
	BodyType BodyType
	Fields   *Bucket[interface{}]
	Files    *Bucket[File] // used only when BodyType == FormBody
	Raw      []byte        // used only when BodyType == RawBody
}

type Options struct {
	JSON bool
	Form bool

	// ReadStdin is set when stdin is not a terminal and --ignore-stdin is not given.
	ReadStdin bool
}
