package output

import (
	"io"
	"net/http"
)

type Printer interface {
	PrintStatusLine(proto string, status string, statusCode int) error
	PrintRequestLine(req *http.Request) error
	PrintHeader(header http.Header) error
	PrintBody(body io.Reader, contentType string) error
}

// NewPrinter returns a pretty printer when formatting or colors are enabled,
// and a plain one otherwise.
func NewPrinter(writer io.Writer, options *Options) Printer {
	if !options.EnableFormat && !options.EnableColor {
		return NewPlainPrinter(writer)
	}
	return NewPrettyPrinter(PrettyPrinterConfig{
		Writer:       writer,
		EnableColor:  options.EnableColor,
		EnableFormat: options.EnableFormat,
	})
}
