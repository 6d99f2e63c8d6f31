package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

type PrettyPrinter struct {
	writer        io.Writer
	plain         Printer
	aurora        aurora.Aurora
	enableFormat  bool
	headerPalette *HeaderPalette
}

type PrettyPrinterConfig struct {
	Writer       io.Writer
	EnableColor  bool
	EnableFormat bool
}

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Proto          aurora.Color
	Status         aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.GreenFg | aurora.BoldFm,
	URL:            aurora.CyanFg | aurora.UnderlineFm,
	Proto:          aurora.BlueFg,
	Status:         aurora.BrownFg | aurora.BoldFm,
	FieldName:      aurora.GrayFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.GrayFg,
}

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		plain:         NewPlainPrinter(config.Writer),
		aurora:        aurora.NewAurora(config.EnableColor),
		enableFormat:  config.EnableFormat,
		headerPalette: &defaultHeaderPalette,
	}
}

func (p *PrettyPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(proto, p.headerPalette.Proto),
		p.aurora.Colorize(status, p.headerPalette.Status))
	return nil
}

func (p *PrettyPrinter) PrintRequestLine(req *http.Request) error {
	fmt.Fprintf(p.writer, "%s %s %s\n",
		p.aurora.Colorize(req.Method, p.headerPalette.Method),
		p.aurora.Colorize(req.URL.String(), p.headerPalette.URL),
		p.aurora.Colorize(requestProto(req), p.headerPalette.Proto))
	return nil
}

func (p *PrettyPrinter) PrintHeader(header http.Header) error {
	var names []string
	for name := range header {
		names = append(names, name)
	}
	if p.enableFormat {
		sort.Strings(names)
	}

	for _, name := range names {
		values := header[name]
		for _, value := range values {
			fmt.Fprintf(p.writer, "%s%s %s\n",
				p.aurora.Colorize(name, p.headerPalette.FieldName),
				p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
				p.aurora.Colorize(value, p.headerPalette.FieldValue))
		}
	}

	fmt.Fprintln(p.writer)
	return nil
}

func isJSON(contentType string) bool {
	contentType = strings.TrimSpace(contentType)

	semicolon := strings.Index(contentType, ";")
	if semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}

func (p *PrettyPrinter) PrintBody(body io.Reader, contentType string) error {
	// Fallback to PlainPrinter when the body is not JSON
	if !p.enableFormat || !isJSON(contentType) {
		return p.plain.PrintBody(body, contentType)
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading body")
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, b, "", "    "); err != nil {
		// Not valid JSON after all; print it untouched
		_, err := p.writer.Write(b)
		return errors.Wrap(err, "printing body")
	}
	indented.WriteByte('\n')
	if _, err := indented.WriteTo(p.writer); err != nil {
		return errors.Wrap(err, "printing body")
	}
	return nil
}
