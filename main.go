package httpie

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/nojima/ht/exchange"
	"github.com/nojima/ht/flags"
	"github.com/nojima/ht/input"
	"github.com/nojima/ht/output"
	"github.com/nojima/ht/version"
	"github.com/pkg/errors"
)

type Options struct {
	// Transport replaces the default transport when not nil.
	Transport http.RoundTripper
}

// StatusError is returned by --check-status for 3xx, 4xx and 5xx responses.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// ExitStatus is the process exit status for the response.
func (e *StatusError) ExitStatus() int {
	return e.StatusCode / 100
}

// tracebackError prints the stack recorded by pkg/errors along with the message.
type tracebackError struct {
	err error
}

func (e *tracebackError) Error() string {
	return fmt.Sprintf("%+v", e.err)
}

func (e *tracebackError) Cause() error {
	return e.err
}

func Main(options *Options) error {
	env, err := flags.DefaultEnvironment()
	if err != nil {
		return err
	}
	return Run(os.Args, env, os.Stdout, os.Stderr, options)
}

// Run executes one invocation. args[0] is the program name.
func Run(args []string, env *flags.Environment, stdout, stderr io.Writer, options *Options) error {
	if options == nil {
		options = &Options{}
	}

	result, err := flags.Parse(args, env)
	if err != nil {
		if _, ok := errors.Cause(err).(*input.UsageError); ok && result != nil {
			result.FlagSet.PrintUsage(stderr)
		}
		if result != nil && result.OptionSet != nil && result.OptionSet.Traceback {
			return &tracebackError{err: err}
		}
		return err
	}

	optionSet := result.OptionSet
	switch {
	case optionSet.PrintHelp:
		result.FlagSet.PrintUsage(stdout)
		return nil
	case optionSet.PrintVer:
		fmt.Fprintln(stdout, version.Current())
		return nil
	case optionSet.PrintLicenses:
		version.PrintLicenses(stdout)
		return nil
	}

	if err := exchangeAndPrint(result, stdout, stderr, options); err != nil {
		if _, ok := err.(*StatusError); !ok && optionSet.Traceback {
			return &tracebackError{err: err}
		}
		return err
	}
	return nil
}

func exchangeAndPrint(result *flags.Result, stdout, stderr io.Writer, options *Options) error {
	optionSet := result.OptionSet
	outputOptions := &optionSet.OutputOptions

	req, err := exchange.BuildRequest(result.Input, &optionSet.ExchangeOptions)
	if err != nil {
		return err
	}
	if optionSet.Debug {
		dumpRequest(stderr, req)
	}

	// In download mode the terminal output goes to stderr
	out := stdout
	if outputOptions.Download {
		out = stderr
	} else if outputOptions.OutputFile != "" {
		file, err := os.Create(outputOptions.OutputFile)
		if err != nil {
			return errors.Wrapf(err, "opening %s", outputOptions.OutputFile)
		}
		defer file.Close()
		out = file
	}

	writer := bufio.NewWriter(out)
	defer writer.Flush()
	printer := output.NewPrinter(writer, outputOptions)

	var fileWriter *output.FileWriter
	if outputOptions.Download && !outputOptions.DownloadToStdout {
		fileWriter = output.NewFileWriter(result.Input.URL, outputOptions)
	}

	prepare := func(r *http.Request) error {
		if fileWriter != nil {
			fileWriter.PrepareRequest(r)
		}
		if err := printRequest(writer, printer, r, outputOptions); err != nil {
			return err
		}
		return writer.Flush()
	}

	// Send request and receive response
	resp, err := exchange.SendRequest(req, options.Transport, prepare)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Print response
	if outputOptions.PrintResponseHeader {
		if err := printer.PrintStatusLine(resp.Proto, resp.Status, resp.StatusCode); err != nil {
			return err
		}
		if err := printer.PrintHeader(resp.Header); err != nil {
			return err
		}
	}
	if outputOptions.PrintResponseBody {
		bodyPrinter := printer
		if outputOptions.Stream {
			writer.Flush()
			bodyPrinter = output.NewPlainPrinter(out)
		}
		if err := bodyPrinter.PrintBody(resp.Body, resp.Header.Get("Content-Type")); err != nil {
			return err
		}
	}

	if outputOptions.Download && resp.StatusCode < 300 {
		writer.Flush()
		if fileWriter != nil {
			err = fileWriter.Download(resp, stderr)
		} else {
			err = output.DownloadTo(stdout, resp, stderr)
		}
		if err != nil {
			return err
		}
	}

	if optionSet.CheckStatus {
		if isErrorStatus(resp.StatusCode, req.FollowRedirects) {
			return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
	}
	return nil
}

func isErrorStatus(statusCode int, followRedirects bool) bool {
	switch statusCode / 100 {
	case 3:
		return !followRedirects
	case 4, 5:
		return true
	default:
		return false
	}
}

func printRequest(w io.Writer, printer output.Printer, r *http.Request, options *output.Options) error {
	if options.PrintRequestHeader {
		if err := printer.PrintRequestLine(r); err != nil {
			return err
		}
		header := r.Header.Clone()
		if header.Get("Host") == "" {
			header.Set("Host", r.URL.Host)
		}
		if err := printer.PrintHeader(header); err != nil {
			return err
		}
	}

	if options.PrintRequestBody && r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return errors.Wrap(err, "reading request body")
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		if len(body) > 0 {
			if err := printer.PrintBody(bytes.NewReader(body), r.Header.Get("Content-Type")); err != nil {
				return err
			}
			fmt.Fprint(w, "\n\n")
		}
	}
	return nil
}

// dumpRequest writes the assembled request for --debug.
func dumpRequest(w io.Writer, req *exchange.Request) {
	fmt.Fprintf(w, ">>> %s %s\n", req.Method, req.URL)
	fmt.Fprintf(w, "header:    %v\n", req.Header)
	fmt.Fprintf(w, "params:    %v\n", req.Params)
	fmt.Fprintf(w, "body:      %q\n", req.Body)
	fmt.Fprintf(w, "form:      %v\n", req.Form)
	for _, f := range req.Files {
		fmt.Fprintf(w, "file:      %s (%s, %d bytes)\n", f.Name, f.Filename, len(f.Content))
	}
	fmt.Fprintf(w, "auth:      %v\n", req.Auth != nil)
	fmt.Fprintf(w, "verify:    %+v\n", req.Verify)
	fmt.Fprintf(w, "cert:      %+v\n", req.Cert)
	fmt.Fprintf(w, "proxies:   %v\n", req.Proxies)
	fmt.Fprintf(w, "timeout:   %v\n", req.Timeout)
	fmt.Fprintf(w, "redirects: %v\n", req.FollowRedirects)
	fmt.Fprintf(w, "stream:    %v\n\n", req.Stream)
}
