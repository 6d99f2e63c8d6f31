package flags

import (
	"io"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nojima/ht/config"
	"github.com/nojima/ht/exchange"
	"github.com/nojima/ht/input"
	"github.com/nojima/ht/output"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

const (
	outputOptionsAll             = "HBhb"
	outputOptionsDefault         = "hb"
	outputOptionsDefaultRedirect = "b"

	printUnset = "\000" // user did not specify --print
	prettyAuto = ""     // --pretty not given: decided by whether stdout is a terminal
)

// prettyModes maps --pretty values to what they enable.
var prettyModes = map[string]struct{ format, colors bool }{
	"all":    {format: true, colors: true},
	"colors": {colors: true},
	"format": {format: true},
	"none":   {},
}

type FlagSet interface {
	Args() []string
	PrintUsage(w io.Writer)
}

type OptionSet struct {
	InputOptions    input.Options
	ExchangeOptions exchange.Options
	OutputOptions   output.Options

	IgnoreStdin   bool
	CheckStatus   bool
	Traceback     bool
	Debug         bool
	PrintHelp     bool
	PrintVer      bool
	PrintLicenses bool
}

// Environment is what the post-processing steps know about the outside world.
type Environment struct {
	Stdin            io.Reader
	StdinIsTerminal  bool
	StdoutIsTerminal bool
	StderrIsTerminal bool
	IsWindows        bool
	Config           *config.Config
	Prompter         PasswordPrompter
}

// DefaultEnvironment describes the current process.
func DefaultEnvironment() (*Environment, error) {
	c, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	return &Environment{
		Stdin:            os.Stdin,
		StdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		StdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
		StderrIsTerminal: isatty.IsTerminal(os.Stderr.Fd()),
		IsWindows:        runtime.GOOS == "windows",
		Config:           c,
		Prompter:         TerminalPrompter{},
	}, nil
}

// Result is the outcome of Parse.
type Result struct {
	FlagSet   FlagSet
	OptionSet *OptionSet
	// Input is nil when --help, --version or --licenses was given.
	Input *input.Input
	// StdoutIsTerminal reflects any redirection done by --download or --output.
	StdoutIsTerminal bool
}

// rawFlags holds flag values exactly as the flag grammar produced them.
type rawFlags struct {
	json        bool
	form        bool
	pretty      string
	print       string
	verbose     bool
	headers     bool
	body        bool
	stream      bool
	outputFile  string
	download    bool
	resume      bool
	auth        string
	authType    string
	proxies     []string
	follow      bool
	verify      string
	cert        string
	certKey     string
	timeout     string
	checkStatus bool
	ignoreStdin bool
	traceback   bool
	debug       bool
	help        bool
	version     bool
	licenses    bool
}

// grammar wraps a getopt set and remembers how to restore every option to
// its default, which is what --no-OPTION does.
type grammar struct {
	set      *getopt.Set
	defaults map[string]func()
}

func (g *grammar) boolVar(p *bool, long string, short rune, help string) {
	def := *p
	g.set.BoolVarLong(p, long, short, help)
	g.defaults[long] = func() { *p = def }
}

func (g *grammar) stringVar(p *string, long string, short rune, help, valueName string) {
	def := *p
	g.set.StringVarLong(p, long, short, help, valueName)
	g.defaults[long] = func() { *p = def }
}

func (g *grammar) listVar(p *[]string, long string, short rune, help, valueName string) {
	g.set.ListVarLong(p, long, short, help, valueName)
	g.defaults[long] = func() { *p = nil }
}

func newGrammar(raw *rawFlags) *grammar {
	raw.print = printUnset
	raw.pretty = prettyAuto
	raw.authType = "basic"
	raw.verify = "yes"
	raw.timeout = "30"

	g := &grammar{set: getopt.New(), defaults: map[string]func(){}}
	g.set.SetProgram("ht")
	g.set.SetParameters("[METHOD] URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	g.boolVar(&raw.json, "json", 'j', "serialize data items as a JSON object (default)")
	g.boolVar(&raw.form, "form", 'f', "serialize data items as form fields")
	g.stringVar(&raw.pretty, "pretty", 0, "output processing: all, colors, format or none", "STYLE")
	g.stringVar(&raw.print, "print", 'p', "specifies what the output should contain (HBhb)", "WHAT")
	g.boolVar(&raw.verbose, "verbose", 'v', "print the whole request as well as the response (--print=HBhb)")
	g.boolVar(&raw.headers, "headers", 'h', "print only the response headers (--print=h)")
	g.boolVar(&raw.body, "body", 'b', "print only the response body (--print=b)")
	g.boolVar(&raw.stream, "stream", 'S', "always stream the output by line")
	g.stringVar(&raw.outputFile, "output", 'o', "save output to FILE", "FILE")
	g.boolVar(&raw.download, "download", 'd', "download the response body to a file")
	g.boolVar(&raw.resume, "continue", 'c', "resume an interrupted download (requires --output)")
	g.stringVar(&raw.auth, "auth", 'a', "username and password for authentication", "USER[:PASS]")
	g.stringVar(&raw.authType, "auth-type", 0, "authentication mechanism (basic)", "TYPE")
	g.listVar(&raw.proxies, "proxy", 0, "proxy to use for a protocol, can be repeated", "PROTOCOL:PROXY_URL")
	g.boolVar(&raw.follow, "follow", 0, "follow redirects")
	g.stringVar(&raw.verify, "verify", 0, "verify the server certificate: yes, no or a CA bundle path", "VERIFY")
	g.stringVar(&raw.cert, "cert", 0, "client certificate file", "FILE")
	g.stringVar(&raw.certKey, "cert-key", 0, "private key for --cert when not contained in it", "FILE")
	g.stringVar(&raw.timeout, "timeout", 0, "timeout seconds that you allow the whole operation to take", "SECONDS")
	g.boolVar(&raw.checkStatus, "check-status", 0, "exit with an error status on 3xx, 4xx and 5xx responses")
	g.boolVar(&raw.ignoreStdin, "ignore-stdin", 0, "do not attempt to read stdin")
	g.boolVar(&raw.traceback, "traceback", 0, "print stack traces on errors")
	g.boolVar(&raw.debug, "debug", 0, "print the request description and stack traces")
	g.boolVar(&raw.help, "help", 0, "show this help message")
	g.boolVar(&raw.version, "version", 0, "show version")
	g.boolVar(&raw.licenses, "licenses", 0, "show licenses of the libraries ht is built with")
	return g
}

// Parse runs the flag grammar over args (args[0] is the program name) and
// then every post-processing step, in order. The first failing step aborts.
func Parse(args []string, env *Environment) (*Result, error) {
	if env.Config != nil && len(env.Config.DefaultOptions) > 0 && len(args) > 0 {
		args = append(append([]string{args[0]}, env.Config.DefaultOptions...), args[1:]...)
	}

	raw := rawFlags{}
	g := newGrammar(&raw)
	rest, noOptions := splitNoOptions(args)
	if err := g.set.Getopt(rest, nil); err != nil {
		return &Result{FlagSet: g.set}, input.NewConfigurationError("", err.Error())
	}

	result := &Result{FlagSet: g.set, StdoutIsTerminal: env.StdoutIsTerminal}
	optionSet := &OptionSet{}
	result.OptionSet = optionSet

	if err := applyNoOptions(g, noOptions); err != nil {
		return result, err
	}

	optionSet.Debug = raw.debug
	optionSet.Traceback = raw.traceback || raw.debug
	optionSet.PrintHelp = raw.help
	optionSet.PrintVer = raw.version
	optionSet.PrintLicenses = raw.licenses
	if raw.help || raw.version || raw.licenses {
		return result, nil
	}

	applyConfig(&raw, env.Config)
	if err := validateDownloadOptions(&raw); err != nil {
		return result, err
	}
	stdoutIsTerminal, err := setupStandardStreams(&raw, env, &optionSet.OutputOptions)
	if err != nil {
		return result, err
	}
	result.StdoutIsTerminal = stdoutIsTerminal
	if err := processOutputOptions(&raw, stdoutIsTerminal, &optionSet.OutputOptions); err != nil {
		return result, err
	}
	if err := processPrettyOptions(&raw, stdoutIsTerminal, env.IsWindows, &optionSet.OutputOptions); err != nil {
		return result, err
	}

	timeout, err := parseDurationOrSeconds(raw.timeout)
	if err != nil {
		return result, err
	}

	optionSet.IgnoreStdin = raw.ignoreStdin
	optionSet.CheckStatus = raw.checkStatus
	optionSet.InputOptions = input.Options{
		JSON:      raw.json,
		Form:      raw.form,
		ReadStdin: !raw.ignoreStdin && !env.StdinIsTerminal,
	}
	optionSet.ExchangeOptions = exchange.Options{
		JSON:            raw.json,
		Form:            raw.form,
		Timeout:         timeout,
		FollowRedirects: raw.follow,
		Stream:          raw.stream,
		Verify:          raw.verify,
		Cert:            raw.cert,
		CertKey:         raw.certKey,
		Proxies:         raw.proxies,
	}
	optionSet.OutputOptions.Stream = raw.stream

	in, err := input.ParseArgs(g.set.Args(), env.Stdin, &optionSet.InputOptions)
	if err != nil {
		return result, err
	}
	result.Input = in

	auth, err := processAuth(&raw, in, env.Prompter)
	if err != nil {
		return result, err
	}
	optionSet.ExchangeOptions.Auth = auth

	return result, nil
}

// splitNoOptions separates --no-OPTION arguments from the rest. Arguments
// after "--" are left alone.
func splitNoOptions(args []string) ([]string, []string) {
	var rest []string
	var noOptions []string
	for i, arg := range args {
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		if i > 0 && strings.HasPrefix(arg, "--no-") {
			noOptions = append(noOptions, arg)
			continue
		}
		rest = append(rest, arg)
	}
	return rest, noOptions
}

// applyNoOptions resets OPTION to its default for every --no-OPTION.
func applyNoOptions(g *grammar, noOptions []string) error {
	var invalid []string
	for _, option := range noOptions {
		reset, ok := g.defaults[strings.TrimPrefix(option, "--no-")]
		if !ok {
			invalid = append(invalid, option)
			continue
		}
		reset()
	}
	if len(invalid) > 0 {
		return input.NewConfigurationError(strings.Join(invalid, " "), "unrecognized arguments")
	}
	return nil
}

func applyConfig(raw *rawFlags, c *config.Config) {
	if c == nil {
		return
	}
	if !raw.json && c.ImplicitContentType == "form" {
		raw.form = true
	}
}

func validateDownloadOptions(raw *rawFlags) error {
	if !raw.download && raw.resume {
		return input.NewConfigurationError("--continue", "--continue only works with --download")
	}
	if raw.resume && !(raw.download && raw.outputFile != "") {
		return input.NewConfigurationError("--continue", "--continue requires --output to be specified")
	}
	return nil
}

// setupStandardStreams decides where output goes. In download mode what
// would go to stdout goes to stderr, and a redirected stdout receives the
// body. Otherwise --output replaces stdout. It returns whether the
// (possibly replaced) stdout is a terminal.
func setupStandardStreams(raw *rawFlags, env *Environment, options *output.Options) (bool, error) {
	if !env.StdoutIsTerminal && raw.outputFile != "" {
		return false, input.NewConfigurationError("--output", "Cannot use --output, -o with redirected output")
	}

	options.Download = raw.download
	options.Resume = raw.resume
	options.OutputFile = raw.outputFile
	if raw.download {
		options.DownloadToStdout = !env.StdoutIsTerminal
		return env.StderrIsTerminal, nil
	}
	if raw.outputFile != "" {
		return false, nil
	}
	return env.StdoutIsTerminal, nil
}

func processOutputOptions(raw *rawFlags, stdoutIsTerminal bool, options *output.Options) error {
	printFlag := raw.print
	if printFlag == printUnset {
		switch {
		case raw.verbose:
			printFlag = outputOptionsAll
		case raw.headers:
			printFlag = "h"
		case raw.body:
			printFlag = "b"
		case stdoutIsTerminal:
			printFlag = outputOptionsDefault
		default:
			printFlag = outputOptionsDefaultRedirect
		}
	}

	var unknown []string
	for _, c := range printFlag {
		switch c {
		case 'H':
			options.PrintRequestHeader = true
		case 'B':
			options.PrintRequestBody = true
		case 'h':
			options.PrintResponseHeader = true
		case 'b':
			options.PrintResponseBody = true
		default:
			unknown = append(unknown, string(c))
		}
	}
	if len(unknown) > 0 {
		return input.NewConfigurationError(strings.Join(unknown, ","), "Unknown output options (must consist of HBhb)")
	}

	// With --download the body goes to the file instead
	if raw.download {
		options.PrintResponseBody = false
	}
	return nil
}

func processPrettyOptions(raw *rawFlags, stdoutIsTerminal, isWindows bool, options *output.Options) error {
	name := raw.pretty
	if name == prettyAuto {
		if stdoutIsTerminal {
			name = "all"
		} else {
			name = "none"
		}
	}
	mode, ok := prettyModes[name]
	if !ok {
		return input.NewConfigurationError(raw.pretty, "--pretty must be one of all, colors, format, none")
	}
	if raw.pretty != prettyAuto && mode.colors && isWindows && !stdoutIsTerminal {
		return input.NewConfigurationError(raw.pretty, "Only terminal output can be colorized on Windows")
	}
	options.EnableFormat = mode.format
	options.EnableColor = mode.colors
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}
