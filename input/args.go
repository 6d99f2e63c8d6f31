package input

import (
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reMethod    = regexp.MustCompile(`^[a-zA-Z]+$`)
	reScheme    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	reShorthand = regexp.MustCompile(`^:(\d*)(/?.*)$`)
)

// compressionSuffixes maps file suffixes to their content encoding.
var compressionSuffixes = map[string]string{
	".gz":  "gzip",
	".bz2": "bzip2",
	".xz":  "xz",
	".Z":   "compress",
	".br":  "br",
}

const (
	defaultScheme = "http://"
	defaultHost   = "localhost"
)

// ParseArgs turns the positional arguments `[METHOD] URL [REQUEST_ITEM ...]`
// into an Input. It infers the method when none is given, classifies the
// request items, reads the body from stdin when requested and normalizes the URL.
func ParseArgs(args []string, stdin io.Reader, options *Options) (*Input, error) {
	if options.JSON && options.Form {
		return nil, NewConfigurationError("", "You cannot specify both of --json and --form")
	}

	var argMethod string
	var argURL string
	var argItems []string
	switch len(args) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		argURL = args[0]
	default:
		argMethod = args[0]
		argURL = args[1]
		argItems = args[2:]
	}

	rawItems, err := SplitItems(argItems)
	if err != nil {
		return nil, err
	}

	in := Input{}
	switch {
	case argMethod == "":
		in.Method = guessMethod(options, nil)
	case !reMethod.MatchString(argMethod):
		// Invoked as `ht URL ITEM...`: the URL sits where the method was
		// expected and the first item where the URL was. A bare host such
		// as "localhost" looks like a method and is not caught here.
		first, err := SplitItem(argURL, ItemSeparators)
		if err != nil {
			return nil, err
		}
		rawItems = append([]RawItem{first}, rawItems...)
		argURL = argMethod
		in.Method = guessMethod(options, rawItems)
	default:
		in.Method = Method(strings.ToUpper(argMethod))
	}

	items, err := ParseItems(rawItems, options.Form)
	if err != nil {
		return nil, err
	}
	in.Header = items.Header
	in.Parameters = items.Parameters
	in.Body.Fields = items.Data
	in.Body.Files = NewMultiBucket[File]()

	if items.Files.Len() > 0 && !options.Form {
		if err := bodyFromFileItem(&in, items.Files, rawItems); err != nil {
			return nil, err
		}
	} else {
		in.Body.Files = items.Files
	}

	if options.ReadStdin {
		if err := checkBodyConflict(&in, rawItems); err != nil {
			return nil, err
		}
		in.Body.Raw, err = io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		in.Body.BodyType = RawBody
		in.StdinConsumed = true
	}

	in.Body.BodyType = determineBodyType(&in, options)

	u, err := parseURL(argURL)
	if err != nil {
		return nil, err
	}
	in.URL = u

	return &in, nil
}

func guessMethod(options *Options, items []RawItem) Method {
	if options.ReadStdin {
		return Method("POST")
	}
	for _, item := range items {
		if item.Sep.IsData() {
			return Method("POST")
		}
	}
	return Method("GET")
}

// bodyFromFileItem handles `ht URL @path`: without --form, a single unnamed
// file item is sent as the raw request body.
func bodyFromFileItem(in *Input, files *Bucket[File], rawItems []RawItem) error {
	keys := files.Keys()
	if len(keys) != 1 || keys[0] != "" {
		return NewConfigurationError(strings.Join(keys, ","), "Invalid file fields (perhaps you meant --form?)")
	}
	v, _ := files.Get("")
	if v.IsMultiple() {
		return NewConfigurationError("@", "Only one file can be used as the request body")
	}
	if err := checkBodyConflict(in, rawItems); err != nil {
		return err
	}
	file := v.First()
	in.Body.BodyType = RawBody
	in.Body.Raw = file.Content

	if !in.Header.Has("Content-Type") {
		if contentType := guessContentType(file.Name); contentType != "" {
			in.Header.Put("Content-Type", contentType)
		}
	}
	return nil
}

// guessContentType guesses the media type from the file name. A compression
// suffix is stripped first and reported as the charset parameter.
func guessContentType(filename string) string {
	ext := filepath.Ext(filename)
	encoding, compressed := compressionSuffixes[ext]
	if compressed {
		ext = filepath.Ext(strings.TrimSuffix(filename, ext))
	}
	contentType := mime.TypeByExtension(ext)
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType != "" && compressed {
		contentType += "; charset=" + encoding
	}
	return contentType
}

// checkBodyConflict fails when a body is already set, naming the first
// body-bearing item.
func checkBodyConflict(in *Input, rawItems []RawItem) error {
	if in.Body.Fields.Len() == 0 && in.Body.Files.Len() == 0 && in.Body.BodyType != RawBody {
		return nil
	}
	orig := ""
	for _, item := range rawItems {
		if item.Sep.IsData() {
			orig = item.Orig
			break
		}
	}
	return NewConfigurationError(orig, "Request body (from stdin or a file) and request data (key=value) cannot be mixed")
}

func determineBodyType(in *Input, options *Options) BodyType {
	switch {
	case in.Body.BodyType == RawBody:
		return RawBody
	case options.Form && (in.Body.Fields.Len() > 0 || in.Body.Files.Len() > 0):
		return FormBody
	case options.Form:
		return EmptyBody
	case in.Body.Fields.Len() > 0 || options.JSON:
		return JSONBody
	default:
		return EmptyBody
	}
}

// NormalizeURL prepends the default scheme to s unless it already has one.
// `:3000/foo` and `:/foo` are shorthands for localhost.
func NormalizeURL(s string) string {
	if reScheme.MatchString(s) {
		return s
	}
	if strings.HasPrefix(s, ":") && !strings.HasPrefix(s, "::") {
		if m := reShorthand.FindStringSubmatch(s); m != nil {
			u := defaultScheme + defaultHost
			if m[1] != "" {
				u += ":" + m[1]
			}
			return u + m[2]
		}
	}
	return defaultScheme + s
}

func parseURL(s string) (*url.URL, error) {
	normalized := NormalizeURL(s)
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, newUsageError("Invalid URL: " + s)
	}
	return u, nil
}
