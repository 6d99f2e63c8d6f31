package input

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")

// File is an uploaded file read from disk.
type File struct {
	Name    string
	Content []byte
}

// Items holds classified request items.
type Items struct {
	Header     *Bucket[string]
	Parameters *Bucket[string]
	Data       *Bucket[interface{}]
	Files      *Bucket[File]
}

// ParseItems sorts items into headers, query parameters, body fields and
// files, reading any referenced files. With form set, repeated body fields
// collect into multiple values; otherwise the last one wins.
func ParseItems(items []RawItem, form bool) (*Items, error) {
	result := &Items{
		Header:     NewHeaderBucket(),
		Parameters: NewMultiBucket[string](),
		Files:      NewMultiBucket[File](),
	}
	if form {
		result.Data = NewMultiBucket[interface{}]()
	} else {
		result.Data = NewBucket[interface{}]()
	}

	for _, item := range items {
		switch item.Sep {
		case SepHeader:
			if !reHeaderFieldName.MatchString(item.Key) {
				return nil, newParseError(item.Orig, "invalid header field name: %s", item.Key)
			}
			result.Header.Put(item.Key, item.Value)
		case SepQuery:
			result.Parameters.Put(item.Key, item.Value)
		case SepFile:
			content, err := readItemFile(item)
			if err != nil {
				return nil, err
			}
			result.Files.Put(item.Key, File{Name: filepath.Base(item.Value), Content: content})
		case SepData, SepRawJSONData, SepDataEmbedFile, SepRawJSONEmbedFile:
			value, err := dataValue(item)
			if err != nil {
				return nil, err
			}
			result.Data.Put(item.Key, value)
		default:
			return nil, errors.Errorf("unknown separator %q in item %q", item.Sep, item.Orig)
		}
	}
	return result, nil
}

func dataValue(item RawItem) (interface{}, error) {
	text := item.Value
	if item.Sep.embedsFile() {
		content, err := readItemFile(item)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(content) {
			return nil, errors.WithStack(&EncodingError{Orig: item.Orig, Path: item.Value})
		}
		text = string(content)
	}
	if !item.Sep.isRawJSON() {
		return text, nil
	}
	v, err := parseJSON(text)
	if err != nil {
		return nil, errors.WithStack(&JSONDecodeError{Orig: item.Orig, Err: err})
	}
	return v, nil
}

func readItemFile(item RawItem) ([]byte, error) {
	path := expandUser(item.Value)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(&FileReadError{Orig: item.Orig, Path: path, Err: err})
	}
	return content, nil
}

func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
