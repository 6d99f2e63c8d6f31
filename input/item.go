package input

import (
	"sort"
	"strings"
)

// Separator is the substring of a request item that decides what the item means.
type Separator string

const (
	SepHeader           Separator = ":"
	SepQuery            Separator = "=="
	SepData             Separator = "="
	SepRawJSONData      Separator = ":="
	SepFile             Separator = "@"
	SepDataEmbedFile    Separator = "=@"
	SepRawJSONEmbedFile Separator = ":=@"
	SepCredentials      Separator = ":"
	SepProxy            Separator = ":"

	unknownSeparator Separator = ""
)

const backslash = `\`

// ItemSeparators are the separators accepted in REQUEST_ITEM arguments.
var ItemSeparators = []Separator{
	SepHeader,
	SepQuery,
	SepData,
	SepRawJSONData,
	SepFile,
	SepDataEmbedFile,
	SepRawJSONEmbedFile,
}

// IsData reports whether items with this separator go to the request body.
func (s Separator) IsData() bool {
	switch s {
	case SepData, SepRawJSONData, SepFile, SepDataEmbedFile, SepRawJSONEmbedFile:
		return true
	}
	return false
}

func (s Separator) embedsFile() bool {
	return s == SepDataEmbedFile || s == SepRawJSONEmbedFile
}

func (s Separator) isRawJSON() bool {
	return s == SepRawJSONData || s == SepRawJSONEmbedFile
}

// RawItem is one key/value argument split at its separator.
type RawItem struct {
	Key   string
	Value string
	Sep   Separator
	Orig  string
}

// SplitItem splits s at the first-starting, then longest, unescaped separator.
// Escaped characters are never part of a separator and appear literally in
// the resulting key or value.
func SplitItem(s string, separators []Separator) (RawItem, error) {
	special := backslash
	for _, sep := range separators {
		special += string(sep)
	}
	tokens := tokenize(s, special)

	// Shorter first, so a longer separator at the same offset wins.
	sorted := make([]Separator, len(separators))
	copy(sorted, separators)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) < len(sorted[j])
	})

	for i, tok := range tokens {
		if tok.escaped {
			continue
		}
		pos := -1
		sep := unknownSeparator
		for _, candidate := range sorted {
			p := strings.Index(tok.text, string(candidate))
			if p == -1 {
				continue
			}
			if pos == -1 || p < pos || (p == pos && len(candidate) >= len(sep)) {
				pos = p
				sep = candidate
			}
		}
		if pos == -1 {
			continue
		}
		key := joinTokens(tokens[:i]) + tok.text[:pos]
		value := tok.text[pos+len(sep):] + joinTokens(tokens[i+1:])
		return RawItem{Key: key, Value: value, Sep: sep, Orig: s}, nil
	}
	return RawItem{}, newParseError(s, "not a valid value")
}

// SplitItems splits every argument as a REQUEST_ITEM.
func SplitItems(args []string) ([]RawItem, error) {
	items := make([]RawItem, 0, len(args))
	for _, arg := range args {
		item, err := SplitItem(arg, ItemSeparators)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
