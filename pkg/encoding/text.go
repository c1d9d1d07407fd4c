// Package encoding provides text decoding and identifier helpers for OBJ sources
// and generated headers.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownEncoding is returned for encoding names the IANA index does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup resolves an encoding name such as "utf-8", "euc-kr" or "windows-1252".
// An empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if isUTF8(name) {
		return encoding.Nop, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// ToUTF8 converts source bytes in the named encoding to UTF-8.
// A leading UTF-8 byte order mark is dropped.
func ToUTF8(data []byte, name string) ([]byte, error) {
	if isUTF8(name) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return result, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// Identifier folds an arbitrary name into a valid C identifier.
// Accents are stripped ("Café" -> "Cafe"), every other character outside
// [A-Za-z0-9_] becomes '_', and a leading digit gets a '_' prefix.
func Identifier(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	id := b.String()
	if id == "" {
		return "_"
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "_" + id
	}
	return id
}
