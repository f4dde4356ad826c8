// Package encoding converts legacy-encoded text found in mesh files to UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names Lookup does not know.
var ErrUnknownCharset = errors.New("unknown charset")

var charsets = map[string]encoding.Encoding{
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"shift-jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"big5":         traditionalchinese.Big5,
	"windows-1252": charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
}

// Lookup returns the decoder for a charset name. Names are matched case
// insensitively; "_" and "-" are interchangeable. An empty name or "utf-8"
// returns a nil Encoding, meaning text is used as is.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, ok := charsets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// ToUTF8 decodes data from charset. Input that is already valid UTF-8 is
// returned unchanged, so files re-saved by modern tools pass through.
func ToUTF8(data []byte, charset string) (string, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return "", err
	}
	if enc == nil || utf8.Valid(data) {
		return string(data), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", charset, err)
	}
	return string(out), nil
}
