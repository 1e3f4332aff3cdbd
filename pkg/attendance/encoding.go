package attendance

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode converts roster bytes to UTF-8 and reports the detected encoding.
// Spreadsheet exports arrive as UTF-8 with or without a BOM, UTF-16 with a
// BOM, or Latin-1; anything that is not valid UTF-8 is read as Latin-1.
func decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, "utf-16le", err
	case bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, "utf-16be", err
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		return out, "latin-1", err
	}
}
