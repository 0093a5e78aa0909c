// Package encoding detects and decodes the text encodings of batch input
// files. Everything is decoded to UTF-8 before tokenization.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"markup-translator/internal/logger"
	"markup-translator/internal/types"
)

// Supported encoding names. Auto selects by BOM and content probing.
const (
	Auto    = ""
	UTF8    = "UTF-8"
	UTF8BOM = "UTF-8-BOM"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	GBK     = "GBK"
	Latin1  = "LATIN-1"
	Unknown = "UNKNOWN"
)

// Detect returns the encoding name of the given data.
// BOM markers win, then valid UTF-8, then a GBK probe.
func Detect(data []byte) string {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return UTF8BOM
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
		return UTF16LE
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
		return UTF16BE
	}
	if utf8.Valid(data) {
		return UTF8
	}
	if isValidGBK(data) {
		return GBK
	}
	return Unknown
}

// isValidGBK checks if data is valid GBK encoding
func isValidGBK(data []byte) bool {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return false
	}
	return utf8.Valid(decoded)
}

// NewReader wraps r so that it yields UTF-8 regardless of the named input
// encoding.
func NewReader(r io.Reader, encName string) (io.Reader, error) {
	switch encName {
	case UTF8:
		return r, nil
	case UTF8BOM:
		return transform.NewReader(r,
			unicode.UTF8BOM.NewDecoder()), nil
	case UTF16LE:
		return transform.NewReader(r,
			unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case UTF16BE:
		return transform.NewReader(r,
			unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	case GBK:
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case Latin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, types.NewAppErrorWithDetails(
			types.ErrInvalidInput, "unsupported encoding", encName, nil)
	}
}

// Decode converts data from the named encoding to UTF-8. With Auto the
// encoding is detected first.
func Decode(data []byte, encName string) ([]byte, error) {
	if encName == Auto {
		encName = Detect(data)
		logger.Debug("detected input encoding", logger.String("encoding", encName))
		if encName == Unknown {
			return nil, types.NewAppError(
				types.ErrInvalidInput, "unknown input encoding", nil)
		}
	}
	reader, err := NewReader(bytes.NewReader(data), encName)
	if err != nil {
		return nil, err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(
			types.ErrInvalidInput, "failed to decode input", encName, err)
	}
	return decoded, nil
}

// ReadLines reads the file at path in the named encoding (or Auto) and
// returns its lines as UTF-8.
func ReadLines(path, encName string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrIO,
			fmt.Sprintf("failed to read %s", path), err)
	}
	decoded, err := Decode(data, encName)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewAppError(types.ErrIO,
			fmt.Sprintf("failed to scan %s", path), err)
	}
	return lines, nil
}
