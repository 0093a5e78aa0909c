package encoding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"markup-translator/internal/types"
)

func TestDetect(t *testing.T) {
	// plain UTF-8
	assert.Equal(t, UTF8, Detect([]byte("Das ist ein Test .")))

	// UTF-8 with BOM
	assert.Equal(t, UTF8BOM, Detect(append([]byte{0xEF, 0xBB, 0xBF}, "abc"...)))

	// UTF-16 little endian BOM
	assert.Equal(t, UTF16LE, Detect([]byte{0xFF, 0xFE, 'a', 0x00}))

	// UTF-16 big endian BOM
	assert.Equal(t, UTF16BE, Detect([]byte{0xFE, 0xFF, 0x00, 'a'}))

	// GBK encoded Chinese text is not valid UTF-8
	gbkData, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("中文编码测试"))
	require.NoError(t, err)
	assert.Equal(t, GBK, Detect(gbkData))
}

func TestDecode(t *testing.T) {
	// UTF-8 passes through
	decoded, err := Decode([]byte("Das ist ein Test ."), Auto)
	require.NoError(t, err)
	assert.Equal(t, "Das ist ein Test .", string(decoded))

	// UTF-8 BOM is stripped
	decoded, err = Decode(append([]byte{0xEF, 0xBB, 0xBF}, "abc"...), Auto)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(decoded))

	// UTF-16LE round trip
	utf16Data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
		NewEncoder().Bytes([]byte("Zum Inhalt springen"))
	require.NoError(t, err)
	decoded, err = Decode(utf16Data, Auto)
	require.NoError(t, err)
	assert.Equal(t, "Zum Inhalt springen", string(decoded))

	// GBK round trip via auto detection
	gbkData, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("中文编码测试"))
	require.NoError(t, err)
	decoded, err = Decode(gbkData, Auto)
	require.NoError(t, err)
	assert.Equal(t, "中文编码测试", string(decoded))

	// Latin-1 must be named explicitly
	decoded, err = Decode([]byte{'c', 'a', 'f', 0xE9}, Latin1)
	require.NoError(t, err)
	assert.Equal(t, "café", string(decoded))

	// unsupported encoding name
	_, err = Decode([]byte("abc"), "EBCDIC")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrInvalidInput))
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\nsecond line\n"), 0644))

	lines, err := ReadLines(path, Auto)
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second line"}, lines)

	// missing file
	_, err = ReadLines(filepath.Join(t.TempDir(), "missing.txt"), Auto)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrIO))
}
