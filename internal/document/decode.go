package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrBinary is returned for files that look like binary data.
var ErrBinary = errors.New("document: content looks binary")

const binarySniffSize = 4096

type byteOrderMark int

const (
	bomNone byteOrderMark = iota
	bomUTF8
	bomUTF16LE
	bomUTF16BE
)

var binaryExtensions = map[string]struct{}{
	".7z": {}, ".bin": {}, ".bmp": {}, ".class": {}, ".dll": {}, ".docx": {},
	".dylib": {}, ".exe": {}, ".gif": {}, ".gz": {}, ".ico": {}, ".jar": {},
	".jpeg": {}, ".jpg": {}, ".mp3": {}, ".mp4": {}, ".pdf": {}, ".png": {},
	".so": {}, ".tar": {}, ".wasm": {}, ".xlsx": {}, ".xz": {}, ".zip": {},
}

// Decode turns file content into normalized text. UTF-8 and UTF-16 with a
// byte order mark are decoded; anything else must be valid UTF-8. The path,
// when given, short-circuits obvious binary extensions.
func Decode(path string, data []byte) (string, error) {
	if path != "" {
		if _, ok := binaryExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			return "", ErrBinary
		}
	}

	var text string
	switch detectBOM(data) {
	case bomUTF8:
		data = data[3:]
		if !utf8.Valid(data) {
			return "", ErrNotText
		}
		text = string(data)
	case bomUTF16LE:
		decoded, err := decodeUTF16(data, unicode.LittleEndian)
		if err != nil {
			return "", err
		}
		text = decoded
	case bomUTF16BE:
		decoded, err := decodeUTF16(data, unicode.BigEndian)
		if err != nil {
			return "", err
		}
		text = decoded
	default:
		sample := data[:min(len(data), binarySniffSize)]
		if bytes.IndexByte(sample, 0x00) != -1 {
			return "", ErrBinary
		}
		if !utf8.Valid(data) {
			return "", ErrNotText
		}
		text = string(data)
	}
	return NormalizeText(text), nil
}

func detectBOM(data []byte) byteOrderMark {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return bomUTF8
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return bomUTF16LE
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return bomUTF16BE
	}
	return bomNone
}

func decodeUTF16(data []byte, endian unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, err := decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotText, err)
	}
	return string(out), nil
}

// LoadFile reads and decodes path into a new document.
func LoadFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(text, opts...), nil
}
