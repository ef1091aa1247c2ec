package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"solar_ingest/internal/model"
)

var ErrUnreadable = errors.New("file could not be decoded")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns the text of an export. UTF-8 is tried first; anything else
// is read as ISO-8859-1.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return string(decoded), nil
}

// ReadFile decodes and parses an export, tagging every record with device.
// Parse errors name the CSV line but not path.
func ReadFile(path, device string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return NewCSVParser(device).Parse(strings.NewReader(text))
}
