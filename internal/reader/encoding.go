package reader

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodingProbeSize is how much of the file head the charset detector sees.
// 100 KiB covers the header and thousands of rows without reading the file.
const encodingProbeSize = 100 * 1024

// detectConfidence is the minimum chardet confidence (0-100) before the
// detected charset is trusted over the fallback chain.
const detectConfidence = 70

// DetectEncoding probes the head of a file and returns the decoder to read
// it with plus the charset name for reporting. Detection never fails a file:
// an unconfident or unknown result falls back to UTF-8 when the probe is
// valid UTF-8, and Latin-1 otherwise, which decodes any byte sequence.
func DetectEncoding(path string) (encoding.Encoding, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file for encoding detection: %w", err)
	}
	defer f.Close()

	probe := make([]byte, encodingProbeSize)
	n, err := io.ReadFull(f, probe)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read encoding probe: %w", err)
	}
	probe = probe[:n]

	if res, err := chardet.NewTextDetector().DetectBest(probe); err == nil && res.Confidence >= detectConfidence {
		if enc, name := charsetEncoding(res.Charset); enc != nil {
			return enc, name, nil
		}
	}

	if utf8.Valid(probe) {
		return unicode.UTF8, "utf-8", nil
	}
	return charmap.ISO8859_1, "latin-1", nil
}

// charsetEncoding maps a chardet charset name onto an x/text decoder.
// Unmapped charsets return nil so the caller applies the fallback chain.
func charsetEncoding(charset string) (encoding.Encoding, string) {
	switch strings.ToLower(charset) {
	case "utf-8":
		return unicode.UTF8, "utf-8"
	case "iso-8859-1":
		return charmap.ISO8859_1, "latin-1"
	case "windows-1252":
		return charmap.Windows1252, "cp1252"
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), "utf-16le"
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), "utf-16be"
	default:
		return nil, ""
	}
}

// decodingReader wraps raw file bytes in the decoder, stripping a UTF-8 BOM
// when one leads the stream.
func decodingReader(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))
}
