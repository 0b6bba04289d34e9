// ABOUTME: Snapshot encodings: normalized text, hex dump, and offset-indexed line dump
// ABOUTME: Text view replaces invalid UTF-8, folds CR/CRLF to LF, and applies NFC

package buffer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// toText converts raw line bytes into readable, LF-terminated UTF-8 text.
func toText(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	text := bytes.ToValidUTF8(data, []byte("\uFFFD"))
	text = bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
	text = bytes.ReplaceAll(text, []byte("\r"), []byte("\n"))
	text = norm.NFC.Bytes(text)
	if text[len(text)-1] != '\n' {
		text = append(text, '\n')
	}
	return text
}

// hexDump renders the canonical offset / hex / ASCII layout.
func hexDump(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	return []byte(hex.Dump(data))
}

// lineDump lists every text line with its byte offset in the raw buffer and
// its raw length, followed by the quoted line. Offsets refer to the raw bytes
// so a dump can be cross-checked against a byte save.
func lineDump(data []byte) []byte {
	var b bytes.Buffer
	offset := 0
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		var line []byte
		if i < 0 {
			line, data = data, nil
		} else {
			line, data = data[:i+1], data[i+1:]
		}
		content := bytes.TrimRight(line, "\r\n")
		fmt.Fprintf(&b, "%08x  %6d  %s\n", offset, len(line), strconv.Quote(string(content)))
		offset += len(line)
	}
	return b.Bytes()
}
