package scpi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// readBlock decodes an IEEE 488.2 definite length block: a '#' rune, one
// digit giving the length of the length field, the payload length, and the
// payload itself. A trailing newline, if present, is consumed.
func readBlock(reader *bufio.Reader) ([]byte, error) {
	marker, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if marker != '#' {
		return nil, fmt.Errorf("block does not start with '#', got %q", marker)
	}

	lenDigit, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	lenDigits := int(lenDigit - '0')
	if lenDigits < 1 || lenDigits > 9 {
		return nil, fmt.Errorf("invalid block length digit %q", lenDigit)
	}

	lenField := make([]byte, lenDigits)
	if _, err := io.ReadFull(reader, lenField); err != nil {
		return nil, err
	}

	payloadLen, err := strconv.Atoi(string(lenField))
	if err != nil {
		return nil, fmt.Errorf("invalid block length field %q: %w", lenField, err)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, err
	}

	// Most instruments terminate the block with a newline.
	if next, err := reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == '\r') {
		_, _ = reader.ReadByte()
		if next[0] == '\r' {
			if next, err = reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = reader.ReadByte()
			}
		}
	}

	return payload, nil
}
