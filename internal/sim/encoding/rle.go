// Package encoding packs tile rows for the observer stream.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRow run-length encodes a row of small per-tile values (class ids, fog bits) as
// base64 of uvarint (value, run) pairs.
func EncodeRow(row []byte) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	put := func(v uint64) {
		n := binary.PutUvarint(tmp[:], v)
		buf.Write(tmp[:n])
	}
	for i := 0; i < len(row); {
		j := i + 1
		for j < len(row) && row[j] == row[i] {
			j++
		}
		put(uint64(row[i]))
		put(uint64(j - i))
		i = j
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRow reverses EncodeRow. limit caps the decoded length; 0 means no cap.
func DecodeRow(s string, limit int) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("row base64: %w", err)
	}
	var out []byte
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad value varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad run varint at %d", i)
		}
		i += n
		if v > 0xFF {
			return nil, fmt.Errorf("value too large: %d", v)
		}
		if limit > 0 && uint64(len(out))+run > uint64(limit) {
			return nil, fmt.Errorf("row exceeds %d tiles", limit)
		}
		out = append(out, bytes.Repeat([]byte{byte(v)}, int(run))...)
	}
	return out, nil
}

// EncodeBits encodes a boolean row as 0/1 values.
func EncodeBits(bits []bool) string {
	row := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			row[i] = 1
		}
	}
	return EncodeRow(row)
}
