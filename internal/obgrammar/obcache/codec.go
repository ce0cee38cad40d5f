package obcache

import (
	"encoding/binary"
	"fmt"
)

// The length-prefixed int/string/slice encoding below is adapted from the
// teacher's hand-rolled binary AST codec (internal/tunascript/binary.go's
// encBinaryInt/encBinaryString and decBinary counterparts) rather than
// rezi's own reflection-based encoding, since obcache only needs to encode
// plain ints, strings, and []int and the teacher's codec is the corpus's
// concrete example of doing exactly that by hand. rezi.EncBinary/DecBinary
// (used below in obcache.go) wrap the whole encoded entry for the
// byte-count-validated envelope, matching server/dao/sqlite/sqlite.go's use
// of rezi for *game.State.

func encInt(i int) []byte {
	enc := make([]byte, 8)
	binary.PutVarint(enc, int64(i))
	return enc
}

func decInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("obcache: data does not contain 8 bytes")
	}
	val, read := binary.Varint(data[:8])
	if read == 0 {
		return 0, 0, fmt.Errorf("obcache: input buffer too small")
	} else if read < 0 {
		return 0, 0, fmt.Errorf("obcache: value larger than 64 bits")
	}
	return int(val), 8, nil
}

func encString(s string) []byte {
	b := []byte(s)
	enc := encInt(len(b))
	return append(enc, b...)
}

func decString(data []byte) (string, int, error) {
	n, read, err := decInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding string byte count: %w", err)
	}
	data = data[read:]
	if n < 0 || len(data) < n {
		return "", 0, fmt.Errorf("obcache: unexpected end of data in string")
	}
	return string(data[:n]), read + n, nil
}

func encIntSlice(ints []int) []byte {
	enc := encInt(len(ints))
	for _, v := range ints {
		enc = append(enc, encInt(v)...)
	}
	return enc
}

func decIntSlice(data []byte) ([]int, int, error) {
	count, total, err := decInt(data)
	if err != nil {
		return nil, 0, err
	}
	data = data[total:]
	if count < 0 {
		return nil, 0, fmt.Errorf("obcache: negative slice length")
	}
	out := make([]int, count)
	for i := 0; i < count; i++ {
		v, read, err := decInt(data)
		if err != nil {
			return nil, 0, err
		}
		out[i] = v
		data = data[read:]
		total += read
	}
	return out, total, nil
}
