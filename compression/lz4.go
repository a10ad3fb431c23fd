package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4FrameMagic opens every LZ4 frame, little endian 0x184D2204.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

var ErrNotCompressed = errors.New("input is not an lz4 frame")

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	if _, err := zw.Write(src); err != nil {
		return err
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

func DecompressLz4(src []byte, output *bytes.Buffer) error {
	if !IsLz4(src) {
		return ErrNotCompressed
	}

	zr := lz4.NewReader(bytes.NewReader(src))

	if _, err := io.Copy(output, zr); err != nil {
		return fmt.Errorf("unable to decompress lz4 frame: %w", err)
	}

	return nil
}

// IsLz4 reports whether data starts with an LZ4 frame header.
func IsLz4(data []byte) bool {
	return bytes.HasPrefix(data, lz4FrameMagic)
}

// NewLz4Writer wraps w so everything written is LZ4 framed. Close flushes the frame.
func NewLz4Writer(w io.Writer) io.WriteCloser {
	return lz4.NewWriter(w)
}

func NewLz4Reader(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}
