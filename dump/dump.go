package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/dot5enko/rethinking-bridge/compression"
	"github.com/dot5enko/rethinking-bridge/frame"
)

// WriteFrame writes f as an Arrow IPC stream, LZ4 framed when compress is set.
func WriteFrame(w io.Writer, f *frame.Frame, compress bool) error {

	rec, err := f.Record(memory.DefaultAllocator)
	if err != nil {
		return err
	}
	defer rec.Release()

	var (
		target io.Writer = w
		zw     io.WriteCloser
	)
	if compress {
		zw = compression.NewLz4Writer(w)
		target = zw
	}

	iw := ipc.NewWriter(target, ipc.WithSchema(rec.Schema()))

	if writeErr := iw.Write(rec); writeErr != nil {
		iw.Close()
		return fmt.Errorf("unable to write frame '%s': %w", f.Schema.Name, writeErr)
	}

	if closeErr := iw.Close(); closeErr != nil {
		return fmt.Errorf("unable to finish frame '%s': %w", f.Schema.Name, closeErr)
	}

	if zw != nil {
		return zw.Close()
	}
	return nil
}

// ReadFrame reads a stream written by WriteFrame, compressed or not.
func ReadFrame(name string, r io.Reader) (*frame.Frame, error) {

	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, err := br.Peek(4); err == nil && compression.IsLz4(head) {
		src = compression.NewLz4Reader(br)
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	rdr, err := ipc.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read frame '%s': %w", name, err)
	}
	defer rdr.Release()

	records := []arrow.Record{}
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		records = append(records, rec)
	}

	if readErr := rdr.Err(); readErr != nil {
		return nil, fmt.Errorf("unable to read frame '%s': %w", name, readErr)
	}

	return frame.FromRecords(name, rdr.Schema(), records)
}

func WriteFile(path string, f *frame.Frame, compress bool) error {

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(file)

	if writeErr := WriteFrame(bw, f, compress); writeErr != nil {
		file.Close()
		return writeErr
	}

	if flushErr := bw.Flush(); flushErr != nil {
		file.Close()
		return flushErr
	}

	if closeErr := file.Close(); closeErr != nil {
		return closeErr
	}

	slog.Info("written frame", "path", path, "rows", f.NRows(), "compressed", compress)

	return nil
}

func ReadFile(path string) (*frame.Frame, error) {

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFrame(path, file)
}
