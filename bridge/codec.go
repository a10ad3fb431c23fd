package bridge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/dot5enko/rethinking-bridge/schema"
)

// DecodeStream converts an Arrow IPC stream into a host frame.
func DecodeStream(name string, stream []byte, mem memory.Allocator) (*frame.Frame, error) {

	rdr, err := ipc.NewReader(bytes.NewReader(stream), ipc.WithAllocator(mem))
	if err != nil {
		return nil, &schema.ConversionError{Column: name, Reason: fmt.Sprintf("unable to read interchange stream: %s", err.Error())}
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
		return nil, &schema.ConversionError{Column: name, Reason: fmt.Sprintf("unable to decode record batch: %s", readErr.Error())}
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("decoded interchange schema", "variable", name, "batches", len(records), "schema", spew.Sdump(rdr.Schema().Fields()))
	}

	return frame.FromRecords(name, rdr.Schema(), records)
}

// EncodeStream converts a host frame into an Arrow IPC stream.
func EncodeStream(f *frame.Frame, mem memory.Allocator) ([]byte, error) {

	rec, err := f.Record(mem)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	buf := &bytes.Buffer{}

	w := ipc.NewWriter(buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))

	if writeErr := w.Write(rec); writeErr != nil {
		w.Close()
		return nil, fmt.Errorf("unable to write record batch: %w", writeErr)
	}

	if closeErr := w.Close(); closeErr != nil {
		return nil, fmt.Errorf("unable to finish interchange stream: %w", closeErr)
	}

	return buf.Bytes(), nil
}
