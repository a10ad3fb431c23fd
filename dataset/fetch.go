package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/dot5enko/rethinking-bridge/frame"
	"golang.org/x/sync/singleflight"
)

const readChunkRows = 4096

// Read parses delimited text with a header row. Columns not pinned in
// columns get their type inferred, "NA" and empty cells are nulls.
func Read(name string, r io.Reader, sep rune, columns map[string]arrow.DataType, mem memory.Allocator) (*frame.Frame, error) {

	if sep == 0 {
		sep = ','
	}

	opts := []csv.Option{
		csv.WithComma(sep),
		csv.WithHeader(true),
		csv.WithChunk(readChunkRows),
		csv.WithAllocator(mem),
		csv.WithNullReader(true, "NA", ""),
	}
	if len(columns) > 0 {
		opts = append(opts, csv.WithColumnTypes(columns))
	}

	rdr := csv.NewInferringReader(r, opts...)
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

	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", name, err)
	}

	if rdr.Schema() == nil {
		return nil, fmt.Errorf("unable to parse '%s': no header row", name)
	}

	return frame.FromRecords(name, rdr.Schema(), records)
}

// Fetcher downloads and caches datasets. Concurrent fetches of one URL share a
// single download.
type Fetcher struct {
	client *http.Client
	mem    memory.Allocator

	group singleflight.Group

	lock  sync.Mutex
	cache map[string]*frame.Frame
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Fetcher{
		client: client,
		mem:    memory.DefaultAllocator,
		cache:  map[string]*frame.Frame{},
	}
}

func (f *Fetcher) cached(url string) (*frame.Frame, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	result, ok := f.cache[url]
	return result, ok
}

// Fetch returns the parsed dataset. Frames are shared between callers and
// must be treated as read-only.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*frame.Frame, error) {

	if result, ok := f.cached(src.URL); ok {
		return result, nil
	}

	value, err, shared := f.group.Do(src.URL, func() (any, error) {
		result, fetchErr := f.download(ctx, src)
		if fetchErr != nil {
			return nil, fetchErr
		}

		f.lock.Lock()
		f.cache[src.URL] = result
		f.lock.Unlock()

		return result, nil
	})

	if err != nil {
		return nil, err
	}

	if shared {
		slog.Debug("dataset download shared", "url", src.URL)
	}

	return value.(*frame.Frame), nil
}

func (f *Fetcher) download(ctx context.Context, src Source) (*frame.Frame, error) {

	before := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request for '%s': %w", src.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch '%s': %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch '%s': %s", src.URL, resp.Status)
	}

	result, err := Read(src.Name, resp.Body, src.Sep, src.Columns, f.mem)
	if err != nil {
		return nil, err
	}

	slog.Info("fetched dataset", "name", src.Name, "rows", result.NRows(), "columns", result.NCols(), "took_ms", time.Since(before).Milliseconds())

	return result, nil
}

var defaultFetcher = NewFetcher(nil)

// Fetch downloads a delimited file with the shared default fetcher.
func Fetch(ctx context.Context, url string, sep rune) (*frame.Frame, error) {
	return defaultFetcher.Fetch(ctx, Source{Name: url, URL: url, Sep: sep})
}

// FetchNamed downloads a registered dataset such as "howell" or "waffle".
func FetchNamed(ctx context.Context, name string) (*frame.Frame, error) {
	src, ok := Named(name)
	if !ok {
		return nil, fmt.Errorf("unknown dataset '%s'", name)
	}
	return defaultFetcher.Fetch(ctx, src)
}
