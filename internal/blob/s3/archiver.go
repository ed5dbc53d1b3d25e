package s3blob

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/volspike/volspike/internal/domain"
)

// archivePageSize bounds how many samples one archive object holds, keeping
// both the Postgres query and the uploaded object small.
const archivePageSize = 5000

// BlobWriter is the narrow upload interface the archiver needs.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// SampleArchiver moves OI samples older than a cutoff out of the primary
// store into object storage as gzipped JSONL. Rows are deleted only after
// every page covering the cutoff has been uploaded, so a failed upload
// leaves the primary store intact.
type SampleArchiver struct {
	writer  BlobWriter
	samples domain.OISampleStore
}

// NewSampleArchiver creates a SampleArchiver.
func NewSampleArchiver(writer BlobWriter, samples domain.OISampleStore) *SampleArchiver {
	return &SampleArchiver{
		writer:  writer,
		samples: samples,
	}
}

// ArchiveSamples uploads all samples timestamped strictly before the cutoff
// and then deletes them from the primary store. It returns the number of
// rows deleted.
func (a *SampleArchiver) ArchiveSamples(ctx context.Context, before time.Time) (int64, error) {
	var archived int64
	page := 0
	for {
		samples, err := a.samples.ListBefore(ctx, before, archivePageSize)
		if err != nil {
			return 0, fmt.Errorf("s3blob: list samples before %v: %w", before, err)
		}
		if len(samples) == 0 {
			break
		}

		body, err := encodeJSONLGzip(samples)
		if err != nil {
			return 0, err
		}

		path := fmt.Sprintf("oi/samples/%s/%s-%03d.jsonl.gz",
			before.UTC().Format("2006-01-02"),
			time.Now().UTC().Format("150405"),
			page,
		)
		if err := a.writer.Put(ctx, path, bytes.NewReader(body), "application/gzip"); err != nil {
			return 0, err
		}

		// Delete exactly the uploaded page so a later failure cannot drop
		// rows that were never written to cold storage.
		last := samples[len(samples)-1].Timestamp
		deleted, err := a.samples.DeleteBefore(ctx, last.Add(time.Millisecond))
		if err != nil {
			return archived, fmt.Errorf("s3blob: delete archived samples: %w", err)
		}
		archived += deleted

		page++
		if len(samples) < archivePageSize {
			break
		}
	}

	return archived, nil
}

// encodeJSONLGzip serializes samples as one JSON object per line and
// compresses the result.
func encodeJSONLGzip(samples []domain.OISample) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("s3blob: encode sample: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("s3blob: close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}
