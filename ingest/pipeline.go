package ingest

import (
	"context"
	"io"
	"time"

	"github.com/driftbase/driftbase/chunk"
	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/apierr"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/table"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BlockWriter is the quorum-write half of blockrpc.Client that Pipeline
// needs; blockrpc.Client satisfies it directly.
type BlockWriter interface {
	PutBlock(ctx context.Context, hash meta.Hash, data []byte) error
}

// Pipeline drives the ingestion algorithm over an object table, a
// version table, and a block writer. The two tables are typically the
// same *table.ReplicatedTable instance configured for different
// entity kinds ("object" and "version").
type Pipeline struct {
	objects         table.Table
	versions        table.Table
	blocks          BlockWriter
	blockSize       int
	inlineThreshold int
	logger          zerolog.Logger
}

// NewPipeline returns a Pipeline. blockSize and inlineThreshold are in
// bytes.
func NewPipeline(objects, versions table.Table, blocks BlockWriter, blockSize, inlineThreshold int) *Pipeline {
	return &Pipeline{
		objects:         objects,
		versions:        versions,
		blocks:          blocks,
		blockSize:       blockSize,
		inlineThreshold: inlineThreshold,
		logger:          log.WithComponent("ingest"),
	}
}

// Put chunks body and writes it as a new version of (bucket, key),
// returning the new version's uuid.
func (p *Pipeline) Put(ctx context.Context, bucket, key, mimeType string, body io.Reader) (uuid.UUID, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.IngestPutDuration)

	id := uuid.New()
	ts := time.Now().UnixMilli()
	c := chunk.New(body, p.blockSize)

	b0, err := c.Next()
	if err == io.EOF {
		metrics.IngestFailuresTotal.WithLabelValues("empty_body").Inc()
		return uuid.Nil, apierr.New(apierr.BadRequest, "empty request body")
	}
	if err != nil {
		metrics.IngestFailuresTotal.WithLabelValues("read_error").Inc()
		return uuid.Nil, apierr.Wrap(apierr.Internal, "reading request body", err)
	}

	b1, b1Err := c.Next()
	if b1Err != nil && b1Err != io.EOF {
		metrics.IngestFailuresTotal.WithLabelValues("read_error").Inc()
		return uuid.Nil, apierr.Wrap(apierr.Internal, "reading request body", b1Err)
	}

	if len(b0) < p.inlineThreshold && b1Err == io.EOF {
		if err := p.putInline(ctx, bucket, key, mimeType, id, ts, b0); err != nil {
			metrics.IngestFailuresTotal.WithLabelValues("inline_write").Inc()
			return uuid.Nil, err
		}
		return id, nil
	}

	if err := p.putChained(ctx, bucket, key, mimeType, id, ts, c, b0, b1, b1Err); err != nil {
		metrics.IngestFailuresTotal.WithLabelValues("chained_write").Inc()
		return uuid.Nil, err
	}
	return id, nil
}

func (p *Pipeline) putInline(ctx context.Context, bucket, key, mimeType string, id uuid.UUID, ts int64, body []byte) error {
	obj := &meta.Object{
		Bucket: bucket,
		Key:    key,
		Versions: []meta.ObjectVersion{{
			UUID:       id,
			Timestamp:  ts,
			MimeType:   mimeType,
			Size:       int64(len(body)),
			IsComplete: true,
			Data:       meta.InlineData(body),
		}},
	}
	if err := p.objects.Insert(ctx, obj); err != nil {
		return apierr.Wrap(apierr.Internal, "writing inline object", err)
	}
	return nil
}

func (p *Pipeline) putChained(ctx context.Context, bucket, key, mimeType string, id uuid.UUID, ts int64, c *chunk.Chunker, b0, b1 []byte, b1Err error) error {
	h0 := meta.Digest(b0)

	stub := &meta.Object{
		Bucket: bucket,
		Key:    key,
		Versions: []meta.ObjectVersion{{
			UUID:       id,
			Timestamp:  ts,
			MimeType:   mimeType,
			Size:       int64(len(b0)),
			IsComplete: false,
			Data:       meta.FirstBlockData(h0),
		}},
	}
	if err := p.objects.Insert(ctx, stub); err != nil {
		return apierr.Wrap(apierr.Internal, "writing stub object", err)
	}

	lookedAhead := false
	fetchNext := func() ([]byte, error) {
		if !lookedAhead {
			lookedAhead = true
			return b1, b1Err
		}
		return c.Next()
	}

	data := b0
	hash := h0
	offset := int64(0)
	size := int64(0)

	for {
		size += int64(len(data))

		blockErrCh := make(chan error, 1)
		go func(d []byte, h meta.Hash) {
			blockErrCh <- p.blocks.PutBlock(ctx, h, d)
		}(data, hash)

		versionErrCh := make(chan error, 1)
		go func(off int64, h meta.Hash) {
			v := &meta.Version{
				UUID:   id,
				Bucket: bucket,
				Key:    key,
				Blocks: []meta.BlockRef{{Offset: off, Hash: h}},
			}
			versionErrCh <- p.versions.Insert(ctx, v)
		}(offset, hash)

		type fetchResult struct {
			data []byte
			err  error
		}
		fetchCh := make(chan fetchResult, 1)
		go func() {
			d, err := fetchNext()
			fetchCh <- fetchResult{data: d, err: err}
		}()

		blockErr := <-blockErrCh
		versionErr := <-versionErrCh
		fr := <-fetchCh

		if blockErr != nil {
			return apierr.Wrap(apierr.Internal, "writing block", blockErr)
		}
		if versionErr != nil {
			return apierr.Wrap(apierr.Internal, "upserting version row", versionErr)
		}
		metrics.IngestBlocksWritten.Inc()

		if fr.err == io.EOF {
			break
		}
		if fr.err != nil {
			return apierr.Wrap(apierr.Internal, "reading request body", fr.err)
		}

		offset += int64(len(data))
		data = fr.data
		hash = meta.Digest(data)
	}

	final := &meta.Object{
		Bucket: bucket,
		Key:    key,
		Versions: []meta.ObjectVersion{{
			UUID:       id,
			Timestamp:  ts,
			MimeType:   mimeType,
			Size:       size,
			IsComplete: true,
			Data:       meta.FirstBlockData(h0),
		}},
	}
	if err := p.objects.Insert(ctx, final); err != nil {
		return apierr.Wrap(apierr.Internal, "finalizing object", err)
	}

	p.logger.Debug().Str("bucket", bucket).Str("key", key).Str("uuid", id.String()).Int64("size", size).Msg("put complete")
	return nil
}
