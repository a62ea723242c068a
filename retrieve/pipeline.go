package retrieve

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/apierr"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/table"
	"github.com/rs/zerolog"
)

// BlockReader is the first-valid-reply-read half of blockrpc.Client
// that Pipeline needs; blockrpc.Client satisfies it directly.
type BlockReader interface {
	GetBlock(ctx context.Context, hash meta.Hash) ([]byte, error)
}

// DefaultPrefetchWindow is used when NewPipeline is given window <= 0.
const DefaultPrefetchWindow = 2

// Result is a fetched object's content, streamed through Body.
type Result struct {
	MimeType string
	Size     int64
	Body     io.Reader
}

// Pipeline drives the retrieval algorithm over an object table, a
// version table, and a block reader.
type Pipeline struct {
	objects  table.Table
	versions table.Table
	blocks   BlockReader
	window   int
	logger   zerolog.Logger
}

// NewPipeline returns a Pipeline. window is the block prefetch depth;
// window <= 0 uses DefaultPrefetchWindow.
func NewPipeline(objects, versions table.Table, blocks BlockReader, window int) *Pipeline {
	if window <= 0 {
		window = DefaultPrefetchWindow
	}
	return &Pipeline{
		objects:  objects,
		versions: versions,
		blocks:   blocks,
		window:   window,
		logger:   log.WithComponent("retrieve"),
	}
}

// Get resolves (bucket, key) to its newest complete version and
// returns a streamable Result.
func (p *Pipeline) Get(ctx context.Context, bucket, key string) (*Result, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RetrieveGetDuration)

	rowEntity, found, err := p.objects.Get(ctx, bucket, key)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "reading object row", err)
	}
	if !found {
		return nil, apierr.New(apierr.NotFound, "no such key")
	}
	obj := rowEntity.(*meta.Object)

	v, ok := obj.NewestComplete()
	if !ok {
		return nil, apierr.New(apierr.NotFound, "no complete version")
	}

	switch v.Data.Kind {
	case meta.VersionKindDeleteMarker:
		return nil, apierr.New(apierr.NotFound, "object deleted")
	case meta.VersionKindInline:
		return &Result{MimeType: v.MimeType, Size: v.Size, Body: bytes.NewReader(v.Data.Inline)}, nil
	case meta.VersionKindFirstBlock:
		return p.getChained(ctx, v)
	default:
		return nil, apierr.New(apierr.Internal, fmt.Sprintf("unrecognized version data kind %v", v.Data.Kind))
	}
}

func (p *Pipeline) getChained(ctx context.Context, v meta.ObjectVersion) (*Result, error) {
	h0 := v.Data.FirstBlock

	type versionResult struct {
		version *meta.Version
		found   bool
		err     error
	}
	verCh := make(chan versionResult, 1)
	go func() {
		e, found, err := p.versions.Get(ctx, v.UUID.String(), "")
		var ver *meta.Version
		if found {
			ver = e.(*meta.Version)
		}
		verCh <- versionResult{version: ver, found: found, err: err}
	}()

	type blockResult struct {
		data []byte
		err  error
	}
	blkCh := make(chan blockResult, 1)
	go func() {
		data, err := p.blocks.GetBlock(ctx, h0)
		blkCh <- blockResult{data: data, err: err}
	}()

	vr := <-verCh
	br := <-blkCh

	if vr.err != nil {
		return nil, apierr.Wrap(apierr.Internal, "reading version row", vr.err)
	}
	if !vr.found {
		return nil, apierr.New(apierr.NotFound, "version row missing for block-chained object")
	}
	if br.err != nil {
		return nil, apierr.Wrap(apierr.Internal, "reading first block", br.err)
	}
	metrics.RetrieveBlocksRead.Inc()

	reader := newBlockChainReader(ctx, p.blocks, vr.version.Blocks, br.data, p.window)
	return &Result{MimeType: v.MimeType, Size: v.Size, Body: reader}, nil
}
