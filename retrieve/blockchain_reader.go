package retrieve

import (
	"context"
	"io"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/metrics"
)

// blockFetchResult is one GetBlock outcome delivered to the reader
// loop through a buffered per-index channel.
type blockFetchResult struct {
	data []byte
	err  error
}

// blockChainReader streams a Version's block chain as a single
// io.Reader, prefetching up to window blocks ahead of what the caller
// has consumed so network fetches overlap with drain.
type blockChainReader struct {
	ctx     context.Context
	blocks  BlockReader
	refs    []meta.BlockRef
	window  int
	fetch   int // next index to schedule a fetch for
	emit    int // next index the caller will read from
	pending map[int]chan blockFetchResult
	cur     []byte
}

// newBlockChainReader builds a reader over refs, seeding index 0 with
// block0, the bytes already fetched in parallel with the version row
// lookup, so the first Read never redundantly re-fetches it.
func newBlockChainReader(ctx context.Context, blocks BlockReader, refs []meta.BlockRef, block0 []byte, window int) *blockChainReader {
	if window < 1 {
		window = 1
	}
	r := &blockChainReader{
		ctx:     ctx,
		blocks:  blocks,
		refs:    refs,
		window:  window,
		pending: map[int]chan blockFetchResult{},
	}
	seeded := make(chan blockFetchResult, 1)
	seeded <- blockFetchResult{data: block0}
	r.pending[0] = seeded
	r.fetch = 1
	r.scheduleAhead()
	return r
}

// scheduleAhead launches fetches for every index not yet scheduled,
// up to r.emit+r.window.
func (r *blockChainReader) scheduleAhead() {
	for r.fetch < len(r.refs) && r.fetch < r.emit+r.window {
		i := r.fetch
		ch := make(chan blockFetchResult, 1)
		r.pending[i] = ch
		go func(i int, hash meta.Hash) {
			data, err := r.blocks.GetBlock(r.ctx, hash)
			if err == nil {
				metrics.RetrieveBlocksRead.Inc()
			}
			ch <- blockFetchResult{data: data, err: err}
		}(i, r.refs[i].Hash)
		r.fetch++
	}
}

// Read implements io.Reader.
func (r *blockChainReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		if r.emit >= len(r.refs) {
			return 0, io.EOF
		}
		ch, ok := r.pending[r.emit]
		if !ok {
			r.scheduleAhead()
			ch = r.pending[r.emit]
		}
		res := <-ch
		delete(r.pending, r.emit)
		if res.err != nil {
			return 0, res.err
		}
		r.cur = res.data
		r.emit++
		r.scheduleAhead()
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

var _ io.Reader = (*blockChainReader)(nil)
