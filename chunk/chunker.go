package chunk

import (
	"fmt"
	"io"
)

// Chunker splits an io.Reader into block-sized chunks. It is not safe
// for concurrent use: the ingestion pipeline calls Next sequentially,
// prefetching only the next chunk while the current one's block RPC
// and version upsert are still in flight.
type Chunker struct {
	r         io.Reader
	blockSize int
	buf       []byte
	upstream  []byte // scratch read buffer, reused across Read calls
	eof       bool
}

// New returns a Chunker that yields chunks of at most blockSize bytes
// read from r.
func New(r io.Reader, blockSize int) *Chunker {
	if blockSize <= 0 {
		blockSize = 1
	}
	return &Chunker{
		r:         r,
		blockSize: blockSize,
		upstream:  make([]byte, blockSize),
	}
}

// Next returns the next chunk, or io.EOF once the upstream reader has
// ended and the internal buffer has drained (and on every call after).
// Failures from the upstream reader propagate unchanged.
func (c *Chunker) Next() ([]byte, error) {
	for len(c.buf) < c.blockSize && !c.eof {
		n, err := c.r.Read(c.upstream)
		if n > 0 {
			c.buf = append(c.buf, c.upstream[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				c.eof = true
				break
			}
			return nil, fmt.Errorf("chunk: reading upstream: %w", err)
		}
	}

	if len(c.buf) == 0 {
		return nil, io.EOF
	}

	n := c.blockSize
	if len(c.buf) < n {
		n = len(c.buf)
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	c.buf = c.buf[n:]
	return out, nil
}
