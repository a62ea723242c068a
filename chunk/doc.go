/*
Package chunk implements the streaming splitter that turns a request
body into a sequence of fixed-size blocks for the ingestion pipeline.
It maintains a byte buffer and pulls from the upstream reader only as
needed, so memory use per upload is bounded by a small multiple of the
configured block size rather than the object size.
*/
package chunk
