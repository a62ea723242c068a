/*
Package retrieve implements the GET pipeline: selecting the newest
complete version of an object and streaming its bytes back to the
caller.

Version selection is by (timestamp, uuid), restricted to versions with
IsComplete == true, so a GET racing an in-flight PUT never observes a
truncated block chain (see ingest's stub-then-finalize write shape).
For a FirstBlock version, the version row (the block list) is fetched
in parallel with the chain's first block, then the remaining blocks
are streamed lazily with a small prefetch window to overlap network
fetches with the caller draining the response body.
*/
package retrieve
