/*
Package gateway is the S3-facing HTTP adapter: PUT and GET against a
bucket host (the Host header, lowercased, names the bucket), streaming
bodies through ingest and retrieve and mapping apierr.Kind onto an HTTP
status plus an XML error envelope.

Signature verification and the full S3 request/response XML grammar
(multipart, ACLs, and friends) are out of scope; callers inject an
Authorizer to resolve a request to a key ID however their deployment
requires.
*/
package gateway
