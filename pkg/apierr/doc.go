/*
Package apierr defines the abstract error taxonomy the ingest, retrieve,
and gateway packages map requests onto. Kind is the only thing gateway's
S3 adapter inspects when choosing an HTTP status and XML error code;
Message and Cause carry the detail for logs.

An *Error wraps a plain error value through its Cause field and Unwrap,
so errors.Is/errors.As see through it, rather than adopting a separate
error-class library for it.
*/
package apierr
