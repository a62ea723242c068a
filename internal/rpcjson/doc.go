/*
Package rpcjson wires google.golang.org/grpc's transport and framing
onto plain JSON-tagged Go structs instead of protoc-generated protobuf
messages. It registers a grpc/encoding.Codec named "json" and hand-writes
the grpc.ServiceDesc/grpc.MethodDesc pairs protoc-gen-go-grpc would
otherwise generate for the block and table RPC services.

Callers select the codec by dialing/serving with
google.golang.org/grpc's grpc.CallContentSubtype("json") (client) or by
simply registering it process-wide via this package's init, which is
sufficient since driftbase speaks only this one wire format.
*/
package rpcjson
