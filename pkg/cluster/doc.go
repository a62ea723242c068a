/*
Package cluster provides the membership oracle and RPC dialing driftbase
needs to turn a ring.View's node IDs into live gRPC connections. Gossip,
failure detection, and node lifecycle management are out of scope: the
membership is either a fixed Static view (CLI/config-driven, used by
both binaries) or a Dynamic view that callers update with Join/Leave,
nothing more.

RPC exposes table.RPCClient and blockrpc.RPCClient implementations over
a per-node connection pool, using the internal/rpcjson wire format.
*/
package cluster
