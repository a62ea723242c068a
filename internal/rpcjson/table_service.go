package rpcjson

import (
	"context"

	"google.golang.org/grpc"
)

const tableRPCServiceName = "driftbase.TableRPC"

// TableRPCServer is implemented by a node's local table handler
// (wrapping table/boltstore.Store per entity kind) and registered
// against a *grpc.Server via RegisterTableRPCServer.
type TableRPCServer interface {
	Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error)
	Get(ctx context.Context, in *GetRequest) (*GetResponse, error)
	Scan(ctx context.Context, in *ScanRequest) (*ScanResponse, error)
}

// TableRPCClient is the client stub table.ReplicatedTable's RPCClient
// implementation dials against a peer's TableRPCServer.
type TableRPCClient interface {
	Insert(ctx context.Context, in *InsertRequest, opts ...grpc.CallOption) (*InsertResponse, error)
	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error)
}

type tableRPCClient struct {
	cc grpc.ClientConnInterface
}

// NewTableRPCClient wraps a grpc.ClientConnInterface as a TableRPCClient.
func NewTableRPCClient(cc grpc.ClientConnInterface) TableRPCClient {
	return &tableRPCClient{cc: cc}
}

func (c *tableRPCClient) Insert(ctx context.Context, in *InsertRequest, opts ...grpc.CallOption) (*InsertResponse, error) {
	out := new(InsertResponse)
	if err := c.cc.Invoke(ctx, "/"+tableRPCServiceName+"/Insert", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableRPCClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	out := new(GetResponse)
	if err := c.cc.Invoke(ctx, "/"+tableRPCServiceName+"/Get", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableRPCClient) Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	out := new(ScanResponse)
	if err := c.cc.Invoke(ctx, "/"+tableRPCServiceName+"/Scan", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func tableRPCInsertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableRPCServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + tableRPCServiceName + "/Insert"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableRPCServer).Insert(ctx, req.(*InsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func tableRPCGetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableRPCServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + tableRPCServiceName + "/Get"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableRPCServer).Get(ctx, req.(*GetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func tableRPCScanHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ScanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableRPCServer).Scan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + tableRPCServiceName + "/Scan"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableRPCServer).Scan(ctx, req.(*ScanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TableRPCServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would
// otherwise generate from a .proto file for the table RPC service.
var TableRPCServiceDesc = grpc.ServiceDesc{
	ServiceName: tableRPCServiceName,
	HandlerType: (*TableRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Insert", Handler: tableRPCInsertHandler},
		{MethodName: "Get", Handler: tableRPCGetHandler},
		{MethodName: "Scan", Handler: tableRPCScanHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "driftbase/tablerpc.proto",
}

// RegisterTableRPCServer registers srv's Insert/Get/Scan methods on s.
func RegisterTableRPCServer(s grpc.ServiceRegistrar, srv TableRPCServer) {
	s.RegisterService(&TableRPCServiceDesc, srv)
}
