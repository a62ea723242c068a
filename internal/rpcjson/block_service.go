package rpcjson

import (
	"context"

	"google.golang.org/grpc"
)

const blockRPCServiceName = "driftbase.BlockRPC"

// BlockRPCServer is implemented by cluster.BlockServerAdapter, which
// wraps a node's block RPC handler (blockrpc.Server), and registered
// against a *grpc.Server via RegisterBlockRPCServer.
type BlockRPCServer interface {
	PutBlock(ctx context.Context, in *PutBlockRequest) (*PutBlockResponse, error)
	GetBlock(ctx context.Context, in *GetBlockRequest) (*GetBlockResponse, error)
}

// BlockRPCClient is the client stub blockrpc.Client's RPCClient
// implementation dials against a peer's BlockRPCServer.
type BlockRPCClient interface {
	PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockResponse, error)
	GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockResponse, error)
}

type blockRPCClient struct {
	cc grpc.ClientConnInterface
}

// NewBlockRPCClient wraps a grpc.ClientConnInterface (typically a
// *grpc.ClientConn dialed with grpc.CallContentSubtype(rpcjson.Name))
// as a BlockRPCClient.
func NewBlockRPCClient(cc grpc.ClientConnInterface) BlockRPCClient {
	return &blockRPCClient{cc: cc}
}

func (c *blockRPCClient) PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockResponse, error) {
	out := new(PutBlockResponse)
	if err := c.cc.Invoke(ctx, "/"+blockRPCServiceName+"/PutBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *blockRPCClient) GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockResponse, error) {
	out := new(GetBlockResponse)
	if err := c.cc.Invoke(ctx, "/"+blockRPCServiceName+"/GetBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func blockRPCPutBlockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PutBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlockRPCServer).PutBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + blockRPCServiceName + "/PutBlock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BlockRPCServer).PutBlock(ctx, req.(*PutBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func blockRPCGetBlockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlockRPCServer).GetBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + blockRPCServiceName + "/GetBlock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BlockRPCServer).GetBlock(ctx, req.(*GetBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// BlockRPCServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would
// otherwise generate from a .proto file for the block RPC service.
var BlockRPCServiceDesc = grpc.ServiceDesc{
	ServiceName: blockRPCServiceName,
	HandlerType: (*BlockRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PutBlock", Handler: blockRPCPutBlockHandler},
		{MethodName: "GetBlock", Handler: blockRPCGetBlockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "driftbase/blockrpc.proto",
}

// RegisterBlockRPCServer registers srv's PutBlock/GetBlock methods on s.
func RegisterBlockRPCServer(s grpc.ServiceRegistrar, srv BlockRPCServer) {
	s.RegisterService(&BlockRPCServiceDesc, srv)
}
