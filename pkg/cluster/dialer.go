package cluster

import (
	"fmt"
	"sync"

	"github.com/driftbase/driftbase/internal/rpcjson"
	"github.com/driftbase/driftbase/ring"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dialer maps node IDs to addresses and lazily maintains one
// *grpc.ClientConn per node, reused across RPCs rather than redialed
// on every call.
type Dialer struct {
	mu        sync.RWMutex
	addresses map[ring.NodeID]string
	conns     map[ring.NodeID]*grpc.ClientConn
}

// NewDialer returns a Dialer over a static node-id -> address map.
// Addresses can be added later via SetAddress as membership grows.
func NewDialer(addresses map[ring.NodeID]string) *Dialer {
	copied := make(map[ring.NodeID]string, len(addresses))
	for k, v := range addresses {
		copied[k] = v
	}
	return &Dialer{addresses: copied, conns: map[ring.NodeID]*grpc.ClientConn{}}
}

// SetAddress registers or updates the address a node is reachable at.
func (d *Dialer) SetAddress(node ring.NodeID, addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses[node] = addr
}

// Conn returns a shared gRPC connection to node, dialing it on first
// use. The connection defaults every call to the internal/rpcjson wire
// codec since that is the only format driftbase nodes speak.
func (d *Dialer) Conn(node ring.NodeID) (*grpc.ClientConn, error) {
	d.mu.RLock()
	if conn, ok := d.conns[node]; ok {
		d.mu.RUnlock()
		return conn, nil
	}
	addr, ok := d.addresses[node]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cluster: no address registered for node %q", node)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if conn, ok := d.conns[node]; ok {
		return conn, nil
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpcjson.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("cluster: dialing node %q at %q: %w", node, addr, err)
	}
	d.conns[node] = conn
	return conn, nil
}

// Close tears down every pooled connection.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for node, conn := range d.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cluster: closing connection to %q: %w", node, err)
		}
	}
	d.conns = map[ring.NodeID]*grpc.ClientConn{}
	return firstErr
}
