package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/driftbase/driftbase/blockrpc"
	"github.com/driftbase/driftbase/ingest"
	"github.com/driftbase/driftbase/internal/rpcjson"
	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/cluster"
	"github.com/driftbase/driftbase/pkg/config"
	"github.com/driftbase/driftbase/pkg/gateway"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/retrieve"
	"github.com/driftbase/driftbase/ring"
	"github.com/driftbase/driftbase/table"
	"github.com/driftbase/driftbase/table/boltstore"
	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"
	"google.golang.org/grpc"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var cfg = config.Default()

var (
	nodeID    string
	rpcAddr   string
	peersFlag []string
)

var rootCmd = &cobra.Command{
	Use:     "driftbase-node",
	Short:   "driftbase storage node: replicated table, block RPC, and gateway HTTP surface",
	Version: Version,
	RunE:    runNode,
}

func init() {
	config.BindFlags(rootCmd, cfg)
	rootCmd.Flags().StringVar(&nodeID, "node-id", "node-1", "this node's ring identity")
	rootCmd.Flags().StringVar(&rpcAddr, "rpc-addr", ":7100", "address this node's gRPC peer service listens on")
	rootCmd.Flags().StringArrayVar(&peersFlag, "peer", nil, "peer in node_id=host:port form; repeat for each peer, including self")

	rootCmd.SetVersionTemplate(fmt.Sprintf("driftbase-node %s (%s)\n", Version, Commit))
	cobra.OnInitialize(func() {
		log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	})
}

func parsePeers(peers []string, selfID string, selfRPCAddr string) (map[ring.NodeID]string, error) {
	addresses := map[ring.NodeID]string{ring.NodeID(selfID): selfRPCAddr}
	for _, p := range peers {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --peer %q, want node_id=host:port", p)
		}
		addresses[ring.NodeID(parts[0])] = parts[1]
	}
	return addresses, nil
}

func objectFactory() table.Entity  { return &meta.Object{} }
func versionFactory() table.Entity { return &meta.Version{} }

func runNode(cmd *cobra.Command, args []string) error {
	addresses, err := parsePeers(peersFlag, nodeID, rpcAddr)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(cfg.DataDir, "driftbase.db"), 0o600, nil)
	if err != nil {
		return fmt.Errorf("opening local database: %w", err)
	}
	defer db.Close()

	objectStore, err := boltstore.Open(db, "object", objectFactory, nil)
	if err != nil {
		return fmt.Errorf("opening object store: %w", err)
	}
	versionStore, err := boltstore.Open(db, "version", versionFactory, nil)
	if err != nil {
		return fmt.Errorf("opening version store: %w", err)
	}

	var blockStore blockrpc.BlockStore
	switch cfg.BlockStoreKind {
	case config.BlockStoreDir:
		blockStore, err = blockrpc.NewDirBlockStore(filepath.Join(cfg.DataDir, "blocks"))
	default:
		blockStore, err = blockrpc.NewBoltBlockStore(db)
	}
	if err != nil {
		return fmt.Errorf("opening block store: %w", err)
	}

	nodeIDs := make([]ring.NodeID, 0, len(addresses))
	for id := range addresses {
		nodeIDs = append(nodeIDs, id)
	}
	membership := cluster.NewStatic(nodeIDs...)
	view := ring.New(membership)
	dialer := cluster.NewDialer(addresses)
	defer dialer.Close()
	rpc := cluster.NewRPC(dialer)

	objects := table.NewReplicated("object", objectFactory, view, rpc, cfg.MetaReplicationFactor, cfg.RPCTimeout)
	versions := table.NewReplicated("version", versionFactory, view, rpc, cfg.MetaReplicationFactor, cfg.RPCTimeout)
	blocks := blockrpc.NewClient(view, rpc, cfg.MetaReplicationFactor, cfg.RPCTimeout)

	metrics.SetVersion(Version)
	metrics.RegisterRing(view, cfg.MetaReplicationFactor)
	metrics.RegisterComponent("table", true, true, "")
	metrics.RegisterComponent("blockrpc", true, true, "")

	grpcServer := grpc.NewServer()
	rpcjson.RegisterBlockRPCServer(grpcServer, cluster.NewBlockServerAdapter(blockrpc.NewServer(blockStore)))
	rpcjson.RegisterTableRPCServer(grpcServer, cluster.NewTableServerAdapter(map[string]table.Table{
		"object":  objectStore,
		"version": versionStore,
	}))

	lis, err := net.Listen("tcp", rpcAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", rpcAddr, err)
	}
	grpcErrCh := make(chan error, 1)
	go func() { grpcErrCh <- grpcServer.Serve(lis) }()

	collector := metrics.NewCollector(membership)
	collector.Start()
	defer collector.Stop()

	ingestPipeline := ingest.NewPipeline(objects, versions, blocks, cfg.BlockSize, cfg.InlineThreshold)
	retrievePipeline := retrieve.NewPipeline(objects, versions, blocks, cfg.PrefetchWindow)
	gw := gateway.NewServer(ingestPipeline, retrievePipeline, gateway.AllowAll{KeyID: "local"}, "local")
	metrics.RegisterComponent("gateway", true, true, "")

	mux := http.NewServeMux()
	mux.Handle("/", gw.Handler())
	mux.HandleFunc("/healthz", metrics.HealthHandler())
	mux.HandleFunc("/readyz", metrics.ReadyHandler())
	mux.HandleFunc("/livez", metrics.LivenessHandler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming GET responses may run long
		IdleTimeout:  120 * time.Second,
	}
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- httpServer.ListenAndServe() }()

	log.Logger.Info().Str("node_id", nodeID).Str("rpc_addr", rpcAddr).Int("api_port", cfg.APIPort).Msg("driftbase-node started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-grpcErrCh:
		if err != nil {
			log.Logger.Error().Err(err).Msg("gRPC server stopped")
		}
	case err := <-httpErrCh:
		if err != nil && err != http.ErrServerClosed {
			log.Logger.Error().Err(err).Msg("HTTP server stopped")
		}
	}

	grpcServer.GracefulStop()
	_ = httpServer.Close()
	return nil
}
