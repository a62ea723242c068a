package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/driftbase/driftbase/blockrpc"
	"github.com/driftbase/driftbase/ingest"
	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/cluster"
	"github.com/driftbase/driftbase/pkg/config"
	"github.com/driftbase/driftbase/pkg/gateway"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/retrieve"
	"github.com/driftbase/driftbase/ring"
	"github.com/driftbase/driftbase/table"
	"github.com/spf13/cobra"
)

// driftbase-gateway is a stateless S3-facing process: it hosts no
// local table or block store of its own, only RPC clients against the
// storage nodes named by --peer.

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
	region    string
	peersFlag []string
)

var rootCmd = &cobra.Command{
	Use:     "driftbase-gateway",
	Short:   "driftbase stateless S3-facing gateway",
	Version: Version,
	RunE:    runGateway,
}

func init() {
	config.BindFlags(rootCmd, cfg)
	rootCmd.Flags().StringVar(&region, "region", "us-east-driftbase-1", "region reported in error envelopes")
	rootCmd.Flags().StringArrayVar(&peersFlag, "peer", nil, "storage node in node_id=host:port form; repeat for each node")

	rootCmd.SetVersionTemplate(fmt.Sprintf("driftbase-gateway %s (%s)\n", Version, Commit))
	cobra.OnInitialize(func() {
		log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	})
}

func objectFactory() table.Entity  { return &meta.Object{} }
func versionFactory() table.Entity { return &meta.Version{} }

func parsePeers(peers []string) (map[ring.NodeID]string, error) {
	if len(peers) == 0 {
		return nil, fmt.Errorf("at least one --peer is required")
	}
	addresses := make(map[ring.NodeID]string, len(peers))
	for _, p := range peers {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --peer %q, want node_id=host:port", p)
		}
		addresses[ring.NodeID(parts[0])] = parts[1]
	}
	return addresses, nil
}

func runGateway(cmd *cobra.Command, args []string) error {
	addresses, err := parsePeers(peersFlag)
	if err != nil {
		return err
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

	ingestPipeline := ingest.NewPipeline(objects, versions, blocks, cfg.BlockSize, cfg.InlineThreshold)
	retrievePipeline := retrieve.NewPipeline(objects, versions, blocks, cfg.PrefetchWindow)
	gw := gateway.NewServer(ingestPipeline, retrievePipeline, gateway.AllowAll{KeyID: "gateway"}, region)

	metrics.SetVersion(Version)
	metrics.RegisterRing(view, cfg.MetaReplicationFactor)
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
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- httpServer.ListenAndServe() }()

	log.Logger.Info().Int("api_port", cfg.APIPort).Int("peers", len(addresses)).Msg("driftbase-gateway started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-httpErrCh:
		if err != nil && err != http.ErrServerClosed {
			log.Logger.Error().Err(err).Msg("HTTP server stopped")
		}
	}

	_ = httpServer.Close()
	return nil
}
