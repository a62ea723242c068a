/*
Package log provides structured logging via zerolog: a global logger
configured once at process start, plus per-component child loggers that
attach fields (component, node_id, request_id) to every subsequent log
line.

# Usage

Initializing the logger:

	import "github.com/driftbase/driftbase/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component loggers:

	ingestLog := log.WithComponent("ingest")
	ingestLog.Info().Str("bucket", bucket).Msg("accepted upload")

	nodeLog := log.WithNodeID(nodeID)
	nodeLog.Info().Msg("driftbase-node started")

	reqLog := log.WithRequestID(requestID)
	reqLog.Warn().Err(err).Msg("error streaming response body")

# Conventions

  - Use Info in production; Debug is for local development only.
  - Always attach errors with .Err(err), never string-concatenate them
    into the message.
  - Prefer a component logger over the package-level Logger in any code
    that runs inside a specific node, replica, or request handler.
*/
package log
