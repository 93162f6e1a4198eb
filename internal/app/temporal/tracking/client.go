// Package tracking connects transcription jobs to Temporal: it dials the
// cluster, starts one tracking workflow per job and hosts the worker.
package tracking

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"lexscribe/internal/config"
)

// Dial creates a Temporal client that logs through zap
func Dial(cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    NewLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	return c, nil
}
