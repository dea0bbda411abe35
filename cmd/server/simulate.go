package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autoops-ai/backend/internal/config"
	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/logging"
	"github.com/autoops-ai/backend/internal/models"
)

var (
	simulateDelay       time.Duration
	simulateFailureRate float64
	simulateJSON        bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate FILE...",
	Short: "Process file names through the simulator and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSimulateConfig()
		if err != nil {
			return err
		}
		// stdout carries the results; logs and notifications go to stderr.
		_, restore, err := logging.SetupWriter(cfg.Log.Level, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer restore()

		simCfg := ingest.Config{
			CompletionDelay: cfg.Ingest.CompletionDelay,
			ConfidenceMin:   cfg.Ingest.ConfidenceMin,
			ConfidenceMax:   cfg.Ingest.ConfidenceMax,
		}
		if cmd.Flags().Changed("delay") {
			simCfg.CompletionDelay = simulateDelay
		}
		failureRate := cfg.Ingest.FailureRate
		if cmd.Flags().Changed("failure-rate") {
			failureRate = simulateFailureRate
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		docs, err := simulate(ctx, simCfg, failureRate, args, func(message string) {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		})
		if err != nil {
			return err
		}

		if simulateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}
		for _, d := range docs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-32s  %-10s  %-16s  %6.2f\n", d.ID, d.Name, d.Status, d.DocumentType, d.Confidence)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().DurationVar(&simulateDelay, "delay", ingest.DefaultCompletionDelay, "Delay before each document completes")
	simulateCmd.Flags().Float64Var(&simulateFailureRate, "failure-rate", 0, "Probability in [0,1] that a document fails")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Print the final documents as JSON")
}

// loadSimulateConfig reads --config when given; otherwise defaults plus
// environment overrides, without writing a file.
func loadSimulateConfig() (*config.AppConfig, error) {
	if configFile != "" {
		return config.LoadConfig(configFile)
	}
	return config.LoadFromEnv()
}

// simulate submits one document per name, waits until every one of them is
// terminal and returns the final collection, most recent first.
func simulate(ctx context.Context, cfg ingest.Config, failureRate float64, names []string, notify func(string), opts ...ingest.Option) ([]models.Document, error) {
	if failureRate < 0 || failureRate > 1 {
		return nil, fmt.Errorf("failure rate must be within [0, 1]: %g", failureRate)
	}

	opts = append([]ingest.Option{
		ingest.WithNotifier(ingest.NotifierFunc(notify)),
		ingest.WithFailurePolicy(ingest.FailWithProbability(failureRate)),
	}, opts...)

	sim, err := ingest.NewSimulator(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	done := make(chan struct{}, len(names))
	unsubscribe := sim.Subscribe(ingest.ObserverFunc(func(e ingest.Event) {
		if e.Kind != ingest.EventCreated {
			done <- struct{}{}
		}
	}))
	defer unsubscribe()

	files := make([]models.FileDescriptor, len(names))
	for i, n := range names {
		files[i] = models.FileDescriptor{Name: n}
	}
	if _, err := sim.Submit(files); err != nil {
		return nil, err
	}

	for range names {
		select {
		case <-done:
		case <-ctx.Done():
			return sim.Documents(), ctx.Err()
		}
	}
	return sim.Documents(), nil
}
