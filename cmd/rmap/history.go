package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/zulandar/roadmapper/internal/config"
	"github.com/zulandar/roadmapper/internal/dashboard"
	"github.com/zulandar/roadmapper/internal/ledger"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded provisioning runs",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryFailedCmd())
	cmd.AddCommand(newHistoryServeCmd())
	return cmd
}

// openLedger loads the config for its ledger DSN only; no credentials are needed.
func openLedger(configPath string) (*ledger.Store, error) {
	cfg, err := loadConfig(configPath, "")
	if err != nil {
		return nil, err
	}
	if cfg.LedgerDisabled() {
		return nil, &config.ConfigurationError{Problems: []string{"run history is disabled; set ledger.dsn (RMAP_LEDGER_DSN) to enable it"}}
	}
	store, err := ledger.Open(cfg.Ledger.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}

func newHistoryListCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tCREATED\tEXISTED\tFAILED")
			for _, r := range runs {
				status := "ok"
				if !r.OK {
					status = "failed"
				}
				if r.DryRun {
					status += " (dry run)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), status, r.Created, r.Existed, r.Failed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show every result of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tRESOURCE\tOUTCOME\tDETAIL")
			for _, r := range run.Results {
				detail := r.Detail
				if r.Error != "" {
					detail = r.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, r.Identifier, r.Outcome, detail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	return cmd
}

func newHistoryFailedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List the resources that failed in the last real run",
		Long: "Lists the failed resources of the most recent run that was not a dry run. " +
			"Running provision again retries exactly these, since everything else already exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.LastFailed(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No failures in the last run.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tRESOURCE\tERROR")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Kind, r.Identifier, r.Error)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d failed in run %s. Run `rmap provision` to retry them.\n", len(recs), recs[0].RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	return cmd
}

func newHistoryServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run history and metrics over HTTP",
		Long:  "Starts a small web server with a run history page, a JSON API under /api/runs and Prometheus metrics at /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
				cancel()
			}()

			return dashboard.Start(ctx, dashboard.StartOpts{
				Store:    store,
				Gatherer: reg,
				Port:     port,
				Out:      cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}
