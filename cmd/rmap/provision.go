package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/zulandar/roadmapper/internal/budget"
	"github.com/zulandar/roadmapper/internal/catalog"
	"github.com/zulandar/roadmapper/internal/config"
	"github.com/zulandar/roadmapper/internal/ledger"
	"github.com/zulandar/roadmapper/internal/local"
	"github.com/zulandar/roadmapper/internal/metrics"
	"github.com/zulandar/roadmapper/internal/notify"
	"github.com/zulandar/roadmapper/internal/notify/discord"
	"github.com/zulandar/roadmapper/internal/notify/slack"
	"github.com/zulandar/roadmapper/internal/notion"
	"github.com/zulandar/roadmapper/internal/provision"
	"github.com/zulandar/roadmapper/internal/repohost"
	"github.com/zulandar/roadmapper/internal/retry"
	"github.com/zulandar/roadmapper/internal/schedule"
)

type provisionFlags struct {
	configPath string
	envFile    string
	dryRun     bool
	yes        bool
	localDir   string
	cron       string
	verbose    bool
}

func newProvisionCmd() *cobra.Command {
	var f provisionFlags

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create every roadmap resource that does not exist yet",
		Long: `Ensures the learning-plan database and its rows, the project repositories
and their starter files, the optional local mirror and the optional AWS budget.

Existing resources are left untouched, so the command is safe to re-run. A
resource that fails is reported and the run moves on; the exit status is 1 if
anything failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to rmap.yaml (default: ./rmap.yaml if present)")
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "look up resources but create nothing")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().StringVar(&f.localDir, "local-dir", "", "directory for the local mirror (overrides config)")
	cmd.Flags().StringVar(&f.cron, "schedule", "", "re-run on this 5-field cron schedule until interrupted")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func runProvision(cmd *cobra.Command, f provisionFlags) error {
	out := cmd.OutOrStdout()

	// Everything up to building clients is offline so a bad configuration
	// fails before any remote call.
	cfg, err := loadConfig(f.configPath, f.envFile)
	if err != nil {
		return err
	}
	if f.localDir != "" {
		cfg.Local.Dir = f.localDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	var sched *schedule.Runner
	if f.cron != "" {
		s, err := schedule.Parse(f.cron)
		if err != nil {
			return &config.ConfigurationError{Problems: []string{err.Error()}}
		}
		sched = &schedule.Runner{Schedule: s, RunAtStart: true}
	}

	log, err := newLogger(f.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !f.dryRun && !f.yes && isTerminal(os.Stdin) {
		if !confirm(cmd.InOrStdin(), out, describePlan(cfg, cat)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	rec, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	p, err := buildProvisioner(ctx, cfg, cat, f.dryRun, log, rec)
	if err != nil {
		return err
	}

	// Dry runs leave no trace on disk.
	var store *ledger.Store
	if !cfg.LedgerDisabled() && !f.dryRun {
		store, err = ledger.Open(cfg.Ledger.DSN)
		if err != nil {
			log.Warn("run history disabled", zap.Error(err))
		} else {
			defer store.Close()
		}
	}
	notifier := buildNotifier(cfg, log)

	once := func(ctx context.Context) error {
		sum := p.Run(ctx)
		printSummary(out, sum)
		if store != nil {
			if err := store.Save(ctx, sum); err != nil {
				log.Warn("could not record run", zap.Error(err))
			}
		}
		if notifier != nil {
			if err := notifier.Notify(ctx, notify.FormatSummary(sum)); err != nil {
				log.Warn("could not send run summary", zap.Error(err))
			}
		}
		if !sum.OK() {
			return errRunFailed
		}
		return nil
	}

	if sched == nil {
		return once(ctx)
	}

	sched.Logger = log
	sched.Job = func(ctx context.Context) {
		if err := once(ctx); err != nil {
			log.Warn("scheduled run finished with failures")
		}
	}
	fmt.Fprintf(out, "Running on schedule %q, press Ctrl-C to stop\n", f.cron)
	return sched.Run(ctx)
}

// buildProvisioner constructs the service clients. Clients for disabled
// features are never created.
func buildProvisioner(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, dryRun bool, log *zap.Logger, rec *metrics.Recorder) (*provision.Provisioner, error) {
	host, err := repohost.New(ctx, repohost.Opts{
		Token:   cfg.GitHub.Token,
		Owner:   cfg.GitHub.Username,
		BaseURL: cfg.GitHub.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	opts := provision.Options{
		Plan:               notion.New(cfg.Notion.Token, cfg.Notion.ParentPageID, notion.WithBaseURL(cfg.Notion.BaseURL)),
		Repos:              host,
		DatabaseTitle:      cfg.Notion.DatabaseTitle,
		PlanItems:          cat.Plan,
		RepoSpecs:          cat.Repos,
		CreateLocalFolders: cfg.Features.CreateLocalFolders,
		CreateBudget:       cfg.Features.CreateAWSBudget,
		DryRun:             dryRun,
		Policy:             retry.Exponential(cfg.Retry.MaxAttempts, cfg.Retry.Delay, cfg.Retry.MaxDelay),
		Logger:             log,
		Metrics:            rec,
	}
	if cfg.Features.CreateLocalFolders {
		opts.Mirror = local.New(cfg.Local.Dir)
	}
	if cfg.Features.CreateAWSBudget {
		b, err := budget.New(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		opts.Budget = b
		opts.BudgetSpec = budget.DefaultSpec(cfg.AWS.BudgetEmail)
	}
	return provision.New(opts)
}

// buildNotifier returns nil when no chat platform is configured.
func buildNotifier(cfg *config.Config, log *zap.Logger) notify.Notifier {
	var fan notify.Fanout
	if cfg.Notify.SlackToken != "" {
		n, err := slack.New(slack.Opts{BotToken: cfg.Notify.SlackToken, ChannelID: cfg.Notify.SlackChannelID})
		if err != nil {
			log.Warn("slack notifications disabled", zap.Error(err))
		} else {
			fan = append(fan, n)
		}
	}
	if cfg.Notify.DiscordToken != "" {
		n, err := discord.New(discord.Opts{BotToken: cfg.Notify.DiscordToken, ChannelID: cfg.Notify.DiscordChannelID})
		if err != nil {
			log.Warn("discord notifications disabled", zap.Error(err))
		} else {
			fan = append(fan, n)
		}
	}
	if len(fan) == 0 {
		return nil
	}
	return fan
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func describePlan(cfg *config.Config, cat *catalog.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Notion database %q with %d plan items\n", cfg.Notion.DatabaseTitle, len(cat.Plan))
	fmt.Fprintf(&b, "%d GitHub repositories under %s (private: %t)\n", len(cat.Repos), cfg.GitHub.Username, cfg.Features.ReposPrivate)
	if cfg.Features.CreateLocalFolders {
		fmt.Fprintf(&b, "Local mirror in %s\n", cfg.Local.Dir)
	}
	if cfg.Features.CreateAWSBudget {
		fmt.Fprintf(&b, "AWS budget in %s alerting %s\n", cfg.AWS.Region, cfg.AWS.BudgetEmail)
	}
	return b.String()
}

// confirm asks a yes/no question and defaults to no.
func confirm(in io.Reader, out io.Writer, plan string) bool {
	fmt.Fprintf(out, "This will create any of the following that are missing:\n%s\nContinue? [y/N] ", plan)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printSummary(out io.Writer, s *provision.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tRESOURCE\tOUTCOME\tDETAIL")
	for _, r := range s.Results {
		outcome := string(r.Outcome)
		if r.DryRun && r.Outcome == provision.OutcomeCreated {
			outcome = "would-create"
		}
		detail := r.Detail
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, r.ID, outcome, detail)
	}
	w.Flush()

	created, existed, failed := s.Counts()
	verb := "created"
	if s.DryRun {
		verb = "would create"
	}
	fmt.Fprintf(out, "\nRun %s: %d %s, %d already existed, %d failed (%s)\n",
		s.RunID, created, verb, existed, failed, s.Duration().Round(time.Millisecond))
}
