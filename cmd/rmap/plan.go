package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/roadmapper/internal/catalog"
)

func newPlanCmd() *cobra.Command {
	var (
		configPath string
		repos      bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the learning plan that provision would create",
		Long:  "Prints the 24-week plan, or the repository scaffolds with --repos. Reads the catalog overlay from the config file if one is set; needs no credentials.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, configPath, repos)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().BoolVar(&repos, "repos", false, "list repositories and their files instead of plan items")
	return cmd
}

func runPlan(cmd *cobra.Command, configPath string, repos bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath, "")
	if err != nil {
		return err
	}
	owner := cfg.GitHub.Username
	if owner == "" {
		owner = "<github-user>"
	}
	cfg.GitHub.Username = owner
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if repos {
		fmt.Fprintln(w, "REPO\tFILES\tVISIBILITY")
		for _, r := range cat.Repos {
			vis := "public"
			if r.Private {
				vis = "private"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, len(r.Files), vis)
			for _, f := range r.Files {
				fmt.Fprintf(w, "  %s\t\t\n", f.Path)
			}
		}
		return w.Flush()
	}

	fmt.Fprintln(w, "WEEK\tMONTH\tPRIORITY\tTOPIC\tPROJECT")
	for _, item := range cat.Plan {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", item.Week, item.MonthLabel(), item.Priority(), item.Title, item.Project)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d items across %d months\n", len(cat.Plan), len(catalog.MonthLabels()))
	return nil
}
