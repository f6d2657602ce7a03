package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/roadmapper/internal/config"
	"github.com/zulandar/roadmapper/internal/notion"
)

func newNotionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notion",
		Short: "Look at Notion databases without changing them",
	}
	cmd.AddCommand(newNotionScanCmd())
	cmd.AddCommand(newNotionInspectCmd())
	cmd.AddCommand(newNotionCheckCmd())
	return cmd
}

// notionClient builds a read-only client. Only NOTION_TOKEN is required.
func notionClient(configPath, envFile string) (*notion.Client, *config.Config, error) {
	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Notion.Token == "" {
		return nil, nil, &config.ConfigurationError{Problems: []string{"notion.token (NOTION_TOKEN) is required"}}
	}
	return notion.New(cfg.Notion.Token, cfg.Notion.ParentPageID, notion.WithBaseURL(cfg.Notion.BaseURL)), cfg, nil
}

func newNotionScanCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		samples    int
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List databases that look like a learning plan",
		Long: "Searches every database shared with the integration and reports those whose title " +
			"or columns look like a learning plan, with a few sample rows. Use --all to list every database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := notionClient(configPath, envFile)
			if err != nil {
				return err
			}
			dbs, err := c.ScanDatabases(cmd.Context(), samples)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for i := range dbs {
				db := &dbs[i]
				if !all && !db.LooksLikeRoadmap() {
					continue
				}
				shown++
				printDatabase(out, db, db.Title == cfg.Notion.DatabaseTitle)
			}
			if shown == 0 {
				fmt.Fprintf(out, "No matching databases among %d scanned.\n", len(dbs))
				return nil
			}
			fmt.Fprintf(out, "%d of %d databases shown.\n", shown, len(dbs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.Flags().IntVar(&samples, "samples", 2, "sample rows to show per database")
	cmd.Flags().BoolVar(&all, "all", false, "show every database, not only plan-like ones")
	return cmd
}

func newNotionInspectCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		samples    int
	)

	cmd := &cobra.Command{
		Use:   "inspect <database-id>...",
		Short: "Show the columns, row count and sample rows of databases",
		Long:  "Reads each database in full to count its rows. Pass several ids to compare them side by side.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := notionClient(configPath, envFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range args {
				info, err := c.InspectDatabase(cmd.Context(), id, samples)
				if err != nil {
					return err
				}
				printDatabase(out, info, info.Title == cfg.Notion.DatabaseTitle)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.Flags().IntVar(&samples, "samples", 3, "sample rows to show")
	return cmd
}

func newNotionCheckCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the token can read the parent page",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := notionClient(configPath, envFile)
			if err != nil {
				return err
			}
			if cfg.Notion.ParentPageID == "" {
				return &config.ConfigurationError{Problems: []string{"notion.parent_page_id (NOTION_PARENT_PAGE_ID) is required"}}
			}
			out := cmd.OutOrStdout()
			title, err := c.CheckParentPage(cmd.Context())
			if errors.Is(err, notion.ErrParentNotShared) {
				fmt.Fprintln(out, "The parent page was not found. In Notion, open the page, choose Share > Invite,")
				fmt.Fprintln(out, "add your integration with edit access, and check that NOTION_PARENT_PAGE_ID")
				fmt.Fprintln(out, "is the 32-character id from the page URL (dashes are optional).")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Parent page %q is reachable.\n", title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to rmap.yaml")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	return cmd
}

// maxCell bounds sample values so long descriptions stay on one line.
const maxCell = 100

func printDatabase(out io.Writer, db *notion.DatabaseInfo, managed bool) {
	title := db.Title
	if managed {
		title += "  (managed by provision)"
	}
	fmt.Fprintf(out, "%s\n  id: %s\n", title, db.ID)
	if db.URL != "" {
		fmt.Fprintf(out, "  url: %s\n", db.URL)
	}
	if !db.EditedAt.IsZero() {
		fmt.Fprintf(out, "  edited: %s\n", db.EditedAt.Format("2006-01-02"))
	}
	rows := fmt.Sprintf("%d", db.Rows)
	if db.MoreRows {
		rows += "+"
	}
	fmt.Fprintf(out, "  rows: %s\n", rows)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  COLUMN\tTYPE")
	for _, col := range db.Columns {
		fmt.Fprintf(w, "  %s\t%s\n", col.Name, col.Type)
	}
	w.Flush()

	for i, row := range db.Samples {
		fmt.Fprintf(out, "  row %d:\n", i+1)
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "    %s: %s\n", k, truncate(row[k], maxCell))
		}
	}
	fmt.Fprintln(out)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
