// Package catalog holds the static scaffold data: the repositories to create
// and the learning-plan rows to seed.
package catalog

import (
	"fmt"
	"path"
	"strings"
)

// Status is the progress state of a plan item.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label is the display name used for the status select option.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return "To Do"
	}
}

// File is one scaffolded file, addressed by a slash-separated relative path.
type File struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// RepoSpec describes a scaffolded repository.
type RepoSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Files       []File `yaml:"files"`
	Private     bool   `yaml:"private"`
}

// PlanItem is one row in the learning-plan database.
type PlanItem struct {
	Week       int    `yaml:"week"`
	Month      int    `yaml:"month"`
	Title      string `yaml:"title"`
	Project    string `yaml:"project"`
	Details    string `yaml:"details"`
	DatasetURL string `yaml:"dataset_url"`
	Repo       string `yaml:"repo"`
	RepoURL    string `yaml:"-"`
	Status     Status `yaml:"status"`
}

// Priority buckets the first two months as High, the next two as Medium
// and the rest as Low.
func (p PlanItem) Priority() string {
	switch {
	case p.Month <= 2:
		return "High"
	case p.Month <= 4:
		return "Medium"
	default:
		return "Low"
	}
}

// MonthLabel is the select option name for the item's month.
func (p PlanItem) MonthLabel() string {
	if name, ok := monthNames[p.Month]; ok {
		return name
	}
	return fmt.Sprintf("Month %d", p.Month)
}

var monthNames = map[int]string{
	1: "Month 1: SQL & ETL Basics",
	2: "Month 2: Data Warehousing",
	3: "Month 3: DataOps & Automation",
	4: "Month 4: Big Data Processing",
	5: "Month 5: Real-Time Streaming",
	6: "Month 6: Capstone Projects",
}

// MonthLabels returns the six month option names in order.
func MonthLabels() []string {
	out := make([]string, 0, len(monthNames))
	for m := 1; m <= len(monthNames); m++ {
		out = append(out, monthNames[m])
	}
	return out
}

// RepoURL is the browser URL for a repository owned by owner.
func RepoURL(owner, repo string) string {
	return "https://github.com/" + owner + "/" + repo
}

// Validate checks a repository definition for structural problems.
func (r RepoSpec) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("catalog: repo name is required")
	}
	seen := make(map[string]bool, len(r.Files))
	for i, f := range r.Files {
		if f.Path == "" {
			return fmt.Errorf("catalog: repo %s: files[%d].path is required", r.Name, i)
		}
		clean := path.Clean(f.Path)
		if clean != f.Path || path.IsAbs(f.Path) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("catalog: repo %s: file path %q must be relative and clean", r.Name, f.Path)
		}
		if seen[f.Path] {
			return fmt.Errorf("catalog: repo %s: duplicate file %q", r.Name, f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}

// Validate checks a plan item for range and enum problems.
func (p PlanItem) Validate() error {
	if p.Week < 1 {
		return fmt.Errorf("catalog: plan item %q: week must be positive", p.Title)
	}
	if p.Month < 1 || p.Month > 6 {
		return fmt.Errorf("catalog: plan item week %d: month %d out of range 1-6", p.Week, p.Month)
	}
	if p.Title == "" {
		return fmt.Errorf("catalog: plan item week %d: title is required", p.Week)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("catalog: plan item week %d: unknown status %q", p.Week, p.Status)
	}
	return nil
}
