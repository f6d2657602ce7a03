// Package notify posts a run summary to chat channels once a provisioning
// run finishes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/roadmapper/internal/provision"
)

// Color constants for the report sidebar.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorError   = "#e53935"
)

// maxFailures caps how many failed resources a report lists.
const maxFailures = 10

// Field is a key-value pair displayed in a report.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Report is a run summary formatted for chat.
type Report struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Notifier delivers a report to one chat platform.
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// FormatSummary builds a Report for a finished run.
func FormatSummary(s *provision.Summary) Report {
	created, existed, failed := s.Counts()

	r := Report{
		Title: "Roadmap provisioning succeeded",
		Color: ColorSuccess,
		Fields: []Field{
			{Name: "Created", Value: fmt.Sprint(created), Short: true},
			{Name: "Already existed", Value: fmt.Sprint(existed), Short: true},
			{Name: "Failed", Value: fmt.Sprint(failed), Short: true},
			{Name: "Run", Value: s.RunID, Short: true},
		},
	}
	if s.DryRun {
		r.Title = "Roadmap provisioning dry run"
		r.Color = ColorInfo
	}
	if failed > 0 {
		r.Title = fmt.Sprintf("Roadmap provisioning finished with %d failure(s)", failed)
		r.Color = ColorError

		var b strings.Builder
		for i, res := range s.Failed() {
			if i == maxFailures {
				fmt.Fprintf(&b, "... and %d more\n", failed-maxFailures)
				break
			}
			fmt.Fprintf(&b, "%s %s", res.Kind, res.ID)
			if res.Err != nil {
				fmt.Fprintf(&b, ": %v", res.Err)
			}
			b.WriteString("\n")
		}
		r.Body = strings.TrimRight(b.String(), "\n")
	}
	return r
}

// Fanout delivers a report to every notifier and joins their errors.
// One failing platform does not stop delivery to the others.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, r Report) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
