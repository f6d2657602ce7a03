package provision

import (
	"fmt"
	"time"
)

// Kind identifies the type of resource a Result refers to.
type Kind string

const (
	KindDatabase Kind = "database"
	KindPlanItem Kind = "plan-item"
	KindRepo     Kind = "repo"
	KindFolder   Kind = "folder"
	KindBudget   Kind = "budget"
)

// Outcome is what happened to one resource during a run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExisted Outcome = "already-existed"
	OutcomeFailed  Outcome = "failed"
)

// Result is the outcome for one resource in one run. Results are not
// persisted by the provisioner itself.
type Result struct {
	Kind    Kind
	ID      string
	Outcome Outcome
	Detail  string
	Err     error
	DryRun  bool
}

func (r Result) String() string {
	out := string(r.Outcome)
	if r.DryRun && r.Outcome == OutcomeCreated {
		out = "would-create"
	}
	s := fmt.Sprintf("%-9s %-40s %s", r.Kind, r.ID, out)
	if r.Detail != "" {
		s += " (" + r.Detail + ")"
	}
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

// Summary collects every Result of a run in provisioning order.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Results    []Result
}

// OK reports whether every resource was created or already existed.
func (s *Summary) OK() bool {
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			return false
		}
	}
	return true
}

// Counts tallies results by outcome.
func (s *Summary) Counts() (created, existed, failed int) {
	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeExisted:
			existed++
		case OutcomeFailed:
			failed++
		}
	}
	return created, existed, failed
}

// Failed returns the failed results.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// ByKind returns the results for kind in order.
func (s *Summary) ByKind(kind Kind) []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
