package dashboard

import (
	"time"

	"github.com/zulandar/roadmapper/internal/ledger"
)

// runJSON is the API shape of a recorded run.
type runJSON struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	DryRun     bool         `json:"dry_run"`
	OK         bool         `json:"ok"`
	Created    int          `json:"created"`
	Existed    int          `json:"existed"`
	Failed     int          `json:"failed"`
	Results    []resultJSON `json:"results,omitempty"`
}

type resultJSON struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toRunJSON(r ledger.Run) runJSON {
	out := runJSON{
		ID:         r.ID,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
		DryRun:     r.DryRun,
		OK:         r.OK,
		Created:    r.Created,
		Existed:    r.Existed,
		Failed:     r.Failed,
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, resultJSON{
			Kind:    res.Kind,
			ID:      res.Identifier,
			Outcome: res.Outcome,
			Detail:  res.Detail,
			Error:   res.Error,
		})
	}
	return out
}
