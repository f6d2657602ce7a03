// Package provision creates the learning-plan resources that do not exist
// yet: the plan database and its rows, the scaffold repositories, an
// optional local mirror, and an optional cost budget.
//
// Every resource is a single create-if-absent decision. A failure is
// recorded against that resource and the run moves on.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zulandar/roadmapper/internal/budget"
	"github.com/zulandar/roadmapper/internal/catalog"
	"github.com/zulandar/roadmapper/internal/metrics"
	"github.com/zulandar/roadmapper/internal/retry"
)

// PlanStore is the task-database system holding the learning plan.
type PlanStore interface {
	FindDatabase(ctx context.Context, title string) (id string, found bool, err error)
	CreateDatabase(ctx context.Context, title string) (string, error)
	ExistingWeeks(ctx context.Context, databaseID string) (map[int]bool, error)
	CreatePlanItem(ctx context.Context, databaseID string, item catalog.PlanItem) error
}

// RepoHost is the repository-hosting system.
type RepoHost interface {
	RepoExists(ctx context.Context, name string) (bool, error)
	CreateRepo(ctx context.Context, spec catalog.RepoSpec) error
	FileExists(ctx context.Context, repo, path string) (bool, error)
	CreateFile(ctx context.Context, repo string, f catalog.File) error
}

// Mirror writes repository scaffolds to local storage.
type Mirror interface {
	Missing(ctx context.Context, spec catalog.RepoSpec) ([]string, error)
	Ensure(ctx context.Context, spec catalog.RepoSpec) (int, error)
}

// BudgetService is the cloud billing system.
type BudgetService interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, spec budget.Spec) error
}

// Options configures a Provisioner. Plan and Repos are required; Mirror
// and Budget are required only when their toggle is set.
type Options struct {
	Plan   PlanStore
	Repos  RepoHost
	Mirror Mirror
	Budget BudgetService

	DatabaseTitle string
	PlanItems     []catalog.PlanItem
	RepoSpecs     []catalog.RepoSpec
	BudgetSpec    budget.Spec

	CreateLocalFolders bool
	CreateBudget       bool
	DryRun             bool

	Policy  retry.Policy
	Logger  *zap.Logger
	Metrics *metrics.Recorder

	// Now is used for run timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Provisioner runs one provisioning pass per call to Run.
type Provisioner struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// New validates opts and returns a Provisioner.
func New(opts Options) (*Provisioner, error) {
	if opts.Plan == nil {
		return nil, errors.New("provision: plan store is required")
	}
	if opts.Repos == nil {
		return nil, errors.New("provision: repo host is required")
	}
	if opts.CreateLocalFolders && opts.Mirror == nil {
		return nil, errors.New("provision: local mirror is required when local folders are enabled")
	}
	if opts.CreateBudget && opts.Budget == nil {
		return nil, errors.New("provision: budget service is required when budget creation is enabled")
	}
	if opts.DatabaseTitle == "" {
		return nil, errors.New("provision: database title is required")
	}
	p := &Provisioner{opts: opts, log: opts.Logger, now: opts.Now}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Run provisions every declared resource in order: database and plan rows,
// repositories, local folders, budget. It always returns a Summary; check
// Summary.OK for the overall status. Cancelling ctx makes the remaining
// resources fail quickly rather than skipping them silently.
func (p *Provisioner) Run(ctx context.Context) *Summary {
	s := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
		DryRun:    p.opts.DryRun,
	}
	log := p.log.With(zap.String("run_id", s.RunID))
	log.Info("provisioning started",
		zap.Bool("dry_run", p.opts.DryRun),
		zap.Int("plan_items", len(p.opts.PlanItems)),
		zap.Int("repos", len(p.opts.RepoSpecs)),
		zap.Bool("local_folders", p.opts.CreateLocalFolders),
		zap.Bool("budget", p.opts.CreateBudget),
	)

	run := &runState{p: p, s: s, log: log}
	run.ensurePlan(ctx)
	for _, spec := range p.opts.RepoSpecs {
		run.ensureRepo(ctx, spec)
	}
	if p.opts.CreateLocalFolders {
		for _, spec := range p.opts.RepoSpecs {
			run.ensureFolder(ctx, spec)
		}
	}
	if p.opts.CreateBudget {
		run.ensureBudget(ctx)
	}

	s.FinishedAt = p.now()
	p.opts.Metrics.Run(s.OK(), s.Duration())
	created, existed, failed := s.Counts()
	log.Info("provisioning finished",
		zap.Int("created", created),
		zap.Int("existed", existed),
		zap.Int("failed", failed),
		zap.Duration("took", s.Duration()),
	)
	return s
}

// runState carries the per-run summary and logger through the steps.
type runState struct {
	p   *Provisioner
	s   *Summary
	log *zap.Logger
}

func (r *runState) record(res Result) {
	res.DryRun = r.p.opts.DryRun
	r.s.Results = append(r.s.Results, res)
	r.p.opts.Metrics.Result(string(res.Kind), string(res.Outcome))

	fields := []zap.Field{
		zap.String("kind", string(res.Kind)),
		zap.String("id", res.ID),
		zap.String("outcome", string(res.Outcome)),
	}
	if res.Detail != "" {
		fields = append(fields, zap.String("detail", res.Detail))
	}
	if res.Err != nil {
		r.log.Error("resource failed", append(fields, zap.Error(res.Err))...)
		return
	}
	r.log.Info("resource", fields...)
}

// policy returns the configured retry policy with a logging hook for kind/id.
func (r *runState) policy(kind Kind, id string) retry.Policy {
	pol := r.p.opts.Policy
	pol.Notify = func(err error, attempt int, wait time.Duration) {
		r.log.Warn("retrying",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return pol
}

type databaseLookup struct {
	id    string
	found bool
}

func (r *runState) ensurePlan(ctx context.Context) {
	title := r.p.opts.DatabaseTitle
	store := r.p.opts.Plan

	db, err := retry.Do(ctx, r.policy(KindDatabase, title), func(ctx context.Context) (databaseLookup, error) {
		id, found, err := store.FindDatabase(ctx, title)
		return databaseLookup{id: id, found: found}, err
	})
	if err != nil {
		r.record(Result{Kind: KindDatabase, ID: title, Outcome: OutcomeFailed,
			Err: &RemoteLookupError{Kind: KindDatabase, ID: title, Err: err}})
		r.skipPlanItems(fmt.Errorf("database %q unavailable", title))
		return
	}

	existing := map[int]bool{}
	if db.found {
		r.record(Result{Kind: KindDatabase, ID: title, Outcome: OutcomeExisted, Detail: db.id})
		existing, err = retry.Do(ctx, r.policy(KindPlanItem, title), func(ctx context.Context) (map[int]bool, error) {
			return store.ExistingWeeks(ctx, db.id)
		})
		if err != nil {
			r.skipPlanItems(&RemoteLookupError{Kind: KindPlanItem, ID: title, Err: err})
			return
		}
	} else if r.p.opts.DryRun {
		r.record(Result{Kind: KindDatabase, ID: title, Outcome: OutcomeCreated})
	} else {
		id, err := retry.Do(ctx, r.policy(KindDatabase, title), func(ctx context.Context) (string, error) {
			return store.CreateDatabase(ctx, title)
		})
		if err != nil {
			r.record(Result{Kind: KindDatabase, ID: title, Outcome: OutcomeFailed,
				Err: &RemoteCreateError{Kind: KindDatabase, ID: title, Err: err}})
			r.skipPlanItems(fmt.Errorf("database %q was not created", title))
			return
		}
		db.id = id
		r.record(Result{Kind: KindDatabase, ID: title, Outcome: OutcomeCreated, Detail: id})
	}

	for _, item := range r.p.opts.PlanItems {
		id := planItemID(item)
		if existing[item.Week] {
			r.record(Result{Kind: KindPlanItem, ID: id, Outcome: OutcomeExisted})
			continue
		}
		if r.p.opts.DryRun {
			r.record(Result{Kind: KindPlanItem, ID: id, Outcome: OutcomeCreated})
			continue
		}
		err := retry.Run(ctx, r.policy(KindPlanItem, id), func(ctx context.Context) error {
			return store.CreatePlanItem(ctx, db.id, item)
		})
		if err != nil {
			r.record(Result{Kind: KindPlanItem, ID: id, Outcome: OutcomeFailed,
				Err: &RemoteCreateError{Kind: KindPlanItem, ID: id, Err: err}})
			continue
		}
		r.record(Result{Kind: KindPlanItem, ID: id, Outcome: OutcomeCreated})
	}
}

// skipPlanItems marks every plan row failed when the database step could
// not produce a usable database.
func (r *runState) skipPlanItems(cause error) {
	for _, item := range r.p.opts.PlanItems {
		r.record(Result{Kind: KindPlanItem, ID: planItemID(item), Outcome: OutcomeFailed, Err: cause})
	}
}

func planItemID(item catalog.PlanItem) string {
	return fmt.Sprintf("week %d: %s", item.Week, item.Title)
}

func (r *runState) ensureRepo(ctx context.Context, spec catalog.RepoSpec) {
	host := r.p.opts.Repos
	name := spec.Name

	exists, err := retry.Do(ctx, r.policy(KindRepo, name), func(ctx context.Context) (bool, error) {
		return host.RepoExists(ctx, name)
	})
	if err != nil {
		r.record(Result{Kind: KindRepo, ID: name, Outcome: OutcomeFailed,
			Err: &RemoteLookupError{Kind: KindRepo, ID: name, Err: err}})
		return
	}

	if !exists {
		if r.p.opts.DryRun {
			r.record(Result{Kind: KindRepo, ID: name, Outcome: OutcomeCreated,
				Detail: fmt.Sprintf("%d files", len(spec.Files))})
			return
		}
		err := retry.Run(ctx, r.policy(KindRepo, name), func(ctx context.Context) error {
			return host.CreateRepo(ctx, spec)
		})
		if err != nil {
			r.record(Result{Kind: KindRepo, ID: name, Outcome: OutcomeFailed,
				Err: &RemoteCreateError{Kind: KindRepo, ID: name, Err: err}})
			return
		}
	}

	// A freshly created repository is empty, so its files need no lookup.
	seeded, errs := 0, []error(nil)
	for _, f := range spec.Files {
		fileID := name + "/" + f.Path
		if exists {
			present, err := retry.Do(ctx, r.policy(KindRepo, fileID), func(ctx context.Context) (bool, error) {
				return host.FileExists(ctx, name, f.Path)
			})
			if err != nil {
				errs = append(errs, &RemoteLookupError{Kind: KindRepo, ID: fileID, Err: err})
				continue
			}
			if present {
				continue
			}
		}
		if r.p.opts.DryRun {
			seeded++
			continue
		}
		err := retry.Run(ctx, r.policy(KindRepo, fileID), func(ctx context.Context) error {
			return host.CreateFile(ctx, name, f)
		})
		if err != nil {
			errs = append(errs, &RemoteCreateError{Kind: KindRepo, ID: fileID, Err: err})
			continue
		}
		seeded++
	}

	res := Result{Kind: KindRepo, ID: name, Outcome: OutcomeExisted}
	if !exists {
		res.Outcome = OutcomeCreated
	}
	if seeded > 0 {
		res.Detail = fmt.Sprintf("seeded %d of %d files", seeded, len(spec.Files))
	}
	if len(errs) > 0 {
		res.Outcome = OutcomeFailed
		res.Err = errors.Join(errs...)
	}
	r.record(res)
}

func (r *runState) ensureFolder(ctx context.Context, spec catalog.RepoSpec) {
	mirror := r.p.opts.Mirror
	if r.p.opts.DryRun {
		missing, err := mirror.Missing(ctx, spec)
		if err != nil {
			r.record(Result{Kind: KindFolder, ID: spec.Name, Outcome: OutcomeFailed,
				Err: &LocalIOError{ID: spec.Name, Err: err}})
			return
		}
		r.record(folderResult(spec, len(missing)))
		return
	}

	written, err := mirror.Ensure(ctx, spec)
	if err != nil {
		r.record(Result{Kind: KindFolder, ID: spec.Name, Outcome: OutcomeFailed,
			Detail: fmt.Sprintf("wrote %d files before failing", written),
			Err:    &LocalIOError{ID: spec.Name, Err: err}})
		return
	}
	r.record(folderResult(spec, written))
}

func folderResult(spec catalog.RepoSpec, n int) Result {
	if n == 0 {
		return Result{Kind: KindFolder, ID: spec.Name, Outcome: OutcomeExisted}
	}
	return Result{Kind: KindFolder, ID: spec.Name, Outcome: OutcomeCreated,
		Detail: fmt.Sprintf("%d of %d files", n, len(spec.Files))}
}

func (r *runState) ensureBudget(ctx context.Context) {
	svc := r.p.opts.Budget
	spec := r.p.opts.BudgetSpec
	name := spec.Name

	exists, err := retry.Do(ctx, r.policy(KindBudget, name), func(ctx context.Context) (bool, error) {
		return svc.Exists(ctx, name)
	})
	if err != nil {
		r.record(Result{Kind: KindBudget, ID: name, Outcome: OutcomeFailed,
			Err: &RemoteLookupError{Kind: KindBudget, ID: name, Err: err}})
		return
	}
	if exists {
		r.record(Result{Kind: KindBudget, ID: name, Outcome: OutcomeExisted})
		return
	}
	if r.p.opts.DryRun {
		r.record(Result{Kind: KindBudget, ID: name, Outcome: OutcomeCreated})
		return
	}
	err = retry.Run(ctx, r.policy(KindBudget, name), func(ctx context.Context) error {
		return svc.Create(ctx, spec)
	})
	if err != nil {
		r.record(Result{Kind: KindBudget, ID: name, Outcome: OutcomeFailed,
			Err: &RemoteCreateError{Kind: KindBudget, ID: name, Err: err}})
		return
	}
	r.record(Result{Kind: KindBudget, ID: name, Outcome: OutcomeCreated,
		Detail: fmt.Sprintf("$%s/month, alert at %.0f%%", spec.LimitUSD, spec.ThresholdPercent)})
}
