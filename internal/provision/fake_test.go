package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/zulandar/roadmapper/internal/budget"
	"github.com/zulandar/roadmapper/internal/catalog"
)

// fakePlan is an in-memory task database. Errors queued in fail are
// returned, in order, by the named method before it succeeds.
type fakePlan struct {
	mu        sync.Mutex
	databases map[string]string // title -> id
	rows      map[string]map[int]catalog.PlanItem
	calls     map[string]int
	fail      map[string][]error
}

func newFakePlan() *fakePlan {
	return &fakePlan{
		databases: map[string]string{},
		rows:      map[string]map[int]catalog.PlanItem{},
		calls:     map[string]int{},
		fail:      map[string][]error{},
	}
}

func (f *fakePlan) take(method string) error {
	f.calls[method]++
	if q := f.fail[method]; len(q) > 0 {
		f.fail[method] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakePlan) FindDatabase(ctx context.Context, title string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.take("FindDatabase"); err != nil {
		return "", false, err
	}
	id, ok := f.databases[title]
	return id, ok, nil
}

func (f *fakePlan) CreateDatabase(ctx context.Context, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.take("CreateDatabase"); err != nil {
		return "", err
	}
	id := fmt.Sprintf("db-%d", len(f.databases)+1)
	f.databases[title] = id
	f.rows[id] = map[int]catalog.PlanItem{}
	return id, nil
}

func (f *fakePlan) ExistingWeeks(ctx context.Context, databaseID string) (map[int]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.take("ExistingWeeks"); err != nil {
		return nil, err
	}
	out := map[int]bool{}
	for w := range f.rows[databaseID] {
		out[w] = true
	}
	return out, nil
}

func (f *fakePlan) CreatePlanItem(ctx context.Context, databaseID string, item catalog.PlanItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.take("CreatePlanItem"); err != nil {
		return err
	}
	f.rows[databaseID][item.Week] = item
	return nil
}

func (f *fakePlan) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		n += len(r)
	}
	return n
}

// fakeHost is an in-memory repository host.
type fakeHost struct {
	mu    sync.Mutex
	repos map[string]map[string]string // repo -> path -> content
	calls map[string]int
	// failRepo makes every call touching the named repository fail.
	failRepo map[string]error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		repos:    map[string]map[string]string{},
		calls:    map[string]int{},
		failRepo: map[string]error{},
	}
}

func (f *fakeHost) RepoExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["RepoExists"]++
	_, ok := f.repos[name]
	return ok, nil
}

func (f *fakeHost) CreateRepo(ctx context.Context, spec catalog.RepoSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateRepo"]++
	if err := f.failRepo[spec.Name]; err != nil {
		return err
	}
	f.repos[spec.Name] = map[string]string{}
	return nil
}

func (f *fakeHost) FileExists(ctx context.Context, repo, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FileExists"]++
	_, ok := f.repos[repo][path]
	return ok, nil
}

func (f *fakeHost) CreateFile(ctx context.Context, repo string, file catalog.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateFile"]++
	if _, ok := f.repos[repo][file.Path]; ok {
		return fmt.Errorf("file %s/%s already exists", repo, file.Path)
	}
	f.repos[repo][file.Path] = file.Content
	return nil
}

func (f *fakeHost) creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls["CreateRepo"] + f.calls["CreateFile"]
}

// fakeMirror counts calls without touching the filesystem.
type fakeMirror struct {
	mu      sync.Mutex
	written map[string]bool
	calls   int
	err     error
}

func newFakeMirror() *fakeMirror { return &fakeMirror{written: map[string]bool{}} }

func (f *fakeMirror) Missing(ctx context.Context, spec catalog.RepoSpec) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []string
	for _, file := range spec.Files {
		if !f.written[spec.Name+"/"+file.Path] {
			out = append(out, file.Path)
		}
	}
	return out, nil
}

func (f *fakeMirror) Ensure(ctx context.Context, spec catalog.RepoSpec) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, file := range spec.Files {
		key := spec.Name + "/" + file.Path
		if !f.written[key] {
			f.written[key] = true
			n++
		}
	}
	return n, nil
}

// fakeBudget is an in-memory billing system.
type fakeBudget struct {
	mu      sync.Mutex
	budgets map[string]budget.Spec
	calls   int
}

func newFakeBudget() *fakeBudget { return &fakeBudget{budgets: map[string]budget.Spec{}} }

func (f *fakeBudget) Exists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, ok := f.budgets[name]
	return ok, nil
}

func (f *fakeBudget) Create(ctx context.Context, spec budget.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.budgets[spec.Name] = spec
	return nil
}
