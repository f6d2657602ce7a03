package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the resolved set of repositories and plan items for one run.
type Catalog struct {
	Repos []RepoSpec
	Plan  []PlanItem
}

// overlay is the on-disk shape of a catalog override file. Either section
// may be omitted to keep the built-in data for it.
type overlay struct {
	Repos []RepoSpec `yaml:"repos"`
	Plan  []PlanItem `yaml:"plan"`
}

// Default returns the built-in catalog for owner.
func Default(owner string, private bool) *Catalog {
	return &Catalog{Repos: Repos(private), Plan: Plan(owner)}
}

// Load reads a YAML overlay from path and merges it over the built-in
// catalog. Repo files without content get starter content, and every repo
// gets a README when the overlay does not list one.
func Load(path, owner string, private bool) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data, owner, private)
}

// Parse merges overlay YAML bytes over the built-in catalog.
func Parse(data []byte, owner string, private bool) (*Catalog, error) {
	var ov overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	cat := Default(owner, private)
	if len(ov.Repos) > 0 {
		cat.Repos = make([]RepoSpec, 0, len(ov.Repos))
		for _, r := range ov.Repos {
			cat.Repos = append(cat.Repos, normalizeRepo(r, private))
		}
	}
	if len(ov.Plan) > 0 {
		cat.Plan = make([]PlanItem, 0, len(ov.Plan))
		for _, p := range ov.Plan {
			if p.Status == "" {
				p.Status = StatusNotStarted
			}
			if p.Repo != "" && owner != "" {
				p.RepoURL = RepoURL(owner, p.Repo)
			}
			cat.Plan = append(cat.Plan, p)
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func normalizeRepo(r RepoSpec, private bool) RepoSpec {
	r.Private = private
	hasReadme := false
	for i := range r.Files {
		if r.Files[i].Path == "README.md" {
			hasReadme = true
			if r.Files[i].Content == "" {
				r.Files[i].Content = Readme(r.Name)
			}
			continue
		}
		if r.Files[i].Content == "" {
			r.Files[i].Content = StarterContent(r.Files[i].Path)
		}
	}
	if !hasReadme {
		r.Files = append([]File{{Path: "README.md", Content: Readme(r.Name)}}, r.Files...)
	}
	return r
}

// Validate checks every repo and plan item and rejects duplicate names or
// weeks, since existence checks key on them.
func (c *Catalog) Validate() error {
	names := make(map[string]bool, len(c.Repos))
	for _, r := range c.Repos {
		if err := r.Validate(); err != nil {
			return err
		}
		if names[r.Name] {
			return fmt.Errorf("catalog: duplicate repo %q", r.Name)
		}
		names[r.Name] = true
	}
	weeks := make(map[int]bool, len(c.Plan))
	for _, p := range c.Plan {
		if err := p.Validate(); err != nil {
			return err
		}
		if weeks[p.Week] {
			return fmt.Errorf("catalog: duplicate plan week %d", p.Week)
		}
		weeks[p.Week] = true
	}
	return nil
}
