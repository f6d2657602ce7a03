// Package repohost ensures scaffold repositories and their files exist on GitHub.
package repohost

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/zulandar/roadmapper/internal/catalog"
	"github.com/zulandar/roadmapper/internal/retry"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API for a single account.
type Client struct {
	gh    *github.Client
	owner string
}

// Opts holds parameters for creating a Client.
type Opts struct {
	Token   string
	Owner   string
	BaseURL string // API root for GitHub Enterprise or tests; empty for github.com
}

// New creates a Client authenticated with a static OAuth2 token.
func New(ctx context.Context, opts Opts) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("repohost: token is required")
	}
	if opts.Owner == "" {
		return nil, fmt.Errorf("repohost: owner is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("repohost: parse base url %q: %w", opts.BaseURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh, owner: opts.Owner}, nil
}

// RepoExists reports whether owner/name exists and is visible to the token.
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := c.gh.Repositories.Get(ctx, c.owner, name)
	if isNotFound(resp, err) {
		return false, nil
	}
	if err != nil {
		return false, classify(fmt.Errorf("repohost: get %s/%s: %w", c.owner, name, err))
	}
	return true, nil
}

// CreateRepo creates an empty repository for the authenticated user. The
// repository is not auto-initialised so every scaffold file, README
// included, goes through the same create-if-absent path.
func (c *Client) CreateRepo(ctx context.Context, spec catalog.RepoSpec) error {
	_, _, err := c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.Ptr(spec.Name),
		Description: github.Ptr(spec.Description),
		Private:     github.Ptr(spec.Private),
		AutoInit:    github.Ptr(false),
	})
	if err != nil {
		return classify(fmt.Errorf("repohost: create %s: %w", spec.Name, err))
	}
	return nil
}

// FileExists reports whether path exists on the default branch.
func (c *Client) FileExists(ctx context.Context, repo, path string) (bool, error) {
	_, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, repo, path, nil)
	if isNotFound(resp, err) {
		return false, nil
	}
	if err != nil {
		return false, classify(fmt.Errorf("repohost: get %s:%s: %w", repo, path, err))
	}
	return true, nil
}

// CreateFile commits f to repo. It never updates an existing file.
func (c *Client) CreateFile(ctx context.Context, repo string, f catalog.File) error {
	msg := "chore: scaffold " + f.Path
	if f.Path == "README.md" {
		msg = "chore: add README"
	}
	_, _, err := c.gh.Repositories.CreateFile(ctx, c.owner, repo, f.Path, &github.RepositoryContentFileOptions{
		Message: github.Ptr(msg),
		Content: []byte(f.Content),
	})
	if err != nil {
		return classify(fmt.Errorf("repohost: create %s:%s: %w", repo, f.Path, err))
	}
	return nil
}

func isNotFound(resp *github.Response, err error) bool {
	if err == nil {
		return false
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ge *github.ErrorResponse
	return errors.As(err, &ge) && ge.Response != nil && ge.Response.StatusCode == http.StatusNotFound
}

// classify marks rate limiting, 5xx responses and network failures as
// transient.
func classify(err error) error {
	var rle *github.RateLimitError
	var are *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &are) {
		return retry.MarkTransient(err)
	}
	var ge *github.ErrorResponse
	if errors.As(err, &ge) && ge.Response != nil {
		code := ge.Response.StatusCode
		if code == http.StatusTooManyRequests || code >= 500 {
			return retry.MarkTransient(err)
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return retry.MarkTransient(err)
	}
	return err
}
