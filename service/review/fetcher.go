package review

import (
	"context"

	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/github"
)

// StaticFetcher serves a fixed pull request and file set. It backs the demo
// command and tests; no network access is involved.
type StaticFetcher struct {
	PR    *github.PullRequest
	Files []analyzer.File
	Err   error
}

// PullRequest returns the fixed metadata.
func (f *StaticFetcher) PullRequest(_ context.Context, _, _ string, number int) (*github.PullRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.PR != nil {
		return f.PR, nil
	}
	return &github.PullRequest{Number: number, Title: "static pull request", State: "open"}, nil
}

// ChangedFiles returns the fixed file set.
func (f *StaticFetcher) ChangedFiles(context.Context, string, string, int) ([]analyzer.File, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Files, nil
}
