// Package github fetches pull-request metadata and changed-file contents over
// the REST v3 API. It is an external collaborator of the workflow engine: the
// engine only ever sees its results inside node deltas.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"
	"go.uber.org/zap"

	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/tracing"
)

// DefaultAPIURL is the public GitHub endpoint.
const DefaultAPIURL = "https://api.github.com"

// Config holds API connectivity settings.
type Config struct {
	Token  string `yaml:"token" json:"token"`
	APIURL string `yaml:"apiURL" json:"apiURL"`
}

// PullRequest is the subset of pull-request metadata the review consumes.
type PullRequest struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	HeadBranch string `json:"head_branch"`
	BaseBranch string `json:"base_branch"`
	State      string `json:"state"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// reviewableExtensions limits analysis to source files.
var reviewableExtensions = map[string]bool{
	".go": true,
	".py": true,
}

// Client is a minimal GitHub REST v3 client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client. An empty APIURL falls back to the public endpoint.
func New(config Config, logger *zap.Logger) *Client {
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// PullRequest fetches metadata for one pull request.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (pr *PullRequest, err error) {
	ctx, span := tracing.StartSpan(ctx, "github.PullRequest", "CLIENT")
	defer func() { tracing.EndSpan(span, err) }()

	var payload struct {
		Title string `json:"title"`
		State string `json:"state"`
		User  struct {
			Login string `json:"login"`
		} `json:"user"`
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.config.APIURL, owner, repo, number)
	if err = c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	return &PullRequest{
		Number:     number,
		Title:      payload.Title,
		Author:     payload.User.Login,
		HeadBranch: payload.Head.Ref,
		BaseBranch: payload.Base.Ref,
		State:      payload.State,
		CreatedAt:  payload.CreatedAt,
		UpdatedAt:  payload.UpdatedAt,
	}, nil
}

// ChangedFiles lists the reviewable files touched by the pull request, with
// full content and added-line statistics parsed from the unified patch.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo string, number int) (files []analyzer.File, err error) {
	ctx, span := tracing.StartSpan(ctx, "github.ChangedFiles", "CLIENT")
	defer func() { tracing.EndSpan(span, err) }()

	var payload []struct {
		Filename    string `json:"filename"`
		Status      string `json:"status"`
		Patch       string `json:"patch"`
		ContentsURL string `json:"contents_url"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files", c.config.APIURL, owner, repo, number)
	if err = c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	for _, entry := range payload {
		if !reviewableExtensions[path.Ext(entry.Filename)] || entry.Status == "removed" {
			continue
		}
		content, cErr := c.fileContent(ctx, entry.ContentsURL)
		if cErr != nil {
			c.logger.Warn("skipping file without content",
				zap.String("file", entry.Filename), zap.Error(cErr))
			continue
		}
		files = append(files, analyzer.File{
			Name:       entry.Filename,
			Content:    content,
			Patch:      entry.Patch,
			AddedLines: addedLines(entry.Patch),
		})
	}
	c.logger.Info("changed files fetched",
		zap.String("repo", owner+"/"+repo), zap.Int("pr", number), zap.Int("files", len(files)))
	return files, nil
}

// addedLines counts insertions in the patch. GitHub returns bare hunks
// without file headers, which ParseHunks handles directly.
func addedLines(patch string) int {
	if patch == "" {
		return 0
	}
	hunks, err := diff.ParseHunks([]byte(patch))
	if err != nil {
		return 0
	}
	added := 0
	for _, hunk := range hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			if strings.HasPrefix(line, "+") {
				added++
			}
		}
	}
	return added
}

func (c *Client) fileContent(ctx context.Context, contentsURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, contentsURL, nil)
	if err != nil {
		return "", err
	}
	c.authorize(request)
	request.Header.Set("Accept", "application/vnd.github.v3.raw")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %s", contentsURL, response.Status)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(request)
	request.Header.Set("Accept", "application/vnd.github.v3+json")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, response.Status)
	}
	return json.NewDecoder(response.Body).Decode(target)
}

func (c *Client) authorize(request *http.Request) {
	if c.config.Token != "" {
		request.Header.Set("Authorization", "token "+c.config.Token)
	}
}
