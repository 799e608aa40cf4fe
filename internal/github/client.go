// Package github commits files to a repository through the GitHub Contents
// API. Every write first looks up the current blob sha so that GitHub rejects
// the commit if the file changed in between.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/metrics"
)

const DefaultAPIURL = "https://api.github.com"

type Config struct {
	APIURL string
	Token  string
	Repo   string // owner/name
	Branch string
	// Timeout bounds each HTTP request. Zero means 15s.
	Timeout time.Duration
}

// Client talks to the Contents API of a single repository and branch.
type Client struct {
	apiURL string
	token  string
	repo   string
	branch string
	http   *http.Client
}

func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Token == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: credentials not configured")
	}
	if strings.Count(cfg.Repo, "/") != 1 {
		return nil, fmt.Errorf("github: repo must be owner/name, got %q", cfg.Repo)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		token:  cfg.Token,
		repo:   cfg.Repo,
		branch: cfg.Branch,
		http:   httpClient,
	}, nil
}

type contentResponse struct {
	SHA string `json:"sha"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content,omitempty"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// Commit creates or replaces repoPath with content as a single commit.
func (c *Client) Commit(ctx context.Context, repoPath string, content []byte, message string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemoteCommit(http.MethodPut, time.Since(start).Seconds(), err) }()

	sha, _, err := c.lookupSHA(ctx, repoPath)
	if err != nil {
		return err
	}
	if message == "" {
		message = "Update " + repoPath
	}
	body := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	}
	return c.write(ctx, http.MethodPut, repoPath, body)
}

// Delete removes repoPath in a single commit. A file that does not exist on
// the branch is treated as already deleted.
func (c *Client) Delete(ctx context.Context, repoPath string, message string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemoteCommit(http.MethodDelete, time.Since(start).Seconds(), err) }()

	sha, found, err := c.lookupSHA(ctx, repoPath)
	if err != nil || !found {
		return err
	}
	if message == "" {
		message = "Delete " + repoPath
	}
	return c.write(ctx, http.MethodDelete, repoPath, writeRequest{Message: message, Branch: c.branch, SHA: sha})
}

func (c *Client) lookupSHA(ctx context.Context, repoPath string) (string, bool, error) {
	u := c.contentsURL(repoPath) + "?ref=" + url.QueryEscape(c.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, &catalog.RemoteWriteError{Path: repoPath, Err: err}
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, &catalog.RemoteWriteError{Path: repoPath, Err: fmt.Errorf("fetch current sha: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var cr contentResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return "", false, &catalog.RemoteWriteError{Path: repoPath, Status: resp.StatusCode, Err: fmt.Errorf("decode contents: %w", err)}
		}
		return cr.SHA, cr.SHA != "", nil
	case http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, &catalog.RemoteWriteError{Path: repoPath, Status: resp.StatusCode, Message: remoteMessage(resp.Body)}
	}
}

func (c *Client) write(ctx context.Context, method, repoPath string, body writeRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &catalog.RemoteWriteError{Path: repoPath, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.contentsURL(repoPath), bytes.NewReader(payload))
	if err != nil {
		return &catalog.RemoteWriteError{Path: repoPath, Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return &catalog.RemoteWriteError{Path: repoPath, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg := remoteMessage(resp.Body)
	if isConflict(resp.StatusCode, msg) {
		return &catalog.RemoteConflictError{Path: repoPath, Message: msg}
	}
	return &catalog.RemoteWriteError{Path: repoPath, Status: resp.StatusCode, Message: msg}
}

func (c *Client) contentsURL(repoPath string) string {
	segments := strings.Split(strings.Trim(path.Clean("/"+repoPath), "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.apiURL, c.repo, strings.Join(segments, "/"))
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "app-catalog")
}

func remoteMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return "Failed to commit to GitHub"
	}
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Message != "" {
		return er.Message
	}
	return strings.TrimSpace(string(data))
}

// GitHub answers 409 when the supplied sha is stale, and 422 when a sha is
// missing for an existing file.
func isConflict(status int, msg string) bool {
	if status == http.StatusConflict {
		return true
	}
	return status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "sha")
}

// Scoped prefixes every path with a directory inside the repository so that a
// Client can serve as a catalog.Committer for one subtree.
type Scoped struct {
	Client *Client
	Prefix string
}

func (s Scoped) Commit(ctx context.Context, name string, content []byte, message string) error {
	return s.Client.Commit(ctx, path.Join(s.Prefix, name), content, message)
}

func (s Scoped) Delete(ctx context.Context, name string, message string) error {
	return s.Client.Delete(ctx, path.Join(s.Prefix, name), message)
}
