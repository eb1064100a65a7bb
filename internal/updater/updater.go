// Package updater checks a release feed for a newer shell version.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prism-io/prism-shell/internal/buildinfo"
)

// ReleaseInfo is the subset of a GitHub-style release the checker reads.
type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result is the outcome of an update check.
type Result struct {
	HasUpdate      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	CheckedAt      time.Time
}

// Checker compares the running version with the latest release.
type Checker struct {
	feedURL string
	current string
	client  *http.Client

	mu   sync.RWMutex
	last *Result
}

// NewChecker creates a Checker. An empty feedURL always reports no update.
func NewChecker(feedURL string) *Checker {
	return &Checker{
		feedURL: strings.TrimSpace(feedURL),
		current: buildinfo.Version,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Check queries the feed. Download and installation are not handled here.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	res, err := c.check(ctx)
	if err != nil {
		return Result{}, err
	}
	res.CheckedAt = time.Now().UTC()

	c.mu.Lock()
	c.last = &res
	c.mu.Unlock()
	return res, nil
}

func (c *Checker) check(ctx context.Context) (Result, error) {
	noUpdate := Result{CurrentVersion: c.current, LatestVersion: c.current}
	if c.feedURL == "" {
		return noUpdate, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "prism-shell/"+c.current)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No releases yet
		return noUpdate, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("release feed returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Result{}, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	latest, err := ParseSemver(latestVersion)
	if err != nil {
		return Result{}, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
	}

	res := Result{
		CurrentVersion: c.current,
		LatestVersion:  latest.String(),
		ReleaseURL:     release.HTMLURL,
	}
	current, err := ParseSemver(c.current)
	if err != nil {
		// "dev" and other unparseable builds count as older
		res.HasUpdate = true
		return res, nil
	}
	res.HasUpdate = current.LessThan(latest)
	return res, nil
}

// Last returns the most recent successful check.
func (c *Checker) Last() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// CheckInBackground runs one check and logs the outcome.
func (c *Checker) CheckInBackground(ctx context.Context) {
	go func() {
		res, err := c.Check(ctx)
		if err != nil {
			log.Printf("[update] Check failed: %v", err)
			return
		}
		if res.HasUpdate {
			log.Printf("[update] Update available: %s → %s", res.CurrentVersion, res.LatestVersion)
		} else {
			log.Printf("[update] Up to date (%s)", res.CurrentVersion)
		}
	}()
}
