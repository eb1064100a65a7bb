// Package probe performs bounded-time health probes against the core service.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultHealthPath is the core service's health endpoint.
const DefaultHealthPath = "/api/v1/health"

// DefaultTimeout bounds a single probe when none is configured.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of the health response is read.
const maxBody = 64 << 10

// Health is the tri-state outcome of a health evaluation.
type Health int

const (
	// HealthUnknown means no answer was obtained in time.
	HealthUnknown Health = iota
	// HealthHealthy means the service answered with a success-class response.
	HealthHealthy
	// HealthUnreachable means the service refused, failed, or answered non-2xx.
	HealthUnreachable
)

func (h Health) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Result describes a single probe.
type Result struct {
	Health     Health
	URL        string
	StatusCode int
	Latency    time.Duration
	// Reported is the "status" field of a JSON health body, if present.
	Reported string
	// Version is the "version" field of a JSON health body, if present.
	Version string
	// Err holds the failure cause for logging. It is never returned as an error.
	Err error
}

// OK reports whether the probe found the service healthy.
func (r Result) OK() bool {
	return r.Health == HealthHealthy
}

// Prober issues health requests. The zero value is not usable; call New.
type Prober struct {
	client  *http.Client
	path    string
	timeout time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithPath overrides the health endpoint path.
func WithPath(path string) Option {
	return func(p *Prober) {
		if path != "" {
			p.path = path
		}
	}
}

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client used for probes.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{
		client:  &http.Client{},
		path:    DefaultHealthPath,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HealthURL joins a base address and the health path.
func (p *Prober) HealthURL(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("empty core address")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid core address %q: %w", base, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid core address %q: missing host", base)
	}
	return strings.TrimRight(u.String(), "/") + "/" + strings.TrimLeft(p.path, "/"), nil
}

// Probe checks base's health endpoint. It never returns an error: every
// failure is folded into the Result.
func (p *Prober) Probe(ctx context.Context, base string) Result {
	target, err := p.HealthURL(base)
	if err != nil {
		return Result{Health: HealthUnreachable, URL: base, Err: err}
	}
	res := Result{URL: target}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		res.Health = HealthUnreachable
		res.Err = fmt.Errorf("create request: %w", err)
		return res
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			res.Health = HealthUnknown
		} else {
			res.Health = HealthUnreachable
		}
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Health = HealthUnreachable
		res.Err = fmt.Errorf("health endpoint returned %d", resp.StatusCode)
		return res
	}
	res.Health = HealthHealthy

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if gjson.ValidBytes(body) {
		res.Reported = gjson.GetBytes(body, "status").String()
		res.Version = gjson.GetBytes(body, "version").String()
	}
	return res
}

// Reachable reduces Probe to a boolean.
func (p *Prober) Reachable(ctx context.Context, base string) bool {
	return p.Probe(ctx, base).OK()
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
