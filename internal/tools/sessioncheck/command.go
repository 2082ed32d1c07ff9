package sessioncheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/storefront-session-gateway/internal/tools/common"
	"github.com/sandeepkv93/storefront-session-gateway/internal/tools/ui"
)

type options struct {
	baseURL string
	timeout time.Duration
	ci      bool
}

// NewRootCommand builds the gate probe: it walks a deployed gateway
// through the anonymous navigation paths and checks each guard answer.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "sessioncheck", Short: "Probe the session guard of a running gateway"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "gateway base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Verify health, public bypass, anonymous redirect and session endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "sessioncheck run", func(ctx context.Context) ([]string, error) {
				return probe(ctx, opts)
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "sessioncheck run", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

type check struct {
	name     string
	method   string
	path     string
	expected int
}

func probe(ctx context.Context, opts *options) ([]string, error) {
	checks := []check{
		{name: "liveness", method: http.MethodGet, path: "/health/live", expected: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/health/ready", expected: http.StatusOK},
		{name: "public bypass", method: http.MethodGet, path: "/login", expected: http.StatusOK},
		{name: "anonymous redirect", method: http.MethodGet, path: "/ventas", expected: http.StatusFound},
		{name: "anonymous me", method: http.MethodGet, path: "/me", expected: http.StatusUnauthorized},
		{name: "anonymous inventory", method: http.MethodGet, path: "/me/inventory", expected: http.StatusUnauthorized},
	}

	client := &http.Client{
		Timeout: opts.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var details []string
	for _, c := range checks {
		status, err := hit(ctx, client, opts.baseURL, c.method, c.path)
		if err != nil {
			return details, fmt.Errorf("%s: %w", c.name, err)
		}
		if status != c.expected {
			return details, fmt.Errorf("%s: expected %d, got %d", c.name, c.expected, status)
		}
		details = append(details, fmt.Sprintf("%s: %d", c.name, status))
	}
	return details, nil
}

func hit(ctx context.Context, client *http.Client, base, method, path string) (int, error) {
	u, err := url.Parse(base)
	if err != nil {
		return 0, err
	}
	rel, err := url.Parse(path)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.ResolveReference(rel).String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}
