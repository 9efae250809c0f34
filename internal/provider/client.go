package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

const (
	defaultBinary  = "yt-dlp"
	defaultTimeout = 10 * time.Minute
)

// Client is the contract the sync engine holds against the extraction tool.
type Client interface {
	// Version reports the tool's version string, used to gate fingerprint
	// migrations across tool upgrades.
	Version(ctx context.Context) (string, error)
	// List enumerates a source's current content without downloading.
	List(ctx context.Context, url string) (Listing, error)
	// Fetch downloads one item. The filter runs before the download starts;
	// a non-empty skip reason aborts the fetch without error.
	Fetch(ctx context.Context, item Item, filter MatchFilter) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default yt-dlp binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds each subprocess invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithOutputTemplate sets the yt-dlp output template for downloads.
func WithOutputTemplate(template string) Option {
	return func(c *CLI) {
		if template != "" {
			c.outputTemplate = template
		}
	}
}

// WithDownloadDir sets the directory downloads land in.
func WithDownloadDir(dir string) Option {
	return func(c *CLI) {
		if dir != "" {
			c.downloadDir = dir
		}
	}
}

// WithExtraArgs appends passthrough arguments to every invocation.
func WithExtraArgs(args ...string) Option {
	return func(c *CLI) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// CLI wraps the yt-dlp command-line tool.
type CLI struct {
	binary         string
	timeout        time.Duration
	outputTemplate string
	downloadDir    string
	extraArgs      []string
	byName         map[string]string
	logger         *slog.Logger
}

// NewCLI constructs a subprocess client. The extractor rules supply the
// public-name to key mapping used when normalizing listing entries.
func NewCLI(extractors []Extractor, logger *slog.Logger, opts ...Option) *CLI {
	cli := &CLI{
		binary:  defaultBinary,
		timeout: defaultTimeout,
		byName:  KeysByName(extractors),
		logger:  logger.With("component", "provider"),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Version runs the tool with --version.
func (c *CLI) Version(ctx context.Context) (string, error) {
	stdout, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(string(stdout))
	if version == "" {
		return "", &FetchError{URL: "", Err: errors.New("empty version output")}
	}
	return version, nil
}

// List enumerates a source URL with a flat, non-downloading listing call.
func (c *CLI) List(ctx context.Context, url string) (Listing, error) {
	stdout, err := c.run(ctx, "--flat-playlist", "-J", "--no-warnings", url)
	if err != nil {
		return Listing{}, err
	}
	return c.parseListing(url, stdout)
}

// Fetch downloads one item after consulting the filter.
func (c *CLI) Fetch(ctx context.Context, item Item, filter MatchFilter) error {
	if filter != nil {
		if reason := filter(item); reason != "" {
			c.logger.Debug("download vetoed", "key", item.Key, "data", item.Data, "reason", reason)
			return nil
		}
	}
	if item.URL == "" {
		return &FetchError{URL: "", Err: fmt.Errorf("item %s %s has no display url", item.Key, item.Data)}
	}

	args := []string{"--no-warnings"}
	if c.outputTemplate != "" {
		args = append(args, "-o", c.outputTemplate)
	}
	if c.downloadDir != "" {
		args = append(args, "-P", c.downloadDir)
	}
	args = append(args, item.URL)
	if _, err := c.run(ctx, args...); err != nil {
		return err
	}
	return nil
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	full := append(append([]string{}, c.extraArgs...), args...)
	cmd := commandContext(runCtx, c.binary, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &FetchError{URL: lastArg(args), Err: fmt.Errorf("timed out after %s", c.timeout)}
		}
		detail := firstLine(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, &FetchError{URL: lastArg(args), Err: fmt.Errorf("%s: %s", c.binary, detail)}
	}
	return stdout.Bytes(), nil
}

func (c *CLI) parseListing(url string, data []byte) (Listing, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return Listing{}, &FetchError{URL: url, Err: fmt.Errorf("parse listing output: %w", err)}
	}

	entries := []map[string]any{root}
	if rootType, _ := root["_type"].(string); rootType == "playlist" {
		entries = entries[:0]
		raw, _ := root["entries"].([]any)
		for _, value := range raw {
			if entry, ok := value.(map[string]any); ok {
				entries = append(entries, entry)
			}
		}
	}

	var listing Listing
	for _, entry := range entries {
		item, err := Normalize(entry, c.byName)
		if err != nil {
			listing.Skipped = append(listing.Skipped, err.Error())
			continue
		}
		listing.Items = append(listing.Items, item)
	}
	return listing, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}

func lastArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}
