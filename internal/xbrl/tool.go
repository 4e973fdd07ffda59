package xbrl

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fact is one structured fact emitted by the external XBRL tool: a JSON array
// of these objects on stdout is the whole tool contract.
type Fact struct {
	Concept string `json:"concept"`
	Value   string `json:"value"`
	Context string `json:"context"`
	Unit    string `json:"unit"`
}

// FactExtractor produces the flat fact list for an XBRL instance document.
type FactExtractor interface {
	Extract(ctx context.Context, content string) ([]Fact, error)
}

// ToolConfig configures the external XBRL processor invocation.
type ToolConfig struct {
	// Path is the tool executable. Required.
	Path string

	// Args are passed before the instance-file path.
	Args []string

	// Timeout bounds the subprocess. Default: 60s.
	Timeout time.Duration

	// TempDir is where instance files are written. Default: os.TempDir().
	TempDir string
}

// ToolRunner invokes the external XBRL tool as a subprocess against a scoped
// temporary file. The temp file and any tool-generated log file are removed
// on every exit path, including timeout.
type ToolRunner struct {
	cfg ToolConfig
}

// NewToolRunner creates a ToolRunner. An empty Path is allowed at
// construction; Extract fails cleanly when the tool is not configured.
func NewToolRunner(cfg ToolConfig) *ToolRunner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &ToolRunner{cfg: cfg}
}

// Extract writes content to a private temp file, runs the tool with a hard
// timeout, and decodes the JSON fact array from stdout. Non-zero exit,
// timeout, or malformed output is an error for the caller to treat as a
// strategy failure.
func (t *ToolRunner) Extract(ctx context.Context, content string) ([]Fact, error) {
	if t.cfg.Path == "" {
		return nil, eris.New("xbrl: tool path not configured")
	}

	tmp, err := os.CreateTemp(t.cfg.TempDir, "fundscope-*.xbrl")
	if err != nil {
		return nil, eris.Wrap(err, "xbrl: create temp file")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
		// Some tool builds drop a sidecar log next to the instance file.
		_ = os.Remove(tmpPath + ".log")
	}()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrap(err, "xbrl: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "xbrl: close temp file")
	}

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	args := append(append([]string(nil), t.cfg.Args...), tmpPath)
	cmd := exec.CommandContext(runCtx, t.cfg.Path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, eris.Wrapf(runCtx.Err(), "xbrl: tool timed out after %s", t.cfg.Timeout)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: tool failed: %s", stderr.String())
	}

	var facts []Fact
	if err := json.Unmarshal(stdout.Bytes(), &facts); err != nil {
		return nil, eris.Wrap(err, "xbrl: malformed tool output")
	}
	if len(facts) == 0 {
		return nil, eris.New("xbrl: tool returned no facts")
	}

	zap.L().Debug("xbrl: tool run complete",
		zap.Int("facts", len(facts)),
		zap.Duration("elapsed", elapsed),
	)
	return facts, nil
}
