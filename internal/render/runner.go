package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// CommandRunner executes an external program to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. The tail of stderr is attached to
// the returned error.
type ExecRunner struct {
	log zerolog.Logger
}

func NewExecRunner(log zerolog.Logger) *ExecRunner {
	return &ExecRunner{log: log}
}

const stderrTail = 2048

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Debug().Str("cmd", name).Strs("args", args).Msg("Running command")

	if err := cmd.Run(); err != nil {
		out := stderr.Bytes()
		if len(out) > stderrTail {
			out = out[len(out)-stderrTail:]
		}
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
