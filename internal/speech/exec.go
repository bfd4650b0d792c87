package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// lookBinary resolves bin on PATH, or as given when it is a path.
func lookBinary(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found: %v", ErrEngineUnavailable, bin, err)
	}
	return path, nil
}

// runCommand runs bin with args, feeding stdin, and folds stderr into the
// returned error.
func runCommand(ctx context.Context, bin string, args []string, stdin io.Reader) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", bin, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s failed: %w", bin, err)
		}
		return fmt.Errorf("%s failed: %w: %s", bin, err, msg)
	}
	return nil
}
