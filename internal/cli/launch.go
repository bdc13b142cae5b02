package cli

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ClaudeLauncher returns a Launch function that runs the claude CLI in
// print mode with the composed prompt, attached to the given streams.
func ClaudeLauncher(in io.Reader, out, errOut io.Writer) func(ctx context.Context, prompt string) error {
	return func(ctx context.Context, prompt string) error {
		path, err := exec.LookPath("claude")
		if err != nil {
			return fmt.Errorf("claude CLI not found on PATH")
		}
		cmd := exec.CommandContext(ctx, path, "-p", prompt)
		cmd.Stdin = in
		cmd.Stdout = out
		cmd.Stderr = errOut
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("running claude: %w", err)
		}
		return nil
	}
}
