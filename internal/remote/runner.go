package remote

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"dropzone/internal/sshconfig"
)

// Runner executes a command on a remote endpoint and returns its stdout.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// SSHRunner runs commands through the ssh binary in batch mode.
type SSHRunner struct {
	binary         string
	host           sshconfig.Host
	connectTimeout int
}

// NewSSHRunner builds a runner for the given host. connectTimeoutSeconds
// bounds connection establishment; command duration is bounded by ctx.
func NewSSHRunner(binary string, host sshconfig.Host, connectTimeoutSeconds int) *SSHRunner {
	if strings.TrimSpace(binary) == "" {
		binary = "ssh"
	}
	if connectTimeoutSeconds <= 0 {
		connectTimeoutSeconds = 5
	}
	return &SSHRunner{binary: binary, host: host, connectTimeout: connectTimeoutSeconds}
}

// Args returns the ssh argument list for the given remote command.
func (r *SSHRunner) Args(command string) []string {
	args := make([]string, 0, 10)
	if r.host.HasIdentityFile() {
		args = append(args, "-i", r.host.IdentityFile)
	}
	args = append(args,
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout="+strconv.Itoa(r.connectTimeout),
		"-o", "StrictHostKeyChecking=no",
	)
	args = append(args, r.host.Target(), command)
	return args
}

// Run executes the command remotely, returning trimmed stdout.
func (r *SSHRunner) Run(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, r.Args(command)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("ssh %s: %w: %s", r.host.Name, err, detail)
		}
		return "", fmt.Errorf("ssh %s: %w", r.host.Name, err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}
