// Package scp copies files to a remote host through the scp binary.
package scp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dropzone/internal/sshconfig"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

// Request describes one transfer.
type Request struct {
	Host        sshconfig.Host
	Files       []string
	Destination string
	// Password enables sshpass-based authentication when the host has no
	// usable identity file.
	Password string
	// CreateDestination runs a remote mkdir -p before the copy.
	CreateDestination bool
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLookPath overrides binary resolution (primarily for tests).
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(c *Client) {
		if lookPath != nil {
			c.lookPath = lookPath
		}
	}
}

// Client wraps scp/ssh invocations for file transfers.
type Client struct {
	scpBinary     string
	sshBinary     string
	sshpassBinary string
	copyTimeout   time.Duration
	exec          Executor
	lookPath      func(string) (string, error)
}

// New constructs a transfer client.
func New(scpBinary, sshBinary, sshpassBinary string, copyTimeoutSeconds int, opts ...Option) (*Client, error) {
	if strings.TrimSpace(scpBinary) == "" {
		return nil, errors.New("scp binary required")
	}
	if strings.TrimSpace(sshBinary) == "" {
		return nil, errors.New("ssh binary required")
	}
	timeout := time.Duration(copyTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	client := &Client{
		scpBinary:     scpBinary,
		sshBinary:     sshBinary,
		sshpassBinary: sshpassBinary,
		copyTimeout:   timeout,
		exec:          commandExecutor{},
		lookPath:      exec.LookPath,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Copy transfers the requested files. When CreateDestination is set the
// destination directory is created first; a failure there aborts the copy.
func (c *Client) Copy(ctx context.Context, req Request) error {
	if len(req.Files) == 0 {
		return errors.New("no files to copy")
	}
	if strings.TrimSpace(req.Destination) == "" {
		return errors.New("destination required")
	}

	usePassword := req.Password != "" && !req.Host.HasIdentityFile()
	if usePassword {
		if _, err := c.lookPath(c.sshpassBinary); err != nil {
			return errors.New("password authentication requires sshpass (brew install sshpass), or configure an IdentityFile for the host")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.copyTimeout)
	defer cancel()

	if req.CreateDestination {
		if err := c.ensureDestination(ctx, req, usePassword); err != nil {
			return fmt.Errorf("create destination: %w", err)
		}
	}

	binary, args := c.command(c.scpBinary, c.scpArgs(req), req, usePassword)
	if err := c.exec.Run(ctx, binary, args); err != nil {
		return fmt.Errorf("scp to %s: %w", req.Host.Name, err)
	}
	return nil
}

func (c *Client) ensureDestination(ctx context.Context, req Request, usePassword bool) error {
	sshArgs := make([]string, 0, 8)
	if req.Host.HasIdentityFile() {
		sshArgs = append(sshArgs, "-i", req.Host.IdentityFile)
	}
	sshArgs = append(sshArgs,
		"-o", "StrictHostKeyChecking=no",
		"-o", "ConnectTimeout=10",
		req.Host.Target(),
		"mkdir -p "+req.Destination,
	)
	binary, args := c.command(c.sshBinary, sshArgs, req, usePassword)
	return c.exec.Run(ctx, binary, args)
}

func (c *Client) scpArgs(req Request) []string {
	args := []string{"-r"}
	if req.Host.HasIdentityFile() {
		args = append(args, "-i", req.Host.IdentityFile)
	}
	args = append(args,
		"-o", "StrictHostKeyChecking=no",
		"-o", "ConnectTimeout=10",
	)
	args = append(args, req.Files...)
	return append(args, req.Host.Target()+":"+req.Destination)
}

// command wraps the invocation with sshpass when password auth is in play.
func (c *Client) command(binary string, args []string, req Request, usePassword bool) (string, []string) {
	if !usePassword {
		return binary, args
	}
	wrapped := append([]string{"-p", req.Password, binary}, args...)
	return c.sshpassBinary, wrapped
}
