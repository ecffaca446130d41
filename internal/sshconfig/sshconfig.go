// Package sshconfig extracts host entries from an OpenSSH client
// configuration file.
package sshconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"dropzone/internal/config"
)

// Host is a single usable Host block from ~/.ssh/config.
type Host struct {
	Name         string
	HostName     string
	User         string
	IdentityFile string
}

// Address returns the dial target for the host, preferring HostName.
func (h Host) Address() string {
	if h.HostName != "" {
		return h.HostName
	}
	return h.Name
}

// Target returns the ssh/scp destination string, including the user when set.
func (h Host) Target() string {
	if h.User != "" {
		return h.User + "@" + h.Address()
	}
	return h.Address()
}

// HasIdentityFile reports whether the host names an identity file that exists.
func (h Host) HasIdentityFile() bool {
	if h.IdentityFile == "" {
		return false
	}
	info, err := os.Stat(h.IdentityFile)
	return err == nil && !info.IsDir()
}

// Parse reads the config file at path and returns its concrete host entries.
// Wildcard patterns are skipped; a missing file yields an empty list. Only
// the first occurrence of a keyword within a block is honored, matching
// OpenSSH semantics.
func Parse(path string) ([]Host, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ssh config: %w", err)
	}
	defer file.Close()

	var hosts []Host
	var current *Host

	flush := func() {
		if current != nil {
			hosts = append(hosts, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyword, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		if strings.EqualFold(keyword, "Host") {
			flush()
			name := unquote(value)
			if name == "" || strings.ContainsAny(name, "*?") {
				continue
			}
			current = &Host{Name: name}
			continue
		}

		if current == nil {
			continue
		}
		switch {
		case strings.EqualFold(keyword, "HostName") && current.HostName == "":
			current.HostName = unquote(value)
		case strings.EqualFold(keyword, "User") && current.User == "":
			current.User = unquote(value)
		case strings.EqualFold(keyword, "IdentityFile") && current.IdentityFile == "":
			expanded, err := config.ExpandPath(unquote(value))
			if err == nil {
				current.IdentityFile = expanded
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ssh config: %w", err)
	}
	flush()

	return hosts, nil
}

// splitDirective separates "Keyword value" or "Keyword=value" lines.
func splitDirective(line string) (keyword, value string, ok bool) {
	if i := strings.IndexAny(line, " \t="); i > 0 {
		return line[:i], strings.TrimSpace(strings.TrimLeft(line[i:], " \t=")), true
	}
	return "", "", false
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return value
}

// Find returns the host with the given name.
func Find(hosts []Host, name string) (Host, bool) {
	for _, h := range hosts {
		if h.Name == name {
			return h, true
		}
	}
	return Host{}, false
}
