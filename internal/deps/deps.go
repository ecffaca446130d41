// Package deps inspects the external binaries dropzone shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"dropzone/internal/config"
)

// Requirement defines an external dependency dropzone relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the configured tool paths.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ssh", Command: cfg.Tools.SSH, Description: "Remote directory listing and destination setup"},
		{Name: "scp", Command: cfg.Tools.SCP, Description: "File transfer to remote hosts"},
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Description: "Metadata tag writing"},
		{Name: "fpcalc", Command: cfg.Tools.FPCalc, Description: "Chromaprint audio fingerprinting"},
		{Name: "sshpass", Command: cfg.Tools.SSHPass, Description: "Password authentication for transfers", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
