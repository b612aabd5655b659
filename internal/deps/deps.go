// Package deps locates the external programs motioncomic hands work to:
// RAR extractors for CBR archives and ffmpeg for rendering a plan.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Tool is an external program with interchangeable candidate commands.
// Candidates are tried in order; bare names are looked up on PATH.
type Tool struct {
	Name       string
	Purpose    string
	Optional   bool
	Candidates []string
}

// Status is the outcome of locating a Tool. Command holds the resolved
// path when Available, otherwise the first candidate tried.
type Status struct {
	Name      string
	Purpose   string
	Optional  bool
	Available bool
	Command   string
	Detail    string
}

// LocateAll locates every tool, preserving order.
func LocateAll(tools []Tool) []Status {
	out := make([]Status, 0, len(tools))
	for _, tool := range tools {
		out = append(out, Locate(tool))
	}
	return out
}

// Locate resolves the first candidate of tool that is an executable. The
// archive loader walks RAR extractors in the same order.
func Locate(tool Tool) Status {
	status := Status{Name: tool.Name, Purpose: strings.TrimSpace(tool.Purpose), Optional: tool.Optional}

	var tried []string
	for _, candidate := range tool.Candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		tried = append(tried, candidate)
		if resolved, ok := resolve(candidate); ok {
			status.Command = resolved
			status.Available = true
			return status
		}
	}

	switch len(tried) {
	case 0:
		status.Detail = "command not configured"
	case 1:
		status.Command = tried[0]
		status.Detail = fmt.Sprintf("%q not found", tried[0])
	default:
		status.Command = tried[0]
		status.Detail = fmt.Sprintf("none of %s found", strings.Join(tried, ", "))
	}
	return status
}

func resolve(candidate string) (string, bool) {
	if strings.ContainsRune(candidate, os.PathSeparator) {
		info, err := os.Stat(candidate)
		return candidate, err == nil && isExecutable(info)
	}
	path, err := exec.LookPath(candidate)
	return path, err == nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
