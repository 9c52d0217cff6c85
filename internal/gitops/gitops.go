// Package gitops versions a finanza project directory with git. Only the
// configuration and exports are tracked; the database is ignored.
package gitops

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoGit is returned when the git binary is not on PATH.
var ErrNoGit = errors.New("git not found on PATH")

// Author identifies who commits.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor signs commits made by finanza itself.
var DefaultAuthor = Author{Name: "Finanza", Email: "finanza@localhost"}

// Available reports whether git can be run.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if !Available() {
		return ErrNoGit
	}
	if _, err := run(dir, Author{}, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// Commit stages paths (everything when none are given) and commits them.
// It returns the short hash of the new commit.
func Commit(dir, message string, author Author, paths ...string) (string, error) {
	add := []string{"add", "-A"}
	if len(paths) > 0 {
		add = append([]string{"add", "--"}, paths...)
	}
	if _, err := run(dir, author, add...); err != nil {
		return "", err
	}
	if _, err := run(dir, author, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}
	hash, err := run(dir, author, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return hash, nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func run(dir string, author Author, args ...string) (string, error) {
	if author.Name != "" {
		args = append([]string{"-c", "user.name=" + author.Name, "-c", "user.email=" + author.Email}, args...)
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", firstVerb(args), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func firstVerb(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}
