// Package remote resolves repository references given on the command line
// and clones them for analysis.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

var commitHash = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// SSH URLs carry an @ before the host, so the ref separator is the
	// last @ after the host part.
	if strings.HasPrefix(path, "git@") {
		url, ref := splitRef(path, strings.Index(path, ":"))
		return &Source{URL: url, Ref: ref}, nil
	}

	url, ref := splitRef(path, 0)
	switch {
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		return &Source{URL: url, Ref: ref}, nil
	case isHostPath(url):
		return &Source{URL: "https://" + url, Ref: ref}, nil
	case isGitHubShorthand(url):
		return &Source{URL: "https://github.com/" + url, Ref: ref}, nil
	}
	return nil, nil
}

// splitRef splits "url@ref" on the last @ past offset.
func splitRef(path string, offset int) (string, string) {
	if offset < 0 {
		offset = 0
	}
	if idx := strings.LastIndex(path[offset:], "@"); idx != -1 {
		idx += offset
		return path[:idx], path[idx+1:]
	}
	return path, ""
}

// isHostPath returns true for host/owner/repo without a scheme.
func isHostPath(path string) bool {
	parts := strings.Split(path, "/")
	return len(parts) >= 3 &&
		strings.Contains(parts[0], ".") && !strings.HasPrefix(parts[0], ".") &&
		parts[1] != "" && parts[2] != ""
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash indicates a domain or a relative path.
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a temp directory and sets CloneDir.
// A named ref is tried as a branch, then as a tag. A commit SHA needs the
// full history, so shallow is ignored for it.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	if commitHash.MatchString(s.Ref) {
		return s.cloneAtCommit(ctx, progress)
	}

	if s.Ref == "" {
		return s.clone(ctx, s.options(progress, shallow, ""))
	}

	err := s.clone(ctx, s.options(progress, shallow, plumbing.NewBranchReferenceName(s.Ref)))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	if tagErr := s.clone(ctx, s.options(progress, shallow, plumbing.NewTagReferenceName(s.Ref))); tagErr != nil {
		return fmt.Errorf("ref %q is neither a branch nor a tag of %s: %w", s.Ref, s.URL, errors.Join(err, tagErr))
	}
	return nil
}

func (s *Source) options(progress io.Writer, shallow bool, ref plumbing.ReferenceName) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:      s.URL,
		Progress: progress,
	}
	if shallow {
		opts.Depth = 1
	}
	if ref != "" {
		opts.ReferenceName = ref
		opts.SingleBranch = true
	}
	return opts
}

func (s *Source) clone(ctx context.Context, opts *git.CloneOptions) error {
	dir, err := os.MkdirTemp("", "probe-clone-*")
	if err != nil {
		return fmt.Errorf("create clone directory: %w", err)
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	s.CloneDir = dir
	return nil
}

func (s *Source) cloneAtCommit(ctx context.Context, progress io.Writer) error {
	if err := s.clone(ctx, s.options(progress, false, "")); err != nil {
		return err
	}

	repo, err := git.PlainOpen(s.CloneDir)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("open clone: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(s.Ref)}); err != nil {
		s.Cleanup()
		return fmt.Errorf("checkout %s: %w", s.Ref, err)
	}
	return nil
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		_ = os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
