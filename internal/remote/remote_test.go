package remote

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LocalPath(t *testing.T) {
	// Create a temp directory that exists
	dir := t.TempDir()

	src, err := Parse(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse_GitHubShorthand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "simple owner/repo",
			input:   "facebook/react",
			wantURL: "https://github.com/facebook/react",
			wantRef: "",
		},
		{
			name:    "with ref suffix",
			input:   "facebook/react@v18.2.0",
			wantURL: "https://github.com/facebook/react",
			wantRef: "v18.2.0",
		},
		{
			name:    "with branch ref",
			input:   "owner/repo@feature-branch",
			wantURL: "https://github.com/owner/repo",
			wantRef: "feature-branch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_FullURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "github.com without scheme",
			input:   "github.com/golang/go",
			wantURL: "https://github.com/golang/go",
			wantRef: "",
		},
		{
			name:    "https URL",
			input:   "https://github.com/kubernetes/kubernetes",
			wantURL: "https://github.com/kubernetes/kubernetes",
			wantRef: "",
		},
		{
			name:    "gitlab URL",
			input:   "https://gitlab.com/group/project",
			wantURL: "https://gitlab.com/group/project",
			wantRef: "",
		},
		{
			name:    "SSH URL",
			input:   "git@github.com:owner/repo.git",
			wantURL: "git@github.com:owner/repo.git",
			wantRef: "",
		},
		{
			name:    "SSH URL with ref",
			input:   "git@github.com:owner/repo.git@main",
			wantURL: "git@github.com:owner/repo.git",
			wantRef: "main",
		},
		{
			name:    "URL with ref",
			input:   "github.com/golang/go@go1.21.0",
			wantURL: "https://github.com/golang/go",
			wantRef: "go1.21.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"./src/app", "../lib/util", "/does/not/exist", "app.py", "a/b/c"} {
		src, err := Parse(input)
		require.NoError(t, err)
		assert.Nil(t, src, input)
	}
}

// newOrigin creates a local repository with one commit on master and a
// lightweight tag v1 pointing at it.
func newOrigin(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not available for local clones")
	}

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.py"), []byte("def add(a, b):\n    return a + b\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("cart.py")
	require.NoError(t, err)
	hash, err := wt.Commit("add cart", &git.CommitOptions{
		Author: &object.Signature{Name: "probe", Email: "probe@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	_, err = repo.CreateTag("v1", hash, nil)
	require.NoError(t, err)
	return dir, hash
}

func TestSource_Clone(t *testing.T) {
	origin, _ := newOrigin(t)

	src := &Source{URL: origin}
	require.NoError(t, src.Clone(context.Background(), io.Discard, false))
	defer src.Cleanup()

	require.NotEmpty(t, src.CloneDir)
	_, err := os.Stat(filepath.Join(src.CloneDir, ".git"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(src.CloneDir, "cart.py"))
	assert.NoError(t, err)
}

func TestSource_Clone_WithRef(t *testing.T) {
	origin, _ := newOrigin(t)

	src := &Source{URL: origin, Ref: "master"}
	require.NoError(t, src.Clone(context.Background(), io.Discard, false))
	defer src.Cleanup()

	repo, err := git.PlainOpen(src.CloneDir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "master", head.Name().Short())
}

func TestSource_Clone_Tag(t *testing.T) {
	origin, hash := newOrigin(t)

	src := &Source{URL: origin, Ref: "v1"}
	require.NoError(t, src.Clone(context.Background(), io.Discard, false))
	defer src.Cleanup()

	repo, err := git.PlainOpen(src.CloneDir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash())
}

func TestSource_Clone_Commit(t *testing.T) {
	origin, hash := newOrigin(t)

	src := &Source{URL: origin, Ref: hash.String()}
	require.NoError(t, src.Clone(context.Background(), io.Discard, true))
	defer src.Cleanup()

	repo, err := git.PlainOpen(src.CloneDir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash())
}

func TestSource_Clone_UnknownRef(t *testing.T) {
	origin, _ := newOrigin(t)

	src := &Source{URL: origin, Ref: "no-such-ref"}
	err := src.Clone(context.Background(), io.Discard, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a branch nor a tag")
	assert.Empty(t, src.CloneDir)
}

func TestSource_Cleanup(t *testing.T) {
	dir := t.TempDir()
	clone := filepath.Join(dir, "clone")
	require.NoError(t, os.MkdirAll(clone, 0o755))

	src := &Source{CloneDir: clone}
	src.Cleanup()

	_, err := os.Stat(clone)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, src.CloneDir)

	src.Cleanup()
}
