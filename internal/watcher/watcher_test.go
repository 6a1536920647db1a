package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/storage"
)

type stubClient struct{}

func (stubClient) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return "", errors.New("not scripted")
}

func (stubClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not scripted")
}

func (stubClient) Available(ctx context.Context) bool { return false }
func (stubClient) Name() string                       { return "stub" }

func newTestWatcher(t *testing.T, root string) (*Watcher, *index.Index) {
	t.Helper()
	logger := zap.NewNop()
	idx, err := index.New(storage.NewMemoryStore(), stubClient{}, logger, index.Options{Dimensions: 16})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	processor := docproc.NewProcessor(docproc.NewChunker(50, 10), idx, logger)
	w := New([]string{root}, []string{".txt"}, processor, logger)
	w.debounce = 20 * time.Millisecond
	return w, idx
}

func waitForCount(t *testing.T, idx *index.Index, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if idx.Stats(context.Background()).Count == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("index count never reached %d (have %d)",
		want, idx.Stats(context.Background()).Count)
}

func TestWatcherIngestsNewFile(t *testing.T) {
	root := t.TempDir()
	w, idx := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(root, "policy.txt")
	if err := os.WriteFile(path, []byte("knee surgery is covered"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitForCount(t, idx, 1)
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	w, idx := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "image.png"), []byte("binary"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "note.txt"), []byte("plain note"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitForCount(t, idx, 1)

	// Give the png event time to (wrongly) land before checking it didn't.
	time.Sleep(100 * time.Millisecond)
	if got := idx.Stats(context.Background()).Count; got != 1 {
		t.Errorf("count = %d, want 1 (png must be ignored)", got)
	}
}

func TestWatcherRemovesDeletedFile(t *testing.T) {
	root := t.TempDir()
	w, idx := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(root, "policy.txt")
	if err := os.WriteFile(path, []byte("maternity leave policy"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitForCount(t, idx, 1)

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	waitForCount(t, idx, 0)
}

func TestWatcherSyncExisting(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "existing.txt"), []byte("already here"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w, idx := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	w.SyncExisting(ctx)
	waitForCount(t, idx, 1)
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-yet-created")
	w, _ := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start with missing root: %v", err)
	}
	w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root was not created: %v", err)
	}
}

func TestMatchExtension(t *testing.T) {
	w := &Watcher{extensions: []string{".txt", "md"}}
	cases := []struct {
		path string
		want bool
	}{
		{"a/b/doc.txt", true},
		{"a/b/DOC.TXT", true},
		{"readme.md", true},
		{"image.png", false},
		{"noext", false},
	}
	for _, tc := range cases {
		if got := w.matchExtension(tc.path); got != tc.want {
			t.Errorf("matchExtension(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
	open := &Watcher{}
	if !open.matchExtension("anything.bin") {
		t.Error("empty extension list matches everything")
	}
}
