// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"testing"
	"time"
)

const testTimeout = 5 * time.Second

func startWatcher(t *testing.T, cfg Config) <-chan []string {
	t.Helper()
	calls := make(chan []string, 8)
	cfg.Debounce = 50 * time.Millisecond
	cfg.OnChange = func(_ context.Context, changed []string) error {
		calls <- changed
		return nil
	}
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	return calls
}

func waitCall(t *testing.T, calls <-chan []string) []string {
	t.Helper()
	select {
	case c := <-calls:
		return c
	case <-time.After(testTimeout):
		t.Fatal("no callback before timeout")
		return nil
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Root: t.TempDir(), Patterns: []string{"[a"}}); err == nil {
		t.Error("invalid watch pattern should fail")
	}
	if _, err := New(Config{Root: t.TempDir(), Ignore: []string{"[a"}}); err == nil {
		t.Error("invalid ignore pattern should fail")
	}
}

func TestIgnoredAndMatches(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir(), Patterns: []string{"**/*.xtext"}, Ignore: []string{"**/build/**"}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		rel     string
		ignored bool
		matches bool
	}{
		{"grammar/My.xtext", false, true},
		{"My.xtext", false, true},
		{"dsl/build/src-gen/main/java/A.java", true, false},
		{"dsl/build", true, false},
		{".git/HEAD", true, false},
		{".genlayout/state/x.properties", true, false},
		{"notes.txt", false, false},
	}
	for _, tt := range tests {
		if got := w.Ignored(tt.rel); got != tt.ignored {
			t.Errorf("Ignored(%q) = %v, want %v", tt.rel, got, tt.ignored)
		}
		if got := w.Matches(tt.rel); got != tt.matches {
			t.Errorf("Matches(%q) = %v, want %v", tt.rel, got, tt.matches)
		}
	}
}

func TestRun_TriggersOnMatchingChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calls := startWatcher(t, Config{Root: root, Patterns: []string{"**/*.xtext"}})

	if err := os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "My.xtext"), []byte("grammar"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := waitCall(t, calls); !slices.Equal(got, []string{"My.xtext"}) {
		t.Errorf("changed = %v, want [My.xtext]", got)
	}
}

func TestRun_NewDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calls := startWatcher(t, Config{Root: root, Patterns: []string{"**/*.xtext"}})

	sub := filepath.Join(root, "grammar")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(testTimeout)
	for i := 0; time.Now().Before(deadline); i++ {
		// The directory may be registered after the first write lands.
		if err := os.WriteFile(filepath.Join(sub, "A.xtext"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case got := <-calls:
			if !slices.Contains(got, "grammar/A.xtext") {
				t.Errorf("changed = %v", got)
			}
			return
		case <-time.After(200 * time.Millisecond):
		}
	}
	t.Fatal("no callback for a file in a new directory")
}

func TestRun_Twice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v", err)
	}
}

func TestDefaultIgnores_Copy(t *testing.T) {
	t.Parallel()

	d := DefaultIgnores()
	d[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	if isFatalFsnotifyError(errors.New("transient")) {
		t.Error("plain errors are not fatal")
	}
	if !isFatalFsnotifyError(syscall.EMFILE) && !isFatalFsnotifyError(syscall.Errno(4)) {
		t.Error("descriptor exhaustion should be fatal")
	}
}
