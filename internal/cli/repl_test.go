package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/JayabrataBasu/VeridicalDB/internal/config"
	"github.com/JayabrataBasu/VeridicalDB/internal/logger"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
)

func testREPL(t *testing.T) *REPL {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	return NewREPL(cfg, logger.NewNop())
}

func widgetColumns() []catalog.Column {
	return []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	}
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever it wrote, the way the teacher's REPL tests capture an injected
// io.Writer — this REPL prints straight to stdout, so the test pipes it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestProcessCommandExitVariants(t *testing.T) {
	r := testREPL(t)
	for _, in := range []string{"EXIT", "exit", "QUIT", "\\Q"} {
		if got := r.processCommand(in); got != commandExit {
			t.Errorf("processCommand(%q) = %v, want commandExit", in, got)
		}
	}
}

func TestProcessCommandHelp(t *testing.T) {
	r := testREPL(t)
	out := captureStdout(t, func() {
		if got := r.processCommand("HELP"); got != commandOK {
			t.Errorf("processCommand(HELP) = %v, want commandOK", got)
		}
	})
	if !bytes.Contains([]byte(out), []byte("SELECT")) {
		t.Errorf("HELP output = %q, want it to mention SELECT", out)
	}
}

func TestProcessCommandUnknown(t *testing.T) {
	r := testREPL(t)
	if got := r.processCommand("FROBNICATE"); got != commandError {
		t.Errorf("processCommand(FROBNICATE) = %v, want commandError", got)
	}
}

func TestProcessCommandTransactionsAreStubbed(t *testing.T) {
	r := testREPL(t)
	for _, in := range []string{"BEGIN", "COMMIT", "ROLLBACK"} {
		if got := r.processCommand(in); got != commandOK {
			t.Errorf("processCommand(%q) = %v, want commandOK", in, got)
		}
	}
}

func TestProcessCommandInsertThenSelect(t *testing.T) {
	r := testREPL(t)
	if _, err := r.catalog.CreateTable("widgets", widgetColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	if got := r.processCommand("INSERT INTO widgets VALUES (1, 'sprocket')"); got != commandOK {
		t.Fatalf("INSERT processCommand = %v, want commandOK", got)
	}

	out := captureStdout(t, func() {
		if got := r.processCommand("SELECT id, name FROM widgets"); got != commandOK {
			t.Errorf("SELECT processCommand = %v, want commandOK", got)
		}
	})
	if !bytes.Contains([]byte(out), []byte("sprocket")) {
		t.Errorf("SELECT output = %q, want it to contain the inserted row", out)
	}
}

func TestProcessCommandExplainPrintsPlanNotRows(t *testing.T) {
	r := testREPL(t)
	if _, err := r.catalog.CreateTable("widgets", widgetColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	out := captureStdout(t, func() {
		if got := r.processCommand("EXPLAIN SELECT id FROM widgets"); got != commandOK {
			t.Errorf("EXPLAIN processCommand = %v, want commandOK", got)
		}
	})
	if !bytes.Contains([]byte(out), []byte("Project")) {
		t.Errorf("EXPLAIN output = %q, want it to render the logical plan", out)
	}
}

func TestProcessCommandParseErrorIsCommandError(t *testing.T) {
	r := testREPL(t)
	if got := r.processCommand("SELECT FROM"); got != commandError {
		t.Errorf("processCommand(malformed SQL) = %v, want commandError", got)
	}
}

func TestHandleBackslashListTables(t *testing.T) {
	r := testREPL(t)
	if _, err := r.catalog.CreateTable("widgets", widgetColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	out := captureStdout(t, func() {
		if got := r.processCommand("\\dt"); got != commandOK {
			t.Errorf("processCommand(\\dt) = %v, want commandOK", got)
		}
	})
	if !bytes.Contains([]byte(out), []byte("widgets")) {
		t.Errorf("\\dt output = %q, want it to list widgets", out)
	}
}
