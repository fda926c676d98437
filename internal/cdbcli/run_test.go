package cdbcli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildTestCdb runs "cdbutil make" end to end, substituting os.Stdin with
// a pipe since MakeCmd reads it directly rather than taking an io.Reader.
func buildTestCdb(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.cdb")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	origStdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = origStdin })

	go func() {
		w.WriteString("+3,5:one->Hello\n+3,5:two->World\n\n")
		w.Close()
	}()

	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil", "make", "-o", path})
	if code != 0 {
		t.Fatalf("make failed: exit=%d stderr=%s", code, errOut.String())
	}
	return path
}

func TestRunNoCommandPrintsUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil"})
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Usage: cdbutil") {
		t.Fatalf("stderr missing usage: %s", errOut.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil", "nope"})
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "unknown command: nope") {
		t.Fatalf("stderr = %s, want unknown command message", errOut.String())
	}
}

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil", "--help"})
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "get [-a]") {
		t.Fatalf("help missing get command: %s", out.String())
	}
}

func TestDumpCommandRoundTrip(t *testing.T) {
	path := buildTestCdb(t)

	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil", "dump", path})
	if code != 0 {
		t.Fatalf("dump failed: exit=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "+3,5:one->Hello") {
		t.Fatalf("dump missing one record: %s", out.String())
	}
}

func TestGetCommand(t *testing.T) {
	path := buildTestCdb(t)

	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "first match",
			args:       []string{"cdbutil", "get", path, "one"},
			wantExit:   0,
			wantStdout: "Hello\n",
		},
		{
			name:       "absent key",
			args:       []string{"cdbutil", "get", path, "absent"},
			wantExit:   1,
			wantStderr: "key not found",
		},
		{
			name:       "all values",
			args:       []string{"cdbutil", "get", "-a", path, "one"},
			wantExit:   0,
			wantStdout: "Hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := Run(&out, &errOut, tt.args)
			if code != tt.wantExit {
				t.Fatalf("exit = %d, want %d (stderr=%s)", code, tt.wantExit, errOut.String())
			}
			if tt.wantStdout != "" && out.String() != tt.wantStdout {
				t.Fatalf("stdout = %q, want %q", out.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(errOut.String(), tt.wantStderr) {
				t.Fatalf("stderr = %q, want substring %q", errOut.String(), tt.wantStderr)
			}
		})
	}
}

func TestStatCommand(t *testing.T) {
	path := buildTestCdb(t)

	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"cdbutil", "stat", path})
	if code != 0 {
		t.Fatalf("stat failed: exit=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "populated buckets:") {
		t.Fatalf("stat output missing summary: %s", out.String())
	}
}
