package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sim8086/internal/disasm"
	"sim8086/internal/sim8086/config"
)

func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fullPath, content, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunBatch(t *testing.T) {
	tests := []struct {
		name   string
		outDir bool
	}{
		{name: "next to inputs"},
		{name: "output directory", outDir: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string][]byte{
				"listing_a":        {0x89, 0xd9, 0xb1, 0x0c},
				"listing_b.bin":    {0x89, 0xd9, 0x8a},
				"listing_c":        {0x8b, 0x2e, 0x05, 0x00, 0x00},
				"notes.txt":        []byte("not a listing"),
				"nested/listing_d": {0x89, 0xd9},
			})

			cfg := config.Config{Jobs: 2}
			outDir := dir
			if tt.outDir {
				cfg.OutDir = filepath.Join(dir, "out")
				outDir = cfg.OutDir
			}

			var buf bytes.Buffer
			err := runBatch(&buf, dir, cfg)
			if err == nil {
				t.Fatalf("runBatch succeeded, want failures for listing_b and listing_c")
			}
			if !errors.Is(err, disasm.ErrTruncatedInput) || !errors.Is(err, disasm.ErrUnsupportedOpcode) {
				t.Errorf("runBatch error = %v, want both error kinds", err)
			}

			want := map[string]string{
				"listing_a.asm": "; listing_a\nbits 16\n\nmov cx, bx\nmov cl, 12\n",
				"listing_b.asm": "; listing_b.bin\nbits 16\n\nmov cx, bx\n",
				"listing_c.asm": "; listing_c\nbits 16\n\nmov bp, [5]\n",
			}
			for name, content := range want {
				if diff := cmp.Diff(content, readFile(t, filepath.Join(outDir, name))); diff != "" {
					t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
				}
			}
			for _, skipped := range []string{"notes.asm", "listing_d.asm"} {
				if _, err := os.Stat(filepath.Join(outDir, skipped)); !os.IsNotExist(err) {
					t.Errorf("%s was written, want skipped", skipped)
				}
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != 3 {
				t.Fatalf("got %d report lines, want 3:\n%s", len(lines), buf.String())
			}
			if !strings.HasPrefix(lines[0], "ok") || !strings.Contains(lines[0], "listing_a") {
				t.Errorf("line 0 = %q, want ok for listing_a", lines[0])
			}
			if !strings.HasPrefix(lines[1], "FAIL") || !strings.Contains(lines[1], "listing_b.bin") {
				t.Errorf("line 1 = %q, want FAIL for listing_b.bin", lines[1])
			}
			if !strings.HasPrefix(lines[2], "FAIL") || !strings.Contains(lines[2], "listing_c") {
				t.Errorf("line 2 = %q, want FAIL for listing_c", lines[2])
			}
		})
	}
}

func TestRunBatchEdgeCases(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFiles(t, dir, map[string][]byte{"file": {0x89, 0xd9}})

	tests := []struct {
		name        string
		dir         string
		shouldError bool
	}{
		{name: "non-existent directory", dir: filepath.Join(dir, "missing"), shouldError: true},
		{name: "file instead of directory", dir: file, shouldError: true},
		{name: "empty directory", dir: t.TempDir(), shouldError: false},
		{name: "all listings decode", dir: dir, shouldError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runBatch(&buf, tt.dir, config.Config{Jobs: 1})
			if (err != nil) != tt.shouldError {
				t.Errorf("runBatch() error = %v, shouldError = %v", err, tt.shouldError)
			}
		})
	}
}

func TestRunBatchSharedStem(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"prog":     {0x89, 0xd9},
		"prog.bin": {0xb1, 0x0c},
		"prog.BIN": {0x88, 0xe5},
		"other":    {0x8b, 0xd9},
	})

	var buf bytes.Buffer
	if err := runBatch(&buf, dir, config.Config{Jobs: 4}); err != nil {
		t.Fatalf("runBatch failed: %v\n%s", err, buf.String())
	}

	want := map[string]string{
		"prog.asm":     "; prog\nbits 16\n\nmov cx, bx\n",
		"prog.bin.asm": "; prog.bin\nbits 16\n\nmov cl, 12\n",
		"prog.BIN.asm": "; prog.BIN\nbits 16\n\nmov ch, ah\n",
		"other.asm":    "; other\nbits 16\n\nmov bx, cx\n",
	}
	for name, content := range want {
		if diff := cmp.Diff(content, readFile(t, filepath.Join(dir, name))); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
		if !strings.Contains(buf.String(), "-> "+filepath.Join(dir, name)+" ") {
			t.Errorf("report does not name %s:\n%s", name, buf.String())
		}
	}
}

func TestPlanOutputs(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		outDir  string
		want    []string
		wantErr bool
	}{
		{
			name:   "distinct stems",
			inputs: []string{"/d/a", "/d/b.bin"},
			want:   []string{"/d/a.asm", "/d/b.asm"},
		},
		{
			name:   "shared stem keeps extension",
			inputs: []string{"/d/prog", "/d/prog.bin"},
			want:   []string{"/d/prog.asm", "/d/prog.bin.asm"},
		},
		{
			name:   "shared stem in output directory",
			inputs: []string{"/d/prog", "/d/prog.bin"},
			outDir: "/out",
			want:   []string{"/out/prog.asm", "/out/prog.bin.asm"},
		},
		{
			name:    "unresolvable collision",
			inputs:  []string{"/d/prog", "/d/prog.bin", "/d/prog.bin.bin"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planOutputs(tt.inputs, tt.outDir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("planOutputs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want := make([]string, len(tt.want))
			for i, p := range tt.want {
				want[i] = filepath.FromSlash(p)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("planOutputs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsListingBinary(t *testing.T) {
	tests := map[string]bool{
		"listing_0037_single_register_mov": true,
		"prog.bin":                         true,
		"prog.BIN":                         true,
		"listing_0037.asm":                 false,
		"README.md":                        false,
	}
	for name, want := range tests {
		if got := isListingBinary(name); got != want {
			t.Errorf("isListingBinary(%q) = %v, want %v", name, got, want)
		}
	}
}
