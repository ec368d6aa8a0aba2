package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    Config
		wantErr bool
	}{
		{
			name:    "all fields",
			content: `{"debug": true, "signed_displacement": true, "no_color": true, "out_dir": "out", "jobs": 3}`,
			want:    Config{Debug: true, SignedDisplacement: true, NoColor: true, OutDir: "out", Jobs: 3},
		},
		{
			name:    "jobs default",
			content: `{"signed_displacement": true}`,
			want:    Config{SignedDisplacement: true, Jobs: runtime.NumCPU()},
		},
		{
			name:    "negative jobs",
			content: `{"jobs": -1}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			content: `{"debug": `,
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.Repeat("c", i+1)+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if got != Default() {
		t.Errorf("Load(\"\") = %+v, want %+v", got, Default())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("Load(missing) succeeded, want error")
	}
}

func TestSchema(t *testing.T) {
	bts, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(bts, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, field := range []string{"signed_displacement", "out_dir", "jobs"} {
		if !strings.Contains(string(bts), field) {
			t.Errorf("schema missing %q", field)
		}
	}
}
