package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    []string
	}{
		{"", []string{"parse", "export", "render", "serve", "archives", "doctor"}},
		{"parse", []string{"coa2pdf parse <input>", "--json", "--start"}},
		{"export", []string{"--output", "--upload", "--certified-by", "--timeout"}},
		{"render", []string{"--index", "--html", "--no-images"}},
		{"serve", []string{"POST /export", "GET  /archives/<key>", "/metrics", "--concurrency"}},
		{"archives", []string{"list [prefix]", "get <key>", "--output"}},
		{"doctor", []string{"--json"}},
		{"version", []string{"Show version information."}},
		{"help", []string{"coa2pdf help [command]"}},
	}

	for _, tt := range tests {
		t.Run("help "+tt.command, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := &Environment{Stdout: &stdout, Stderr: &stderr}

			var args []string
			if tt.command != "" {
				args = []string{tt.command}
			}
			runHelp(args, env)

			for _, want := range tt.want {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("help %s: missing %q", tt.command, want)
				}
			}
			if stderr.Len() != 0 {
				t.Errorf("unexpected stderr: %q", stderr.String())
			}
		})
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, args, err := parseRenderFlags([]string{"rows.tsv", "--html", "-c", "lab"})
	if err != nil {
		t.Fatal(err)
	}
	if f.index != 1 || !f.html || f.common.config != "lab" {
		t.Errorf("flags = %+v", f)
	}
	if len(args) != 1 || args[0] != "rows.tsv" {
		t.Errorf("args = %v", args)
	}

	e, _, err := parseExportFlags([]string{"--no-images", "-t", "1m", "--upload"})
	if err != nil {
		t.Fatal(err)
	}
	if !e.render.noImages || e.render.timeout != "1m" || !e.upload {
		t.Errorf("export flags = %+v", e)
	}
}
