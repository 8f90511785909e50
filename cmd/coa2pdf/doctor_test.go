package main

// Notes:
// - Tests use a black-box approach through runDoctorCmd() outputs.
// - Container, CI and sandbox tests modify environment variables and cannot
//   use t.Parallel().
// - Chrome detection depends on system state; the status/exit code contract
//   is verified instead of a specific result.

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-coa2pdf/internal/config"
)

// runDoctorJSON runs doctor --json and decodes the result.
func runDoctorJSON(t *testing.T, env *Environment) (*doctorResult, int) {
	t.Helper()
	var stdout bytes.Buffer
	env.Stdout = &stdout
	if env.Stderr == nil {
		env.Stderr = &bytes.Buffer{}
	}

	code := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	return &result, code
}

// cleanDoctorEnv clears every variable the doctor inspects.
func cleanDoctorEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"COA2PDF_CONTAINER", "KUBERNETES_SERVICE_HOST", "container",
		"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI",
		"COA2PDF_NO_SANDBOX", "ROD_NO_SANDBOX", "COA2PDF_CONFIG",
		"COA2PDF_SINK_DRIVER", "COA2PDF_SINK_PATH",
	} {
		t.Setenv(k, "")
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Output - JSON and human formats
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	cleanDoctorEnv(t)

	result, code := runDoctorJSON(t, &Environment{Config: config.DefaultConfig()})

	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s", result.Env.OS, result.Env.Arch)
	}
	valid := map[string]bool{"ready": true, "warnings": true, "errors": true}
	if !valid[result.Status] {
		t.Errorf("invalid status %q", result.Status)
	}
	if (result.Status == "errors") != (code == ExitGeneral) {
		t.Errorf("status %q inconsistent with exit code %d", result.Status, code)
	}
	if !result.System.TempWritable || !result.System.ConfigLoaded {
		t.Errorf("system = %+v", result.System)
	}
	if result.Sink.Driver != "none" {
		t.Errorf("sink driver = %q, want none", result.Sink.Driver)
	}
}

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	cleanDoctorEnv(t)

	var stdout bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}
	runDoctorCmd(nil, env)

	output := stdout.String()
	for _, section := range []string{"coa2pdf doctor", "Chrome/Chromium", "Environment", "System", "Archive sink", "Status:"} {
		if !strings.Contains(output, section) {
			t.Errorf("output should contain section %q", section)
		}
	}
	if !strings.Contains(output, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("output should contain platform")
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Environment - Container, CI and sandbox
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_ContainerDetection(t *testing.T) {
	tests := []struct {
		name     string
		key, val string
		wantHint string
	}{
		{"explicit override", "COA2PDF_CONTAINER", "1", "COA2PDF_CONTAINER=1"},
		{"podman", "container", "podman", "container=podman"},
		{"kubernetes", "KUBERNETES_SERVICE_HOST", "10.0.0.1", "KUBERNETES_SERVICE_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanDoctorEnv(t)
			t.Setenv(tt.key, tt.val)

			result, _ := runDoctorJSON(t, &Environment{})
			if !result.Env.Container {
				t.Fatal("container not detected")
			}
			// /.dockerenv wins over env signals on Docker hosts.
			if result.Env.ContainerHint != tt.wantHint && result.Env.ContainerHint != "/.dockerenv" {
				t.Errorf("hint = %q, want %q", result.Env.ContainerHint, tt.wantHint)
			}
		})
	}
}

func TestRunDoctorCmd_SandboxWarning(t *testing.T) {
	tests := []struct {
		name      string
		noSandbox string
		wantWarn  bool
	}{
		{"sandbox on in CI", "", true},
		{"sandbox off via COA2PDF_NO_SANDBOX", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanDoctorEnv(t)
			t.Setenv("CI", "true")
			t.Setenv("COA2PDF_NO_SANDBOX", tt.noSandbox)

			result, _ := runDoctorJSON(t, &Environment{})
			if !result.Env.CI {
				t.Error("CI not detected")
			}
			warned := false
			for _, w := range result.Warnings {
				if strings.Contains(w, "COA2PDF_NO_SANDBOX") {
					warned = true
				}
			}
			if warned != tt.wantWarn {
				t.Errorf("sandbox warning = %v, want %v (warnings: %v)", warned, tt.wantWarn, result.Warnings)
			}
			if tt.noSandbox == "1" && !result.Env.NoSandbox {
				t.Error("NoSandbox should be reported")
			}
		})
	}
}

func TestRunDoctorCmd_BrowserBin(t *testing.T) {
	cleanDoctorEnv(t)
	missing := filepath.Join(t.TempDir(), "chrome")
	t.Setenv("COA2PDF_BROWSER_BIN", missing)

	result, code := runDoctorJSON(t, &Environment{})

	if result.Env.BrowserBin != missing {
		t.Errorf("BrowserBin = %q, want %q", result.Env.BrowserBin, missing)
	}
	if result.Chrome.Found || result.Status != "errors" || code != ExitGeneral {
		t.Errorf("missing binary should be an error: %+v code %d", result.Chrome, code)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Sink - Archive sink checks
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_Sink(t *testing.T) {
	t.Run("fs sink", func(t *testing.T) {
		cleanDoctorEnv(t)
		root := filepath.Join(t.TempDir(), "archives")
		t.Setenv("COA2PDF_SINK_DRIVER", "fs")
		t.Setenv("COA2PDF_SINK_PATH", root)

		result, _ := runDoctorJSON(t, &Environment{})
		if result.Sink.Driver != "fs" || result.Sink.Location != root {
			t.Errorf("sink = %+v", result.Sink)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("archive directory should exist: %v", err)
		}
	})

	t.Run("memory sink warns", func(t *testing.T) {
		cleanDoctorEnv(t)
		t.Setenv("COA2PDF_SINK_DRIVER", "memory")

		result, _ := runDoctorJSON(t, &Environment{})
		found := false
		for _, w := range result.Warnings {
			if strings.Contains(w, "in memory") {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings = %v, want memory sink warning", result.Warnings)
		}
	})

	t.Run("broken config", func(t *testing.T) {
		cleanDoctorEnv(t)
		t.Setenv("COA2PDF_SINK_DRIVER", "ftp")

		result, code := runDoctorJSON(t, &Environment{})
		if result.System.ConfigLoaded || code != ExitGeneral {
			t.Errorf("invalid sink driver should fail the config check: %+v", result.System)
		}
	})
}
