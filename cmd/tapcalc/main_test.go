package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/cutting"
)

// resetFlags restores every flag in the command tree to its default so
// tests do not leak values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command against a config file in a temp dir.
func execute(t *testing.T, stdin string, configFile string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil

	if configFile == "" {
		configFile = filepath.Join(t.TempDir(), "config.yaml")
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", configFile}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func TestKeysCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add and evaluate", []string{"keys", "1", "+", "2", "Enter"}, "3\n"},
		{"operators coalesce", []string{"keys", "4", "+", "-", "5", "Backspace"}, "4-\n"},
		{"unbound keys ignored", []string{"keys", "7", "F1", "Shift", "="}, "7\n"},
		{"backspace underflow", []string{"keys", "9", "Backspace"}, "0\n"},
		{"division by zero", []string{"keys", "5", "/", "0", "="}, calc.DivisionByZeroText + "\n"},
		{"strict division", []string{"keys", "1", "/", "1", "0", "=", "--division-check", "strict"}, "0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", "", tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestKeysCommand_Trace(t *testing.T) {
	out, err := execute(t, "", "", "keys", "--trace", "2", "x", "3", "F1", "Enter")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"2×3", "(ignored)", "Enter", "6"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
}

func TestEvalCommand_Plain(t *testing.T) {
	out, err := execute(t, "", "", "eval", "--format", "plain", "2+2", "1/3", "6 x 7", "0.1+0.2")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	want := "4\n0.33333333\n42\n0.3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestEvalCommand_Precision(t *testing.T) {
	out, err := execute(t, "", "", "eval", "--format", "plain", "--precision", "2", "1/3")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "0.33\n" {
		t.Errorf("output = %q, want 0.33", out)
	}

	if _, err := execute(t, "", "", "eval", "--precision", "99", "1/3"); err == nil {
		t.Error("out of range precision should fail")
	}
}

func TestEvalCommand_JSONFailures(t *testing.T) {
	out, err := execute(t, "", "", "eval", "--format", "json", "5/0", "5+", "2+2")
	if err == nil || !strings.Contains(err.Error(), "2 of 3 expressions failed") {
		t.Fatalf("execute() error = %v", err)
	}

	var results []evalResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Display != calc.DivisionByZeroText || results[0].State != string(calc.StateError) {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Display != calc.InvalidExpressionText || results[1].Error == "" {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Display != "4" || results[2].Error != "" {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestEvalCommand_Detailed(t *testing.T) {
	out, err := execute(t, "", "", "eval", "12x3+4")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"12x3+4", "Result:", "40"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _ = execute(t, "", "", "eval", "1/10")
	if !strings.Contains(out, "strict") {
		t.Errorf("substring false positive should hint at strict mode:\n%s", out)
	}
}

func TestEvalCommand_Errors(t *testing.T) {
	out, err := execute(t, "", "", "eval", "--format", "plain", "2(3)")
	if err == nil {
		t.Fatal("unsupported character should fail")
	}
	if !strings.Contains(out, "unsupported key") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "", "", "eval", "--format", "xml", "1"); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := execute(t, "", "", "eval", "--division-check", "maybe", "1"); err == nil {
		t.Error("unknown division check should fail")
	}
	if _, err := execute(t, "", "", "eval"); err == nil {
		t.Error("eval without arguments should fail")
	}
}

func TestReplayExpression(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())
	if err := replayExpression(d, "9 × 9"); err != nil {
		t.Fatalf("replayExpression() error = %v", err)
	}
	if d.Text() != "81" {
		t.Errorf("display = %q, want 81", d.Text())
	}

	d = calc.NewDisplay(calc.DefaultOptions())
	err := replayExpression(d, "1a")
	if !errors.Is(err, calc.ErrUnsupportedKey) {
		t.Errorf("replayExpression(1a) error = %v, want ErrUnsupportedKey", err)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "version: 1\ncalculator:\n  precision: 3\n  division_check: strict\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", path, "eval", "--format", "plain", "1/3", "1/10")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "0.333\n0.1\n" {
		t.Errorf("output = %q", out)
	}

	// Flags win over the file
	out, err = execute(t, "", path, "eval", "--format", "plain", "--precision", "1", "1/3")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "0.3\n" {
		t.Errorf("output = %q", out)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "", path, "keys", "1"); err == nil {
		t.Error("unsupported config version should fail")
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "", path, "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("config path = %q, %v", out, err)
	}

	if _, err := execute(t, "", path, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	out, err = execute(t, "", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"division_check: substring", "precision: 8", "show_keypad: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	custom := "version: 1\ncalculator:\n  precision: 2\n  division_check: strict\n"
	if err := os.WriteFile(path, []byte(custom), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "n\n", path, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, "Overwrite?") {
		t.Errorf("should ask before overwriting:\n%s", out)
	}
	if data, _ := os.ReadFile(path); string(data) != custom {
		t.Error("declined overwrite should keep the file")
	}

	if _, err := execute(t, "", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force error = %v", err)
	}
	if data, _ := os.ReadFile(path); !strings.Contains(string(data), "precision: 8") {
		t.Errorf("forced init should write defaults, got:\n%s", data)
	}
}

func TestCutCommand(t *testing.T) {
	out, err := execute(t, "", "", "cut", "--material-width", "910", "--target-width", "100", "--length", "100")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"9 × 100 mm", "Waste", "Useful area", "%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "", "cut", "--material-width", "517", "--target-width", "120", "--length", "40", "--format", "json")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	var plan cutting.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if plan.MainCount != 4 || plan.AdditionalWidth == nil || *plan.AdditionalWidth != 35 || plan.Waste != 2 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestCutCommand_Invalid(t *testing.T) {
	_, err := execute(t, "", "", "cut", "--material-width", "910", "--target-width", "33", "--length", "100")
	if !errors.Is(err, cutting.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}

	if _, err := execute(t, "", "", "cut", "--material-width", "910"); err == nil {
		t.Error("missing required flags should fail")
	}
}

func TestServeValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"cert without key", []string{"serve", "--cert", "cert.pem"}, "both --cert and --key"},
		{"missing cert file", []string{"serve", "--cert", "/nonexistent/cert.pem", "--key", "/nonexistent/key.pem"}, "certificate file not found"},
		{"negative rate", []string{"serve", "--rate", "-1"}, "--rate"},
		{"rate without burst", []string{"serve", "--rate", "5", "--burst", "0"}, "--burst"},
		{"bad port", []string{"serve", "--port", "70000"}, "port"},
		{"mdns on ephemeral port", []string{"serve", "--mdns", "--port", "0"}, "--mdns requires a fixed --port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDiscoverValidation(t *testing.T) {
	if _, err := execute(t, "", "", "discover", "--timeout", "0"); err == nil {
		t.Error("zero timeout should fail")
	}
	if _, err := execute(t, "", "", "discover", "-i", "--name", "studio"); err == nil {
		t.Error("--interactive with --name should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "", "version")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "tapcalc ") || !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q", out)
	}
}
