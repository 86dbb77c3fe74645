package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"equiv/internal/config"
	"equiv/internal/model"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("EQUIV_DATA_DIR", "")

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ForcedMappings = filepath.Join(base, "forced_mappings.yaml")
	cfg.Logging.Level = "error"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "equiv.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func (e *cliTestEnv) writeJSON(t *testing.T, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(e.baseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "alias_namespace")
}

func TestContentImportRunAndEvents(t *testing.T) {
	env := setupCLITestEnv(t)
	file := env.writeJSON(t, "content.json", []model.Content{
		{URI: "http://pa/dw", Publisher: model.PublisherPA, Title: "Doctor Who", Year: 2005, MediaType: model.MediaVideo, Published: true},
		{URI: "http://bbc/dw", Publisher: model.PublisherBBC, Title: "Doctor Who", Year: 2005, MediaType: model.MediaVideo, Published: true},
		{URI: "http://bbc/news", Publisher: model.PublisherBBC, Title: "Newsnight", Year: 2005, MediaType: model.MediaVideo, Published: true},
	})

	out, err := runCLI(t, []string{"content", "import", file}, env.configPath)
	if err != nil {
		t.Fatalf("content import: %v", err)
	}
	requireContains(t, out, "Imported 3 content records")

	out, err = runCLI(t, []string{"resolve", "--dry-run", "http://pa/dw"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve --dry-run: %v", err)
	}
	requireContains(t, out, "not saved")
	requireContains(t, out, "http://bbc/dw")

	out, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "content run")

	out, err = runCLI(t, []string{"events", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	requireContains(t, out, `"success"`)
	requireContains(t, out, "http://bbc/dw")

	out, err = runCLI(t, []string{"resolve", "http://pa/dw"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Strong equivalences for http://pa/dw")
	requireContains(t, out, "bbc.co.uk")

	if _, err := runCLI(t, []string{"resolve", "http://pa/missing"}, env.configPath); err == nil {
		t.Fatal("expected an error for unknown content")
	}
}

func TestChannelsImportUpdateShow(t *testing.T) {
	env := setupCLITestEnv(t)
	file := env.writeJSON(t, "channels.json", []model.Channel{
		{URI: "http://bbc/one", Publisher: model.PublisherBBC, Title: "BBC One"},
		{URI: "http://mb/one", Publisher: model.PublisherMetabroadcast, Title: "bbc one"},
		{URI: "http://mb/two", Publisher: model.PublisherMetabroadcast, Title: "BBC Two"},
	})

	out, err := runCLI(t, []string{"channels", "import", file}, env.configPath)
	if err != nil {
		t.Fatalf("channels import: %v", err)
	}
	requireContains(t, out, "Imported 3 channels")

	out, err = runCLI(t, []string{"channels", "update"}, env.configPath)
	if err != nil {
		t.Fatalf("channels update: %v", err)
	}
	requireContains(t, out, "channels run")

	for uri, want := range map[string]string{"http://bbc/one": "http://mb/one", "http://mb/one": "http://bbc/one"} {
		out, err = runCLI(t, []string{"channels", "show", "--json", uri}, env.configPath)
		if err != nil {
			t.Fatalf("channels show %s: %v", uri, err)
		}
		var ch model.Channel
		if err := json.Unmarshal([]byte(out), &ch); err != nil {
			t.Fatalf("decode channel: %v\n%s", err, out)
		}
		if ref, ok := ch.LinkedRef(); !ok || ref.URI != want {
			t.Fatalf("%s: expected link to %s, got %+v", uri, want, ch.SameAs)
		}
	}

	// Re-importing must not drop links set by the updater.
	if _, err := runCLI(t, []string{"channels", "import", file}, env.configPath); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	out, err = runCLI(t, []string{"channels", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("channels list: %v", err)
	}
	requireContains(t, out, "http://mb/one")
}

func TestMetadataDescribesUpdaters(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, []string{"metadata"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	requireContains(t, out, "title-search")
	requireContains(t, out, "pressassociation.com")
	requireContains(t, out, "forced (pa:station)")
}
