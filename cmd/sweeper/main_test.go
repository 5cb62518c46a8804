package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sweeper/internal/catalog"
	"sweeper/internal/services/librarydb"
	"sweeper/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	dbPath     string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	return &cliTestEnv{
		configPath: testsupport.WriteConfigFile(t, cfg),
		dbPath:     cfg.Catalog.DatabasePath,
		baseDir:    testsupport.BaseDir(cfg),
	}
}

func (e *cliTestEnv) seedCatalog(t *testing.T, items ...catalog.Item) {
	t.Helper()
	store, err := librarydb.Open(e.dbPath)
	if err != nil {
		t.Fatalf("librarydb.Open: %v", err)
	}
	defer store.Close()
	for _, item := range items {
		if err := store.UpsertItem(context.Background(), item); err != nil {
			t.Fatalf("UpsertItem %s: %v", item.ID, err)
		}
	}
}

func (e *cliTestEnv) trashedCount(t *testing.T) int {
	t.Helper()
	store, err := librarydb.Open(e.dbPath)
	if err != nil {
		t.Fatalf("librarydb.Open: %v", err)
	}
	defer store.Close()
	count, err := store.TrashedCount(context.Background())
	if err != nil {
		t.Fatalf("TrashedCount: %v", err)
	}
	return count
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
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
	return stdout.String(), stderr.String(), err
}

func fingerprintCatalog() []catalog.Item {
	return []catalog.Item{
		{ID: "a", DisplayName: "Power", SizeBytes: 10 << 20, Fingerprint: "fp-1"},
		{ID: "b", DisplayName: "Power (Deluxe)", SizeBytes: 20 << 20, Fingerprint: "fp-1", Tags: []string{"verified"}},
		{ID: "c", DisplayName: "Something Else", SizeBytes: 5 << 20, Fingerprint: "fp-2"},
	}
}

func TestCLIPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedCatalog(t, fingerprintCatalog()...)

	out, _, err := runCLI(t, env.configPath, "plan", "--json")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	var decoded scanOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode plan output: %v\n%s", err, out)
	}
	if decoded.Plan.GroupsFound != 1 || len(decoded.Plan.Groups) != 1 {
		t.Fatalf("GroupsFound = %d (groups %d), want 1", decoded.Plan.GroupsFound, len(decoded.Plan.Groups))
	}
	if decoded.Plan.Groups[0].Keeper.ID != "b" {
		t.Errorf("keeper = %s, want b", decoded.Plan.Groups[0].Keeper.ID)
	}
	if decoded.ReportPath == "" {
		t.Error("report path missing from plan output")
	}
	if got := env.trashedCount(t); got != 0 {
		t.Errorf("plan trashed %d items, want 0", got)
	}
}

func TestCLIRunRequiresConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedCatalog(t, fingerprintCatalog()...)

	_, _, err := runCLI(t, env.configPath, "run")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("run without --yes should refuse, got err = %v", err)
	}
	if got := env.trashedCount(t); got != 0 {
		t.Errorf("refused run trashed %d items", got)
	}
}

func TestCLIRunCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedCatalog(t, fingerprintCatalog()...)

	out, _, err := runCLI(t, env.configPath, "run", "--yes", "--json")
	if err != nil {
		t.Fatalf("run --yes: %v", err)
	}

	var decoded scanOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode run output: %v\n%s", err, out)
	}
	if decoded.Result.ItemsRemoved != 1 {
		t.Errorf("ItemsRemoved = %d, want 1", decoded.Result.ItemsRemoved)
	}
	if got := env.trashedCount(t); got != 1 {
		t.Errorf("trashed count = %d, want 1", got)
	}
}

func TestCLIPlanRendersTables(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedCatalog(t, fingerprintCatalog()...)

	out, _, err := runCLI(t, env.configPath, "plan")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"Items scanned", "fingerprint", "Report written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIPlanAgainstAPIBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/items" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("X-Api-Token"); got != "secret" {
			t.Errorf("api token header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(fingerprintCatalog()); err != nil {
			t.Errorf("encode items: %v", err)
		}
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithCatalogAPI(server.URL, "secret"))
	configPath := testsupport.WriteConfigFile(t, cfg)

	out, _, err := runCLI(t, configPath, "plan", "--json")
	if err != nil {
		t.Fatalf("plan against api: %v", err)
	}
	var decoded scanOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode plan output: %v\n%s", err, out)
	}
	if decoded.Plan.GroupsFound != 1 {
		t.Errorf("GroupsFound = %d, want 1", decoded.Plan.GroupsFound)
	}
}

func TestCLITestNotify(t *testing.T) {
	var received bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	configPath := testsupport.WriteConfigFile(t, cfg)

	out, _, err := runCLI(t, configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !received {
		t.Error("no notification reached the server")
	}
	if !strings.Contains(out, "Test notification sent") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCLIRejectsInvalidConfig(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := `[catalog]
source = "carrier-pigeon"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, configPath, "plan")
	if err == nil || !strings.Contains(err.Error(), "catalog.source") {
		t.Fatalf("expected catalog.source validation error, got %v", err)
	}
}
