package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticktui/ticktui/internal/config"
	"github.com/ticktui/ticktui/internal/models"
)

// run executes the root command with fresh flag state inside a temp working
// directory, so no .env, config.yaml or token cache leaks in.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	InitCLI()
	resetFlags(RootCmd)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{config.EnvConfigPath, config.EnvClientID, config.EnvClientSecret, config.EnvRedirectURL, config.EnvDev} {
		unsetEnv(t, key)
	}

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(""))

	err = Execute(args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		}
	})
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, RootCmd)
	assert.Equal(t, "ticktui", RootCmd.Use)
	assert.Contains(t, RootCmd.Long, "TickTick")
}

func TestGetGlobalFlags(t *testing.T) {
	_, err := run(t, "version")
	require.NoError(t, err)

	flags := GetGlobalFlags()
	assert.Equal(t, "", flags.Config)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Dev)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ticktui Version: "+config.Version)
	assert.NotEmpty(t, GetVersionInfo().GoVersion)
}

func TestProjects_DevMode(t *testing.T) {
	out, err := run(t, "--dev", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "dummy1")
	assert.Contains(t, out, "Dummy Project 2")
	assert.Contains(t, out, "#00FF00")

	out, err = run(t, "--dev", "--json", "projects")
	require.NoError(t, err)
	var projects []models.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 2)
	assert.Equal(t, "dummy1", projects[0].ID)
}

func TestTasks_CompletedFilter(t *testing.T) {
	out, err := run(t, "--dev", "--json", "tasks", "--project", "p1", "--completed")
	require.NoError(t, err)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "task2", tasks[0].ID)
	assert.Equal(t, "p1", tasks[0].ProjectID)
}

func TestTaskCreate_DevMode(t *testing.T) {
	out, err := run(t, "--dev", "--json", "task", "create", "--project", "inbox", "--title", "Buy milk", "--priority", "3", "--due", "2026-05-01T18:00:00.000+0200")
	require.NoError(t, err)

	var task models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "inbox", task.ProjectID)
	require.NotNil(t, task.Priority)
	assert.Equal(t, 3, *task.Priority)
	assert.Nil(t, task.Content, "unset flags stay unset")
	require.NotNil(t, task.DueDate)
}

func TestTaskCreate_RequiresTitle(t *testing.T) {
	_, err := run(t, "--dev", "task", "create", "--project", "inbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestTaskCreate_InvalidPriorityIsRejected(t *testing.T) {
	_, err := run(t, "--dev", "task", "create", "--project", "inbox", "--title", "x", "--priority", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not created")
}

func TestTaskGet_NotFound(t *testing.T) {
	_, err := run(t, "--dev", "task", "get", "p1", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, err := run(t, "--dev", "task", "get", "p1", "task1")
	require.NoError(t, err)
	assert.Contains(t, out, "Memo for Dummy Task 1")
}

func TestTaskLifecycle_DevMode(t *testing.T) {
	out, err := run(t, "--dev", "task", "update", "dummy1", "task1", "--title", "Renamed")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed")

	out, err = run(t, "--dev", "task", "complete", "dummy1", "task1")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed task task1")

	out, err = run(t, "--dev", "task", "delete", "dummy1", "task1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task task1")
}

func TestProjectCommands_DevMode(t *testing.T) {
	out, err := run(t, "--dev", "project", "get", "dummy1")
	require.NoError(t, err)
	assert.Contains(t, out, "Dummy Project dummy1")
	assert.Contains(t, out, "Completed")

	out, err = run(t, "--dev", "--json", "project", "update", "dummy2", "--color", "#000000")
	require.NoError(t, err)
	var projects []models.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "#000000", *projects[0].Color)
	assert.Equal(t, "Dummy Project 2", projects[0].Name)

	out, err = run(t, "--dev", "project", "create", "--name", "Home", "--view-mode", "kanban")
	require.NoError(t, err)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "kanban")

	out, err = run(t, "--dev", "project", "delete", "dummy2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted project dummy2")
}

func TestOverview_DevMode(t *testing.T) {
	out, err := run(t, "--dev", "overview")
	require.NoError(t, err)
	assert.Contains(t, out, "[Project] Dummy Project 1 (ID: dummy1)")
	assert.Contains(t, out, "Dummy Task 2 (ID: task2) - Status: Completed, Memo: Memo for Dummy Task 2")
	assert.Contains(t, out, strings.Repeat("-", 40))
}

func TestConfigRequiredOutsideDevMode(t *testing.T) {
	_, err := run(t, "projects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id is required")
}

// liveSetup writes a config pointing at srv and a valid cached credential.
func liveSetup(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	credPath := filepath.Join(dir, "token_cache.json")
	cred := fmt.Sprintf(`{"access_token":"cached-token","refresh_token":"r","expires_in":3600,"obtained_at":%d}`, time.Now().Unix())
	require.NoError(t, os.WriteFile(credPath, []byte(cred), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
oauth:
  client_id: cid
  client_secret: secret
  redirect_url: http://localhost:8080/callback
  token_url: %[1]s/oauth/token
api:
  base_url: %[1]s/open/v1
credentials:
  path: %[2]s
log:
  level: error
`, srv.URL, credPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}

func TestProjects_LiveUsesCachedToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/open/v1/project" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Work"}]`))
	}))
	defer srv.Close()
	cfgPath := liveSetup(t, srv)

	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")
	out, err := run(t, "--config", cfgPath, "--metrics-file", metricsPath, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Equal(t, "Bearer cached-token", auth)

	dump, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(dump), `ticktui_token_acquisitions_total{outcome="success",path="cached"} 1`)
	assert.Contains(t, string(dump), "ticktui_api_requests_total")
}

func TestTokenStatusAndLogout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	cfgPath := liveSetup(t, srv)

	out, err := run(t, "--config", cfgPath, "--json", "token", "status")
	require.NoError(t, err)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, true, status["valid"])

	out, err = run(t, "--config", cfgPath, "token", "print")
	require.NoError(t, err)
	assert.Equal(t, "cached-token\n", out)

	_, err = run(t, "--config", cfgPath, "logout")
	require.NoError(t, err)

	out, err = run(t, "--config", cfgPath, "token", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached credential")
}

func TestLogin_PrintURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	cfgPath := liveSetup(t, srv)

	out, err := run(t, "--config", cfgPath, "login", "--print-url")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://ticktick.com/oauth/authorize?"))
	assert.Contains(t, out, "client_id=cid")
	assert.Contains(t, out, "response_type=code")
}

func TestLogin_PrintURLThenRedirectURL(t *testing.T) {
	var code string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		code = r.PostForm.Get("code")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"from-redirect","expires_in":3600}`))
	}))
	defer srv.Close()
	cfgPath := liveSetup(t, srv)

	out, err := run(t, "--config", cfgPath, "--json", "login", "--print-url")
	require.NoError(t, err)
	var printed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	state := printed["state"]
	require.NotEmpty(t, state)
	assert.Contains(t, printed["auth_url"], "state="+state)

	redirect := "http://localhost:8080/callback?code=c0de&state=" + state
	_, err = run(t, "--config", cfgPath, "login", "--redirect-url", redirect)
	require.Error(t, err, "strict state needs the printed state")

	_, err = run(t, "--config", cfgPath, "login", "--redirect-url", redirect, "--state", state)
	require.NoError(t, err)
	assert.Equal(t, "c0de", code)

	out, err = run(t, "--config", cfgPath, "token", "print")
	require.NoError(t, err)
	assert.Equal(t, "from-redirect\n", out)
}

func TestDoctor(t *testing.T) {
	out, err := run(t, "--dev", "--json", "doctor")
	require.NoError(t, err)

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	names := map[string]string{}
	for _, c := range report.Checks {
		names[c.Name] = c.Status
	}
	assert.Equal(t, "WARN", names["Dev Mode"])
	assert.Equal(t, "WARN", names["Cached Credential"])
	assert.NotEmpty(t, report.Recommendations)
}

func TestGenerateRecommendations(t *testing.T) {
	healthy := generateRecommendations([]DoctorCheck{{Status: "OK"}})
	assert.Equal(t, []string{"Everything looks fine."}, healthy)

	recs := generateRecommendations([]DoctorCheck{
		{Category: "Credential", Name: "Cached Credential", Status: "FAIL", Remediation: "Run 'ticktui login'"},
	})
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "Run 'ticktui login'")
}
