package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/orbitsandbox/orbit-agent/pkg/auth"
	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/config"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/storage"
)

func newTestServer(t *testing.T, securityConfig auth.SecurityConfig) (*Server, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "agent.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	bus := events.NewBus()
	c := clock.System{}
	fs := fsutil.OS{}
	containersRoot := filepath.Join(dir, "containers")

	containerSvc := services.NewContainerService(store, bus, c, fs, containersRoot)
	appSvc := services.NewAppService(store, bus, c)
	snapshotSvc := services.NewSnapshotService(store, bus, c)
	tokenSvc := services.NewTokenService(store, c)
	authManager := auth.NewManager(securityConfig, store)

	cfg := config.Default()
	cfg.ContainersRoot = containersRoot
	cfg.AuthEnabled = securityConfig.AuthEnabled
	cfg.AdminToken = securityConfig.AdminToken
	cfg.ApiTokens = securityConfig.ApiTokens

	srv := New(containerSvc, appSvc, snapshotSvc, tokenSvc, store, authManager, bus, cfg, ConfigPaths{}, "test")
	return srv, store
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func doRequest(t *testing.T, client *http.Client, method, url, authHeader string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

// TestCreateListFetchDelete drives spec.md §8 scenarios 1 and 2: create
// a container, confirm it shows up in /tasks and /containers, fetch it
// by id, delete it, and confirm a follow-up fetch 404s.
func TestCreateListFetchDelete(t *testing.T) {
	srv, _ := newTestServer(t, auth.SecurityConfig{AuthEnabled: false})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	client := ts.Client()

	createResp := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "", map[string]string{
		"name":     "test-container",
		"platform": "windows-x64",
	})
	if createResp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, want 200", createResp.StatusCode)
	}
	var task map[string]any
	decodeBody(t, createResp, &task)
	if task["type"] != "container.create" || task["status"] != "succeeded" {
		t.Fatalf("create task = %+v, want type=container.create status=succeeded", task)
	}
	taskID := task["id"].(string)

	tasksResp := doRequest(t, client, http.MethodGet, ts.URL+"/tasks", "", nil)
	var tasks []map[string]any
	decodeBody(t, tasksResp, &tasks)
	found := false
	for _, tk := range tasks {
		if tk["id"] == taskID {
			found = true
		}
	}
	if !found {
		t.Errorf("GET /tasks does not contain task %q", taskID)
	}

	containersResp := doRequest(t, client, http.MethodGet, ts.URL+"/containers", "", nil)
	var containers []map[string]any
	decodeBody(t, containersResp, &containers)
	if len(containers) != 1 {
		t.Fatalf("len(containers) = %d, want 1", len(containers))
	}
	if containers[0]["name"] != "test-container" || containers[0]["status"] != "ready" {
		t.Fatalf("container = %+v, want name=test-container status=ready", containers[0])
	}
	containerID := containers[0]["id"].(string)

	fetchResp := doRequest(t, client, http.MethodGet, ts.URL+"/containers/"+containerID, "", nil)
	if fetchResp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d, want 200", fetchResp.StatusCode)
	}
	var fetched map[string]any
	decodeBody(t, fetchResp, &fetched)
	if fetched["id"] != containerID {
		t.Fatalf("fetched id = %v, want %v", fetched["id"], containerID)
	}

	deleteResp := doRequest(t, client, http.MethodDelete, ts.URL+"/containers/"+containerID, "", nil)
	if deleteResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", deleteResp.StatusCode)
	}
	var deleteTask map[string]any
	decodeBody(t, deleteResp, &deleteTask)
	if deleteTask["type"] != "container.delete" {
		t.Fatalf("delete task type = %v, want container.delete", deleteTask["type"])
	}

	goneResp := doRequest(t, client, http.MethodGet, ts.URL+"/containers/"+containerID, "", nil)
	if goneResp.StatusCode != http.StatusNotFound {
		t.Fatalf("post-delete fetch status = %d, want 404", goneResp.StatusCode)
	}
}

// TestAuthOffAllowsAnyRequest drives scenario 3.
func TestAuthOffAllowsAnyRequest(t *testing.T) {
	srv, _ := newTestServer(t, auth.SecurityConfig{AuthEnabled: false})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doRequest(t, ts.Client(), http.MethodGet, ts.URL+"/containers", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

// TestAuthOnAdminToken drives scenario 4.
func TestAuthOnAdminToken(t *testing.T) {
	srv, _ := newTestServer(t, auth.SecurityConfig{AuthEnabled: true, AdminToken: "secret-token"})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	client := ts.Client()

	body := map[string]string{"name": "secure-test", "platform": "windows-x64"}

	unauthorized := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "", body)
	if unauthorized.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthorized status = %d, want 401", unauthorized.StatusCode)
	}

	authorized := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "Bearer secret-token", body)
	if authorized.StatusCode != http.StatusOK {
		t.Fatalf("authorized status = %d, want 200", authorized.StatusCode)
	}
}

// TestServiceTokenIssueUseRevoke drives scenario 5.
func TestServiceTokenIssueUseRevoke(t *testing.T) {
	srv, _ := newTestServer(t, auth.SecurityConfig{AuthEnabled: true, AdminToken: "admin-secret"})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	client := ts.Client()

	issueResp := doRequest(t, client, http.MethodPost, ts.URL+"/security/tokens", "Bearer admin-secret", map[string]string{"name": "cli"})
	if issueResp.StatusCode != http.StatusCreated {
		t.Fatalf("issue status = %d, want 201", issueResp.StatusCode)
	}
	var issued map[string]any
	decodeBody(t, issueResp, &issued)
	token := issued["token"].(string)
	tokenID := issued["id"].(string)

	useResp := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "Bearer "+token, map[string]string{
		"name":     "via-service-token",
		"platform": "windows-x64",
	})
	if useResp.StatusCode != http.StatusOK {
		t.Fatalf("use status = %d, want 200", useResp.StatusCode)
	}

	revokeResp := doRequest(t, client, http.MethodDelete, ts.URL+"/security/tokens/"+tokenID, "Bearer admin-secret", nil)
	if revokeResp.StatusCode != http.StatusNoContent {
		t.Fatalf("revoke status = %d, want 204", revokeResp.StatusCode)
	}

	afterRevoke := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "Bearer "+token, map[string]string{
		"name":     "should-fail",
		"platform": "windows-x64",
	})
	if afterRevoke.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-revoke status = %d, want 401", afterRevoke.StatusCode)
	}
}

// TestStaticTokenReload drives scenario 6.
func TestStaticTokenReload(t *testing.T) {
	srv, _ := newTestServer(t, auth.SecurityConfig{AuthEnabled: true, AdminToken: "admin-secret"})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	client := ts.Client()

	srv.auth.Reload(auth.SecurityConfig{
		AuthEnabled: true,
		AdminToken:  "admin-secret",
		ApiTokens:   []string{"reload-token"},
	})

	resp := doRequest(t, client, http.MethodPost, ts.URL+"/containers", "Bearer reload-token", map[string]string{
		"name":     "reload-check",
		"platform": "windows-x64",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
