package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "agent.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContainerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := types.Container{
		ID:        uuid.NewString(),
		Name:      "test-container",
		Status:    types.ContainerStatusReady,
		Platform:  types.PlatformWindowsX64,
		Tags:      []string{"demo", "demo"},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.UpsertContainer(ctx, c); err != nil {
		t.Fatalf("UpsertContainer() error = %v", err)
	}

	got, err := s.GetContainer(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetContainer() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetContainer() = nil, want a row")
	}
	if got.Name != c.Name || got.Platform != c.Platform || len(got.Tags) != 2 {
		t.Errorf("GetContainer() = %+v, want matching %+v", got, c)
	}

	list, err := s.ListContainers(ctx, "")
	if err != nil {
		t.Fatalf("ListContainers() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListContainers() len = %d, want 1", len(list))
	}

	present, err := s.DeleteContainer(ctx, c.ID)
	if err != nil {
		t.Fatalf("DeleteContainer() error = %v", err)
	}
	if !present {
		t.Error("DeleteContainer() = false, want true")
	}

	got, err = s.GetContainer(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetContainer() after delete error = %v", err)
	}
	if got != nil {
		t.Error("GetContainer() after delete = non-nil, want nil")
	}
}

func TestListTasksLimitClamp(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero defaults to 500", limit: 0, want: 500},
		{name: "negative defaults to 500", limit: -5, want: 500},
		{name: "over cap clamps to 500", limit: 5000, want: 500},
		{name: "within range passes through", limit: 10, want: 10},
	}

	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		task := types.Task{
			ID:        uuid.NewString(),
			Type:      "container.create",
			Status:    types.TaskStatusSucceeded,
			Progress:  100,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.UpsertTask(ctx, task); err != nil {
			t.Fatalf("UpsertTask() error = %v", err)
		}
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.ListTasks(ctx, "", tt.limit)
			if err != nil {
				t.Fatalf("ListTasks() error = %v", err)
			}
			if len(list) > tt.want {
				t.Errorf("ListTasks() returned %d rows, want at most %d", len(list), tt.want)
			}
		})
	}
}

func TestApiTokenLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tok, err := s.CreateApiToken(ctx, "cli", []string{"containers:read"}, "hash-value", "abcdefgh", nil)
	if err != nil {
		t.Fatalf("CreateApiToken() error = %v", err)
	}

	resolved, err := s.ResolveApiToken(ctx, "hash-value")
	if err != nil {
		t.Fatalf("ResolveApiToken() error = %v", err)
	}
	if resolved == nil || resolved.ID != tok.ID {
		t.Fatalf("ResolveApiToken() = %+v, want token %s", resolved, tok.ID)
	}

	changed, err := s.RevokeApiToken(ctx, tok.ID)
	if err != nil {
		t.Fatalf("RevokeApiToken() error = %v", err)
	}
	if !changed {
		t.Error("RevokeApiToken() first call = false, want true")
	}

	changed, err = s.RevokeApiToken(ctx, tok.ID)
	if err != nil {
		t.Fatalf("RevokeApiToken() second call error = %v", err)
	}
	if changed {
		t.Error("RevokeApiToken() second call = true, want false")
	}

	resolved, err = s.ResolveApiToken(ctx, "hash-value")
	if err != nil {
		t.Fatalf("ResolveApiToken() after revoke error = %v", err)
	}
	if resolved != nil {
		t.Error("ResolveApiToken() after revoke = non-nil, want nil")
	}
}
