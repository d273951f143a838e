package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := New("test-token").WithBaseURL(server.URL)

	return c, server
}

func TestValidateToken(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/me" {
			t.Errorf("path = %q, want /api/v1/me", r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}

		_ = json.NewEncoder(w).Encode(Identity{ID: "acct-1", Name: "Dev", Email: "dev@example.com"})
	})
	defer server.Close()

	identity, err := c.ValidateToken(context.Background())
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if identity.ID != "acct-1" {
		t.Errorf("ID = %q, want acct-1", identity.ID)
	}
}

func TestValidateToken_Unauthorized(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	if _, err := c.ValidateToken(context.Background()); err == nil {
		t.Fatal("ValidateToken() should error on 401")
	}
}

func TestCount(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assignments:count" {
			t.Errorf("path = %q, want /api/v1/assignments:count", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"assignedCount": 2}`))
	})
	defer server.Close()

	count, err := c.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestGetRequest(t *testing.T) {
	closedAt := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)

	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/requests/current" {
			t.Errorf("path = %q, want /api/v1/requests/current", r.URL.Path)
		}

		_ = json.NewEncoder(w).Encode(Request{
			ID:             "req-1",
			ProjectFilters: []ProjectFilter{{ProjectID: "p1", Language: "go"}},
			ClosedAt:       closedAt,
		})
	})
	defer server.Close()

	request, err := c.GetRequest(context.Background())
	if err != nil {
		t.Fatalf("GetRequest() error = %v", err)
	}

	if request.ID != "req-1" {
		t.Errorf("ID = %q, want req-1", request.ID)
	}

	if !request.ClosedAt.Equal(closedAt) {
		t.Errorf("ClosedAt = %v, want %v", request.ClosedAt, closedAt)
	}
}

func TestGetRequest_Absent(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound} {
		c, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		request, err := c.GetRequest(context.Background())
		server.Close()

		if err != nil {
			t.Fatalf("GetRequest() status %d error = %v", status, err)
		}

		if request != nil {
			t.Errorf("GetRequest() status %d = %+v, want nil", status, request)
		}
	}
}

func TestCreateRequest(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}

		if len(body.ProjectFilters) != 2 {
			t.Errorf("filters = %d, want 2", len(body.ProjectFilters))
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Request{ID: "req-new", ProjectFilters: body.ProjectFilters})
	})
	defer server.Close()

	request, err := c.CreateRequest(context.Background(), []ProjectFilter{
		{ProjectID: "p1", Language: "go"},
		{ProjectID: "p2", Language: "go"},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	if request.ID != "req-new" {
		t.Errorf("ID = %q, want req-new", request.ID)
	}
}

func TestUpdateRequest(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}

		if r.URL.Path != "/api/v1/requests/req-1" {
			t.Errorf("path = %q, want /api/v1/requests/req-1", r.URL.Path)
		}

		_ = json.NewEncoder(w).Encode(Request{ID: "req-1"})
	})
	defer server.Close()

	request, err := c.UpdateRequest(context.Background(), "req-1", []ProjectFilter{{ProjectID: "p3"}})
	if err != nil {
		t.Fatalf("UpdateRequest() error = %v", err)
	}

	if request.ID != "req-1" {
		t.Errorf("ID = %q, want req-1 (identity preserved)", request.ID)
	}
}

func TestRefreshRequest(t *testing.T) {
	var gotPath string

	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	if err := c.RefreshRequest(context.Background(), "req-1"); err != nil {
		t.Fatalf("RefreshRequest() error = %v", err)
	}

	if gotPath != "/api/v1/requests/req-1:refresh" {
		t.Errorf("path = %q, want /api/v1/requests/req-1:refresh", gotPath)
	}
}

func TestDeleteRequest(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}

		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	if err := c.DeleteRequest(context.Background(), "req-1"); err != nil {
		t.Fatalf("DeleteRequest() error = %v", err)
	}
}

func TestDeleteRequest_ServerError(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer server.Close()

	if err := c.DeleteRequest(context.Background(), "req-1"); err == nil {
		t.Fatal("DeleteRequest() should surface server errors")
	}
}

func TestAssigned(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assignments" {
			t.Errorf("path = %q, want /api/v1/assignments", r.URL.Path)
		}

		_ = json.NewEncoder(w).Encode([]AssignedItem{
			{ID: "a1", AssignedAt: time.Now(), Project: Project{ID: "p1", Name: "Alpha"}},
			{ID: "a2", AssignedAt: time.Now(), Project: Project{ID: "p2", Name: "Beta"}},
		})
	})
	defer server.Close()

	items, err := c.Assigned(context.Background())
	if err != nil {
		t.Fatalf("Assigned() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	if items[0].Project.Name != "Alpha" {
		t.Errorf("Project.Name = %q, want Alpha", items[0].Project.Name)
	}
}

func TestPositions(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/requests/req-1/positions" {
			t.Errorf("path = %q, want /api/v1/requests/req-1/positions", r.URL.Path)
		}

		_ = json.NewEncoder(w).Encode([]QueuePosition{
			{ProjectID: "p1", Position: 3, Language: "go"},
		})
	})
	defer server.Close()

	positions, err := c.Positions(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}

	if len(positions) != 1 || positions[0].Position != 3 {
		t.Errorf("positions = %+v, want single entry at position 3", positions)
	}
}

func TestPositions_MalformedAndErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"malformed payload",
			func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{not valid json`))
			},
		},
		{
			"server error",
			func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, server := newTestClient(tt.handler)
			defer server.Close()

			positions, err := c.Positions(context.Background(), "req-1")
			if err != nil {
				t.Fatalf("Positions() error = %v, want nil", err)
			}

			if len(positions) != 0 {
				t.Errorf("positions = %+v, want empty", positions)
			}
		})
	}
}

func TestFeedbackStats(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unreadCount": 4}`))
	})
	defer server.Close()

	count, err := c.FeedbackStats(context.Background())
	if err != nil {
		t.Fatalf("FeedbackStats() error = %v", err)
	}

	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestFeedbacks(t *testing.T) {
	readAt := time.Now().Add(-time.Hour)

	c, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]FeedbackRecord{
			{ID: "f1", Rating: 5, Project: Project{ID: "p1"}, ReadAt: &readAt},
			{ID: "f2", Rating: 3, Project: Project{ID: "p2"}},
		})
	})
	defer server.Close()

	records, err := c.Feedbacks(context.Background())
	if err != nil {
		t.Fatalf("Feedbacks() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	if records[0].ReadAt == nil {
		t.Error("records[0].ReadAt = nil, want set")
	}

	if records[1].ReadAt != nil {
		t.Error("records[1].ReadAt should be nil for unread feedback")
	}
}
