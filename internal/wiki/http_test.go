package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPClient(HTTPConfig{
		BaseURL:       server.URL,
		TokenID:       "id",
		TokenSecret:   "secret",
		RetryAttempts: 1,
	})
}

func TestCreateBookSendsTokenAuth(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost || r.URL.Path != "/api/books" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["name"] != "Intro" {
			t.Errorf("expected name Intro, got %v", payload["name"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"id": 9})
	}))

	id, err := client.CreateBook(context.Background(), "Intro")
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected id 9, got %d", id)
	}
	if gotAuth != "Token id:secret" {
		t.Fatalf("expected token auth header, got %q", gotAuth)
	}
}

func TestCreatePageRequiresParent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	if _, err := client.CreatePage(context.Background(), CreatePageRequest{Title: "orphan"}); err == nil {
		t.Fatal("expected error for missing parent")
	}
}

func TestCreatePageSendsTagsAndParent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Name     string `json:"name"`
			Markdown string `json:"markdown"`
			BookID   int    `json:"book_id"`
			Tags     []Tag  `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.BookID != 9 || payload.Name != "Intro" || payload.Markdown != "Hello" {
			t.Errorf("unexpected payload %+v", payload)
		}
		if len(payload.Tags) != 1 || payload.Tags[0].Name != "topic" {
			t.Errorf("unexpected tags %+v", payload.Tags)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 31})
	}))

	id, err := client.CreatePage(context.Background(), CreatePageRequest{
		Title:    "Intro",
		Markdown: "Hello",
		Tags:     []Tag{{Name: "topic", Value: "networking"}},
		BookID:   9,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if id != 31 {
		t.Fatalf("expected id 31, got %d", id)
	}
}

func TestUpdatePageTargetsPagePath(t *testing.T) {
	var gotPath, gotMethod string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))

	err := client.UpdatePage(context.Background(), 9, 31, UpdatePageRequest{Title: "Intro", Markdown: "Hi"})
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/pages/31" {
		t.Fatalf("expected PUT /api/pages/31, got %s %s", gotMethod, gotPath)
	}
}

func TestCreateAttachmentUploadsMultipart(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("uploaded_to"); got != "31" {
			t.Errorf("expected uploaded_to 31, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer func() { _ = file.Close() }()
			if header.Filename != "456-doc.pdf" {
				t.Errorf("expected filename 456-doc.pdf, got %q", header.Filename)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 77})
	}))

	id, err := client.CreateAttachment(context.Background(), "456-doc.pdf", strings.NewReader("pdfdata"), 31)
	if err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	if id != 77 {
		t.Fatalf("expected id 77, got %d", id)
	}
}

func TestListBooksUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data":[{"id":1,"name":"Intro"},{"id":2,"name":"Advanced"}]}`)
	}))

	books, err := client.ListBooks(context.Background())
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 || books[0].Name != "Intro" || books[1].ID != 2 {
		t.Fatalf("unexpected books %#v", books)
	}
}

func TestAPIErrorForwardedVerbatim(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = fmt.Fprint(w, `{"error":{"message":"The name field is required."}}`)
	}))

	_, err := client.CreateBook(context.Background(), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "The name field is required." {
		t.Fatalf("expected API message forwarded, got %q", apiErr.Message)
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 4})
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(HTTPConfig{
		BaseURL:       server.URL,
		TokenID:       "id",
		TokenSecret:   "secret",
		RetryAttempts: 3,
	})

	id, err := client.CreateBook(context.Background(), "Intro")
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if id != 4 || hits != 2 {
		t.Fatalf("expected retry then success, got id=%d hits=%d", id, hits)
	}
}
