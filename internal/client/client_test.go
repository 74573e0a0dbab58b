package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stemsi/srms/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/v1/")
}

func TestRequestAttachesTokenAndHeaders(t *testing.T) {
	var gotAuth, gotType, gotTrace string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotTrace = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	})

	if _, err := c.Request(context.Background(), http.MethodGet, "/auth/verify", nil, nil); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization without token = %q, want empty", gotAuth)
	}

	c.SetToken("abc.def")
	headers := map[string]string{"X-Request-ID": "trace-1", "Content-Type": "application/vnd.srms+json"}
	if _, err := c.Request(context.Background(), http.MethodGet, "/auth/verify", nil, headers); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "Bearer abc.def" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/vnd.srms+json" || gotTrace != "trace-1" {
		t.Errorf("headers not merged: type=%q trace=%q", gotType, gotTrace)
	}
}

func TestRequestHTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"backend message", http.StatusNotFound, `{"success":false,"message":"Student not found","error":{"code":"STUDENT_NOT_FOUND"}}`, "Student not found", "STUDENT_NOT_FOUND"},
		{"html body", http.StatusNotFound, `<html>nope</html>`, "HTTP error! status: 404", ""},
		{"json without message", http.StatusBadGateway, `{"detail":"upstream"}`, "HTTP error! status: 502", ""},
		{"string error detail", http.StatusNotFound, `{"success":false,"message":"Student not found","error":"not_found"}`, "Student not found", ""},
		{"php errors list", http.StatusBadRequest, `{"success":false,"message":"Validation failed","errors":["email is required"],"error":{"code":"VALIDATION_ERROR","fields":{"email":"required"}}}`, "Validation failed", "VALIDATION_ERROR"},
		{"non-string message", http.StatusInternalServerError, `{"message":42}`, "HTTP error! status: 500", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Request(context.Background(), http.MethodGet, "/students/x", nil, nil)
			var herr *HTTPError
			if !errors.As(err, &herr) {
				t.Fatalf("err = %v, want *HTTPError", err)
			}
			if herr.Status != tt.status || herr.Message != tt.wantMsg || herr.Code != tt.wantCode {
				t.Errorf("got %+v", herr)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestRequestWrapsBarePayloads(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"1"}]`)
	})
	env, err := c.Request(context.Background(), http.MethodGet, "/anything", nil, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !env.Success || env.Message != "Request successful" || string(env.Data) != `[{"id":"1"}]` {
		t.Errorf("env = %+v", env)
	}
}

func TestRequestKeepsEnvelopes(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"Nothing to do"}`)
	})
	env, err := c.Request(context.Background(), http.MethodGet, "/anything", nil, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if env.Success || env.Message != "Nothing to do" {
		t.Errorf("env = %+v", env)
	}

	_, err = Decode[model.Student](env)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Nothing to do" {
		t.Errorf("Decode err = %v, want APIError", err)
	}
}

func TestRequestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL)
	srv.Close()

	_, err := c.Request(context.Background(), http.MethodGet, "/health", nil, nil)
	if err == nil {
		t.Fatal("want transport error")
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		t.Errorf("transport failure reported as HTTPError: %v", err)
	}
}

func TestListTranslatesPages(t *testing.T) {
	var gotQuery string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","data":[],"pagination":{"limit":10,"offset":20,"total_items":42}}`)
	})
	ctx := context.Background()

	list, err := c.Students().List(ctx, StudentQuery{PageQuery: PageQuery{Page: 3, Limit: 10}, Search: "ann"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "limit=10&offset=20&search=ann" {
		t.Errorf("query = %q", gotQuery)
	}
	if list.Pagination == nil || list.Pagination.TotalItems != 42 {
		t.Errorf("pagination = %+v", list.Pagination)
	}

	if _, err := c.Courses().List(ctx, CourseQuery{PageQuery: PageQuery{Page: 2}}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "offset=50" {
		t.Errorf("default limit query = %q", gotQuery)
	}
}

func TestLoginDecodesUserAndToken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/auth/login") {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "admin@school.edu" {
			t.Errorf("email = %q", req.Email)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"Login successful","data":{"user":{"id":"u1","email":"admin@school.edu","name":"Admin","role":"admin"},"token":"tok"}}`)
	})

	res, err := c.Login(context.Background(), "admin@school.edu", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Success || res.Data == nil || res.Data.Token != "tok" || res.Data.User.Role != model.RoleAdmin {
		t.Errorf("result = %+v", res)
	}
	if c.Token() != "" {
		t.Error("Login must not set the token itself")
	}
}
