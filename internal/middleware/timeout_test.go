// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTimeoutWriter() (*timeoutWriter, *httptest.ResponseRecorder) {
	rr := httptest.NewRecorder()
	return &timeoutWriter{ResponseWriter: rr, header: http.Header{}}, rr
}

func TestTimeout_NormalRequest(t *testing.T) {
	handler := Timeout(5 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if body := rr.Body.String(); body != "created" {
		t.Errorf("Body = %q, want %q", body, "created")
	}
	if h := rr.Header().Get("X-Custom-Header"); h != "test-value" {
		t.Errorf("X-Custom-Header = %q, want %q", h, "test-value")
	}
}

func TestTimeout_SlowRequest(t *testing.T) {
	finished := make(chan error, 1)
	handler := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("X-Late", "1")
		_, err := w.Write([]byte("late"))
		finished <- err
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if err := <-finished; !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("late write error = %v, want ErrHandlerTimeout", err)
	}
	if body := rr.Body.String(); body != "Request timeout" {
		t.Errorf("Body = %q, want %q", body, "Request timeout")
	}
	if rr.Header().Get("X-Late") != "" {
		t.Error("late header leaked into the response")
	}
}

func TestTimeout_Panic(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if p := recover(); p != "boom" {
			t.Errorf("recovered %v, want boom", p)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("panic was swallowed")
}

func TestTimeoutWriter(t *testing.T) {
	t.Run("second WriteHeader is ignored", func(t *testing.T) {
		tw, rr := newTestTimeoutWriter()
		tw.WriteHeader(http.StatusOK)
		tw.WriteHeader(http.StatusNotFound)
		if rr.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
		}
	})

	t.Run("Write implies 200", func(t *testing.T) {
		tw, rr := newTestTimeoutWriter()
		tw.Header().Set("Content-Type", "text/plain")
		n, err := tw.Write([]byte("hello"))
		if err != nil || n != 5 {
			t.Fatalf("Write() = %d, %v", n, err)
		}
		if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "text/plain" {
			t.Errorf("Status = %d, Content-Type = %q", rr.Code, rr.Header().Get("Content-Type"))
		}
	})
}
