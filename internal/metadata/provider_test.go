// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestHTTPProvider_Fetch(t *testing.T) {
	var (
		mu       sync.Mutex
		gotQuery map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		defer mu.Unlock()
		gotQuery = map[string]string{"t": q.Get("t"), "y": q.Get("y"), "apikey": q.Get("apikey")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Response":"True","Title":"Dinosaur Planet","Year":"2003","Poster":"http://img/p.jpg","imdbRating":"7.7","imdbID":"tt0389605"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewHTTPProvider() error = %v", err)
	}

	d, err := p.Fetch(context.Background(), Info{Title: "Dinosaur Planet", Year: "2003"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := Details{IMDbID: "tt0389605", Title: "Dinosaur Planet", Year: "2003", Img: "http://img/p.jpg", Rating: 7.7}
	if d != want {
		t.Errorf("Fetch() = %+v, want %+v", d, want)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotQuery["t"] != "Dinosaur Planet" || gotQuery["y"] != "2003" || gotQuery["apikey"] != "secret" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestHTTPProvider_NullYearOmitted(t *testing.T) {
	var hasYear atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasYear.Store(r.URL.Query().Has("y"))
		_, _ = w.Write([]byte(`{"Response":"True","Title":"X","imdbRating":"N/A"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	d, err := p.Fetch(context.Background(), Info{Title: "X", Year: "NULL"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if hasYear.Load() {
		t.Error("year parameter sent for NULL year")
	}
	if d.Rating != 0 {
		t.Errorf("Rating = %v, want 0 for N/A", d.Rating)
	}
}

func TestHTTPProvider_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       error
		wantTransient bool
	}{
		{"not found", http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`, ErrNotFound, false},
		{"bad key in body", http.StatusOK, `{"Response":"False","Error":"Invalid API key!"}`, ErrUnauthorized, false},
		{"unauthorized status", http.StatusUnauthorized, `{}`, ErrUnauthorized, false},
		{"server error", http.StatusBadGateway, ``, nil, true},
		{"rate limited", http.StatusTooManyRequests, ``, nil, true},
		{"bad request", http.StatusBadRequest, ``, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL})
			if err != nil {
				t.Fatal(err)
			}

			_, err = p.Fetch(context.Background(), Info{Title: "X"})
			if err == nil {
				t.Fatal("Fetch() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := IsTransient(err); got != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", got, tt.wantTransient)
			}
		})
	}
}

func TestHTTPProvider_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		_, _ = p.Fetch(context.Background(), Info{Title: "X"})
	}

	_, err = p.Fetch(context.Background(), Info{Title: "X"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want ErrOpenState", err)
	}
	if n := calls.Load(); n != 5 {
		t.Errorf("server calls = %d, want 5", n)
	}
	if p.State() != "open" {
		t.Errorf("State() = %q, want open", p.State())
	}
}

func TestHTTPProvider_NotFoundDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if _, err := p.Fetch(context.Background(), Info{Title: "X"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: error = %v, want ErrNotFound", i, err)
		}
	}
	if p.State() != "closed" {
		t.Errorf("State() = %q, want closed", p.State())
	}
}

func TestNewHTTPProvider_BadURL(t *testing.T) {
	if _, err := NewHTTPProvider(HTTPProviderConfig{BaseURL: "ftp://example.com"}); err == nil {
		t.Error("NewHTTPProvider() error = nil, want error for ftp scheme")
	}
}
