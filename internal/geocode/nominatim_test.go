package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &Client{BaseURL: srv.URL, HTTPClient: srv.Client(), Timeout: 2 * time.Second}, srv
}

func TestReverseGeocode_ComposesAddress(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("format query: %q", got)
		}
		w.Write([]byte(`{"address":{"house_number":"12","road":"Rue des Lilas","postcode":"45000","city":"Orléans"}}`))
	})
	defer srv.Close()

	got := c.ReverseGeocode(context.Background(), 47.9, 1.9)
	want := "12 Rue des Lilas, 45000 Orléans"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReverseGeocode_FallbacksForMissingFields(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"postcode":"45000"}}`))
	})
	defer srv.Close()

	got := c.ReverseGeocode(context.Background(), 47.9, 1.9)
	want := "Rue inconnue, 45000 Ville inconnue"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReverseGeocode_TownFallsBackForCity(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"road":"Grande Rue","town":"Meung-sur-Loire"}}`))
	})
	defer srv.Close()

	got := c.ReverseGeocode(context.Background(), 47.8, 1.7)
	if got != "Grande Rue, Meung-sur-Loire" {
		t.Fatalf("got %q", got)
	}
}

func TestReverseGeocode_NeverFails(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>rate limited</html>"))
		},
		"no address field": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Unable to geocode"}`))
		},
	}
	for name, handler := range cases {
		c, srv := newTestClient(handler)
		got := c.ReverseGeocode(context.Background(), 0, 0)
		srv.Close()
		if got != AddressNotFound {
			t.Errorf("%s: got %q, want %q", name, got, AddressNotFound)
		}
	}
}

func TestReverseGeocode_UnreachableHost(t *testing.T) {
	c := &Client{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}
	if got := c.ReverseGeocode(context.Background(), 47.9, 1.9); got != AddressNotFound {
		t.Fatalf("got %q, want %q", got, AddressNotFound)
	}
}
