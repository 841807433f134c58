package reconcile

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/creasty/defaults"
)

func newTestHTTPBackend(t *testing.T, handler http.Handler) (*HTTPBackend, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults.Set() error = %v", err)
	}
	cfg.HTTP.Endpoint = server.URL + "/api"
	cfg.HTTP.Token = "test-token"
	cfg.Logger = &testLogger{}

	backend, err := NewHTTPBackend(cfg)
	if err != nil {
		t.Fatalf("NewHTTPBackend() error = %v", err)
	}

	return backend, server
}

func TestHTTPBackend_Get(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q, want %q", got, "Bearer test-token")
		}

		switch r.URL.Path {
		case "/api/clients/webapp":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"enabled": true, "id": "generated"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	backend, server := newTestHTTPBackend(t, handler)
	defer server.Close()
	defer backend.Close()

	got, err := backend.Get("clients/webapp")
	if err != nil {
		t.Fatalf("HTTPBackend.Get() error = %v", err)
	}

	want := map[string]interface{}{"enabled": true, "id": "generated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HTTPBackend.Get() = %v, want %v", got, want)
	}

	missing, err := backend.Get("clients/unknown")
	if err != nil {
		t.Fatalf("HTTPBackend.Get() error = %v", err)
	}
	if missing != nil {
		t.Errorf("HTTPBackend.Get() = %v for a missing resource, want nil", missing)
	}
}

func TestHTTPBackend_List(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/clients" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "webapp"}, {"name": "mobile"}]`))
	})

	backend, server := newTestHTTPBackend(t, handler)
	defer server.Close()
	defer backend.Close()

	got, err := backend.List("clients")
	if err != nil {
		t.Fatalf("HTTPBackend.List() error = %v", err)
	}

	want := []map[string]interface{}{{"name": "webapp"}, {"name": "mobile"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HTTPBackend.List() = %v, want %v", got, want)
	}
}

func TestHTTPBackend_mutations(t *testing.T) {
	var methods []string
	var paths []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.Path)

		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case http.MethodPut:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"enabled": true, "id": "generated"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	backend, server := newTestHTTPBackend(t, handler)
	defer server.Close()
	defer backend.Close()

	repr := map[string]interface{}{"enabled": true}

	// Empty creation responses echo the submitted representation.
	created, err := backend.Create("clients/webapp", repr)
	if err != nil {
		t.Fatalf("HTTPBackend.Create() error = %v", err)
	}
	if !reflect.DeepEqual(created, repr) {
		t.Errorf("HTTPBackend.Create() = %v, want %v", created, repr)
	}

	updated, err := backend.Update("clients/webapp", repr)
	if err != nil {
		t.Fatalf("HTTPBackend.Update() error = %v", err)
	}
	if !reflect.DeepEqual(updated, map[string]interface{}{"enabled": true, "id": "generated"}) {
		t.Errorf("HTTPBackend.Update() = %v, want the server representation", updated)
	}

	if err := backend.Delete("clients/webapp"); err != nil {
		t.Fatalf("HTTPBackend.Delete() error = %v", err)
	}

	wantMethods := []string{http.MethodPost, http.MethodPut, http.MethodDelete}
	if !reflect.DeepEqual(methods, wantMethods) {
		t.Errorf("request methods = %v, want %v", methods, wantMethods)
	}

	for _, path := range paths {
		if path != "/api/clients/webapp" {
			t.Errorf("request path = %v, want /api/clients/webapp", path)
		}
	}
}

func TestHTTPBackend_url(t *testing.T) {
	type args struct {
		path string
	}
	tests := []struct {
		name     string
		endpoint string
		args     args
		want     string
	}{
		{
			name:     "plain",
			endpoint: "http://api.local/api",
			args: args{
				path: "clients/webapp",
			},
			want: "http://api.local/api/clients/webapp",
		},
		{
			name:     "trailing-slash-endpoint",
			endpoint: "http://api.local/api/",
			args: args{
				path: "clients/webapp",
			},
			want: "http://api.local/api/clients/webapp",
		},
		{
			name:     "surrounding-slashes-path",
			endpoint: "http://api.local/api",
			args: args{
				path: "/clients/webapp/",
			},
			want: "http://api.local/api/clients/webapp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HTTPBackend{Endpoint: tt.endpoint}
			if got := h.url(tt.args.path); got != tt.want {
				t.Errorf("HTTPBackend.url() = %v, want %v", got, tt.want)
			}
		})
	}
}
