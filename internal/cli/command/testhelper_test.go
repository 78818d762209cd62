package command

import (
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/urfave/cli/v2"
)

// mockServer is a scripted ghostlink API endpoint.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer() *mockServer {
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	jsonResponse(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// testContext creates a CLI context pointed at the mock server. Extra
// command-local string flags can be supplied via extraFlags.
func testContext(server *mockServer, extraFlags map[string]string, args ...string) *cli.Context {
	app := &cli.App{
		Name:     "test",
		Flags:    globalFlags(),
		Metadata: map[string]any{},
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		f.Apply(set)
	}
	for name, value := range extraFlags {
		if set.Lookup(name) == nil {
			(&cli.StringFlag{Name: name, Value: value}).Apply(set)
		}
	}

	fullArgs := []string{"--server", server.URL, "--output", "json"}
	for name, value := range extraFlags {
		if value != "" {
			fullArgs = append(fullArgs, "--"+name, value)
		}
	}
	fullArgs = append(fullArgs, args...)
	set.Parse(fullArgs)

	return cli.NewContext(app, set, nil)
}
