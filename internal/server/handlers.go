package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morezero/salaatflow-assistant/pkg/dispatcher"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
	"github.com/morezero/salaatflow-assistant/pkg/orchestrator"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

// HeaderRequestID carries the correlation id in and out of the HTTP surface.
const HeaderRequestID = "X-Request-ID"

// maxBodyBytes bounds the /chat body: 50 turns of 8000 characters plus the message.
const maxBodyBytes = 2 << 20

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /tools", s.handleTools)
	mux.Handle("GET /metrics", promhttp.Handler())
	return withRequestID(mux)
}

// withRequestID stamps every request context with the inbound X-Request-ID,
// or a fresh one, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = observability.NewRequestID()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("%s - response encode: %v", logPrefix, err))
	}
}

// handleChat answers 400 only when the body is not a well-formed request;
// every orchestrated outcome, failures included, is a 200.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := observability.RequestID(ctx)

	var req orchestrator.ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		detail := "body is not a valid chat request"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "body is too large"
		}
		slog.WarnContext(ctx, fmt.Sprintf("%s - rejected /chat body: %v", logPrefix, err))
		writeJSON(w, http.StatusBadRequest, orchestrator.Reject(requestID, req.Language, detail))
		return
	}

	status := http.StatusOK
	if err := orchestrator.Validate(&req); err != nil {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, s.chat.Handle(ctx, req))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
	defer cancel()

	report := dispatcher.CheckHealth(ctx, s.gen, s.tools)
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	h := s.tools.Health()
	if h.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "missing": h.Checks.Missing})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.Describe()})
}

// homePageTemplate is the HTML for the status page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>SalaatFlow Assistant</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>SalaatFlow Assistant</h1>
  <p class="meta">Tool registry status and contents.</p>

  <section>
    <h2>Registry</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Registered tools: {{.Health.Checks.Tools}}</p>
    {{if .Health.Checks.Missing}}<p class="error">Missing: {{range .Health.Checks.Missing}}{{.}} {{end}}</p>{{end}}
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Tools</h2>
    {{if not .Tools}}
    <p>No tools registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Tool</th><th>Category</th><th>Description</th><th>Required</th></tr>
      </thead>
      <tbody>
        {{range .Tools}}
        <tr><td>{{.Name}}</td><td>{{.Category}}</td><td>{{.Description}}</td><td>{{if .Required}}yes{{else}}no{{end}}</td></tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health *registry.HealthOutput
	Tools  []registry.ToolInfo
}

// handleHome returns an HTTP handler for the registry status page. It does
// not probe the generation provider.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data := homeData{Health: s.tools.Health(), Tools: s.tools.Describe()}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
