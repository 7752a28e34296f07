package reportserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/report"
)

// Config captures the settings for serving a results report.
type Config struct {
	Addr string
	// SnapshotPath is the results YAML the report renders from. It is read
	// per request so a run writing new repetitions shows up on refresh.
	SnapshotPath string
	// DBPath optionally exposes the history database for download.
	DBPath string
	Now    func() time.Time
}

// NewHandler builds the HTTP handler serving the rendered report, the raw
// snapshot, and optionally the history database.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.SnapshotPath == "" {
		return nil, errors.New("reportserver: snapshot path is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", serveReport(cfg.SnapshotPath, now))
	mux.Handle("/snapshot.yaml", serveFile(cfg.SnapshotPath, "application/yaml"))
	if cfg.DBPath != "" {
		mux.Handle("/data/history.duckdb", serveFile(cfg.DBPath, "application/octet-stream"))
	}
	return mux, nil
}

// serveReport renders the snapshot as HTML on every request.
func serveReport(snapshotPath string, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snapshots, err := report.Load(snapshotPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("load snapshot: %v", err), http.StatusInternalServerError)
			return
		}
		html, err := report.RenderHTML(snapshots, now())
		if err != nil {
			http.Error(w, fmt.Sprintf("render report: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}

// serveFile serves one file from disk with a fixed content type.
func serveFile(path, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, path)
	})
}
