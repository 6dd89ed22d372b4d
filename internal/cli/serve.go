package cli

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/esflame/esflame/pkg/errors"
)

// newServeCmd creates the serve command, a local preview server for
// generated graphs. It lists the SVGs in a directory and serves them with
// the embedded interaction script intact, which browsers block for file://
// URLs in some configurations.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview generated flame graphs in a browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runServe(cmd, dir, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8731", "listen address")
	return cmd
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>esflame</title>
<style>
  body { font-family: sans-serif; margin: 2em; background: #fafafa; }
  h1 { font-size: 1.3em; }
  li { margin: 0.3em 0; }
  .meta { color: #888; font-size: 0.85em; margin-left: 0.6em; }
</style>
</head>
<body>
<h1>Flame graphs in {{.Dir}}</h1>
<ul>
{{range .Graphs}}  <li><a href="/graphs/{{.Name}}">{{.Name}}</a><span class="meta">{{.Size}} · {{.ModTime}}</span></li>
{{else}}  <li>No SVG files found.</li>
{{end}}</ul>
</body>
</html>
`))

type graphEntry struct {
	Name    string
	Size    string
	ModTime string
}

func runServe(cmd *cobra.Command, dir, addr string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx).With("server", uuid.NewString()[:8])

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.New(errors.ErrCodeFileNotFound, "not a directory: %s", dir)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		graphs, err := listGraphs(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, map[string]any{"Dir": dir, "Graphs": graphs})
	})

	r.Get("/graphs/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if name != filepath.Base(name) || !strings.HasSuffix(name, ".svg") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		http.ServeFile(w, req, filepath.Join(dir, name))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	printInfo("Serving %s on http://%s", dir, addr)
	logger.Info("server started", "dir", dir, "addr", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", addr)
	}
	return nil
}

// listGraphs collects the SVG files in dir, newest first.
func listGraphs(dir string) ([]graphEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var graphs []graphEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		graphs = append(graphs, graphEntry{
			Name:    e.Name(),
			Size:    fmt.Sprintf("%.1f KiB", float64(fi.Size())/1024),
			ModTime: fi.ModTime().Format("2006-01-02 15:04"),
		})
	}
	sort.Slice(graphs, func(i, j int) bool { return graphs[i].ModTime > graphs[j].ModTime })
	return graphs, nil
}
