package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ConfigTemplateName is the one reserved template synthesized from the
// context instead of fetched.
const ConfigTemplateName = "cocoindex.yaml"

// Template is a named unit of content materialized into the sidecar dir.
type Template struct {
	Name string
	// Synthesized marks the reserved config template.
	Synthesized bool
}

// DefaultTemplates lists the full sidecar file set in materialization order.
var DefaultTemplates = []Template{
	{Name: ConfigTemplateName, Synthesized: true},
	{Name: "main.py"},
	{Name: "mcp_server.py"},
	{Name: "requirements.txt"},
	{Name: "docker-compose.yml"},
	{Name: ".env"},
}

// Materialize fetches every remote template concurrently (failing the whole
// run on the first error), then writes the resolved file set under the
// sidecar dir. Nothing is written until all fetches have succeeded, so a
// network failure cannot leave a partial installation behind.
func Materialize(ctx context.Context, fetcher *Fetcher, templates []Template, pctx Context) error {
	targetDir := pctx.SidecarDir()

	contents := make(map[string][]byte, len(templates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, tpl := range templates {
		if tpl.Synthesized {
			continue
		}
		tpl := tpl
		g.Go(func() error {
			data, err := fetcher.Fetch(gctx, tpl.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			contents[tpl.Name] = Substitute(data, pctx)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", targetDir, err)
	}

	for _, tpl := range templates {
		data := contents[tpl.Name]
		if tpl.Synthesized {
			var err error
			data, err = RenderConfig(pctx)
			if err != nil {
				return err
			}
		}
		path := filepath.Join(targetDir, tpl.Name)
		if err := os.WriteFile(path, data, fileMode(tpl.Name)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// fileMode keeps the .env (it carries the database URL) private.
func fileMode(name string) os.FileMode {
	if name == ".env" {
		return 0o600
	}
	return 0o644
}
