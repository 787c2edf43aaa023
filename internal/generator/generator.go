// Package generator sequences a full site build: merge stylesheets, assemble
// the site tree, recreate the output directory and write one artifact per
// node. A build is single-threaded and fail-fast: the first error aborts with
// no rollback, so a failed build can leave a partially written output
// directory behind.
package generator

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/lmarkdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/sitetree"
	"git.home.luguber.info/inful/sitegen/internal/stylesheet"
)

// Generator builds a static site from a configuration.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
}

// New creates a generator for cfg.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, recorder: metrics.NoopRecorder{}}
}

// SetRecorder installs a metrics recorder. The default records nothing.
func (g *Generator) SetRecorder(r metrics.Recorder) {
	if r != nil {
		g.recorder = r
	}
}

// Build runs one full render of the site into the configured output
// directory. The output directory is deleted and recreated first, so builds
// must not run concurrently against the same directory.
func (g *Generator) Build() error {
	start := time.Now()
	log := slog.With("build_id", uuid.NewString())
	log.Info("Starting site build",
		"index", g.cfg.Index,
		"output", g.cfg.Output.Directory)

	err := g.build(log)
	elapsed := time.Since(start)
	g.recorder.ObserveBuildDuration(elapsed)
	if err != nil {
		g.recorder.IncBuildOutcome("failed")
		return err
	}
	g.recorder.IncBuildOutcome("success")
	log.Info("Site build completed", "duration", elapsed)
	return nil
}

func (g *Generator) build(log *slog.Logger) error {
	sheet, err := g.mergeStylesheets()
	if err != nil {
		return err
	}

	tree, err := sitetree.FromIndex(g.cfg.Index)
	if err != nil {
		return err
	}

	stylesheetID, err := tree.AddStylesheet("main.css", sheet, tree.Root())
	if err != nil {
		return err
	}

	faviconID := render.NoFavicon
	if g.cfg.Favicon != "" {
		faviconID, err = tree.Add(sitetree.Node{
			Name:    "favicon.ico",
			Content: sitetree.Resource{Source: g.cfg.Favicon},
		}, tree.Root())
		if err != nil {
			return err
		}
	}

	if g.cfg.NotFoundPage != "" {
		tokens, err := lmarkdown.ParseFile(g.cfg.NotFoundPage)
		if err != nil {
			return err
		}
		name := stem(g.cfg.NotFoundPage)
		if _, err := tree.Add(sitetree.Node{
			Name:    name,
			Content: sitetree.Page{Tokens: tokens, Source: g.cfg.NotFoundPage, KeepName: true},
		}, tree.Root()); err != nil {
			return err
		}
	}

	log.Debug("Site tree assembled", "nodes", tree.Len(), "tree", "\n"+tree.String())

	baseOptions := render.Options{
		Title:    g.cfg.Site.Title,
		Language: g.cfg.Site.Language,
		Favicon:  faviconID,
	}
	for _, m := range g.cfg.Site.Meta {
		baseOptions.Meta = append(baseOptions.Meta, render.Meta{Name: m.Name, Content: m.Content})
	}
	// Non-stylesheet link resources pass through to every page head.
	for _, l := range g.cfg.Links {
		if l.Rel != config.RelStylesheet {
			baseOptions.Links = append(baseOptions.Links, render.HTMLLink{
				Rel:  render.Rel(l.Rel),
				Href: l.Path,
			})
		}
	}

	outputDir := g.cfg.Output.Directory
	if _, err := os.Stat(outputDir); err == nil {
		log.Info("Removing output directory", "path", outputDir)
		if err := os.RemoveAll(outputDir); err != nil {
			return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to remove output directory").
				WithContext("path", outputDir).
				Build()
		}
	}
	log.Info("Creating output directory", "path", outputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", outputDir).
			Build()
	}

	renderer := render.NewHTMLRenderer(tree)
	return tree.Walk(func(id int, node *sitetree.Node) error {
		treePath, err := tree.Path(id)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, filepath.FromSlash(treePath))

		switch content := node.Content.(type) {
		case sitetree.Stylesheet:
			log.Info("Writing merged stylesheet", "path", outPath)
			if err := writeFile(outPath, content.Sheet.Bytes()); err != nil {
				return err
			}
			g.recorder.IncNodeWritten("stylesheet")
		case sitetree.Resource:
			log.Info("Copying resource", "from", content.Source, "to", outPath)
			if err := copyFile(content.Source, outPath); err != nil {
				return err
			}
			g.recorder.IncNodeWritten("resource")
		case sitetree.Folder:
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to create directory").
					WithContext("path", outPath).
					Build()
			}
			g.recorder.IncNodeWritten("folder")
		case sitetree.Page:
			href, err := tree.RelPath(id, stylesheetID)
			if err != nil {
				return err
			}
			opts := baseOptions
			opts.Links = make([]render.HTMLLink, len(baseOptions.Links), len(baseOptions.Links)+1)
			copy(opts.Links, baseOptions.Links)
			opts.Links = append(opts.Links, render.HTMLLink{Rel: render.RelStylesheet, Href: href})

			html, err := renderer.Render(id, opts)
			if err != nil {
				return err
			}

			htmlPath := filepath.Join(outPath, "index.html")
			if content.KeepName {
				htmlPath = filepath.Join(filepath.Dir(outPath), node.Name+".html")
			} else if err := os.MkdirAll(outPath, 0o755); err != nil {
				return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to create page directory").
					WithContext("path", outPath).
					Build()
			}
			log.Info("Writing page", "path", htmlPath)
			if err := writeFile(htmlPath, []byte(html)); err != nil {
				return err
			}
			g.recorder.IncNodeWritten("page")
		default:
			return sgerrors.New(sgerrors.CategoryRender, "unknown content variant").
				WithContext("name", node.Name).
				Build()
		}
		return nil
	})
}

// mergeStylesheets builds the global sheet: the built-in default (unless a
// configured global sheet replaces it), the configured global sheet, then
// every extra link resource with rel=stylesheet, in configuration order.
func (g *Generator) mergeStylesheets() (*stylesheet.Stylesheet, error) {
	sheet := stylesheet.Default()
	if g.cfg.Stylesheet.Global != "" {
		if g.cfg.Stylesheet.ReplaceDefault {
			sheet = stylesheet.New()
		}
		if err := sheet.Append(g.cfg.Stylesheet.Global); err != nil {
			return nil, err
		}
	}
	for _, l := range g.cfg.Links {
		if l.Rel == config.RelStylesheet {
			if err := sheet.Append(l.Path); err != nil {
				return nil, err
			}
		}
	}
	return sheet, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to write file").
			WithContext("path", path).
			Build()
	}
	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to open resource").
			WithContext("path", from).
			Build()
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to create resource copy").
			WithContext("path", to).
			Build()
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to copy resource").
			WithContext("from", from).
			WithContext("to", to).
			Build()
	}
	return nil
}

func stem(p string) string {
	base := filepath.Base(p)
	return base[:len(base)-len(filepath.Ext(base))]
}
