package sitekit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/withstain/sitekit/frontmatter"
	"github.com/withstain/sitekit/render"
)

// SourceExtensions are tried in order when looking for a post's source
// photo; the first existing file wins.
var SourceExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ImageRenderer renders every post variant for one request.
// *render.Renderer implements it.
type ImageRenderer interface {
	Render(ctx context.Context, req render.Request) ([]render.Output, error)
	Variants() []render.Variant
}

// Report summarizes a processing run.
type Report struct {
	Total     int
	Processed int
	Skipped   int
	Errors    int
}

// Processor finds posts without generated images, renders them and records
// the image paths in each post's front matter.
type Processor struct {
	cfg      Config
	renderer ImageRenderer
	logger   *log.Logger
}

// NewProcessor creates a Processor. cfg should come from LoadConfig.
func NewProcessor(cfg Config, renderer ImageRenderer, logger *log.Logger) *Processor {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{cfg: cfg, renderer: renderer, logger: logger}
}

// Run processes every post once. Per-post problems are logged and counted;
// only unexpected I/O failures abort the run.
func (p *Processor) Run(ctx context.Context) (Report, error) {
	var report Report

	for _, dir := range []string{p.cfg.SourcesDir, p.cfg.OutputDir} {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return report, fmt.Errorf("create %s: %w", dir, err)
			}
			p.logger.Info("created directory", "dir", dir)
		}
	}

	entries, err := os.ReadDir(p.cfg.PostsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Info("no posts directory, nothing to do", "dir", p.cfg.PostsDir)
			return report, nil
		}
		return report, fmt.Errorf("read posts: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	report.Total = len(files)
	if len(files) == 0 {
		p.logger.Info("no posts found", "dir", p.cfg.PostsDir)
		return report, nil
	}
	p.logger.Debug("found posts", "count", len(files))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := p.processPost(ctx, filepath.Join(p.cfg.PostsDir, name), &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (p *Processor) processPost(ctx context.Context, path string, report *Report) error {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read post %s: %w", name, err)
	}

	doc, err := frontmatter.Parse(data)
	if err != nil || doc.Get("title") == "" {
		p.logger.Warn("skipping post without title", "file", name)
		report.Skipped++
		return nil
	}

	title := doc.Get("title")
	slug := DeriveSlug(doc.Get("permalink"), title)
	logger := p.logger.With("slug", slug)

	if p.outputsExist(slug) {
		logger.Debug("all images exist, skipping")
		report.Skipped++
		return nil
	}

	source := p.findSource(slug)
	if source == "" {
		logger.Warn("no source image found", "dir", p.cfg.SourcesDir, "tried", strings.Join(SourceExtensions, "|"))
		report.Skipped++
		return nil
	}

	logger.Info("generating images", "title", title, "source", filepath.Base(source))
	_, err = p.renderer.Render(ctx, render.Request{
		SourcePath: source,
		Title:      title,
		OutputDir:  p.cfg.OutputDir,
		Slug:       slug,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Error("failed to generate images", "title", title, "err", err)
		report.Errors++
		return nil
	}

	changed := p.updateFrontMatter(doc, slug)
	if out := doc.Bytes(); changed && !bytes.Equal(out, data) {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("write front matter %s: %w", name, err)
		}
		logger.Info("updated front matter", "file", name)
	}
	report.Processed++
	return nil
}

// outputsExist reports whether every variant output for slug is on disk.
func (p *Processor) outputsExist(slug string) bool {
	for _, v := range p.renderer.Variants() {
		if _, err := os.Stat(v.OutputPath(p.cfg.OutputDir, slug)); err != nil {
			return false
		}
	}
	return true
}

func (p *Processor) findSource(slug string) string {
	for _, ext := range SourceExtensions {
		path := filepath.Join(p.cfg.SourcesDir, slug+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// frontMatterKeys maps front matter keys to the variant whose file they
// reference.
var frontMatterKeys = []struct {
	key     string
	variant string
}{
	{"image", render.Hero},
	{"ogImage", render.OpenGraph},
	{"twitterImage", render.Twitter},
}

func (p *Processor) updateFrontMatter(doc *frontmatter.Document, slug string) bool {
	changed := false
	for _, fk := range frontMatterKeys {
		v, ok := render.VariantByName(fk.variant)
		if !ok {
			continue
		}
		if doc.Set(fk.key, PublicPath(p.cfg.PublicPrefix, v.OutputName(slug))) {
			changed = true
		}
	}
	return changed
}
