package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/withstain/sitekit/newsletter"
)

type testSite struct {
	root     string
	posts    string
	sources  string
	output   string
	registry string
	db       string
	config   string
}

func setupSite(t *testing.T) testSite {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("NEWSLETTER_DB", "")

	s := testSite{
		root:     root,
		posts:    filepath.Join(root, "src", "posts"),
		sources:  filepath.Join(root, "src", "images", "sources"),
		output:   filepath.Join(root, "src", "images", "posts"),
		registry: filepath.Join(root, "src", "_data", "topicsMeta.json"),
		db:       filepath.Join(root, "data", "newsletter.db"),
		config:   filepath.Join(root, "withstain.toml"),
	}
	config := fmt.Sprintf(`posts_dir = %q
sources_dir = %q
output_dir = %q

[tags]
registry = %q

[newsletter]
database = %q
`, s.posts, s.sources, s.output, s.registry, s.db)
	writeFile(t, s.config, config)
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	writeFile(t, path, buf.String())
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, s testSite, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&out, io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", s.config}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateArgs(t *testing.T) {
	s := setupSite(t)

	if _, err := execute(t, s, "generate", "only-one.jpg"); err == nil {
		t.Fatal("expected error for a single argument")
	}
	if _, err := execute(t, s, "generate", "a", "b", "c", "d", "e"); err == nil {
		t.Fatal("expected error for five arguments")
	}

	_, err := execute(t, s, "generate", filepath.Join(s.root, "missing.jpg"), "Title")
	if err == nil || !strings.Contains(err.Error(), "input image not found") {
		t.Fatalf("expected input-not-found error, got %v", err)
	}
}

func TestGenerateWritesImages(t *testing.T) {
	if testing.Short() {
		t.Skip("renders full-size images")
	}
	s := setupSite(t)
	input := filepath.Join(s.root, "photo.png")
	writePNG(t, input, 400, 300)

	outDir := filepath.Join(s.root, "out")
	out, err := execute(t, s, "generate", input, "Health Optimization Guide!", outDir)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for _, name := range []string{
		"health-optimization-guide-thumb.jpg",
		"health-optimization-guide-hero.jpg",
		"health-optimization-guide-og.png",
		"health-optimization-guide-twitter.png",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if !strings.Contains(out, "Created directory") {
		t.Errorf("expected directory creation notice:\n%s", out)
	}
	if !strings.Contains(out, `ogImage: "/images/posts/health-optimization-guide-og.png"`) {
		t.Errorf("expected front matter snippet:\n%s", out)
	}
}

func TestFrontMatterSnippet(t *testing.T) {
	got := frontMatterSnippet("/images/posts/", "Sleep & Recovery", "sleep")
	want := []string{
		"---",
		`title: "Sleep & Recovery"`,
		`image: "/images/posts/sleep-hero.jpg"`,
		`ogImage: "/images/posts/sleep-og.png"`,
		`twitterImage: "/images/posts/sleep-twitter.png"`,
		"---",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected snippet:\n%s", strings.Join(got, "\n"))
	}
}

func TestProcessWithoutPosts(t *testing.T) {
	s := setupSite(t)

	out, err := execute(t, s, "process")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !strings.Contains(out, "Summary") {
		t.Fatalf("expected summary:\n%s", out)
	}
	for _, dir := range []string{s.sources, s.output} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected %s to be created: %v", dir, err)
		}
	}
}

func TestSiteOG(t *testing.T) {
	if testing.Short() {
		t.Skip("renders full-size images")
	}
	s := setupSite(t)

	if _, err := execute(t, s, "site-og"); err != nil {
		t.Fatalf("site-og failed: %v", err)
	}
	for _, path := range []string{
		filepath.Join(s.root, "og-image.png"),
		filepath.Join(s.root, "twitter-image.png"),
		filepath.Join(s.root, "src", "og-image.png"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	}
}

func setupTags(t *testing.T, s testSite) {
	t.Helper()
	writeFile(t, s.registry, `{
  "sleep": {"display": "Sleep", "description": "Articles and insights on sleep"}
}
`)
	writeFile(t, filepath.Join(s.posts, "a.md"), "---\ntitle: A\ntags: [sleep, slep, zone-2-cardio]\n---\n")
}

func TestTagsCheck(t *testing.T) {
	s := setupSite(t)
	setupTags(t, s)

	out, err := execute(t, s, "tags")
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	if !strings.Contains(out, "zone-2-cardio (1 post)") {
		t.Errorf("expected missing tag line:\n%s", out)
	}
	if !strings.Contains(out, `did you mean "sleep"?`) {
		t.Errorf("expected suggestion:\n%s", out)
	}
	if !strings.Contains(out, `"display": "Zone 2 Cardio",`) {
		t.Errorf("expected manual entry snippet:\n%s", out)
	}

	if _, err := execute(t, s, "tags", "--strict"); err == nil {
		t.Fatal("expected --strict to fail with missing tags")
	}

	data, err := os.ReadFile(s.registry)
	if err != nil {
		t.Fatalf("read registry: %v", err)
	}
	if strings.Contains(string(data), "zone-2-cardio") {
		t.Fatalf("registry modified without --fix:\n%s", data)
	}
}

func TestTagsFix(t *testing.T) {
	s := setupSite(t)
	setupTags(t, s)

	out, err := execute(t, s, "tags", "--fix", "--strict")
	if err != nil {
		t.Fatalf("tags --fix failed: %v", err)
	}
	if !strings.Contains(out, "Added 2 tag(s)") {
		t.Errorf("expected added notice:\n%s", out)
	}

	data, err := os.ReadFile(s.registry)
	if err != nil {
		t.Fatalf("read registry: %v", err)
	}
	if !strings.Contains(string(data), `"zone-2-cardio": {`) {
		t.Fatalf("registry not updated:\n%s", data)
	}

	out, err = execute(t, s, "tags")
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	if !strings.Contains(out, "All tags are properly registered") {
		t.Fatalf("expected clean report:\n%s", out)
	}
}

func TestSubscribersUnsubscribe(t *testing.T) {
	s := setupSite(t)

	store, err := newsletter.NewStore(s.db)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Add(ctx, "reader@example.com", "", ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	store.Close()

	out, err := execute(t, s, "subscribers", "unsubscribe", "reader@example.com")
	if err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if !strings.Contains(out, "Unsubscribed reader@example.com") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, s, "subscribers", "list", "--active")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out, "reader@example.com") {
		t.Errorf("unsubscribed reader should not be listed as active:\n%s", out)
	}

	out, err = execute(t, s, "subscribers", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "reader@example.com") || !strings.Contains(out, "unsubscribed") {
		t.Errorf("expected unsubscribed reader in full list:\n%s", out)
	}

	_, err = execute(t, s, "subscribers", "unsubscribe", "ghost@example.com")
	if err == nil || !strings.Contains(err.Error(), "no subscriber") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	s := setupSite(t)
	s.config = filepath.Join(s.root, "nope.toml")

	_, err := execute(t, s, "process")
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected cancellation: %v", err)
	}
}
