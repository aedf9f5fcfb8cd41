package sitekit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/withstain/sitekit/newsletter"
	"github.com/withstain/sitekit/render"
)

// DefaultConfigFile is read when no --config path is given. A missing
// default file is not an error.
const DefaultConfigFile = "withstain.toml"

// Config holds all configuration for the site toolkit.
type Config struct {
	PostsDir     string `toml:"posts_dir"`     // markdown posts (default "src/posts")
	SourcesDir   string `toml:"sources_dir"`   // source photos named {slug}.{ext} (default "src/images/sources")
	OutputDir    string `toml:"output_dir"`    // generated post images (default "src/images/posts")
	PublicPrefix string `toml:"public_prefix"` // URL prefix written into front matter (default "/images/posts/")

	SiteOutputDir string `toml:"site_output_dir"` // site-wide cards (default ".")
	SiteSourceDir string `toml:"site_source_dir"` // site source tree that receives og-image.png (default "src")

	Brand render.Brand     `toml:"brand"`
	Fonts render.FontFiles `toml:"fonts"`

	Tags       TagsConfig        `toml:"tags"`
	Newsletter newsletter.Config `toml:"newsletter"`
}

// TagsConfig locates the tag registry.
type TagsConfig struct {
	Registry string `toml:"registry"` // JSON registry (default "src/_data/topicsMeta.json")
}

func (c *Config) setDefaults() {
	if c.PostsDir == "" {
		c.PostsDir = "src/posts"
	}
	if c.SourcesDir == "" {
		c.SourcesDir = "src/images/sources"
	}
	if c.OutputDir == "" {
		c.OutputDir = "src/images/posts"
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = "/images/posts/"
	}
	if c.SiteOutputDir == "" {
		c.SiteOutputDir = "."
	}
	if c.SiteSourceDir == "" {
		c.SiteSourceDir = "src"
	}

	def := render.DefaultBrand()
	if c.Brand.Label == "" {
		c.Brand.Label = def.Label
	}
	if c.Brand.Tagline == "" {
		c.Brand.Tagline = def.Tagline
	}
	if c.Brand.SiteName == "" {
		c.Brand.SiteName = def.SiteName
	}
	if c.Brand.SiteTagline == "" {
		c.Brand.SiteTagline = def.SiteTagline
	}

	if c.Tags.Registry == "" {
		c.Tags.Registry = "src/_data/topicsMeta.json"
	}
}

// LoadConfig reads the TOML file at path, loads a .env file if present,
// applies environment overrides and fills defaults. An empty path reads
// DefaultConfigFile when it exists.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("could not read .env", "err", err)
	}

	cfg.Newsletter.AdminAPIKey = EnvOr("ADMIN_API_KEY", cfg.Newsletter.AdminAPIKey)
	cfg.Newsletter.ResendAPIKey = EnvOr("RESEND_API_KEY", cfg.Newsletter.ResendAPIKey)
	cfg.Newsletter.NotificationEmail = EnvOr("NOTIFICATION_EMAIL", cfg.Newsletter.NotificationEmail)
	cfg.Newsletter.Addr = EnvOr("NEWSLETTER_ADDR", cfg.Newsletter.Addr)
	cfg.Newsletter.DatabasePath = EnvOr("NEWSLETTER_DB", cfg.Newsletter.DatabasePath)

	cfg.setDefaults()
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
