// Package config loads routedoc settings from a YAML file, ROUTEDOC_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vitalvas/routedoc/openapi"
)

// EnvPrefix is prepended to every environment override, e.g.
// ROUTEDOC_LOG_LEVEL for log.level.
const EnvPrefix = "ROUTEDOC"

// Config is the complete routedoc configuration.
type Config struct {
	Listen   string         `mapstructure:"listen"`
	Output   string         `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Docs     DocsConfig     `mapstructure:"docs"`
	Document DocumentConfig `mapstructure:"document"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DocsConfig controls where the serve command mounts the documentation.
type DocsConfig struct {
	Path string `mapstructure:"path"`
	// UI is one of "swagger", "rapidoc" or "redoc".
	UI string `mapstructure:"ui"`
	// CORSOrigins lists origins allowed to fetch the schema endpoints.
	CORSOrigins []string `mapstructure:"cors_origins"`
	// MaxAge is the Cache-Control max-age in seconds for the schema endpoints.
	MaxAge int `mapstructure:"max_age"`
}

// DocumentConfig holds the document-level OpenAPI settings.
type DocumentConfig struct {
	Title           string           `mapstructure:"title"`
	Version         string           `mapstructure:"version"`
	Description     string           `mapstructure:"description"`
	TermsOfService  string           `mapstructure:"terms_of_service"`
	Contact         ContactConfig    `mapstructure:"contact"`
	License         LicenseConfig    `mapstructure:"license"`
	Servers         []ServerConfig   `mapstructure:"servers"`
	Tags            []TagConfig      `mapstructure:"tags"`
	SecuritySchemes []SecurityScheme `mapstructure:"security_schemes"`
	Security        []string         `mapstructure:"security"`
	OperationIDs    bool             `mapstructure:"operation_ids"`
}

type ContactConfig struct {
	Name  string `mapstructure:"name"`
	URL   string `mapstructure:"url"`
	Email string `mapstructure:"email"`
}

type LicenseConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type ServerConfig struct {
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

type TagConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// SecurityScheme describes one entry of document.security_schemes. Key is
// the name referenced from document.security and is kept case-sensitive.
// Type is one of "basic", "bearer", "apiKey" or "openIdConnect".
type SecurityScheme struct {
	Key          string `mapstructure:"key"`
	Type         string `mapstructure:"type"`
	BearerFormat string `mapstructure:"bearer_format"`
	In           string `mapstructure:"in"`
	Name         string `mapstructure:"name"`
	URL          string `mapstructure:"url"`
	Description  string `mapstructure:"description"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("output", openapi.DefaultOutput)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("docs.path", "/docs")
	v.SetDefault("docs.ui", "swagger")
	v.SetDefault("docs.max_age", 60)
	v.SetDefault("document.title", "Example API")
	v.SetDefault("document.version", "1.0.0")
	v.SetDefault("document.servers", []map[string]any{{"url": "http://127.0.0.1:8080"}})
	v.SetDefault("document.security_schemes", []map[string]any{{"key": "Bearer", "type": "basic"}})
	v.SetDefault("document.security", []string{"Bearer"})
}

// New returns a viper instance with defaults and environment overrides set
// up. Flags bound with BindFlags take precedence over both.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds flags to configuration keys. Each entry maps a key such
// as "log.level" to the flag name carrying it.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q for %s", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads file, or routedoc.yaml from the working directory when file is
// empty, and decodes the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("routedoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Docs.DocsUI(); err != nil {
		return err
	}
	if c.Document.Title == "" || c.Document.Version == "" {
		return errors.New("document.title and document.version are required")
	}
	for _, scheme := range c.Document.SecuritySchemes {
		if _, err := scheme.build(); err != nil {
			return fmt.Errorf("security scheme %q: %w", scheme.Key, err)
		}
	}
	return nil
}

// DocsUI maps the ui name onto the openapi docs UI.
func (d DocsConfig) DocsUI() (openapi.DocsUI, error) {
	switch strings.ToLower(d.UI) {
	case "", "swagger":
		return openapi.DocsSwaggerUI, nil
	case "rapidoc":
		return openapi.DocsRapiDoc, nil
	case "redoc":
		return openapi.DocsRedoc, nil
	default:
		return 0, fmt.Errorf("unknown docs ui %q", d.UI)
	}
}

// Info returns the document info object.
func (d DocumentConfig) Info() openapi.Info {
	info := openapi.Info{
		Title:          d.Title,
		Version:        d.Version,
		Description:    d.Description,
		TermsOfService: d.TermsOfService,
	}
	if d.Contact != (ContactConfig{}) {
		info.Contact = &openapi.Contact{Name: d.Contact.Name, URL: d.Contact.URL, Email: d.Contact.Email}
	}
	if d.License.Name != "" {
		info.License = &openapi.License{Name: d.License.Name, URL: d.License.URL}
	}
	return info
}

// Apply copies servers, tags and security settings onto spec.
func (d DocumentConfig) Apply(spec *openapi.Spec) error {
	for _, s := range d.Servers {
		spec.AddServer(openapi.Server{URL: s.URL, Description: s.Description})
	}
	for _, t := range d.Tags {
		spec.AddTag(openapi.Tag{Name: t.Name, Description: t.Description})
	}

	for _, s := range d.SecuritySchemes {
		scheme, err := s.build()
		if err != nil {
			return fmt.Errorf("security scheme %q: %w", s.Key, err)
		}
		spec.AddSecurityScheme(s.Key, scheme)
	}

	for _, key := range d.Security {
		spec.AddSecurity(key)
	}

	if d.OperationIDs {
		spec.AutoOperationIDs()
	}
	return nil
}

func (s SecurityScheme) build() (*openapi.SecurityScheme, error) {
	if s.Key == "" {
		return nil, errors.New("key is required")
	}

	var scheme *openapi.SecurityScheme
	switch s.Type {
	case "basic":
		scheme = openapi.BasicAuth()
	case "bearer":
		scheme = openapi.BearerAuth(s.BearerFormat)
	case "apiKey":
		if s.In == "" || s.Name == "" {
			return nil, errors.New("apiKey requires in and name")
		}
		scheme = openapi.APIKeyAuth(s.In, s.Name)
	case "openIdConnect":
		if s.URL == "" {
			return nil, errors.New("openIdConnect requires url")
		}
		scheme = openapi.OpenIDConnectAuth(s.URL)
	default:
		return nil, fmt.Errorf("unknown type %q", s.Type)
	}
	scheme.Description = s.Description
	return scheme, nil
}
