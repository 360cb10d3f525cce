package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rtzll/tubehack/internal/scrape"
)

// AppName names the XDG directories and the environment prefix.
const AppName = "tubehack"

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings
type Config struct {
	// Generation
	Provider          string
	Model             string
	OutputLanguage    string
	GenerationTimeout time.Duration
	TranscribeTimeout time.Duration
	ScriptPrompt      string
	GeminiAPIKey      string
	OpenAIAPIKey      string

	// Scraping
	CaptionLanguages []string
	CaptionSource    string
	AcceptLanguage   string
	UserAgent        string
	PageTimeout      time.Duration
	ChannelTimeout   time.Duration
	ThumbnailTimeout time.Duration
	MaxVideos        int

	// Output
	Verbose       bool
	Quiet         bool
	MCPLogEnabled bool

	// Fixed XDG paths (not configurable)
	ConfigDir  string
	PromptsDir string
	DataDir    string
	CacheDir   string
	TempDir    string
}

//go:embed config.toml prompts/*.tmpl
var defaultFS embed.FS

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// ensureDefaultFile copies an embedded default into dir unless a file with
// that name already exists there.
func ensureDefaultFile(dir, embedPath, description string, announce bool) error {
	filePath := filepath.Join(dir, filepath.Base(embedPath))
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", description, err)
	}

	defaultContent, err := defaultFS.ReadFile(embedPath)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	if announce {
		fmt.Printf("Created default %s at %s\n", description, filePath)
	}
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml into configDir if missing.
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration", true)
}

// EnsureDefaultPrompts writes every embedded prompt template into promptsDir,
// keeping templates the user already edited.
func EnsureDefaultPrompts(promptsDir string) error {
	entries, err := fs.ReadDir(defaultFS, "prompts")
	if err != nil {
		return fmt.Errorf("listing embedded prompts: %w", err)
	}
	var errs []error
	for _, entry := range entries {
		if err := ensureDefaultFile(promptsDir, "prompts/"+entry.Name(), "prompt template", false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// a .env file is optional
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, AppName)
	dataDir := filepath.Join(xdg.DataHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)

	v := newViper(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := configFromViper(v)
	config.ConfigDir = configDir
	config.PromptsDir = filepath.Join(configDir, "prompts")
	config.DataDir = dataDir
	config.CacheDir = cacheDir
	config.TempDir = filepath.Join(cacheDir, "temp")

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model", "")
	v.SetDefault("output_language", "Japanese")
	v.SetDefault("generation_timeout", 2*time.Minute)
	v.SetDefault("transcribe_timeout", 5*time.Minute)
	v.SetDefault("script_prompt", "")
	v.SetDefault("caption_languages", scrape.DefaultCaptionLanguages)
	v.SetDefault("caption_source", CaptionSourcePage)
	v.SetDefault("accept_language", scrape.DefaultAcceptLanguage)
	v.SetDefault("user_agent", scrape.DefaultUserAgent)
	v.SetDefault("page_timeout", 15*time.Second)
	v.SetDefault("channel_timeout", 20*time.Second)
	v.SetDefault("thumbnail_timeout", 10*time.Second)
	v.SetDefault("max_videos", MaxVideos)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	// provider keys are commonly exported without the prefix
	_ = v.BindEnv("gemini_api_key", "TUBEHACK_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("openai_api_key", "TUBEHACK_OPENAI_API_KEY", "OPENAI_API_KEY")

	return v
}

func configFromViper(v *viper.Viper) *Config {
	maxVideos := v.GetInt("max_videos")
	if maxVideos <= 0 || maxVideos > MaxVideos {
		maxVideos = MaxVideos
	}

	return &Config{
		Provider:          strings.ToLower(v.GetString("provider")),
		Model:             v.GetString("model"),
		OutputLanguage:    v.GetString("output_language"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		TranscribeTimeout: v.GetDuration("transcribe_timeout"),
		ScriptPrompt:      v.GetString("script_prompt"),
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),

		CaptionLanguages: v.GetStringSlice("caption_languages"),
		CaptionSource:    strings.ToLower(v.GetString("caption_source")),
		AcceptLanguage:   v.GetString("accept_language"),
		UserAgent:        v.GetString("user_agent"),
		PageTimeout:      v.GetDuration("page_timeout"),
		ChannelTimeout:   v.GetDuration("channel_timeout"),
		ThumbnailTimeout: v.GetDuration("thumbnail_timeout"),
		MaxVideos:        maxVideos,

		Verbose:       v.GetBool("verbose"),
		Quiet:         v.GetBool("quiet"),
		MCPLogEnabled: v.GetBool("mcp_log"),
	}
}
