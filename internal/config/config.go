// Package config handles loading and validating the linguaflow configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/linguaflow/core/texttospeech/elevenlabs"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	envPrefix = "LINGUAFLOW"
	// voiceEnvPrefix starts per language voice overrides, e.g.
	// LINGUAFLOW_ELEVENLABS_VOICE_ES=<voice id>.
	voiceEnvPrefix = envPrefix + "_ELEVENLABS_VOICE_"
)

// Config is the root configuration of the linguaflow command.
type Config struct {
	Languages   LanguagesConfig   `mapstructure:"languages"`
	Recognition RecognitionConfig `mapstructure:"recognition"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	ElevenLabs  ElevenLabsConfig  `mapstructure:"elevenlabs"`
	Deepgram    DeepgramConfig    `mapstructure:"deepgram"`
	Translation TranslationConfig `mapstructure:"translation"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// LanguagesConfig holds the initial language pair, as BCP 47 tags.
type LanguagesConfig struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

type RecognitionConfig struct {
	Continuous bool   `mapstructure:"continuous"`
	Engine     string `mapstructure:"engine" jsonschema:"enum=auto,enum=web,enum=native"`
	// BridgeAddr is where the browser recognition page is served.
	BridgeAddr string `mapstructure:"bridge_addr"`
}

type SpeechConfig struct {
	AutoSpeak bool   `mapstructure:"auto_speak"`
	Output    string `mapstructure:"output" jsonschema:"enum=auto,enum=cloud,enum=platform"`
}

// ElevenLabsConfig configures cloud synthesis. Cloud synthesis is only used
// when APIKey is set, there is no built-in credential.
type ElevenLabsConfig struct {
	APIKey        string            `mapstructure:"api_key"`
	BaseURL       string            `mapstructure:"base_url"`
	StreamURL     string            `mapstructure:"stream_url"`
	DefaultVoice  string            `mapstructure:"default_voice"`
	PrimaryModel  string            `mapstructure:"primary_model"`
	FallbackModel string            `mapstructure:"fallback_model"`
	OutputFormat  string            `mapstructure:"output_format"`
	Streaming     bool              `mapstructure:"streaming"`
	Voices        map[string]string `mapstructure:"voices"` // primary language subtag -> voice id
}

// DeepgramConfig configures desktop recognition. It is only used when
// APIKey is set.
type DeepgramConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type TranslationConfig struct {
	Backend  string       `mapstructure:"backend" jsonschema:"enum=mymemory,enum=openai,enum=dictionary"`
	Endpoint string       `mapstructure:"endpoint"`
	Email    string       `mapstructure:"email"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" jsonschema:"enum=json,enum=text"`
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./linguaflow.yaml, ./configs/linguaflow.yaml,
// $HOME/.config/linguaflow/linguaflow.yaml.
func Load(configFile string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), configFile)
}

// LoadFs is Load reading configuration files from fs.
func LoadFs(fs afero.Fs, configFile string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("linguaflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/linguaflow")
		}
	}

	// Environment variables: LINGUAFLOW_LANGUAGES_TARGET, LINGUAFLOW_ELEVENLABS_API_KEY, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Reading a config file is optional, env vars and defaults are sufficient.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${ELEVENLABS_API_KEY}")
	cfg.ElevenLabs.APIKey = resolveEnvRef(cfg.ElevenLabs.APIKey)
	cfg.Deepgram.APIKey = resolveEnvRef(cfg.Deepgram.APIKey)
	cfg.Translation.OpenAI.APIKey = resolveEnvRef(cfg.Translation.OpenAI.APIKey)

	cfg.ElevenLabs.Voices = mergeVoiceOverrides(cfg.ElevenLabs.Voices, os.Environ())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("languages.source", "en-US")
	v.SetDefault("languages.target", "es-ES")
	v.SetDefault("recognition.continuous", false)
	v.SetDefault("recognition.engine", "auto")
	v.SetDefault("recognition.bridge_addr", "127.0.0.1:8765")
	v.SetDefault("speech.auto_speak", true)
	v.SetDefault("speech.output", "auto")
	// Keys without a meaningful default still need one for AutomaticEnv to
	// pick them up during Unmarshal.
	v.SetDefault("elevenlabs.api_key", "")
	v.SetDefault("elevenlabs.base_url", elevenlabs.DefaultBaseURL)
	v.SetDefault("elevenlabs.stream_url", elevenlabs.DefaultStreamURL)
	v.SetDefault("elevenlabs.default_voice", elevenlabs.DefaultVoice)
	v.SetDefault("elevenlabs.primary_model", elevenlabs.DefaultPrimaryModel)
	v.SetDefault("elevenlabs.fallback_model", elevenlabs.DefaultFallbackModel)
	v.SetDefault("elevenlabs.output_format", elevenlabs.DefaultOutputFormat)
	v.SetDefault("elevenlabs.streaming", true)
	v.SetDefault("deepgram.api_key", "")
	v.SetDefault("deepgram.model", "nova-3")
	v.SetDefault("translation.backend", "mymemory")
	v.SetDefault("translation.endpoint", translation.DefaultMyMemoryEndpoint)
	v.SetDefault("translation.email", "")
	v.SetDefault("translation.openai.api_key", "")
	v.SetDefault("translation.openai.model", translation.DefaultOpenAIModel)
	v.SetDefault("translation.openai.base_url", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate reports every setting outside of its allowed values.
func (c *Config) Validate() error {
	var errs error
	check := func(name, value string, allowed ...string) {
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return
			}
		}
		errs = errors.Join(errs, fmt.Errorf("invalid %s %q, expected one of %s", name, value, strings.Join(allowed, ", ")))
	}

	check("recognition.engine", c.Recognition.Engine, "auto", "web", "native")
	check("speech.output", c.Speech.Output, "auto", "cloud", "platform")
	check("translation.backend", c.Translation.Backend, "mymemory", "openai", "dictionary")
	if c.Languages.Source == "" || c.Languages.Target == "" {
		errs = errors.Join(errs, errors.New("languages.source and languages.target must be set"))
	}
	if strings.EqualFold(c.Speech.Output, "cloud") && c.ElevenLabs.APIKey == "" {
		errs = errors.Join(errs, errors.New("speech.output cloud requires elevenlabs.api_key"))
	}

	if errs != nil {
		return fmt.Errorf("validating config: %w", errs)
	}
	return nil
}

// mergeVoiceOverrides adds LINGUAFLOW_ELEVENLABS_VOICE_<ISO> variables from
// environ on top of the configured voices. Keys are lower case primary
// language subtags.
func mergeVoiceOverrides(voices map[string]string, environ []string) map[string]string {
	merged := make(map[string]string, len(voices))
	for lang, voice := range voices {
		merged[strings.ToLower(lang)] = voice
	}

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" || !strings.HasPrefix(key, voiceEnvPrefix) {
			continue
		}
		lang := strings.ToLower(strings.TrimPrefix(key, voiceEnvPrefix))
		if lang == "" {
			continue
		}
		merged[lang] = value
	}
	return merged
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Schema renders the JSON schema of Config, keyed like the config file.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		FieldNameTag:               "mapstructure",
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "linguaflow configuration"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling config schema: %w", err)
	}
	return data, nil
}
