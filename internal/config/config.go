package config

// Config is the merged runtime configuration. Field tags double as the
// file keys for both JSON and YAML config files.
type Config struct {
	Generation GenerationConfig       `json:"data_generation" yaml:"data_generation"`
	Processing ProcessingConfig       `json:"data_processing" yaml:"data_processing"`
	Validation ValidationConfig       `json:"validation" yaml:"validation"`
	Domains    map[string]DomainRules `json:"domains" yaml:"domains"`
	Logging    LoggingConfig          `json:"logging" yaml:"logging"`
	Trace      TraceConfig            `json:"trace" yaml:"trace"`
}

// GenerationConfig controls prompt filling and the model call.
type GenerationConfig struct {
	// ModelName picks the provider model when neither --model nor
	// DATAGEN_<PROVIDER>_MODEL is set. Empty keeps the provider default.
	ModelName    string   `json:"model_name" yaml:"model_name"`
	Temperature  float64  `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens    int      `json:"max_tokens" yaml:"max_tokens" validate:"gt=0"`
	Domains      []string `json:"domains" yaml:"domains"`
	TemplatePath string   `json:"template_path" yaml:"template_path"`
}

// ProcessingConfig controls the pipeline run.
type ProcessingConfig struct {
	MinQualityScore    float64 `json:"min_quality_score" yaml:"min_quality_score" validate:"gte=0,lte=1"`
	FilterInvalid      bool    `json:"filter_invalid" yaml:"filter_invalid"`
	AugmentationFactor int     `json:"augmentation_factor" yaml:"augmentation_factor" validate:"gte=1"`
}

// ValidationConfig holds rules applied to every domain.
type ValidationConfig struct {
	MinLength int `json:"min_length" yaml:"min_length" validate:"gte=0"`
}

// DomainRules holds rules for a single domain.
type DomainRules struct {
	ProhibitedContent []string `json:"prohibited_content" yaml:"prohibited_content"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN WARNING ERROR"`
	File  string `json:"file" yaml:"file"`
}

// TraceConfig configures the per-record trace sink.
type TraceConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Dir     string `json:"dir" yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Generation: GenerationConfig{
			ModelName:    "",
			Temperature:  0.7,
			MaxTokens:    512,
			Domains:      []string{"finance", "healthcare", "legal"},
			TemplatePath: "config/templates.json",
		},
		Processing: ProcessingConfig{
			MinQualityScore:    0.6,
			FilterInvalid:      true,
			AugmentationFactor: 2,
		},
		Validation: ValidationConfig{
			MinLength: 50,
		},
		Domains: map[string]DomainRules{
			"finance": {
				ProhibitedContent: []string{"exact_predictions", "guaranteed_returns"},
			},
			"healthcare": {
				ProhibitedContent: []string{"medical_advice", "diagnosis"},
			},
			"legal": {
				ProhibitedContent: []string{"legal_advice"},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Trace: TraceConfig{
			Enabled: true,
			Dir:     "logs/traces",
		},
	}
}

// ProhibitedContent returns the prohibited terms for a domain, or nil.
func (c Config) ProhibitedContent(domain string) []string {
	return c.Domains[domain].ProhibitedContent
}
