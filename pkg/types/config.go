package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperplay/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts bounds LLM round-trips for one logical request (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// ExtractionConfig holds settings for the concept extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// PapersDir is the base directory for papers (contains markdown/, raw/, metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// MinConcepts is the minimum batch size for a successful extraction (default 3).
	MinConcepts int `json:"min_concepts" yaml:"min_concepts"`

	// MaxContentChars caps the paper text included in the prompt (default 5000).
	MaxContentChars int `json:"max_content_chars" yaml:"max_content_chars"`
}

// GenerationConfig holds settings for the question generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// PapersDir is the base directory holding .concepts.json files.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// QuestionScore is the per-question score written to storage (default 5).
	QuestionScore int `json:"question_score" yaml:"question_score"`
}

// StorageConfig holds settings for the SQLite content store.
type StorageConfig struct {
	// DBPath is the SQLite database file (default "sqlite/paperplay.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// SubjectName is the default subject papers are filed under.
	SubjectName string `json:"subject_name" yaml:"subject_name"`
}

// VectorConfig holds settings for the embedding index.
type VectorConfig struct {
	HTTPConfig `yaml:",inline"`

	// DBPath is the SQLite database file holding embeddings (default "sqlite/vectors.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// APIKey authenticates against the embeddings endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the default number of search results (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// FetchConfig holds settings for the arXiv acquisition stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the base directory for papers (contains raw/, metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Vector     VectorConfig     `json:"vector" yaml:"vector"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
}
