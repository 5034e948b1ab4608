package config

import (
	"fmt"
	"path/filepath"
)

type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Retrieval RetrievalConfig
	Ingest    IngestConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	TextModel   string
	VisionModel string
	EmbedModel  string
}

type StorageConfig struct {
	DataDir string
}

// IndexDir is where the SQLite index database lives.
func (s StorageConfig) IndexDir() string {
	return filepath.Join(s.DataDir, "index")
}

// UploadDir retains the original uploaded documents.
func (s StorageConfig) UploadDir() string {
	return filepath.Join(s.DataDir, "uploads")
}

// QueueDir holds one artifact file per pending image-analysis job.
func (s StorageConfig) QueueDir() string {
	return filepath.Join(s.DataDir, "image_queue")
}

type WorkerConfig struct {
	PollInterval string // parsed as time.Duration at wiring time
}

type RetrievalConfig struct {
	TopK int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			TextModel:   "gpt-4o",
			VisionModel: "gpt-4o",
			EmbedModel:  "text-embedding-3-large",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Worker: WorkerConfig{
			PollInterval: "10s",
		},
		Retrieval: RetrievalConfig{
			TopK: 6,
		},
		Ingest: IngestConfig{
			ChunkSize:    2000,
			ChunkOverlap: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/ragman/config.json, then applies RAGMAN_* environment
// variable overrides. The OpenAI API key is required and must come from
// either source.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. " +
			"Set it via environment variable RAGMAN_OPENAI_API_KEY " +
			"or the openai.api_key key in the config file")
	}

	if cfg.Ingest.ChunkOverlap >= cfg.Ingest.ChunkSize {
		return Config{}, fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			cfg.Ingest.ChunkOverlap, cfg.Ingest.ChunkSize)
	}

	return cfg, nil
}
