package config

import (
	"path/filepath"
	"strings"
	"testing"
)

// mapBackend is an in-memory Backend for tests.
type mapBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (m *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func emptyBackend() *mapBackend {
	return &mapBackend{strings: map[string]string{}, ints: map[string]int{}}
}

func TestLoad_Defaults(t *testing.T) {
	b := emptyBackend()
	b.strings["openai.api_key"] = "sk-test"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Retrieval.TopK != 6 {
		t.Errorf("TopK = %d, want 6", cfg.Retrieval.TopK)
	}
	if cfg.Ingest.ChunkSize != 2000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("chunking = %d/%d, want 2000/200", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Worker.PollInterval != "10s" {
		t.Errorf("PollInterval = %q, want 10s", cfg.Worker.PollInterval)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	_, err := loadWith(emptyBackend())
	if err == nil {
		t.Fatal("loadWith should fail without an API key")
	}
	if !strings.Contains(err.Error(), "RAGMAN_OPENAI_API_KEY") {
		t.Errorf("error %q should name the env var", err)
	}
}

func TestLoad_BackendValues(t *testing.T) {
	b := emptyBackend()
	b.strings["openai.api_key"] = "sk-test"
	b.strings["openai.text_model"] = "gpt-4o-mini"
	b.ints["server.port"] = 9000
	b.ints["retrieval.top_k"] = 10

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.OpenAI.TextModel != "gpt-4o-mini" {
		t.Errorf("TextModel = %q", cfg.OpenAI.TextModel)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("TopK = %d, want 10", cfg.Retrieval.TopK)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	t.Setenv("RAGMAN_OPENAI_API_KEY", "sk-env")
	t.Setenv("RAGMAN_SERVER_PORT", "7070")

	b := emptyBackend()
	b.strings["openai.api_key"] = "sk-file"
	b.ints["server.port"] = 9000

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, env must win", cfg.OpenAI.APIKey)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, env must win", cfg.Server.Port)
	}
}

func TestLoad_InvalidIntEnvIgnored(t *testing.T) {
	t.Setenv("RAGMAN_OPENAI_API_KEY", "sk-test")
	t.Setenv("RAGMAN_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(emptyBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoad_OverlapMustBeSmallerThanSize(t *testing.T) {
	b := emptyBackend()
	b.strings["openai.api_key"] = "sk-test"
	b.ints["ingest.chunk_size"] = 100
	b.ints["ingest.chunk_overlap"] = 100

	if _, err := loadWith(b); err == nil {
		t.Fatal("loadWith should reject overlap >= size")
	}
}

func TestStorageDirs(t *testing.T) {
	s := StorageConfig{DataDir: "/data/ragman"}
	if got := s.IndexDir(); got != filepath.Join("/data/ragman", "index") {
		t.Errorf("IndexDir = %q", got)
	}
	if got := s.UploadDir(); got != filepath.Join("/data/ragman", "uploads") {
		t.Errorf("UploadDir = %q", got)
	}
	if got := s.QueueDir(); got != filepath.Join("/data/ragman", "image_queue") {
		t.Errorf("QueueDir = %q", got)
	}
}

func TestShowAll_OmitsSecrets(t *testing.T) {
	b := emptyBackend()
	b.strings["openai.api_key"] = "sk-secret"
	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	for _, k := range ShowAll(cfg) {
		if k.Key == "openai.api_key" {
			t.Error("ShowAll must not expose the API key")
		}
		if strings.Contains(k.Value, "sk-secret") {
			t.Errorf("ShowAll leaked secret in %s", k.Key)
		}
	}
}
