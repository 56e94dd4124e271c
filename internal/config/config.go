package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type RAGConfig struct {
	ChunkSize       int    `yaml:"chunk_size"`        // words per window
	ChunkOverlap    int    `yaml:"chunk_overlap"`     // words shared between windows
	TopK            int    `yaml:"top_k"`
	MaxContextChars int    `yaml:"max_context_chars"`
	Collection      string `yaml:"collection"`
	DBPath          string `yaml:"db_path"`
	DataDir         string `yaml:"data_dir"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type RerankerConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

// RangeConfig bounds a figure an extractor may accept, in the unit the
// extractor works in (millions of dollars, or raw share counts).
type RangeConfig struct {
	Extractor string  `yaml:"extractor"`
	Company   string  `yaml:"company"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

type Config struct {
	RAG          RAGConfig         `yaml:"rag"`
	EmbedLLM     LLMConfig         `yaml:"embed_llm"`
	InferenceLLM LLMConfig         `yaml:"inference_llm"`
	Reranker     RerankerConfig    `yaml:"reranker"`
	Database     DatabaseConfig    `yaml:"database"`
	Documents    map[string]string `yaml:"documents"` // company -> filename
	Ranges       []RangeConfig     `yaml:"ranges"`
}

const (
	defaultChunkSize       = 600
	defaultChunkOverlap    = 150
	defaultTopK            = 20
	defaultMaxContextChars = 15000
	defaultCollection      = "sec_10k"
	defaultDBPath          = "./chromemdb"
	defaultDataDir         = "./data"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields so a partial config file still
// yields a working pipeline.
func (c *Config) ApplyDefaults() {
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.MaxContextChars == 0 {
		c.RAG.MaxContextChars = defaultMaxContextChars
	}
	if c.RAG.Collection == "" {
		c.RAG.Collection = defaultCollection
	}
	if c.RAG.DBPath == "" {
		c.RAG.DBPath = defaultDBPath
	}
	if c.RAG.DataDir == "" {
		c.RAG.DataDir = defaultDataDir
	}
	if c.Documents == nil {
		c.Documents = map[string]string{
			"apple": "10-Q4-2024-As-Filed.pdf",
			"tesla": "tsla-20231231-gen.pdf",
		}
	}
}

// Default returns a config with all defaults applied, for callers that
// run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
