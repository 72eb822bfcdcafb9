package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	ChapterIndexPath string
	KeywordTablePath string
	TextCacheDir     string

	HFAPIKey        string
	HFEndpoint      string
	HFModel         string
	HFEmbedModel    string
	MaxNewTokens    int
	ORAPIKey        string
	OREndpoint      string
	ORModel         string
	PrimaryProvider string

	HTTPTimeoutSeconds int
	MaxDocumentChars   int
	MinPassageChars    int
	TopK               int
	RetrievalMode      string
	MaxContextChars    int
	HistoryLimit       int

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		ChapterIndexPath: mustEnv("CHAPTER_INDEX_PATH", ""),
		KeywordTablePath: mustEnv("KEYWORD_TABLE_PATH", ""),
		TextCacheDir:     mustEnv("TEXT_CACHE_DIR", ""),

		HFAPIKey:        mustEnv("HUGGINGFACE_API_KEY", ""),
		HFEndpoint:      mustEnv("HUGGINGFACE_ENDPOINT", "https://api-inference.huggingface.co"),
		HFModel:         mustEnv("HUGGINGFACE_MODEL", "mistralai/Mistral-7B-Instruct-v0.1"),
		HFEmbedModel:    mustEnv("HUGGINGFACE_EMBED_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		MaxNewTokens:    mustEnvInt("LLM_MAX_NEW_TOKENS", 512),
		ORAPIKey:        mustEnv("OPENROUTER_API_KEY", ""),
		OREndpoint:      mustEnv("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions"),
		ORModel:         mustEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct"),
		PrimaryProvider: mustEnv("PRIMARY_PROVIDER", "huggingface"),

		HTTPTimeoutSeconds: mustEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		MaxDocumentChars:   mustEnvInt("MAX_DOCUMENT_CHARS", 400000),
		MinPassageChars:    mustEnvInt("MIN_PASSAGE_CHARS", 100),
		TopK:               mustEnvInt("RETRIEVAL_TOP_K", 3),
		RetrievalMode:      mustEnv("RETRIEVAL_MODE", "lexical"),
		MaxContextChars:    mustEnvInt("MAX_CONTEXT_CHARS", 12000),
		HistoryLimit:       mustEnvInt("HISTORY_LIMIT", 50),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 8),
		APIBackpressureWait: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 200),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
