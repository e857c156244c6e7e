package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	Port       string
	DataPath   string
	DBPath     string
	OutputPath string
	WorkDir    string

	GeminiAPIKey      string
	GeminiVisionModel string
	GeminiTextModel   string

	FontPath    string
	BrandNames  []string
	CORSOrigins []string
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	dataPath := getEnv("DATA_PATH", "./data")

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DataPath:   dataPath,
		DBPath:     getEnv("DB_PATH", filepath.Join(dataPath, "jobs.db")),
		OutputPath: getEnv("OUTPUT_PATH", filepath.Join(dataPath, "outputs")),
		WorkDir:    getEnv("WORK_DIR", filepath.Join(dataPath, "work")),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-2.0-flash"),
		GeminiTextModel:   getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),

		FontPath:    getEnv("FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"),
		BrandNames:  splitList(getEnv("BRAND_NAMES", "")),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
