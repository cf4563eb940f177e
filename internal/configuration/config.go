package configuration

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri               string `json:"uri"`
	Database          string `json:"database"`
	UsersCollection   string `json:"usersCollection"`
	ReviewsCollection string `json:"reviewsCollection"`
}

type StorageConfig struct {
	Type      string `json:"type"` // "local" or "s3"
	BasePath  string `json:"basePath"`
	BaseURL   string `json:"baseUrl"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Endpoint  string `json:"endpoint"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type Config struct {
	Database MongoConfig   `json:"mongo"`
	Storage  StorageConfig `json:"storage"`
	Server   ServerConfig  `json:"server"`
}

func LoadConfig(config_path string) (*Config, error) {
	// a missing .env file is fine; real env vars still apply
	_ = godotenv.Load()

	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	config.applyEnv()
	return &config, nil
}

// applyEnv lets deployment environments override the checked-in config
// file without editing it.
func (c *Config) applyEnv() {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Database.Uri = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.Database.Database = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		c.Storage.SecretKey = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.AppPort = port
		}
	}
}
