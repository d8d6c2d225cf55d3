package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the room client configuration. Values come from an optional
// YAML file, overridden by environment variables.
type Config struct {
	ServerURL    string `yaml:"server_url"`
	WebSocketURL string `yaml:"websocket_url"`
	Transport    string `yaml:"transport"`
	NATSURL      string `yaml:"nats_url"`
	IdentityDir  string `yaml:"identity_dir"`
	RoomID       string `yaml:"room_id"`
	Username     string `yaml:"username"`
	AvatarURL    string `yaml:"avatar_url"`
	LogLevel     string `yaml:"log_level"`

	MaxPlayers      int    `yaml:"max_players"`
	TotalRounds     int    `yaml:"total_rounds"`
	TimePerQuestion int    `yaml:"time_per_question"`
	Language        string `yaml:"language"`
}

func loadConfig(path string) (*Config, error) {
	config := &Config{
		ServerURL:       "http://localhost:8081",
		WebSocketURL:    "ws://localhost:8081/ws",
		Transport:       "ws",
		NATSURL:         "nats://localhost:4222",
		IdentityDir:     ".roomclient",
		LogLevel:        "info",
		MaxPlayers:      8,
		TotalRounds:     5,
		TimePerQuestion: 30,
		Language:        "en",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.ServerURL = getEnv("SERVER_URL", config.ServerURL)
	config.WebSocketURL = getEnv("WS_URL", config.WebSocketURL)
	config.Transport = getEnv("PUSH_TRANSPORT", config.Transport)
	config.NATSURL = getEnv("NATS_URL", config.NATSURL)
	config.IdentityDir = getEnv("IDENTITY_DIR", config.IdentityDir)
	config.RoomID = getEnv("ROOM_ID", config.RoomID)
	config.Username = getEnv("PLAYER_USERNAME", config.Username)
	config.AvatarURL = getEnv("PLAYER_AVATAR_URL", config.AvatarURL)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.MaxPlayers = getEnvAsInt("ROOM_MAX_PLAYERS", config.MaxPlayers)
	config.TotalRounds = getEnvAsInt("ROOM_TOTAL_ROUNDS", config.TotalRounds)
	config.TimePerQuestion = getEnvAsInt("ROOM_TIME_PER_QUESTION", config.TimePerQuestion)
	config.Language = getEnv("ROOM_LANGUAGE", config.Language)

	if config.Username == "" {
		return nil, fmt.Errorf("PLAYER_USERNAME is required")
	}
	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
