package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CorsConfig
	ZohoConfig
	CarrierConfig
	LinkConfig
	StoreConfig
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Zoho
	Carrier
	Link
	Store
}

// New loads an optional .env file into the environment and returns a Config
// that reads every value from it.
func New() Config {
	if err := godotenv.Load(dotEnvFile()); err != nil {
		log.Debug().Str("file", dotEnvFile()).Msg("no .env file loaded")
	}
	return mainConfig{}
}

func dotEnvFile() string {
	return GetEnv("ENV_FILE", ".env")
}
