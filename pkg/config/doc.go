// Package config loads environment variables into typed structs.
//
// It wraps caarlos0/env and loads a .env file on first use:
//
//	type ServerConfig struct {
//		Address string `env:"ADDRESS" envDefault:":3500"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each struct type is parsed once per process and cached; later Load calls
// for the same type return the cached value.
package config
