// Package config loads typed configuration structs from the environment.
//
// Each package declares its own Config struct with env tags; callers pass a
// pointer to Load (or MustLoad at startup). An optional .env file is read
// once per process via godotenv, parsing is done by caarlos0/env, and each
// config type is cached after the first successful parse.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
package config
