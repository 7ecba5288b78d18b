// Package config loads application configuration with Viper.
//
// Values are layered: a YAML config file, then a .env file loaded with
// godotenv, then environment variables. Nested keys are reachable from the
// environment by replacing dots with underscores:
//
//	var cfg AppConfig
//	err := config.LoadConfig("execkit", &cfg, config.WithEnvPrefix("EXECKIT"))
//	// EXECKIT_PROCESS_MAX_CONCURRENT=4 sets process.max_concurrent
//
// Without an explicit file, the loader looks for ./execkit.yml,
// ./.execkit.yml, ./config/execkit.yml, ./config.yml and finally
// execkit/config.yml in the user config directory.
package config
