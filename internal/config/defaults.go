package config

const (
	defaultConfigFile       = "radar.toml"
	defaultEnvironment      = "dev"
	defaultLogLevel         = "info"
	defaultLogColors        = "auto"
	defaultRedisHost        = "localhost"
	defaultRedisPort        = 6378
	defaultWorkers          = 1
	defaultResultTTLSeconds = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Environment:      defaultEnvironment,
		LogLevel:         defaultLogLevel,
		LogJSONFormat:    false,
		LogColors:        defaultLogColors,
		RedisHost:        defaultRedisHost,
		RedisPort:        defaultRedisPort,
		Workers:          defaultWorkers,
		ResultTTLSeconds: defaultResultTTLSeconds,
	}
}
