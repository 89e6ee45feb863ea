package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port" validate:"gt=0"`
	KeepaliveSeconds int    `yaml:"keepaliveSeconds" validate:"gte=0"`
}

// RailwayConfig contains 12306 upstream client configuration
type RailwayConfig struct {
	BaseURL    string `yaml:"baseURL" validate:"omitempty,url"`
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
	MaxRetries int    `yaml:"maxRetries" validate:"gte=0"`
	UserAgent  string `yaml:"userAgent"`
}

// StationsConfig contains station dataset configuration
type StationsConfig struct {
	DataURL   string `yaml:"dataURL" validate:"omitempty,url"`
	LocalPath string `yaml:"localPath"`
	CachePath string `yaml:"cachePath"`
}

// TransferConfig contains transfer synthesis engine configuration
type TransferConfig struct {
	ConnectionBufferMinutes int      `yaml:"connectionBufferMinutes" validate:"gte=0"`
	MaxConcurrency          int      `yaml:"maxConcurrency" validate:"gte=0"`
	HubStations             []string `yaml:"hubStations"`
}

// CacheConfig contains the optional upstream-response cache.
// Disabled unless RedisAddr is set.
type CacheConfig struct {
	RedisAddr  string `yaml:"redisAddr"`
	TTLSeconds int    `yaml:"ttlSeconds" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Railway  RailwayConfig  `yaml:"railway"`
	Stations StationsConfig `yaml:"stations"`
	Transfer TransferConfig `yaml:"transfer"`
	Cache    CacheConfig    `yaml:"cache"`
}
