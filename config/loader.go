package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DefaultStationDataURL is the official 12306 station dataset snapshot.
const DefaultStationDataURL = "https://kyfw.12306.cn/otn/resources/js/framework/station_name.js"

// defaultHubStations is the transfer-capable reference list used when the
// config does not supply one: the major interchange stations of the national
// network, by telecode.
var defaultHubStations = []string{
	"BJP", "BXP", "VNP", "SHH", "AOH", "SNH", "GZQ", "IZQ", "CWQ",
	"WHN", "HKN", "CSQ", "CDW", "ICW", "XAY", "EAY", "ZZF", "NJH",
	"NKH", "HFH", "HZH", "NCG", "CQW", "TJP", "SJP", "JNK", "SYT",
	"CCT", "HBB", "LZJ", "KMM", "GIW", "NNZ", "FZS", "XMS",
}

// LoadAppConfig loads and validates the application configuration.
// An empty path falls back to config.yml in the working directory; a missing
// file yields a fully defaulted configuration rather than an error.
func LoadAppConfig(path string) error {
	paths := []string{path, "config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	var cfg AppConfig
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	}
	applyDefaults(&cfg)
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 12306
	}
	if cfg.Server.KeepaliveSeconds == 0 {
		cfg.Server.KeepaliveSeconds = 30
	}
	if cfg.Railway.BaseURL == "" {
		cfg.Railway.BaseURL = "https://kyfw.12306.cn"
	}
	if cfg.Railway.TimeoutMS == 0 {
		cfg.Railway.TimeoutMS = 8000
	}
	if cfg.Railway.MaxRetries == 0 {
		cfg.Railway.MaxRetries = 3
	}
	if cfg.Railway.UserAgent == "" {
		cfg.Railway.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}
	if cfg.Stations.DataURL == "" && cfg.Stations.LocalPath == "" {
		cfg.Stations.DataURL = DefaultStationDataURL
	}
	if cfg.Transfer.ConnectionBufferMinutes == 0 {
		cfg.Transfer.ConnectionBufferMinutes = 20
	}
	if cfg.Transfer.MaxConcurrency == 0 {
		cfg.Transfer.MaxConcurrency = 4
	}
	if len(cfg.Transfer.HubStations) == 0 {
		cfg.Transfer.HubStations = append([]string(nil), defaultHubStations...)
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}
}
