package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"

	mcp12306 "github.com/drfccv/mcp-server-12306"
	"github.com/drfccv/mcp-server-12306/config"
	"github.com/drfccv/mcp-server-12306/station"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	transport := flag.String("transport", "http", "transport to serve: http or stdio")
	port := flag.Int("port", 0, "override the configured HTTP port")
	flag.Parse()

	if *transport == "stdio" {
		mcp12306.InitStdio()
	} else {
		mcp12306.InitLogging()
	}

	if err := config.LoadAppConfig(*configPath); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *port > 0 {
		config.Config.Server.Port = *port
	}

	provider := station.NewProvider()
	if err := loadStations(provider); err != nil {
		log.Fatalf("failed to load station data: %v", err)
	}

	server := mcp12306.NewServer(provider)
	ctx, cancel := mcp12306.HandleGracefulShutdown()
	defer cancel()

	var err error
	switch *transport {
	case "stdio":
		err = server.ServeStdio(ctx)
	case "http":
		err = server.StartServer(ctx)
	default:
		log.Fatalf("unknown transport %q (want http or stdio)", *transport)
	}
	if err != nil {
		log.Fatalf("server terminated: %v", err)
	}
	log.Println("server stopped")
}

// loadStations fills the provider from the serialized cache when present,
// falling back to the upstream dataset, and refreshes the cache on a
// successful fetch.
func loadStations(provider *station.Provider) error {
	cfg := config.Config.Stations
	if cfg.CachePath != "" {
		if idx, err := station.DeserializeIndexFromFile(cfg.CachePath); err == nil {
			log.Printf("loaded %d stations from cache %s", idx.Len(), cfg.CachePath)
			provider.Swap(idx)
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("station cache unreadable, refetching: %v", err)
		}
	}

	idx, err := station.LoadIndexFromConfig(cfg)
	if err != nil {
		return err
	}
	log.Printf("loaded %d stations from dataset", idx.Len())
	provider.Swap(idx)

	if cfg.CachePath != "" {
		if err := station.SerializeIndexToFile(idx, cfg.CachePath); err != nil {
			log.Printf("failed to write station cache: %v", err)
		}
	}
	return nil
}
