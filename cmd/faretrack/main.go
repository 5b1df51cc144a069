package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"faretrack/internal/cache"
	"faretrack/internal/cities"
	"faretrack/internal/config"
	"faretrack/internal/fetcher"
	"faretrack/internal/normalizer"
	"faretrack/internal/provider"
	"faretrack/internal/ratelimit"
	"faretrack/internal/report"
	"faretrack/internal/storage"
)

func main() {
	configPath := flag.String("config", "faretrack.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "faretrack",
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	cityMap, err := cities.Load(cfg.Fetch.CitiesFile)
	if err != nil {
		logger.Fatal("failed to load city mapping", "err", err)
	}
	logger.Info("city mapping loaded", "path", cfg.Fetch.CitiesFile, "codes", cityMap.Len())

	origins := cfg.Fetch.Origins
	if len(origins) == 0 {
		originMap, err := cities.Load(cfg.Fetch.OriginsFile)
		if err != nil {
			logger.Fatal("failed to load origins file", "err", err)
		}
		origins = originMap.Codes()
	}

	client, err := provider.NewAmadeusClient(provider.AmadeusConfig{
		APIKey:    cfg.Amadeus.APIKey,
		APISecret: cfg.Amadeus.APISecret,
		BaseURL:   cfg.Amadeus.BaseURL,
	}, logger.With("component", "amadeus"))
	if err != nil {
		logger.Fatal("failed to initialize provider client", "err", err)
	}

	var offerCache cache.Cache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.Cache.Host,
			Port: cfg.Cache.Port,
			TTL:  cfg.Cache.TTLDuration(),
		})
		if err != nil {
			logger.Fatal("failed to connect to redis", "err", err)
		}
		offerCache = redisCache
		logger.Info("redis cache enabled", "host", cfg.Cache.Host, "port", cfg.Cache.Port, "ttl", cfg.Cache.TTLDuration())
	} else {
		offerCache = cache.NewNoOpCache()
	}
	defer offerCache.Close()

	f := fetcher.New(client, fetcher.Options{
		PriceCeiling: cfg.Fetch.PriceCeiling,
		Cache:        offerCache,
		Limiter: ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}),
		Logger: logger.With("component", "fetcher"),
	})

	start, end := cfg.DateRange()
	ctx := context.Background()

	logger.Info("starting batch fetch",
		"origins", len(origins), "destinations", len(cfg.Fetch.Destinations),
		"start", cfg.Fetch.StartDate, "end", cfg.Fetch.EndDate)

	for _, destination := range cfg.Fetch.Destinations {
		if err := f.FetchAcrossOrigins(ctx, origins, destination, start, end, cfg.Output.RawPath, cfg.Fetch.Adults); err != nil {
			logger.Fatal("batch fetch aborted", "err", err)
		}
	}

	n := normalizer.New(cityMap, normalizer.Config{
		SourceCurrency: cfg.Currency.Source,
		TargetCurrency: cfg.Currency.Target,
		ConversionRate: cfg.Currency.Rate,
	}, logger.With("component", "normalizer"))

	if err := n.Load(cfg.Output.RawPath); err != nil {
		logger.Fatal("failed to load raw file", "err", err)
	}
	n.Process()
	if err := n.Save(cfg.Output.ReportPath); err != nil {
		logger.Fatal("failed to save report", "err", err)
	}

	// The summary reads the report back so it also covers the case where an
	// earlier run produced the file and Save was a guarded no-op.
	table, err := storage.ReadTable(cfg.Output.ReportPath)
	if err != nil || len(table) == 0 {
		logger.Warn("no report available for summary", "path", cfg.Output.ReportPath)
		return
	}
	report.Print(os.Stdout, report.Build(table[0], table[1:], 10))
}
