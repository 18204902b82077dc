package tides

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/config"
	"github.com/scubot/tidechart/pkg/directory"
	"github.com/scubot/tidechart/pkg/geocode"
	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/store"
)

// App is every component built from one configuration.
type App struct {
	Config    config.Config
	Store     store.Store
	NOAA      *noaa.Client
	Geocoder  *geocode.Client
	Directory *directory.Directory
	Service   *Service
}

// OpenStore opens the store selected by cfg.Store.
func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return store.PostgresFromEnv()
	case config.StoreFile:
		return store.OpenFile(cfg.StoreFile)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// New wires the components. The directory is not loaded yet.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	s, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	client := noaa.NewClient(noaa.WithTimeout(cfg.HTTPTimeout))
	geocoder := geocode.New(
		geocode.WithBaseURL(cfg.GeocodeURL),
		geocode.WithUserAgent(cfg.GeocodeUserAgent),
		geocode.WithMinDelay(cfg.GeocodeMinDelay),
		geocode.WithTimeout(cfg.HTTPTimeout),
	)

	dirOpts := []directory.Option{directory.WithLogger(log.Named("directory"))}
	if cfg.GeocodeFallback {
		dirOpts = append(dirOpts, directory.WithGeocoder(geocoder))
	}
	dir := directory.New(s, client, dirOpts...)

	resolver := resolve.New(dir, geocoder, resolve.WithLogger(log.Named("resolve")))

	return &App{
		Config:    cfg,
		Store:     s,
		NOAA:      client,
		Geocoder:  geocoder,
		Directory: dir,
		Service:   NewService(resolver, client, WithLogger(log.Named("tides"))),
	}, nil
}
