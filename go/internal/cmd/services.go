package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/mcdev12/auctionhouse/go/internal/archive"
	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/mcdev12/auctionhouse/go/internal/dbconfig"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/gateway"
	"github.com/mcdev12/auctionhouse/go/internal/player"
	"github.com/mcdev12/auctionhouse/go/internal/publisher"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Engine    *auction.Engine
	Gateway   *gateway.Service
	Publisher *publisher.JetStreamPublisher
	Writer    *archive.Writer

	database *sql.DB

	// loops run on their own context so they keep draining until Stop,
	// after the engine has stopped producing events and sales.
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Pool → Broadcasters → Engine → Gateway
	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := loadPool(ctx, config, dbCfg)
	if err != nil {
		return nil, err
	}

	services := &Services{}

	connCfg := gateway.DefaultConnectionConfig()
	connCfg.SendBufferSize = config.Gateway.SendBufferSize
	connCfg.MaxMessageSize = config.Gateway.MaxMessageSize
	connectionManager := gateway.NewConnectionManager(connCfg)

	bus := events.Fanout{connectionManager}
	if config.NATS.Enabled {
		jsCfg := publisher.DefaultJetStreamConfig()
		jsCfg.URL = config.NATS.URL
		jsCfg.StreamName = config.NATS.StreamName
		jsCfg.SubjectPrefix = config.NATS.SubjectPrefix
		jsCfg.PublishTicks = config.NATS.PublishTicks

		pub, err := publisher.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up event publisher: %w", err)
		}
		services.Publisher = pub
		bus = append(bus, pub)
	}

	var opts []auction.Option
	var sales gateway.SaleLister
	if config.Archive.Enabled {
		database, err := setupDatabase(ctx, dbCfg)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.database = database

		repo := archive.NewRepository(database)
		writerCfg := archive.DefaultWriterConfig()
		writerCfg.BufferSize = config.Archive.BufferSize
		writerCfg.MaxRetries = config.Archive.MaxRetries
		services.Writer = archive.NewWriter(repo, writerCfg)

		opts = append(opts, auction.WithSaleRecorder(services.Writer))
		sales = repo
	}

	services.Engine = auction.NewEngine(pool, bus, opts...)
	services.Gateway = gateway.NewService(connectionManager, services.Engine, sales)
	return services, nil
}

func loadPool(ctx context.Context, config *Config, dbCfg dbconfig.Config) (*player.Pool, error) {
	if config.Pool.Source == "postgres" {
		pgx, err := setupPgxPool(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		defer pgx.Close()
		return player.LoadPostgres(ctx, pgx)
	}
	return player.LoadFile(config.Pool.Path)
}

// Start runs the background loops until Stop.
func (s *Services) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	loops := []func(context.Context){s.Gateway.Start}
	if s.Publisher != nil {
		loops = append(loops, s.Publisher.Run)
	}
	if s.Writer != nil {
		loops = append(loops, s.Writer.Run)
	}

	s.wg.Add(len(loops))
	for _, loop := range loops {
		go func() {
			defer s.wg.Done()
			loop(ctx)
		}()
	}
}

// Stop cancels every room timer first so nothing new is settled or
// broadcast, then lets the loops drain what is queued and closes connections.
func (s *Services) Stop() {
	if s.Engine != nil {
		s.Engine.Shutdown()
	}
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
	s.Close()
}

func (s *Services) Close() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
