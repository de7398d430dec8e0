// Package app assembles repositories, services and gateways from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"github.com/ArowuTest/tourbook-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/tourbook-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/ArowuTest/tourbook-backend/pkg/lock"
	"github.com/ArowuTest/tourbook-backend/pkg/mongodb"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Repositories groups the persistence layer
type Repositories struct {
	Users         repositories.UserRepository
	Campaigns     repositories.CampaignRepository
	Notifications repositories.NotificationRepository
	Reservations  repositories.ReservationRepository
	Settings      repositories.SystemSettingsRepository
}

// App holds every long-lived component. Close releases external connections.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Repos  Repositories

	Router        *services.DeliveryRouter
	Campaigns     *services.CampaignService
	Reservations  *services.ReservationService
	Notifications *services.NotificationService
	Settings      *services.SystemSettingsServiceImpl
	Users         *services.UserService
	Scheduler     *services.Scheduler

	closers []func(context.Context) error
}

// New connects the configured store, lock and gateways and builds the services
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if err := a.openStore(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	locker, err := a.openLocker(ctx)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	location, err := cfg.Reprogramming.Location()
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	a.Router = services.NewDeliveryRouter(a.Repos.Settings, logger, a.gateways()...)
	resolver := services.NewAudienceResolver(a.Repos.Users, logger)

	a.Campaigns = services.NewCampaignService(
		a.Repos.Campaigns,
		a.Repos.Notifications,
		resolver,
		a.Router,
		locker,
		logger,
		services.WithDispatchConcurrency(cfg.Dispatch.Concurrency),
	)
	a.Reservations = services.NewReservationService(
		a.Repos.Reservations,
		a.Repos.Settings,
		services.NewRuleEngine(logger),
		locker,
		location,
		logger,
	)
	a.Notifications = services.NewNotificationService(a.Repos.Notifications, a.Router, services.PollPolicy{
		MaxAttempts:     cfg.Retry.StatusPollAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}, logger)
	a.Settings = services.NewSystemSettingsService(a.Repos.Settings, a.Router)
	a.Users = services.NewUserService(a.Repos.Users, logger)
	a.Scheduler = services.NewScheduler(a.Repos.Campaigns, a.Campaigns, logger)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Store.Driver {
	case "memory":
		a.Logger.Warn("using in-memory store; data is lost on exit")
		a.Repos = Repositories{
			Users:         memory.NewUserRepository(),
			Campaigns:     memory.NewCampaignRepository(),
			Notifications: memory.NewNotificationRepository(),
			Reservations:  memory.NewReservationRepository(),
			Settings:      memory.NewSystemSettingsRepository(nil),
		}
		return nil
	case "mongo":
		client, err := mongodb.NewClient(ctx, a.Config.MongoDB.URI, a.Config.MongoDB.ConnectTimeout)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)

		db := client.Database(a.Config.MongoDB.Database)
		a.Repos = Repositories{
			Users:         mongorepo.NewUserRepository(db),
			Campaigns:     mongorepo.NewCampaignRepository(db),
			Notifications: mongorepo.NewNotificationRepository(db),
			Reservations:  mongorepo.NewReservationRepository(db),
			Settings:      mongorepo.NewSystemSettingsRepository(db),
		}
		a.Logger.Info("connected to MongoDB", zap.String("database", a.Config.MongoDB.Database))
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
}

func (a *App) openLocker(ctx context.Context) (lock.Locker, error) {
	if a.Config.Lock.Driver != "redis" {
		return lock.NewKeyedMutex(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	return lock.NewRedisLocker(client, "tourbook:", a.Config.Lock.TTL, a.Config.Lock.Wait, a.Logger), nil
}

func (a *App) gateways() []pushgateway.Gateway {
	var gateways []pushgateway.Gateway

	if a.Config.Push.Mock {
		gateways = append(gateways, pushgateway.NewMockGateway(models.GatewayMock))
	}
	if a.Config.Push.HTTP.BaseURL != "" {
		gateways = append(gateways, pushgateway.NewHTTPGateway(
			a.Config.Push.HTTP.BaseURL,
			a.Config.Push.HTTP.APISecret,
			a.Config.Push.HTTP.Timeout,
		))
	}
	if len(a.Config.Push.Kafka.Brokers) > 0 {
		writer := pushgateway.NewKafkaWriter(a.Config.Push.Kafka.Brokers, a.Config.Push.Kafka.Topic)
		a.closers = append(a.closers, func(context.Context) error { return writer.Close() })
		gateways = append(gateways, pushgateway.NewKafkaGateway(writer))
	}

	if len(gateways) == 0 {
		a.Logger.Warn("no push gateway configured; every dispatch will fail")
	}
	return gateways
}

// Close releases connections in reverse order of opening
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
