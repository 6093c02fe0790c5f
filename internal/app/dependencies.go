package app

import (
	"context"
	"fmt"

	"github.com/cofrinho/cofrinho/internal/auth"
	"github.com/cofrinho/cofrinho/internal/config"
	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/admin"
	"github.com/cofrinho/cofrinho/pkg/investment"
	"github.com/cofrinho/cofrinho/pkg/item"
	"github.com/cofrinho/cofrinho/pkg/notification"
	"github.com/cofrinho/cofrinho/pkg/report"
	"github.com/cofrinho/cofrinho/pkg/shopping"
	"github.com/cofrinho/cofrinho/pkg/storage"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Storage  storage.Storage

	JWTManager  *auth.JWTManager
	Revocations *auth.RevocationList

	UserService user.Service
	UserHandler *user.Handler
	AuthHandler *user.AuthHandler

	ItemService item.Service
	ItemHandler *item.Handler

	ShoppingService shopping.Service
	ShoppingHandler *shopping.Handler

	InvestmentService investment.Service
	InvestmentHandler *investment.Handler

	SummaryService report.SummaryService
	SummaryHandler *report.Handler

	AdminService admin.Service
	AdminHandler *admin.Handler

	Inbox               *notification.Inbox
	AmqpSink            *notification.AmqpSink
	NotificationHandler *notification.Handler
	unsubscribeNotifier func()
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	deps.Storage = store

	secret := cfg.Auth.JwtSecret
	if secret == "" {
		log.Warn("auth.jwtsecret is not set, using a random secret; tokens will not survive a restart")
		secret = uuid.NewString()
	}
	deps.JWTManager = auth.NewJWTManager(secret, cfg.Auth.TokenDuration, deps.Clock)
	deps.Revocations = auth.NewRevocationList(deps.Clock)

	deps.UserService = user.NewUserService(user.NewUserRepo(db), deps.JWTManager, deps.Revocations, deps.Storage, deps.EventBus, deps.Clock)
	deps.UserHandler = user.NewHandler(deps.UserService)
	deps.AuthHandler = user.NewAuthHandler(deps.UserService)

	itemService := item.NewService(item.NewRepository(db), deps.Storage, deps.EventBus, deps.Clock)
	deps.ItemService = itemService
	deps.ItemHandler = item.NewHandler(itemService)

	shoppingService := shopping.NewService(shopping.NewRepository(db), deps.EventBus, deps.Clock)
	deps.ShoppingService = shoppingService
	deps.ShoppingHandler = shopping.NewHandler(shoppingService)

	investmentService := investment.NewService(investment.NewRepository(db), deps.EventBus, deps.Clock)
	deps.InvestmentService = investmentService
	deps.InvestmentHandler = investment.NewHandler(investmentService)

	renderer, err := report.NewCsvSummaryRenderer(cfg.Currency)
	if err != nil {
		return nil, err
	}
	deps.SummaryService = report.NewSummaryService(itemService, shoppingService, investmentService, deps.Clock)
	deps.SummaryHandler = report.NewHandler(deps.SummaryService, renderer)

	deps.AdminService = admin.NewService(admin.NewRepository(db), deps.Clock)
	deps.AdminHandler = admin.NewHandler(deps.AdminService)

	deps.Inbox = notification.NewInbox(cfg.Notifications.InboxSize)
	sinks := []notification.Sink{deps.Inbox}
	if amqpCfg := cfg.Notifications.Amqp; amqpCfg.Url != "" {
		sink, err := notification.NewAmqpSink(amqpCfg.Url, amqpCfg.Exchange, amqpCfg.Queue)
		if err != nil {
			log.Warnf("failed to connect to AMQP, continuing with in-app notifications only: %v", err)
		} else {
			deps.AmqpSink = sink
			sinks = append(sinks, sink)
		}
	}
	deps.unsubscribeNotifier = notification.NewNotifier(cfg.Currency, deps.Clock, sinks...).Subscribe(deps.EventBus)
	deps.NotificationHandler = notification.NewHandler(deps.Inbox)

	return deps, nil
}

// Close releases connections held by the dependencies.
func (d *Dependencies) Close() {
	if d.unsubscribeNotifier != nil {
		d.unsubscribeNotifier()
	}
	if d.AmqpSink != nil {
		if err := d.AmqpSink.Close(); err != nil {
			log.Warnf("failed to close AMQP connection: %v", err)
		}
	}
}
