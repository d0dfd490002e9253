// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"lucky-draw/internal/config"
	"lucky-draw/internal/handler"
	"lucky-draw/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler *handler.AccountHandler
	luckyHandler   *handler.LuckyHandler
	adminHandler   *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config             *config.Config
	AccountService     *service.AccountService
	DrawService        *service.DrawService
	PrizeTableService  *service.PrizeTableService
	RecordService      *service.RecordService
	FulfillmentService *service.FulfillmentService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Unhandled bot error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	b.accountHandler = handler.NewAccountHandler(deps.AccountService)
	b.luckyHandler = handler.NewLuckyHandler(
		deps.AccountService,
		deps.DrawService,
		deps.PrizeTableService,
		deps.RecordService,
		deps.FulfillmentService,
		deps.Config.Lucky.NewestLimit,
	)
	b.adminHandler = handler.NewAdminHandler(deps.PrizeTableService, deps.RecordService, deps.FulfillmentService)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Participant commands
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/phone", b.accountHandler.HandlePhone)
	b.bot.Handle("/prizes", b.luckyHandler.HandlePrizes)
	b.bot.Handle("/draw", b.luckyHandler.HandleDraw)
	b.bot.Handle("/mine", b.luckyHandler.HandleMine)
	b.bot.Handle("/claim", b.luckyHandler.HandleClaim)
	b.bot.Handle("/winners", b.luckyHandler.HandleWinners)

	// Operator commands
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/setprizes", b.adminHandler.HandleSetPrizes)
	adminGroup.Handle("/tiers", b.adminHandler.HandleTiers)
	adminGroup.Handle("/records", b.adminHandler.HandleRecords)
	adminGroup.Handle("/record", b.adminHandler.HandleRecord)
	adminGroup.Handle("/send", b.adminHandler.HandleSend)
	adminGroup.Handle("/void", b.adminHandler.HandleVoid)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
