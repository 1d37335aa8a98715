package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"cmdbot/internal/adapters/generator"
	"cmdbot/internal/adapters/handler"
	"cmdbot/internal/adapters/sender"
	"cmdbot/internal/contrib"
	"cmdbot/internal/core/domain"
	"cmdbot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting cmdbot...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	token := viper.GetString("telegram.bot_token")
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	s := sender.NewTelegramSender(b)

	apiKey := viper.GetString("openrouter.api_key")
	orGenerator := generator.NewOpenRouterGenerator(apiKey,
		viper.GetString("openrouter.model"),
		viper.GetString("openrouter.system_prompt"))

	admins, err := service.NewAdmins()
	if err != nil {
		log.Panic().Err(err).Msg("failed loading admin allowlist")
	}

	tracker := service.NewUsageTracker(ctx)

	registry := domain.NewRegistry(domain.ContributionList{
		contrib.NewMeta(),
		contrib.NewAsk(orGenerator, tracker, apiKey != ""),
		contrib.NewAdmin(admins, tracker),
	})

	if err := registry.OnStart(); err != nil {
		log.Fatal().Err(err).Msg("command contribution failed during startup")
	}

	auditDisposable := registry.OnDidExecuteCommand(func(event domain.CommandEvent) {
		log.Info().Str("command", event.CommandID).Msg("command executed")
		registry.AddRecentCommand(event.CommandID)
	})
	defer auditDisposable.Dispose()

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	commandHandler := handler.NewCommand(registry, s, handlerTimeout)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, commandHandler.Handle)

	log.Info().Str("commands", strings.Join(registry.CommandIDs(), " ")).Msg("bot listening")
	b.Start(ctx)
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
