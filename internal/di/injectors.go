//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"widt/internal"
	"widt/internal/bot"
	"widt/internal/controllers"
	"widt/internal/conversation"
	"widt/internal/email"
	"widt/internal/export"
	"widt/internal/providers"
	"widt/internal/report"
	"widt/internal/scheduler"
	"widt/internal/store"
	"widt/internal/structures"
	"widt/internal/transport"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewCacheProvider,

		store.NewZstdCompressor,
		store.NewStore,
		store.NewJournalRepository,
		store.NewMetaRepository,
		store.NewArchiveRepository,

		conversation.NewMemorySessions,
		conversation.NewJournalFlow,
		conversation.NewEditFlow,
		conversation.NewConfigFlow,
		conversation.NewDefaultEngine,
		wire.Bind(new(conversation.VerificationSender), new(*email.Verifier)),

		email.NewMailgunSender,
		email.NewVerifier,

		transport.NewWebhookSender,
		report.NewCompiler,
		export.NewExporter,

		bot.NewChatLocks,
		bot.NewDispatcher,

		scheduler.NewSweeper,
		scheduler.NewScheduler,

		controllers.NewInboundController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
