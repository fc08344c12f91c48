// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/config"
	"matchday-bot/internal/handler"
	"matchday-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	members *MemberCache

	gameHandler    *handler.GameHandler
	adminHandler   *handler.AdminHandler
	rankingHandler *handler.RankingHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config           *config.Config
	MatchdayService  *service.MatchdayService
	StandingsService *service.StandingsService
}

// commands is the menu published to Telegram.
var commands = []tele.Command{
	{Text: "partite", Description: "Giornata in corso"},
	{Text: "giocata", Description: "Registra la giocata: <giocata> <quota>"},
	{Text: "dati", Description: "Dati di verifica della giocata"},
	{Text: "alternativa", Description: "Alternativa se il giocatore non gioca"},
	{Text: "ritira", Description: "Ritira la giocata"},
	{Text: "classifica", Description: "Classifica"},
	{Text: "jolly", Description: "Jolly usati"},
	{Text: "malloppo", Description: "Malloppo comune"},
	{Text: "debiti", Description: "Debiti dei partecipanti"},
	{Text: "giornate", Description: "Giornate concluse"},
	{Text: "movimenti", Description: "Ultimi movimenti"},
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: deps.Config.Bot.PollTimeout},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:     teleBot,
		cfg:     deps.Config,
		members: NewMemberCache(),
	}

	b.gameHandler = handler.NewGameHandler(deps.MatchdayService, deps.StandingsService, handler.NewPendingStore())
	b.adminHandler = handler.NewAdminHandler(deps.MatchdayService, deps.StandingsService)
	b.rankingHandler = handler.NewRankingHandler(deps.StandingsService)

	b.registerMiddleware()
	b.registerHandlers()

	if err := teleBot.SetCommands(commands); err != nil {
		log.Warn().Err(err).Msg("Failed to publish command menu")
	}

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.members))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.gameHandler.HandleStart)
	b.bot.Handle("/partite", b.gameHandler.HandleMatches)
	b.bot.Handle("/giocata", b.gameHandler.HandleWager)
	b.bot.Handle("/dati", b.gameHandler.HandleData)
	b.bot.Handle("/alternativa", b.gameHandler.HandleFallback)
	b.bot.Handle("/ritira", b.gameHandler.HandleWithdraw)

	b.bot.Handle("/classifica", b.rankingHandler.HandleStandings)
	b.bot.Handle("/jolly", b.rankingHandler.HandleJolly)
	b.bot.Handle("/malloppo", b.rankingHandler.HandlePool)
	b.bot.Handle("/debiti", b.rankingHandler.HandleDebts)
	b.bot.Handle("/giornate", b.rankingHandler.HandleHistory)
	b.bot.Handle("/movimenti", b.rankingHandler.HandleMovements)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/estrai", b.adminHandler.HandleDraw)
	adminGroup.Handle("/inizio_giornata", b.adminHandler.HandleStartRound)
	adminGroup.Handle("/fine_giornata", b.adminHandler.HandleEndRound)
	adminGroup.Handle("/verifica", b.adminHandler.HandleVerify)
	adminGroup.Handle("/esito_manuale", b.adminHandler.HandleManualOutcome)
	adminGroup.Handle("/pagato", b.adminHandler.HandlePayment)
	adminGroup.Handle("/gruppo", b.adminHandler.HandleGroupWager)

	// verification type buttons
	b.bot.Handle(tele.OnCallback, b.gameHandler.HandleCallback)
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
