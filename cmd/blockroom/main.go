package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/adapters/push"
	"github.com/kienminh/blockroom/internal/adapters/rest"
	"github.com/kienminh/blockroom/internal/app"
	"github.com/kienminh/blockroom/internal/config"
	"github.com/kienminh/blockroom/internal/domain"
	"github.com/kienminh/blockroom/internal/tui"
)

func main() {
	roomFlag := flag.String("room", "", "room id to join")
	playerFlag := flag.String("player", "", "local participant id")
	startFlag := flag.Bool("start", false, "start the match (host only)")
	flag.Parse()

	_ = godotenv.Load()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *roomFlag == "" || *playerFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: blockroom -room <id> -player <id> [-start]")
		os.Exit(2)
	}
	if cfg.AuthToken == "" {
		fmt.Fprintln(os.Stderr, "no auth token; set BLOCKROOM_AUTH_TOKEN or auth_token in the config file")
		os.Exit(2)
	}

	roomID := domain.RoomID(*roomFlag)
	localID := domain.ParticipantID(*playerFlag)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := rest.NewClient(cfg.ServerURL, cfg.AuthToken, cfg.RequestTimeout)

	roster, err := client.Room(ctx, roomID)
	if err != nil {
		log.Fatal().Err(err).Str("room", string(roomID)).Msg("failed to fetch room membership")
	}
	if !roster.Contains(localID) {
		log.Fatal().Str("room", string(roomID)).Str("player", string(localID)).Msg("local participant is not in the room")
	}

	if *startFlag {
		if err := client.StartRoom(ctx, roomID); err != nil {
			log.Fatal().Err(err).Msg("failed to start the match")
		}
	}

	rec := app.NewReconciler(roomID, localID)
	channel := push.NewChannel(cfg.PushURL, roomID, cfg.AuthToken, cfg.ReconnectDelay, rec.Apply)
	clock := clockwork.NewRealClock()
	poller := app.NewPoller(roomID, client, rec, cfg.PollInterval, clock)
	coord := app.NewCoordinator(rec, poller, channel, client, clock, cfg.GracePeriod, cfg.CompletionPoll)

	watcher := app.NewWatcher(localID, roster, rec)
	dispatcher := app.NewDispatcher(localID, client, rec)

	program := tui.NewProgram(tui.NewModel(localID, roster, rec, watcher, dispatcher, coord))
	coord.OnAuthExpired(func() {
		log.Error().Msg("session credential expired, log in again")
		program.Quit()
	})

	if err := channel.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to room events")
	}
	poller.Start(ctx)
	go coord.Run(ctx)

	if _, err := program.Run(); err != nil {
		coord.Shutdown()
		log.Fatal().Err(err).Msg("terminal UI error")
	}
	coord.Shutdown()
	log.Info().Msg("left room")
}
