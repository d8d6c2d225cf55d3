package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/globalquiz/roomclient/clients/gameapi"
	"github.com/globalquiz/roomclient/internal/room"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := loadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := gameapi.NewClient(config.ServerURL)
	api.SetLanguage(config.Language)

	store, err := room.NewFileIdentityStore(config.IdentityDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open identity store")
	}

	roomID, identity, err := enterRoom(ctx, api, store, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to enter room")
	}

	stream, closeStream, err := buildStream(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build push stream")
	}
	defer closeStream()

	controller := room.NewController(
		roomID,
		identity,
		api,
		api,
		api,
		stream,
		clockwork.NewRealClock(),
		room.DefaultControllerConfig(),
	)
	controller.Watch(renderView)

	log.Info().
		Str("room_id", roomID).
		Str("player_id", identity.PlayerID).
		Str("transport", config.Transport).
		Msg("joining room")

	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("room session ended with error")
	}
	log.Info().Str("room_id", roomID).Msg("room session closed")
}

// enterRoom reuses the persisted identity for the room when one exists, so
// a restart does not rejoin as a new player. With no room id configured a
// fresh room is created and hosted.
func enterRoom(ctx context.Context, api *gameapi.Client, store room.IdentityStore, config *Config) (string, room.Identity, error) {
	player := gameapi.PlayerDetails{Username: config.Username, AvatarURL: config.AvatarURL}

	if config.RoomID == "" {
		settings := gameapi.RoomSettings{
			MaxPlayers:      config.MaxPlayers,
			TotalRounds:     config.TotalRounds,
			TimePerQuestion: config.TimePerQuestion,
			Language:        config.Language,
		}
		resp, err := api.CreateRoom(ctx, player, settings)
		if err != nil {
			return "", room.Identity{}, err
		}
		identity := room.Identity{PlayerID: resp.PlayerID, Username: config.Username}
		if err := store.Save(resp.Session.SessionID, identity); err != nil {
			return "", room.Identity{}, err
		}
		log.Info().Str("room_id", resp.Session.SessionID).Msg("created room")
		return resp.Session.SessionID, identity, nil
	}

	identity, err := store.Load(config.RoomID)
	if err == nil {
		return config.RoomID, identity, nil
	}
	if !errors.Is(err, room.ErrNoIdentity) {
		return "", room.Identity{}, err
	}

	resp, err := api.JoinRoom(ctx, config.RoomID, player)
	if err != nil {
		return "", room.Identity{}, err
	}
	identity = room.Identity{PlayerID: resp.PlayerID, Username: config.Username}
	if err := store.Save(config.RoomID, identity); err != nil {
		return "", room.Identity{}, err
	}
	return config.RoomID, identity, nil
}

func buildStream(config *Config) (room.PushStream, func(), error) {
	switch config.Transport {
	case "nats":
		stream, err := room.NewNATSStream(room.DefaultNATSStreamConfig(config.NATSURL))
		if err != nil {
			return nil, nil, err
		}
		return stream, func() { _ = stream.Close() }, nil
	default:
		stream := room.NewWebSocketStream(
			room.DefaultWebSocketStreamConfig(config.WebSocketURL),
			clockwork.NewRealClock(),
		)
		return stream, func() { _ = stream.Close() }, nil
	}
}

// renderView logs each derived view transition, the headless stand-in for
// rendering the active screen.
func renderView(view room.RoomView) {
	ev := log.Info().
		Str("screen", string(view.Screen)).
		Int("round", view.CurrentRound).
		Int("total_rounds", view.TotalRounds).
		Int("players", len(view.Players))

	switch {
	case view.Lobby != nil:
		ev = ev.Bool("can_start", view.Lobby.CanStart).Bool("ready", view.Lobby.IsReady)
	case view.Category != nil:
		ev = ev.Str("chooser", view.Category.Chooser.Username).Bool("my_turn", view.Category.IsMyTurn)
	case view.Difficulty != nil:
		ev = ev.Str("category", view.Difficulty.CategoryName).Bool("my_turn", view.Difficulty.IsMyTurn)
	case view.AnswerEntry != nil:
		ev = ev.Int("seconds", view.AnswerEntry.Seconds).Bool("answered", view.AnswerEntry.HasAnswered)
	case view.MCQ != nil:
		ev = ev.Str("choices", strings.Join(view.MCQ.Choices, " | ")).Bool("answered", view.MCQ.HasAnswered)
	case view.Reveal != nil:
		for _, c := range view.Reveal.Choices {
			if c.Correct {
				ev = ev.Str("correct", c.Text)
				break
			}
		}
	case view.Score != nil:
		names := make([]string, 0, len(view.Score.Standings))
		for _, p := range view.Score.Standings {
			names = append(names, p.Username)
		}
		ev = ev.Str("standings", strings.Join(names, " > ")).Bool("last_round", view.Score.LastRound)
	}
	ev.Msg("screen updated")
}
