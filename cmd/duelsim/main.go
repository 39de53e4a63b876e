package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cardquest/duel-server-go/internal/ai"
	"github.com/cardquest/duel-server-go/internal/config"
	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/notify"
	"github.com/cardquest/duel-server-go/internal/persistence"
	"github.com/cardquest/duel-server-go/internal/problems"
)

var (
	configPath = flag.String("config", "", "path to configuration file (optional)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// .env is optional; real deployments set DUEL_* variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duel simulator",
		zap.String("version", version),
		zap.String("ai_level", cfg.AI.Level),
		zap.Int("max_turns", cfg.AI.MaxTurns),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("duel simulator interrupted")
			return
		}
		logger.Fatal("duel simulator failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	source := newProblemSource(cfg, logger)

	if cfg.Notify.Enabled {
		hub := notify.NewHub(logger)
		go hub.Run(ctx)
		go func() {
			if serveErr := hub.Serve(ctx, cfg.Notify.Address); serveErr != nil {
				logger.Error("spectator feed error", zap.Error(serveErr))
			}
		}()
		store.SetEventHandler(hub.Handler())
	}

	gameID := uuid.NewString()
	tm := game.NewTurnManager(gameID, demoDeck("p"), demoDeck("o"), logger)
	if err := store.Save(ctx, tm); err != nil {
		return fmt.Errorf("failed to save new game: %w", err)
	}
	logger.Info("game created", zap.String("game_id", gameID))

	level := ai.Level(cfg.AI.Level)
	delays := delaysFromConfig(cfg.AI.Delays)
	seats := map[game.PlayerID]*ai.Opponent{
		game.PlayerSelf: ai.NewOpponent(store, source, game.PlayerSelf, level, delays,
			rand.New(rand.NewSource(time.Now().UnixNano())), logger.Named("player")),
		game.PlayerOpponent: ai.NewOpponent(store, source, game.PlayerOpponent, level, delays,
			rand.New(rand.NewSource(time.Now().UnixNano()+1)), logger.Named("opponent")),
	}

	for i := 0; i < cfg.AI.MaxTurns; i++ {
		tm, err = store.Load(ctx, gameID)
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}
		snapshot := tm.Snapshot()
		if end := game.CheckGameEnd(&snapshot); end.GameOver {
			logResult(logger, snapshot, end)
			return nil
		}

		seat := snapshot.ActivePlayer
		logger.Info("turn begins",
			zap.Int("turn", snapshot.TurnNumber),
			zap.String("active_player", string(seat)),
			zap.Int("player_health", snapshot.Player.Health),
			zap.Int("opponent_health", snapshot.Opponent.Health),
		)
		if err := seats[seat].TakeTurn(ctx, gameID); err != nil {
			return fmt.Errorf("turn %d (%s): %w", snapshot.TurnNumber, seat, err)
		}
	}

	tm, err = store.Load(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}
	snapshot := tm.Snapshot()
	if end := game.CheckGameEnd(&snapshot); end.GameOver {
		logResult(logger, snapshot, end)
		return nil
	}
	logger.Info("turn limit reached without a winner",
		zap.Int("max_turns", cfg.AI.MaxTurns),
		zap.Int("player_health", snapshot.Player.Health),
		zap.Int("opponent_health", snapshot.Opponent.Health),
	)
	return nil
}

// eventStore is the slice of persistence.Store the simulator needs plus
// the feed attachment both concrete stores provide.
type eventStore interface {
	persistence.Store
	SetEventHandler(handler game.EventHandler)
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (eventStore, error) {
	if !cfg.Database.Enabled {
		logger.Info("using in-memory store")
		return persistence.NewMemoryStore(logger), nil
	}
	store, err := persistence.NewPostgresStore(ctx, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("using postgres store")
	return store, nil
}

func newProblemSource(cfg *config.Config, logger *zap.Logger) problems.Source {
	if cfg.Problems.ServiceURL == "" {
		logger.Info("using local problem generator")
		return problems.NewLocalGenerator()
	}
	logger.Info("using problem service with local fallback",
		zap.String("url", cfg.Problems.ServiceURL),
	)
	primary := problems.NewHTTPSource(cfg.Problems.ServiceURL, cfg.Problems.RequestTimeout, logger)
	return problems.NewFallbackSource(primary, logger)
}

func delaysFromConfig(d config.DelaysConfig) ai.Delays {
	return ai.Delays{
		ChooseCard:    ai.DelayRange{Min: d.ChooseCardMin, Max: d.ChooseCardMax},
		AnswerProblem: ai.DelayRange{Min: d.AnswerProblemMin, Max: d.AnswerProblemMax},
		PhaseStep:     ai.DelayRange{Min: d.PhaseStepMin, Max: d.PhaseStepMax},
	}
}

func logResult(logger *zap.Logger, snapshot game.GameState, end game.EndResult) {
	if end.Draw {
		logger.Info("game ended in a draw", zap.Int("turn", snapshot.TurnNumber))
		return
	}
	logger.Info("game over",
		zap.String("winner", string(end.Winner)),
		zap.Int("turn", snapshot.TurnNumber),
		zap.Int("player_health", snapshot.Player.Health),
		zap.Int("opponent_health", snapshot.Opponent.Health),
	)
}

// demoDeck builds a 20-card starter deck spanning the elements and a few
// effect cards, enough for a full simulated duel.
func demoDeck(prefix string) []cards.Card {
	deck := []cards.Card{
		{ID: prefix + "-ember-sprite", Name: "Ember Sprite", Cost: 1, Power: 2, Defense: 1, Element: cards.ElementFire, ProblemCategory: cards.CategoryMath},
		{ID: prefix + "-tide-caller", Name: "Tide Caller", Cost: 1, Power: 1, Defense: 2, Element: cards.ElementWater, ProblemCategory: cards.CategoryLogic},
		{ID: prefix + "-pebble-golem", Name: "Pebble Golem", Cost: 2, Power: 2, Defense: 3, Element: cards.ElementEarth, ProblemCategory: cards.CategoryScience},
		{ID: prefix + "-gust-hawk", Name: "Gust Hawk", Cost: 2, Power: 3, Defense: 1, Element: cards.ElementAir, ProblemCategory: cards.CategoryMath},
		{ID: prefix + "-flame-adept", Name: "Flame Adept", Cost: 3, Power: 3, Defense: 3, Element: cards.ElementFire, ProblemCategory: cards.CategoryLogic},
		{ID: prefix + "-river-guardian", Name: "River Guardian", Cost: 3, Power: 2, Defense: 4, Element: cards.ElementWater, ProblemCategory: cards.CategoryScience},
		{ID: prefix + "-stone-sentinel", Name: "Stone Sentinel", Cost: 4, Power: 3, Defense: 5, Element: cards.ElementEarth, ProblemCategory: cards.CategoryMath},
		{ID: prefix + "-storm-rider", Name: "Storm Rider", Cost: 4, Power: 5, Defense: 2, Element: cards.ElementAir, ProblemCategory: cards.CategoryLogic},
		{ID: prefix + "-cinder-drake", Name: "Cinder Drake", Cost: 5, Power: 5, Defense: 4, Element: cards.ElementFire, ProblemCategory: cards.CategoryScience},
		{ID: prefix + "-deep-leviathan", Name: "Deep Leviathan", Cost: 6, Power: 6, Defense: 6, Element: cards.ElementWater, ProblemCategory: cards.CategoryMath},
		{ID: prefix + "-mountain-titan", Name: "Mountain Titan", Cost: 7, Power: 7, Defense: 7, Element: cards.ElementEarth, ProblemCategory: cards.CategoryLogic},
		{ID: prefix + "-sky-sovereign", Name: "Sky Sovereign", Cost: 8, Power: 8, Defense: 6, Element: cards.ElementAir, ProblemCategory: cards.CategoryScience},
		{ID: prefix + "-fire-bolt", Name: "Fire Bolt", Cost: 2, Power: 1, Defense: 1, Element: cards.ElementFire, ProblemCategory: cards.CategoryMath,
			Ability: &cards.Ability{Kind: cards.EffectDamage, Amount: 3}},
		{ID: prefix + "-healing-spring", Name: "Healing Spring", Cost: 3, Power: 1, Defense: 1, Element: cards.ElementWater, ProblemCategory: cards.CategoryLogic,
			Ability: &cards.Ability{Kind: cards.EffectHeal, Amount: 4}},
		{ID: prefix + "-tremor", Name: "Tremor", Cost: 4, Power: 1, Defense: 1, Element: cards.ElementEarth, ProblemCategory: cards.CategoryScience,
			Ability: &cards.Ability{Kind: cards.EffectDamage, Amount: 5}},
		{ID: prefix + "-zephyr-blessing", Name: "Zephyr Blessing", Cost: 2, Power: 1, Defense: 1, Element: cards.ElementAir, ProblemCategory: cards.CategoryMath,
			Ability: &cards.Ability{Kind: cards.EffectHeal, Amount: 2}},
		{ID: prefix + "-ash-wolf", Name: "Ash Wolf", Cost: 2, Power: 3, Defense: 2, Element: cards.ElementFire, ProblemCategory: cards.CategoryLogic},
		{ID: prefix + "-frost-wisp", Name: "Frost Wisp", Cost: 1, Power: 1, Defense: 1, Element: cards.ElementWater, ProblemCategory: cards.CategoryScience},
		{ID: prefix + "-clay-soldier", Name: "Clay Soldier", Cost: 3, Power: 4, Defense: 2, Element: cards.ElementEarth, ProblemCategory: cards.CategoryMath},
		{ID: prefix + "-wind-dancer", Name: "Wind Dancer", Cost: 5, Power: 4, Defense: 5, Element: cards.ElementAir, ProblemCategory: cards.CategoryLogic},
	}
	return deck
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
