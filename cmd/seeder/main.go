// Command seeder loads card candidates from a JSON file and ingests them
// as NEW cards. It is intended for bootstrapping decks offline, not as
// part of the main server.
//
// The input file holds an array of decks:
//
//	[
//	  {
//	    "deckTopic": "biology",
//	    "cards": [
//	      {"front": "...", "back": "...", "difficultyTag": "EASY"}
//	    ]
//	  }
//	]
//
// Flags:
//
//	--file     path to the JSON candidate file (required)
//	--dry-run  validate candidates without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/learnanything/practice-backend/internal/adapter/postgres"
	cardrepo "github.com/learnanything/practice-backend/internal/adapter/postgres/card"
	"github.com/learnanything/practice-backend/internal/app"
	"github.com/learnanything/practice-backend/internal/config"
	"github.com/learnanything/practice-backend/internal/service/ingest"
)

type deckFile struct {
	DeckTopic string `json:"deckTopic"`
	Cards     []struct {
		Front         string `json:"front"`
		Back          string `json:"back"`
		DifficultyTag string `json:"difficultyTag"`
	} `json:"cards"`
}

func main() {
	fileFlag := flag.String("file", "", "path to the JSON candidate file")
	dryRunFlag := flag.Bool("dry-run", false, "validate candidates without writing to DB")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	decks, err := loadDecks(*fileFlag)
	if err != nil {
		logger.Error("load candidate file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inputs := make([]ingest.IngestInput, 0, len(decks))
	for _, deck := range decks {
		candidates := make([]ingest.Candidate, 0, len(deck.Cards))
		for _, card := range deck.Cards {
			candidates = append(candidates, ingest.Candidate{
				Front:         card.Front,
				Back:          card.Back,
				DifficultyTag: card.DifficultyTag,
			})
		}
		inputs = append(inputs, ingest.IngestInput{
			DeckTopic:  deck.DeckTopic,
			Candidates: candidates,
		})
	}

	if *dryRunFlag {
		failed := false
		for _, input := range inputs {
			if err := input.Validate(); err != nil {
				logger.Error("deck invalid",
					slog.String("deck_topic", input.DeckTopic),
					slog.String("error", err.Error()),
				)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		logger.Info("dry run passed", slog.Int("decks", len(inputs)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	svc := ingest.NewService(logger, cardrepo.New(pool), txm, cfg.SRS.DefaultEaseFactor)

	total := 0
	for _, input := range inputs {
		created, err := svc.IngestCandidates(ctx, input)
		if err != nil {
			logger.Error("ingest deck failed",
				slog.String("deck_topic", input.DeckTopic),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		total += len(created)
	}

	logger.Info("seeding completed",
		slog.Int("decks", len(inputs)),
		slog.Int("cards", total),
	)
}

func loadDecks(path string) ([]deckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var decks []deckFile
	if err := json.Unmarshal(data, &decks); err != nil {
		return nil, err
	}
	return decks, nil
}
