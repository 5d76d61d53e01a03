package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inboxpilot/inboxpilot/constants"
	"github.com/inboxpilot/inboxpilot/internal/extract"
	"github.com/inboxpilot/inboxpilot/internal/llm/openai"
)

// extract runs one strategy over a local PDF and prints the result as JSON.
// Useful for tuning patterns against real invoices without a mailbox.
func main() {
	mode := flag.String("mode", string(constants.ModePattern), "extraction mode: pattern|openai")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [-mode pattern|openai] <file.pdf>")
		os.Exit(2)
	}

	pdfContent, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Error("read file", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}

	text := extract.NewTextExtractor(logger)
	var strategy extract.Strategy
	switch constants.NormalizeMode(*mode) {
	case constants.ModeOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			logger.Error("OPENAI_API_KEY required for openai mode")
			os.Exit(1)
		}
		strategy = extract.NewModelStrategy(text, openai.NewClient(openai.Config{}, logger), logger)
	default:
		strategy = extract.NewPatternStrategy(text, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := strategy.Extract(ctx, pdfContent)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
