package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/automentor/automentor/internal/config"
	"github.com/automentor/automentor/internal/knowledge"
	"github.com/automentor/automentor/internal/llm"
	"github.com/automentor/automentor/pkg/log"
)

// indexbuilder embeds a YAML corpus of brand facts and writes the
// searchable index the chatbot loads at startup.
func main() {
	corpusPath := flag.String("corpus", "data/brands.yaml", "brand facts corpus (YAML)")
	outPath := flag.String("out", "data/brands.idx", "output index file")
	flag.Parse()

	if err := run(*corpusPath, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(corpusPath, outPath string) error {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	client, err := llm.NewClient(&llm.Config{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		EmbedModel:  cfg.LLM.EmbedModel,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	docs, err := knowledge.LoadCorpus(corpusPath)
	if err != nil {
		return err
	}
	log.Info("corpus loaded: %d brand facts", len(docs))

	if err := knowledge.BuildIndex(context.Background(), outPath, docs, client); err != nil {
		return err
	}
	log.Info("index written to %s", outPath)
	return nil
}
