package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/automentor/automentor/internal/agent"
	"github.com/automentor/automentor/internal/config"
	"github.com/automentor/automentor/internal/dataset"
	"github.com/automentor/automentor/internal/knowledge"
	"github.com/automentor/automentor/internal/llm"
	"github.com/automentor/automentor/internal/pricing"
	"github.com/automentor/automentor/internal/session"
	"github.com/automentor/automentor/internal/tools"
	"github.com/automentor/automentor/pkg/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
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

	// The three data sources are independent, load them concurrently.
	var (
		ds    *dataset.Context
		index *knowledge.Index
		model *pricing.LinearModel
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		ds, err = dataset.Load(cfg.Data.DatasetPath)
		return err
	})
	g.Go(func() error {
		var err error
		index, err = knowledge.OpenIndex(cfg.Data.BrandIndexPath, client, cfg.Data.BrandSearchTopK)
		return err
	})
	g.Go(func() error {
		var err error
		model, err = pricing.LoadModel(cfg.Data.PricingModelPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	log.Info("dataset loaded: %d rows, %d columns", ds.RowCount(), len(ds.Columns()))

	registry := tools.NewRegistry()
	for _, t := range []tools.Tool{
		tools.NewQueryTool(ds),
		tools.NewPredictionTool(model),
		tools.NewRetrieverTool(index),
	} {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register tool: %w", err)
		}
	}

	llmAgent := agent.NewLLMAgent(client, registry,
		cfg.Agent.MaxIterations,
		time.Duration(cfg.Agent.CallTimeout)*time.Second)

	sessions := session.NewManager(llmAgent, ds.Metadata(),
		time.Duration(cfg.Session.IdleTTLMinutes)*time.Minute)
	if err := sessions.StartSweeper(cfg.Session.SweepCron); err != nil {
		return err
	}
	defer sessions.StopSweeper()

	return repl(context.Background(), sessions)
}

// repl runs a single interactive session on stdin until EOF or "exit".
func repl(ctx context.Context, sessions *session.Manager) error {
	stdin := bufio.NewScanner(os.Stdin)

	fmt.Print("Your name: ")
	if !stdin.Scan() {
		return nil
	}
	fullName := strings.TrimSpace(stdin.Text())
	if fullName == "" {
		fullName = "there"
	}

	fmt.Print("Anything I should know about what you are looking for? ")
	var preferences string
	if stdin.Scan() {
		preferences = strings.TrimSpace(stdin.Text())
	}

	s := sessions.Open(fullName, preferences)
	defer sessions.Close(s.ID)

	fmt.Println(s.Bot.Greet(fullName))
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return stdin.Err()
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}
		s.Touch()
		fmt.Println(s.Bot.GenerateResponse(ctx, line))
	}
}
