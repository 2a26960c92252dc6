// Package main is the entry point for the ticker sentiment analyzer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/internal/agent"
	"github.com/user/ticker-sentiment/internal/aggregator"
	"github.com/user/ticker-sentiment/internal/api"
	"github.com/user/ticker-sentiment/internal/evidence"
	"github.com/user/ticker-sentiment/internal/llm"
	"github.com/user/ticker-sentiment/internal/pipeline"
	"github.com/user/ticker-sentiment/pkg/config"
)

func main() {
	// Parse command line flags
	ticker := flag.String("ticker", "", "Stock ticker symbol (e.g. AAPL)")
	configPath := flag.String("config", "", "Path to configuration file")
	outputDir := flag.String("output", "", "Directory to save the JSON report (overrides config)")
	serve := flag.Bool("serve", false, "Run the HTTP API server instead of a one-shot analysis")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║              Ticker Sentiment Analyzer                    ║")
	fmt.Println("║      Multi-Source AI Sentiment for Stock Tickers          ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	// Initialize LLM client
	fmt.Printf("→ Initializing LLM provider (%s)...\n", cfg.LLM.Provider)
	client, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}
	fmt.Printf("  ✓ LLM provider ready (%s)\n", client.Name())

	// Assemble the pipeline
	fmt.Println("→ Assembling sentiment pipeline...")
	pipe := buildPipeline(client, cfg)
	fmt.Println("  ✓ Pipeline ready")
	fmt.Println()

	if *serve {
		runServer(pipe, cfg)
		return
	}

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "Usage: sentiment -ticker AAPL [-config path] [-output dir]")
		fmt.Fprintln(os.Stderr, "       sentiment -serve [-config path]")
		os.Exit(2)
	}

	dir := cfg.Output.Dir
	if *outputDir != "" {
		dir = *outputDir
	}
	runOnce(pipe, *ticker, dir)
}

// buildPipeline wires the evidence fetchers, agents, and stages together in
// execution order.
func buildPipeline(client llm.Client, cfg *config.Config) *pipeline.Pipeline {
	p := cfg.Providers

	newsFetcher := evidence.NewNewsFetcher(p.FinvizBaseURL, p.YahooRSSBaseURL, p.UserAgent, p.RequestTimeout)
	socialFetcher := evidence.NewSocialFetcher(p.ApeWisdomBaseURL, p.RequestTimeout)
	analystFetcher := evidence.NewAnalystFetcher(p.FinnhubBaseURL, p.FinnhubAPIKey, p.RequestTimeout)
	webFetcher := evidence.NewWebFetcher(p.DuckDuckGoURL, p.UserAgent, p.RequestTimeout)

	agents := []agent.Agent{
		agent.NewNewsAgent(client, newsFetcher),
		agent.NewSocialAgent(client, socialFetcher),
		agent.NewAnalystAgent(client, analystFetcher, p.AnalystCooldown),
		agent.NewWebAgent(client, webFetcher, analystFetcher),
	}

	agg := aggregator.New(aggregator.Weights{
		News:    cfg.Weights.News,
		Social:  cfg.Weights.Social,
		Analyst: cfg.Weights.Analyst,
		Web:     cfg.Weights.Web,
	})

	return pipeline.New(agents, agent.NewDebater(client), agg, agent.NewSummarizer(client))
}

// runOnce analyzes a single ticker and writes the report to disk.
func runOnce(pipe *pipeline.Pipeline, ticker, outputDir string) {
	fmt.Printf("🔍 Analyzing sentiment for %s...\n\n", ticker)

	rep, err := pipe.Run(context.Background(), ticker)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	pretty, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to render report")
	}
	fmt.Println(string(pretty))

	path, err := rep.WriteFile(outputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to save report")
	}

	fmt.Printf("\n✅ Report saved to: %s\n", path)
	fmt.Printf("   Sentiment: %s  |  Score: %g  |  Confidence: %g\n",
		rep.SentimentLabel, rep.SentimentScore, rep.Confidence)
}

// runServer starts the HTTP API.
func runServer(pipe *pipeline.Pipeline, cfg *config.Config) {
	fmt.Println("→ Starting API server...")
	server := api.NewServer(pipe, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("  ✓ Server running at http://localhost%s\n", addr)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
