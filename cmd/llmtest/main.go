// Command llmtest exercises the configured LLM providers with a sample
// collections prompt. Useful for verifying credentials and model access
// before pointing the API server at a provider.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/recoverly/collections-ai-agent/cmd/mainconfig"
	appconfig "github.com/recoverly/collections-ai-agent/internal/config"
	"github.com/recoverly/collections-ai-agent/internal/llm"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

const samplePrompt = `You are a professional debt collection agent.

Customer: Rajesh
Outstanding: ₹45,000

Customer said: "I can pay but I need to split it into a few installments"

Task: Respond naturally with an empathetic offer of installment options. Be brief (2-3 sentences).

Response:`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New("debug")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("LLM Provider Test")
	fmt.Println("=================")

	ran := false

	if cfg.GeminiAPIKey != "" {
		ran = true
		fmt.Printf("\n[gemini] model %s\n", cfg.GeminiModelID)
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("  create client: %v\n", err)
		} else {
			probe(ctx, llm.NewOracle(client, cfg.GeminiModelID, cfg.OracleTimeout, logger))
		}
	}

	if cfg.BedrockModelID != "" {
		ran = true
		fmt.Printf("\n[bedrock] model %s\n", cfg.BedrockModelID)
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("  load AWS config: %v\n", err)
		} else {
			client := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
			probe(ctx, llm.NewOracle(client, cfg.BedrockModelID, cfg.OracleTimeout, logger))
		}
	}

	if !ran {
		fmt.Println("\nNo provider configured. Set GEMINI_API_KEY and/or BEDROCK_MODEL_ID.")
		os.Exit(1)
	}
}

func probe(ctx context.Context, oracle *llm.Oracle) {
	start := time.Now()
	reply, err := oracle.Generate(ctx, samplePrompt, llm.GenerateOptions{
		MaxTokens:   150,
		Temperature: 0.7,
		MinLength:   20,
	})
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("  error after %v: %v\n", elapsed, err)
		return
	}
	fmt.Printf("  ok in %v:\n  %s\n", elapsed, reply)
}
