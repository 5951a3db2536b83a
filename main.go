package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Dibendu094/Chatbot/api"
	"github.com/Dibendu094/Chatbot/chat"
	"github.com/Dibendu094/Chatbot/config"
	"github.com/Dibendu094/Chatbot/intent"
	"github.com/Dibendu094/Chatbot/llm"
	"github.com/Dibendu094/Chatbot/retrieval"
	"github.com/Dibendu094/Chatbot/search"
	"github.com/Dibendu094/Chatbot/voice"
	"github.com/Dibendu094/Chatbot/wiki"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting chatbot gateway...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Groq URL: %s", cfg.GroqBaseURL)
	log.Printf("Model: %s", cfg.GroqModel)

	// Initialize collaborator clients. One configured handle per
	// collaborator, read-only after this point and shared across
	// requests.
	llmClient := llm.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.LLMTimeout)
	searchClient := search.NewClient(cfg.SerpAPIKey, cfg.SearchTimeout)
	wikiClient := wiki.NewClient(cfg.SearchTimeout)

	// Initialize intent classifier
	ctx := context.Background()
	classifier, err := intent.NewClassifier(ctx, intent.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize intent classifier: %v", err)
	}

	// Generators: the chat channel uses backend defaults, the voice
	// channel keeps responses short for speech synthesis.
	gen := llm.NewGenerator(llmClient, cfg.GroqModel)
	voiceGen := llm.NewGenerator(llmClient, cfg.GroqModel)
	voiceGen.MaxTokens = &cfg.VoiceMaxTokens
	voiceGen.Temperature = &cfg.VoiceTemperature

	// Initialize pipeline and transports
	aggregator := retrieval.NewAggregator(searchClient, wikiClient)
	svc := chat.NewService(gen, classifier, aggregator)
	h := api.NewHandler(svc, searchClient)
	voiceServer := voice.NewServer(classifier, searchClient, voiceGen, cfg.SearchTimeout)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)
	e.GET("/ws/voice-stream", voiceServer.HandleVoice)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Gateway started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gateway...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Gateway stopped")
}
