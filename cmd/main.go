package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-guard/classifier"
	"chat-guard/controller"
	"chat-guard/domain"
	"chat-guard/moderation"
	"chat-guard/services"
	"chat-guard/store"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the session lifecycle, and centralizes
// error reporting, so deferred cleanup always executes before the program exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation pipeline
	extraWords := lo.Compact(lo.Map(strings.Split(config.ExtraCensoredWords, ","),
		func(w string, _ int) string { return strings.TrimSpace(w) }))
	filter, err := moderation.NewFilter(extraWords, log)
	if err != nil {
		return fmt.Errorf("filter construction failed: %w", err)
	}
	toxicity := classifier.NewToxicityClient(
		config.ClassifierEndpoint, config.ClassifierThreshold, config.ClassifierTimeout, log)
	engine := moderation.NewEngine(filter, toxicity, config.DebounceDelay, log)

	// 4. Store & synchronization
	documents := store.NewBadgerStore(db, log)
	syncer := services.NewSynchronizer(documents, log)
	conversation := controller.NewConversation(
		config.ChatID, config.UserID, config.PeerID, engine, syncer, documents, log)
	defer conversation.Close()

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conversation.Watch(func(c domain.Conversation) {
		if len(c.Messages) == 0 {
			return
		}
		last := c.Messages[len(c.Messages)-1]
		fmt.Printf("[%s] %s: %s\n",
			last.CreatedAt.Format(time.TimeOnly), last.SenderID, last.Text)
	})

	log.Info("Chat session started",
		"chat", config.ChatID, "user", config.UserID, "peer", config.PeerID)
	fmt.Println("Type a message and press Enter to send (Ctrl+C to quit).")

	// 6. Input loop. Each line goes through the live check first, then the
	// send gate, mirroring the keystroke -> send flow of the UI.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			return nil
		case line, ok := <-lines:
			if !ok {
				log.Info("Input closed, stopping")
				return nil
			}
			conversation.OnTextChanged(ctx, line)
			if conversation.Blocked() {
				fmt.Println("🚫 Offensive message blocked")
				continue
			}
			if err := conversation.Send(ctx); err != nil {
				fmt.Printf("🚫 %v\n", err)
			}
		}
	}
}
