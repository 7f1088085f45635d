package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/julienb/mentor-go/internal/agent"
	"github.com/julienb/mentor-go/internal/config"
	"github.com/julienb/mentor-go/internal/history"
	"github.com/julienb/mentor-go/internal/llm"
	"github.com/julienb/mentor-go/internal/logger"
	"github.com/julienb/mentor-go/internal/prompt"
	"github.com/julienb/mentor-go/internal/registry"
	"github.com/julienb/mentor-go/internal/session"
)

func main() {
	// Load configuration; a missing required value halts the process.
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	systemPrompt, err := prompt.Resolve(cfg.Prompt.Profile, cfg.Prompt.Custom)
	if err != nil {
		logger.L.Error("failed to resolve system prompt", "error", err)
		os.Exit(1)
	}

	// Wire the core.
	completer := llm.NewCompleter(llm.NewClient(cfg.LLM), cfg.LLM)
	store := history.NewStore(cfg.Session.HistoryDir)
	index := registry.New(cfg.Session.RegistryPath)
	ctrl := agent.New(completer, store, index, systemPrompt, cfg.Auth.Password)
	sessions := session.NewManager(cfg.Session.Secret)

	mux := newMux(ctrl, sessions, store, index)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting server", "address", serverAddr, "profile", cfg.Prompt.Profile)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		logger.L.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
