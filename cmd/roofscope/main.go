package main

import (
	"log"
	"log/slog"

	"roofscope/internal/config"
	"roofscope/internal/db"
	"roofscope/internal/logging"
	"roofscope/internal/objectstore"
	azurestore "roofscope/internal/objectstore/azure"
	localstore "roofscope/internal/objectstore/local"
	"roofscope/internal/service"
	"roofscope/internal/store"
	"roofscope/internal/vision"
	claudevision "roofscope/internal/vision/claude"
	geminivision "roofscope/internal/vision/gemini"
	openaivision "roofscope/internal/vision/openai"
	"roofscope/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	analysisStore := store.NewAnalysisStore(database)
	photoStore := store.NewPhotoStore(database)

	analyzer := newAnalyzer(cfg, logger)
	if analyzer == nil {
		return
	}

	objects := newObjectStore(cfg, logger)
	if objects == nil {
		return
	}

	analysisService := service.NewAnalysisService(analysisStore, objects, analyzer, cfg.MinConfidence, logger)
	reportService := service.NewReportService(analysisStore, photoStore, objects, cfg.PhotosBucket, logger)
	server := web.NewServer(analysisService, reportService, analysisStore, photoStore, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY is required when AI_PROVIDER=openai")
			return nil
		}
		logger.Info("using OpenAI vision provider", "model", cfg.OpenAIModel)
		return openaivision.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when AI_PROVIDER=claude")
			return nil
		}
		logger.Info("using Claude vision provider", "model", cfg.ClaudeModel)
		return claudevision.New(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Error("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
			return nil
		}
		logger.Info("using Gemini vision provider", "model", cfg.GeminiModel)
		return geminivision.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
}

func newObjectStore(cfg *config.Config, logger *slog.Logger) objectstore.Store {
	switch cfg.StorageBackend {
	case "azure":
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			logger.Error("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required when STORAGE_BACKEND=azure")
			return nil
		}
		logger.Info("using Azure blob storage", "account", cfg.AzureAccountName)
		objects, err := azurestore.New(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			logger.Error("failed to initialize azure storage", "error", err)
			return nil
		}
		return objects
	default:
		logger.Info("using local object storage", "path", cfg.StoragePath)
		objects, err := localstore.New(cfg.StoragePath)
		if err != nil {
			logger.Error("failed to initialize local storage", "error", err)
			return nil
		}
		return objects
	}
}
