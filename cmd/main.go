package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sec-filing-rag/internal/chromemdb"
	"sec-filing-rag/internal/config"
	"sec-filing-rag/internal/db"
	"sec-filing-rag/internal/embedding"
	"sec-filing-rag/internal/extract"
	"sec-filing-rag/internal/helper"
	"sec-filing-rag/internal/ingest"
	"sec-filing-rag/internal/llmservice"
	"sec-filing-rag/internal/parser"
	"sec-filing-rag/internal/pipeline"
	"sec-filing-rag/internal/retriever"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()
	if runID, err := helper.GenerateUUID(); err == nil {
		log.Logger = log.Logger.With().Str("run_id", runID).Logger()
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using config file only")
	}

	index := flag.Bool("index", false, "Rebuild the vector index from the data folder")
	question := flag.String("query", "", "Question to be answered")
	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	if !*index && *question == "" {
		log.Fatal().Msg("Please provide either -index to rebuild the index or a question using the -query flag")
	}

	cfg := loadConfig(*configPath)
	ctx := context.Background()

	if *index {
		indexDocuments(ctx, cfg)
		return
	}

	answerQuestion(ctx, cfg, *question)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load config file, using defaults")
		return config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

// openStore selects the vector store backend: the embedded chromem
// database by default, Postgres/pgvector when a database URL is set.
func openStore(cfg *config.Config) (interface {
	ingest.ChunkStore
	retriever.ChunkStore
}, func(), error) {
	if cfg.Database.URL != "" {
		sqldb, err := db.ConnectDB(cfg.Database.URL, cfg.Database.Key)
		if err != nil {
			return nil, nil, err
		}
		store := db.NewStore(sqldb, cfg.Database.Debug)
		return store, func() { store.Close() }, nil
	}

	if err := helper.CreateFolder(cfg.RAG.DBPath); err != nil {
		return nil, nil, err
	}
	store, err := chromemdb.NewStore(cfg.RAG.DBPath, cfg.RAG.Collection, false)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func indexDocuments(ctx context.Context, cfg *config.Config) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}
	defer closeStore()

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	chunker := parser.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err := ingest.IndexDocuments(ctx, store, embedder, chunker, cfg.RAG.DataDir, cfg.Documents); err != nil {
		log.Fatal().Err(err).Msg("Error indexing documents")
	}
}

func answerQuestion(ctx context.Context, cfg *config.Config, question string) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}
	defer closeStore()

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var reranker retriever.Reranker
	if cfg.Reranker.BaseURL != "" {
		reranker = retriever.NewHTTPReranker(&cfg.Reranker)
	}

	ret := retriever.New(store, embedder, reranker, cfg.Documents)
	generator := llmservice.NewClient(&cfg.InferenceLLM)
	ranges := extract.NewRanges(cfg.Ranges)

	p := pipeline.New(ret, generator, ranges, cfg.RAG.TopK, cfg.RAG.MaxContextChars)
	answer := p.AnswerQuestion(ctx, question)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", question)

	log.Info().Msg("Answer: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Answer)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(answer.Sources)
}
