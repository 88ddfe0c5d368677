package notegraph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	root "github.com/soundprediction/notegraph"
	"github.com/soundprediction/notegraph/pkg/checkpoint"
	"github.com/soundprediction/notegraph/pkg/config"
	"github.com/soundprediction/notegraph/pkg/corpus"
	"github.com/soundprediction/notegraph/pkg/extract"
	"github.com/soundprediction/notegraph/pkg/nlp"
	"github.com/soundprediction/notegraph/pkg/tagger"
	"github.com/soundprediction/notegraph/pkg/telemetry"
	"github.com/soundprediction/notegraph/pkg/tree"
)

var (
	chunkSize int

	indexCmd = &cobra.Command{
		Use:   "index <notes-dir>",
		Short: "Index a note corpus into a snapshot",
		Long: `Index walks the notes directory, runs the extraction cascade over every
chunk, builds the co-occurrence graph and summary tree, and writes the
snapshot to the configured directory.`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}
)

func init() {
	indexCmd.Flags().IntVar(&chunkSize, "chunk-size", corpus.DefaultChunkSize, "target chunk size in bytes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	chunks, err := corpus.LoadDir(args[0], chunkSize)
	if err != nil {
		return err
	}
	log.Info("corpus loaded", "dir", args[0], "chunks", len(chunks))

	spanTagger, err := tagger.NewGlinerTagger(cfg.Tagger.Model, cfg.Tagger.ScoreThreshold)
	if err != nil {
		return fmt.Errorf("load tagger model: %w", err)
	}
	defer spanTagger.Close()

	cascadeOpts := []extract.Option{
		extract.WithThreshold(cfg.Extraction.MinEntityThreshold),
		extract.WithLogger(log),
	}
	if cfg.Extraction.GenerativeEnabled {
		client, err := chatClient(cfg, "default")
		if err != nil {
			return err
		}
		defer client.Close()
		cascadeOpts = append(cascadeOpts, extract.WithGenerative(extract.NewGenerative(client, log)))
	}

	dict := extract.NewDictionary(nil)
	if cfg.Extraction.DictionaryPath != "" {
		dict, err = extract.LoadDictionary(cfg.Extraction.DictionaryPath)
		if err != nil {
			return err
		}
		log.Info("dictionary loaded", "path", cfg.Extraction.DictionaryPath, "patterns", dict.PatternCount())
	}

	cascade := extract.New(
		extract.NewTaggerTier(spanTagger, cfg.Tagger.LabelThreshold, log),
		dict,
		cascadeOpts...,
	)

	summaryClient, err := chatClient(cfg, "summary")
	if err != nil {
		return err
	}
	defer summaryClient.Close()
	builder := tree.NewBuilder(tree.NewLLMSummarizer(summaryClient), cfg.Tree.Workers, log)

	opts := []root.IndexerOption{
		root.WithIndexWorkers(cfg.Extraction.Workers),
		root.WithIndexLogger(log),
	}
	if cfg.Checkpoint.Enabled {
		ckpt, err := checkpoint.Open(cfg.Checkpoint.Dir, log)
		if err != nil {
			return err
		}
		defer ckpt.Close()
		opts = append(opts, root.WithCheckpoint(ckpt))
	}
	if cfg.Telemetry.Enabled {
		opts = append(opts, root.WithTelemetry(telemetry.NewRecorder(cfg.Telemetry.ParquetPath, uuid.NewString())))
	}

	indexer := root.NewIndexer(cascade, builder, cfg.Tree.MergeNum, opts...)
	snap, err := indexer.Index(cmd.Context(), chunks, cfg.Snapshot.Dir)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d chunks: %d entities, %d edges, %d tree nodes -> %s\n",
		snap.Manifest.Chunks, snap.Manifest.Entities, snap.Manifest.Edges,
		snap.Manifest.TreeNodes, cfg.Snapshot.Dir)
	return nil
}

// chatClient builds the named model's client, wrapped in a circuit
// breaker when one is configured.
func chatClient(cfg *config.Config, name string) (nlp.Client, error) {
	model, ok := cfg.NLP.Models[name]
	if !ok {
		return nil, fmt.Errorf("nlp model %q is not configured", name)
	}

	client, err := nlp.NewOpenAIClient(&nlp.LLMConfig{
		APIKey:      model.APIKey,
		Model:       model.Model,
		BaseURL:     model.BaseURL,
		Temperature: model.Temperature,
		MaxTokens:   model.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if !cfg.CircuitBreaker.Enabled {
		return client, nil
	}
	return nlp.NewCircuitBreakerClient(client, nlp.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		Timeout:          cfg.CircuitBreaker.Timeout,
		ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
	}, nil), nil
}
