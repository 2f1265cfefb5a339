package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grafo-ai/grafo/pipeline"
	"github.com/grafo-ai/grafo/providers/embedder"
	"github.com/grafo-ai/grafo/providers/observability/slogobs"
	"github.com/grafo-ai/grafo/providers/vectorstore"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grafo-ingest [files...]",
	Short: "Ingest text files through a YAML-described pipeline",
	Long: `grafo-ingest loads a pipeline description (modules, constants, elements,
vector store) from YAML, runs every input file through the module chain, and
upserts the resulting chunks into the configured vector store collection.

Pass "-" as a file to read from stdin. Provider credentials are taken from
the environment (OPENAI_API_KEY, QDRANT_URL, ...); a .env file next to the
binary is loaded automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		metadata, _ := cmd.Flags().GetStringArray("meta")
		createCollection, _ := cmd.Flags().GetBool("create-collection")

		return runIngest(cmd.Context(), configPath, args, metadata, createCollection)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringP("config", "c", "pipeline.yaml", "Path to the pipeline YAML description")
	rootCmd.Flags().StringArrayP("meta", "m", nil, "Metadata attached to every chunk, as key=value (repeatable)")
	rootCmd.Flags().Bool("create-collection", false, "Provision the vector store collection before ingesting")
	rootCmd.SilenceUsage = true
}

func runIngest(ctx context.Context, configPath string, files []string, metaPairs []string, createCollection bool) error {
	metadata, err := parseMetadata(metaPairs)
	if err != nil {
		return err
	}

	config, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ingestion, err := config.Build(defaultRegistry())
	if err != nil {
		return err
	}
	ingestion.WithObserver(slogobs.New())

	if createCollection {
		if err := provisionCollection(ctx, ingestion); err != nil {
			return err
		}
	}

	texts := make([]string, 0, len(files))
	for _, file := range files {
		text, err := readInput(file)
		if err != nil {
			return err
		}
		texts = append(texts, text)
	}

	if err := ingestion.Run(ctx, texts, metadata); err != nil {
		return err
	}

	fmt.Printf("Ingested %d file(s) into %q\n", len(texts), ingestion.Collection())
	return nil
}

// provisionCollection creates the target collection with one vector slot per
// embedding module in the chain. Creation is skipped when the pipeline has no
// store.
func provisionCollection(ctx context.Context, ingestion *pipeline.Ingestion) error {
	store := ingestion.Store()
	if store == nil {
		return nil
	}

	var configs []vectorstore.VectorConfig
	for _, module := range ingestion.Chain().Modules() {
		chunkEmbedder, ok := module.(*embedder.ChunkEmbedder)
		if !ok {
			continue
		}
		configs = append(configs, vectorstore.VectorConfig{
			Name:       chunkEmbedder.Name(),
			Dimensions: chunkEmbedder.Dimensions(),
			Distance:   vectorstore.DistanceCosine,
		})
	}

	return store.CreateCollection(ctx, ingestion.Collection(), configs...)
}

// parseMetadata turns repeated key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

// readInput reads one ingestion input, either a file path or stdin for "-".
func readInput(file string) (string, error) {
	if file == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(raw), nil
}
