package notegraph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/notegraph/pkg/store"
)

var (
	searchLimit int
	maxHops     int
	maxChunks   int
	chunkMeta   bool

	searchCmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search entities in the snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			return printJSON(st.SearchEntities(args[0], searchLimit))
		},
	}

	contextCmd = &cobra.Command{
		Use:   "context <entity>",
		Short: "Show an entity's graph neighbors and chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			ctx, err := st.EntityContext(args[0])
			if err != nil {
				return err
			}
			return printJSON(ctx)
		},
	}

	chunkCmd = &cobra.Command{
		Use:   "chunk <chunk-id>",
		Short: "Show one chunk or summary node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			if chunkMeta {
				info, err := st.ChunkMetadata(args[0])
				if err != nil {
					return err
				}
				return printJSON(info)
			}
			chunk, err := st.Chunk(args[0])
			if err != nil {
				return err
			}
			return printJSON(chunk)
		},
	}

	subgraphCmd = &cobra.Command{
		Use:   "subgraph <entity>...",
		Short: "Find how entities connect and which chunks cover them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			sub, err := st.QuerySubgraph(args, maxHops, maxChunks)
			if err != nil {
				return err
			}
			return printJSON(sub)
		},
	}
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results")
	chunkCmd.Flags().BoolVar(&chunkMeta, "meta", false, "show tree position instead of text")
	subgraphCmd.Flags().IntVar(&maxHops, "max-hops", store.DefaultMaxHops, "maximum path length between entities")
	subgraphCmd.Flags().IntVar(&maxChunks, "max-chunks", store.DefaultMaxChunks, "maximum chunks returned")

	rootCmd.AddCommand(searchCmd, contextCmd, chunkCmd, subgraphCmd)
}

func openStore() (*store.Store, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Snapshot.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", cfg.Snapshot.Dir, err)
	}
	return st, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
