package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Simon-McIntosh/nucleai/internal/config"
	"github.com/Simon-McIntosh/nucleai/internal/embeddings/openai"
	"github.com/Simon-McIntosh/nucleai/internal/localstate"
	"github.com/Simon-McIntosh/nucleai/internal/logger"
	"github.com/Simon-McIntosh/nucleai/internal/search"
	"github.com/Simon-McIntosh/nucleai/internal/searchindex"
	"github.com/Simon-McIntosh/nucleai/internal/simdb"
	"github.com/Simon-McIntosh/nucleai/internal/storage/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "nucleai",
	Short: "CLI for querying, caching and semantically searching fusion simulation records",
}

func main() {
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(fieldsCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.New("nucleai").Level(logger.ParseLevel(cfg.LogLevel))
	return cfg, log, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query field=value ...",
		Short: "Query remote simulations by field constraints",
		Long: `Query remote simulations. Constraints are field=value pairs; values may
carry an operator prefix, e.g. code.name=JINTRAC or shot=gt:105000.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			raw := make(map[string]string, len(args))
			for _, a := range args {
				k, v, ok := strings.Cut(a, "=")
				if !ok {
					return fmt.Errorf("constraint %q is not field=value", a)
				}
				raw[k] = v
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			client := simdb.New(cfg, log)
			sims, err := client.QueryMap(cmd.Context(), raw, limit)
			if err != nil {
				return err
			}
			return printJSON(sims)
		},
	}
	cmd.Flags().IntP("limit", "n", 50, "Maximum number of results")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uuid-or-alias>",
		Short: "Fetch one simulation with its data objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			client := simdb.New(cfg, log)
			sim, err := client.FetchSimulation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(sim)
		},
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remote simulations",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			client := simdb.New(cfg, log)
			sims, err := client.ListSimulations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(sims)
		},
	}
	cmd.Flags().IntP("limit", "n", 50, "Maximum number of results")
	return cmd
}

func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Discover queryable fields on the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			client := simdb.New(cfg, log)
			fields, err := client.DiscoverAvailableFields(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(fields)
		},
	}
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror remote simulation summaries into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			client := simdb.New(cfg, log)
			sims, err := client.ListSimulations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			dbPath, err := localstate.DBPath()
			if err != nil {
				return err
			}
			store, err := sqlite.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.UpsertSimulations(cmd.Context(), sims); err != nil {
				return err
			}
			log.Info().Int("count", len(sims)).Str("path", dbPath).Msg("cache synced")
			fmt.Printf("synced %d simulations\n", len(sims))
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 500, "Maximum number of records to sync")
	return cmd
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed cached simulations and push them into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			if err := searchindex.BootstrapWeaviate(ctx, cfg.SearchIndexURL, cfg.SearchClassName); err != nil {
				return err
			}
			idx, err := searchindex.NewWeaviateNativeIndex(cfg.SearchIndexURL, cfg.SearchClassName)
			if err != nil {
				return err
			}
			dbPath, err := localstate.DBPath()
			if err != nil {
				return err
			}
			store, err := sqlite.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sims, err := store.List(ctx, 0)
			if err != nil {
				return err
			}
			searcher := search.New(openai.New(cfg), idx)
			var indexed int
			for i := range sims {
				if err := searcher.IndexSimulation(ctx, &sims[i]); err != nil {
					log.Warn().Err(err).Str("uuid", sims[i].UUID).Msg("skipping simulation")
					continue
				}
				indexed++
			}
			fmt.Printf("indexed %d of %d simulations\n", indexed, len(sims))
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over indexed simulations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topk, _ := cmd.Flags().GetInt("topk")
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			idx, err := searchindex.NewWeaviateNativeIndex(cfg.SearchIndexURL, cfg.SearchClassName)
			if err != nil {
				return err
			}
			searcher := search.New(openai.New(cfg), idx)
			results, err := searcher.Semantic(cmd.Context(), strings.Join(args, " "), topk)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
	cmd.Flags().IntP("topk", "k", 10, "Number of top results to return")
	return cmd
}
