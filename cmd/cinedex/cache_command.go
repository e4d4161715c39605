package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinedex/internal/omdbcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the OMDB response cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete cached OMDB responses older than the TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.OMDB.CacheEnabled {
				fmt.Fprintln(cmd.OutOrStdout(), "OMDB cache disabled")
				return nil
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			api, closeAPI, err := openOMDB(cfg, logger)
			if err != nil {
				return err
			}
			defer closeAPI()
			cache, ok := api.(*omdbcache.Cache)
			if !ok {
				return fmt.Errorf("omdb cache unavailable")
			}
			removed, err := cache.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cached responses from %s\n", removed, cache.Path())
			return nil
		},
	})
	return cacheCmd
}
