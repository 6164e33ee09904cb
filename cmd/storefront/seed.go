package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/seed"
)

var (
	seedFile  string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish a starting menu to the store",
	Long: `Publish a menu read from a YAML file, or the built-in default menu, to the
configured store. A store that already holds products is left alone unless
--force is given, in which case the whole menu is replaced.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML menu file (default: built-in menu)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "replace an existing menu")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	menu := seed.Default()
	if seedFile != "" {
		m, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
		menu = m
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	repo := repos.NewMenuRepo(store).WithWriteConcurrency(cfg.Store.WriteConcurrency)
	version, err := seed.Apply(ctx, repo, menu, seedForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d products in %d categories (version %d)\n",
		len(menu.Products), len(menu.Categories), version)
	return nil
}
