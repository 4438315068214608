package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func purgeCacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-cache",
		Usage: "delete the cache entry of a login, or every expired entry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "login",
				Aliases: []string{"l"},
				Usage:   "GitHub login whose entry is deleted",
			},
			&cli.DurationFlag{
				Name:  "history",
				Usage: "also delete snapshots older than this age (0 keeps all)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			login := cmd.String("login")
			mgr, err := openManager(login)
			if err != nil {
				return err
			}
			defer closeManager(mgr)

			w := cmd.Root().Writer
			n, err := mgr.PurgeCache(ctx, login)
			if err != nil {
				return fmt.Errorf("purge cache: %w", err)
			}
			switch {
			case login != "" && n > 0:
				fmt.Fprintf(w, "Cache entry of @%s removed\n", login)
			case login != "":
				fmt.Fprintf(w, "No cache entry for @%s\n", login)
			default:
				fmt.Fprintf(w, "%d expired cache entries removed\n", n)
			}

			if age := cmd.Duration("history"); age > 0 {
				pruned, err := mgr.PruneHistory(ctx, age)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d snapshots older than %s removed\n", pruned, age)
			}
			return nil
		},
	}
}
