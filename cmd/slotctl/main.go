package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"slotscout/internal/config"
	"slotscout/internal/core/dispatch"
	"slotscout/internal/core/task"
	"slotscout/internal/logger"
	"slotscout/internal/platform/browser"
	"slotscout/internal/platform/postgres"
	rds "slotscout/internal/platform/redis"
	tasks "slotscout/internal/platform/tasks"
	"slotscout/internal/venue"
	"slotscout/internal/venue/adapters"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "slotctl",
		Short:         "Administrative tooling for the slotscout scraper",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(verifyCmd(), testAdapterCmd(), refreshCmd(), clearCacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// verifyCmd checks that every declared venue key has a bound adapter and
// prints the descriptor table.
func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every venue key has a handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := venue.NewRegistry()
			bad := 0
			for _, city := range []venue.City{venue.CityNYC, venue.CityLondon} {
				keys := r.CityKeys(city)
				fmt.Printf("%s venues (%d):\n", city, len(keys))
				for _, key := range keys {
					d, err := r.Lookup(key)
					mark := "ok"
					if err != nil || d.Scrape == nil {
						mark = "MISSING ADAPTER"
						bad++
					}
					fmt.Printf("  %-40s %-8s %s\n", key, d.Kind, mark)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d venue keys without a handler", bad)
			}
			fmt.Println("all venue keys have handlers")
			return nil
		},
	}
}

// testAdapterCmd runs one adapter in-process and prints its slots.
func testAdapterCmd() *cobra.Command {
	var guests int
	var date string
	var opts []string

	cmd := &cobra.Command{
		Use:   "test-adapter <venue_key>",
		Short: "Run a single adapter once and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			r := venue.NewRegistry()
			desc, err := r.Lookup(args[0])
			if err != nil {
				return err
			}

			options := map[string]string{}
			for _, kv := range opts {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("bad option %q, expected key=value", kv)
				}
				options[parts[0]] = parts[1]
			}
			if err := r.ValidateOptions(desc, options); err != nil {
				return err
			}

			pool := browser.NewPool(1, browser.NewFactory(browser.LaunchOptions{
				ExecutablePath: cfg.BrowserPath,
			}))
			env := &adapters.Env{
				Pool:            pool,
				HTTP:            &http.Client{Timeout: 30 * time.Second},
				Log:             logger.New("TestAdapter"),
				PageLoadTimeout: cfg.PageLoadTimeout,
				SelectorTimeout: cfg.SelectorTimeout,
				FlareSolverrURL: cfg.FlareSolverrURL,
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.JobHardLimit)
			defer cancel()

			slots, err := desc.Scrape(ctx, env, adapters.Request{
				PartySize: guests,
				Date:      date,
				Options:   options,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", desc.Key, err)
			}

			fmt.Printf("%s: %d slots\n", desc.DisplayName, len(slots))
			for _, s := range slots {
				fmt.Printf("  %s %s  %-12s %-30s %s\n", s.Date, s.Time, s.Status, s.Price, s.BookingURL)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&guests, "guests", 2, "party size")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "target date YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&opts, "opt", nil, "adapter option key=value (repeatable)")
	return cmd
}

// refreshCmd enqueues scrape jobs for a subset of venue keys.
func refreshCmd() *cobra.Command {
	var guests, days int
	var date string

	cmd := &cobra.Command{
		Use:   "refresh [venue_key ...]",
		Short: "Enqueue scrape jobs for the named venues (or every venue)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := context.Background()

			redisSvc, err := rds.New(rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			if err != nil {
				return err
			}
			defer redisSvc.Close()

			pgSvc, err := postgres.New(ctx, postgres.Options{DSN: cfg.PostgresDSN})
			if err != nil {
				return err
			}
			defer pgSvc.Close()
			if err := postgres.Migrate(ctx, pgSvc.Pool()); err != nil {
				return err
			}

			r := venue.NewRegistry()
			taskClient := tasks.New(redisSvc)
			defer taskClient.Close()
			dispatchSvc := dispatch.NewService(r, task.NewService(pgSvc), taskClient, cfg)

			keys := args
			if len(keys) == 0 {
				for _, d := range r.All() {
					keys = append(keys, d.Key)
				}
			}

			start, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("bad date %q", date)
			}
			var dates []string
			for i := 0; i < days; i++ {
				dates = append(dates, start.AddDate(0, 0, i).Format("2006-01-02"))
			}

			submitted := 0
			for _, key := range keys {
				expanded, err := r.ExpandAggregate(key)
				if err != nil {
					return err
				}
				for _, k := range expanded {
					for _, d := range dates {
						id, err := dispatchSvc.DispatchSingle(ctx, k, guests, d, nil)
						if err != nil {
							return fmt.Errorf("dispatch %s %s: %w", k, d, err)
						}
						fmt.Printf("enqueued %s %s -> %s\n", k, d, id)
						submitted++
					}
				}
			}
			fmt.Printf("submitted %d jobs\n", submitted)
			return nil
		},
	}
	cmd.Flags().IntVar(&guests, "guests", 6, "party size")
	cmd.Flags().IntVar(&days, "days", 1, "number of consecutive dates to refresh")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "first date YYYY-MM-DD")
	return cmd
}

// clearCacheCmd flushes the redis cache and optionally purges the slot
// store.
func clearCacheCmd() *cobra.Command {
	var pattern string
	var purgeDB bool

	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Flush cached redis keys and optionally the slot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := context.Background()

			redisSvc, err := rds.New(rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			if err != nil {
				return err
			}
			defer redisSvc.Close()

			n, err := redisSvc.FlushCache(ctx, pattern)
			if err != nil {
				return err
			}
			fmt.Printf("flushed %d redis keys matching %q\n", n, pattern)

			if purgeDB {
				pgSvc, err := postgres.New(ctx, postgres.Options{DSN: cfg.PostgresDSN})
				if err != nil {
					return err
				}
				defer pgSvc.Close()
				tag, err := pgSvc.Pool().Exec(ctx, "DELETE FROM availability_slots")
				if err != nil {
					return err
				}
				fmt.Printf("deleted %d stored slots\n", tag.RowsAffected())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*", "redis key pattern to flush")
	cmd.Flags().BoolVar(&purgeDB, "purge-db", false, "also delete every stored slot")
	return cmd
}
