package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/LordZeuss/goroms/internal/api"
	"github.com/LordZeuss/goroms/internal/app"
	"github.com/LordZeuss/goroms/internal/catalog"
	"github.com/LordZeuss/goroms/internal/config"
	"github.com/LordZeuss/goroms/internal/events"
	"github.com/LordZeuss/goroms/internal/job"
	"github.com/LordZeuss/goroms/internal/store"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "goroms",
		Short:         "Catalog-driven ROM downloader: scrape, search, fetch and extract",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml")

	root.AddCommand(serveCmd(), scrapeCmd(), searchCmd(), fetchCmd(), settingsCmd(), statusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() (*app.Context, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return app.NewContext(cfg)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			e := echo.New()
			api.RegisterRoutes(e, a)

			srv := &http.Server{
				Addr:    ":" + a.Config.Port,
				Handler: e,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("listening on %s", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}
}

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Rebuild the catalog from the configured index pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Scraper.Refresh(ctx, a.Consoles(), func(pct int, msg string) {
				fmt.Printf("\r[%3d%%] %-40s", pct, msg)
				if pct >= 100 {
					fmt.Println()
				}
			})
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			games, err := a.Store.SearchGames(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, g := range games {
				mark := " "
				if g.IsDownloaded {
					mark = "*"
				}
				fmt.Printf("%6d %s %-30s %-10s %s\n", g.ID, mark, g.Console, g.Size, g.Name)
			}

			fmt.Printf("%d result(s)\n", len(games))
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	var destDir string
	var name string

	cmd := &cobra.Command{
		Use:   "fetch <id-or-url>",
		Short: "Download and extract one catalog entry or a raw URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := buildFetchRequest(cmd.Context(), a.Store, args[0], name, destDir)
			if err != nil {
				return err
			}

			// Mirror progress to the terminal.
			ch, cancel := a.Bus.Subscribe()
			defer cancel()
			go func() {
				for ev := range ch {
					switch ev.Type {
					case events.TypeProgress:
						fmt.Printf("\r%-20s", ev.Progress)
					case events.TypeComplete:
						fmt.Printf("\rDone.%15s\n", "")
					}
				}
			}()

			return a.Jobs.Run(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&destDir, "dir", "", "destination directory override")
	cmd.Flags().StringVar(&name, "name", "", "output file name (raw URLs only)")
	return cmd
}

// buildFetchRequest resolves the argument either as a catalog row id or
// as a raw URL. Raw URLs get an opaque ksuid job id since no catalog row
// backs them.
func buildFetchRequest(ctx context.Context, st *store.PersistentStore, arg, name, destDir string) (job.Request, error) {
	var id int64
	if _, err := fmt.Sscanf(arg, "%d", &id); err == nil {
		game, err := st.GetGame(ctx, id)
		if err != nil {
			return job.Request{}, err
		}
		if game == nil {
			return job.Request{}, fmt.Errorf("no catalog entry with id %d", id)
		}
		return job.Request{
			JobID:    fmt.Sprintf("%d", game.ID),
			URL:      game.DownloadLink,
			FileName: game.Name,
			DestDir:  destDir,
		}, nil
	}

	if name == "" {
		return job.Request{}, fmt.Errorf("--name is required when fetching a raw URL")
	}

	return job.Request{
		JobID:    ksuid.New().String(),
		URL:      arg,
		FileName: name,
		DestDir:  destDir,
	}, nil
}

func settingsCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "settings [path]",
		Short: "Show, set or clear the download directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()

			switch {
			case clear:
				return a.Store.ClearSetting(ctx, store.SettingDownloadDir)
			case len(args) == 1:
				return a.Store.SetSetting(ctx, store.SettingDownloadDir, args[0])
			default:
				saved, err := a.Store.GetSetting(ctx, store.SettingDownloadDir)
				if err != nil {
					return err
				}
				if saved == "" {
					saved = a.Config.Download.Dir + " (default)"
				}
				fmt.Println(saved)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the persisted download directory")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the catalog host is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			online, err := catalog.CheckNetwork(cfg.Catalog.BaseURL)
			if err != nil {
				return err
			}

			if online {
				fmt.Println("online")
				return nil
			}

			fmt.Println("offline")
			return nil
		},
	}
}
