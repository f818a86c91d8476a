// Command drakkar serves the Drakkar site and loads its initial content.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v3"

	"github.com/drakkar-agro/drakkar"
	"github.com/drakkar-agro/drakkar/views"
)

// loadConfig reads the config file when it exists and falls back to
// environment variables otherwise.
func loadConfig(path string) (drakkar.SiteConfig, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var cfg drakkar.SiteConfig
			if err := drakkar.LoadConfig(path, &cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return drakkar.SiteConfig{}, err
		}
	}
	return drakkar.ConfigFromEnv()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app := drakkar.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Echo.Logger.Infof("drakkar %s listening on %s", drakkar.Version, cfg.Addr)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func seed(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errors.New("usage: drakkar seed <file.yaml>")
	}
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s, err := drakkar.LoadSeed(file)
	if err != nil {
		return err
	}
	store, err := drakkar.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := s.Apply(store)
	if err != nil {
		return fmt.Errorf("seed %s: %w", file, err)
	}
	fmt.Printf("seeded %s\n", stats)
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file; environment variables are used when it does not exist",
		DefaultText: "drakkar.yaml",
		Value:       "drakkar.yaml",
		Sources:     cli.EnvVars("DRAKKAR_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:    "drakkar",
		Usage:   "Drakkar site engine",
		Version: drakkar.Version,
		Flags:   []cli.Flag{configFlag},
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the site until interrupted",
				Action: serve,
			},
			{
				Name:      "seed",
				Usage:     "Load categories, posts, pages, menus and options from a YAML file",
				ArgsUsage: "<file.yaml>",
				Action:    seed,
			},
			{
				Name:  "version",
				Usage: "Print the engine version",
				Action: func(context.Context, *cli.Command) error {
					fmt.Println(drakkar.Version)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Errorf("application error: %v", err)
		os.Exit(1)
	}
}
