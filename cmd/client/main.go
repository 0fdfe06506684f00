package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/githuba42r/imagetools/internal/client/cli"
	"github.com/githuba42r/imagetools/internal/client/config"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"

	_ "modernc.org/sqlite"
)

// commandArgs returns the positional arguments, skipping the flags (and
// their values) that the config layer owns.
func commandArgs() []string {
	valueFlags := map[string]bool{"-d": true, "-t": true, "-c": true, "-config": true}

	var cmds []string
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			if valueFlags[a] && i+1 < len(args) {
				i++
			}
			continue
		}
		cmds = append(cmds, a)
	}
	return cmds
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := credstore.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("error opening local database: %v", err)
	}
	defer db.Close()

	store := credstore.NewSQLiteStore(db)
	app := cli.NewApp(cfg, store, logger, os.Stdin, os.Stdout)

	if err := app.Run(ctx, commandArgs()); err != nil {
		os.Exit(1)
	}
}
