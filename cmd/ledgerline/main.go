package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/lachiem1/ledgerline/internal/auth"
	"github.com/lachiem1/ledgerline/internal/config"
	"github.com/lachiem1/ledgerline/internal/demo"
	"github.com/lachiem1/ledgerline/internal/logger"
	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/syncer"
	"github.com/lachiem1/ledgerline/internal/timeline"
	"github.com/lachiem1/ledgerline/internal/tui"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the process exit code so deferred cleanup runs before
// main exits.
func realMain(args []string) int {
	if len(args) >= 2 && args[0] == "auth" && args[1] == "set" {
		if err := runAuthSet(args); err != nil {
			fmt.Fprintf(os.Stderr, "auth set error: %v\n", err)
			return 1
		}
		fmt.Println("PAT saved to your system credential store.")
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	log, closer, err := logger.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer closer.Close()

	if len(args) >= 1 && args[0] == "demo" {
		err = runDemo(cfg, &log)
	} else {
		err = run(cfg, &log)
	}
	if err != nil {
		log.Error().Err(err).Msg("ledgerline exited")
		fmt.Fprintf(os.Stderr, "ledgerline: %v\n", err)
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zerolog.Logger) error {
	pat, err := auth.LoadPAT()
	if err != nil {
		return fmt.Errorf("load PAT: %w (run `ledgerline auth set` or `ledgerline demo`)", err)
	}

	ctx := context.Background()
	db, dbCfg, err := storage.Open(ctx)
	if err != nil {
		return fmt.Errorf("open local db: %w", err)
	}
	var closeOnce sync.Once
	closeDB := func() {
		closeOnce.Do(func() { _ = db.Close() })
	}
	defer closeDB()
	log.Info().Str("path", dbCfg.Path).Str("mode", string(dbCfg.Mode)).Msg("local db opened")

	client := upapi.New(pat)
	source := syncer.NewWindowSource(db, client, syncer.WindowSourceConfig{
		StaleTTL: cfg.StaleTTL,
		Logger:   log,
	})

	events := make(chan syncer.Event, 16)
	svc, err := syncer.NewDictionariesService(db, client, syncer.Config{Logger: log}, func(evt syncer.Event) {
		select {
		case events <- evt:
		default:
			log.Debug().Str("collection", evt.Collection).Str("type", string(evt.Type)).Msg("sync event dropped")
		}
	})
	if err != nil {
		return fmt.Errorf("create sync service: %w", err)
	}
	defer svc.LeaveView()

	opts := tui.Options{
		Source: source,
		LoadDictionaries: func(ctx context.Context) (timeline.Dictionaries, error) {
			return syncer.LoadDictionaries(ctx, db)
		},
		DB:         db,
		Sync:       svc,
		SyncEvents: events,
		Invalidate: source.Invalidate,
		WipeDB: func() (string, error) {
			svc.LeaveView()
			closeDB()
			wiped, _, err := storage.Wipe()
			return wiped.Path, err
		},
		Location: cfg.Location,
		PageSize: cfg.PageSize,
		Logger:   log,
	}
	return runProgram(opts)
}

func runDemo(cfg config.Config, log *zerolog.Logger) error {
	source := demo.NewSource(demo.Config{
		Location: cfg.Location,
		Latency:  350 * time.Millisecond,
	})
	opts := tui.Options{
		Source: source,
		LoadDictionaries: func(context.Context) (timeline.Dictionaries, error) {
			return demo.Dictionaries(), nil
		},
		Location: cfg.Location,
		PageSize: cfg.PageSize,
		Logger:   log,
		Demo:     true,
	}
	return runProgram(opts)
}

func runProgram(opts tui.Options) error {
	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runAuthSet(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: ledgerline auth set")
	}

	fmt.Print("Enter Up PAT: ")
	pat, err := readSecret()
	if err != nil {
		return err
	}
	fmt.Println()

	if strings.TrimSpace(pat) == "" {
		return errors.New("empty PAT")
	}

	return auth.SavePAT(pat)
}

func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		value, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(value), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) && len(line) == 0 {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
