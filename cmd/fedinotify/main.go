package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nhle/fedinotify/internal/app"
	"github.com/nhle/fedinotify/internal/credential"
	"github.com/nhle/fedinotify/internal/logging"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/store"
)

var (
	// Version info (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet(model.AppName, pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the config file")
	debug := flags.Bool("debug", false, "log at debug level")
	flags.String("account", "", "saved account to use, by name or ID")
	instance := flags.String("instance", "", "instance URL for a one-off session (with --token)")
	token := flags.String("token", "", "access token for a one-off session (with --instance)")
	showVersion := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("%s %s (%s)\n", model.AppName, Version, GitCommit)
		return nil
	}

	v := viper.New()
	if err := v.BindPFlag("account", flags.Lookup("account")); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	cfg, err := model.LoadConfigWith(v, *configPath)
	if err != nil {
		return err
	}

	closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level, *debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().Str("version", Version).Str("config", *configPath).Msg("starting")

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := app.Options{
		Store:       st,
		Credentials: credential.Keyring{},
		Config:      cfg,
	}

	switch {
	case *instance != "" || *token != "":
		if *instance == "" || *token == "" {
			return errors.New("--instance and --token must be used together")
		}
		// Nothing from a one-off session reaches the system keyring.
		opts.Credentials = credential.NewMemory()
		opts.Profile = &model.AccountProfile{
			ID:      "one-off",
			Name:    hostOf(*instance),
			BaseURL: *instance,
		}
		opts.Token = *token
	default:
		profile, tok, err := resolveAccount(context.Background(), st, opts.Credentials, cfg.Account)
		if err != nil {
			return err
		}
		opts.Profile, opts.Token = profile, tok
	}

	p := tea.NewProgram(app.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// resolveAccount picks the profile to start with: the one named by
// selector, otherwise the most recently used. A missing token is not an
// error; the UI then opens the accounts view.
func resolveAccount(
	ctx context.Context,
	st store.Store,
	creds credential.Store,
	selector string,
) (*model.AccountProfile, string, error) {
	var (
		profile *model.AccountProfile
		err     error
	)
	if selector != "" {
		profile, err = st.GetAccount(ctx, selector)
		if err != nil {
			return nil, "", err
		}
	} else {
		profile, err = st.GetLastUsedAccount(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
	}

	tok, err := creds.Get(profile.CredentialKey())
	if err != nil {
		log.Warn().Err(err).Str("account", profile.ID).Msg("no token for account")
		return nil, "", nil
	}
	if err := st.TouchAccount(ctx, profile.ID); err != nil {
		log.Warn().Err(err).Str("account", profile.ID).Msg("touching account failed")
	}
	return profile, tok, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
