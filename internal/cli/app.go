package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/claimhub/claimctl/internal/api"
	"github.com/claimhub/claimctl/internal/claims"
	"github.com/claimhub/claimctl/internal/credstore"
	"github.com/claimhub/claimctl/internal/model"
	"github.com/claimhub/claimctl/internal/session"
)

// app wires the core components behind the command layer: the credential
// store, the request dispatcher, the session manager and the claims
// service. Commands are the presentation collaborator; all state lives
// in the wired components.
type app struct {
	cfg     *model.Config
	creds   credstore.Store
	client  *api.Client
	session *session.Manager
	claims  *claims.Service
}

func newApp() (*app, error) {
	cfg := loadConfig()

	creds, err := credstore.NewFileStore(cfg.Credentials.Path)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	client := api.NewClient(cfg.API, creds)
	sess := session.NewManager(client, creds)
	svc := claims.NewService(client, cfg)

	if verbose {
		sess.Subscribe(func(s session.Session) {
			fmt.Fprintf(os.Stderr, "session: %s\n", s.State)
		})
	}

	return &app{
		cfg:     cfg,
		creds:   creds,
		client:  client,
		session: sess,
		claims:  svc,
	}, nil
}

// loadConfig layers viper settings (file, env, flags) over the defaults
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration, using defaults: %v\n", err)
		return model.DefaultConfig()
	}
	return cfg
}

// requireSession restores the stored session and fails when the user is
// not authenticated
func (a *app) requireSession(ctx context.Context) error {
	ok, err := a.session.Restore(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("session expired, log in again with 'claimctl login'")
		}
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in; run 'claimctl login <username>' first")
	}
	return nil
}
