package setup

import (
	"context"
	"fmt"

	"github.com/ljosc/discuss/internal/apiclient"
	"github.com/ljosc/discuss/internal/config"
	"github.com/ljosc/discuss/internal/credstore"
	"github.com/ljosc/discuss/internal/handler"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/markdown"
	"github.com/ljosc/discuss/internal/middleware"
	"github.com/ljosc/discuss/internal/session"
	"github.com/ljosc/discuss/internal/templates"
	"github.com/ljosc/discuss/internal/workflow"
)

type Dependencies struct {
	Config     *config.Config
	Store      credstore.Store
	Monitor    *session.Monitor
	APIClient  *apiclient.APIClient
	Auth       *workflow.Auth
	Handler    *handler.Handler
	Liveness   *middleware.Liveness
	CancelFunc context.CancelFunc

	closeStore func() error
}

// SetupDependencies wires every component for one profile and starts the
// session monitor. Call Close when done.
func SetupDependencies(cfg *config.Config, ephemeral bool) (*Dependencies, error) {
	store, closeStore, err := OpenStore(cfg.ProfileDir, ephemeral)
	if err != nil {
		return nil, err
	}

	tmpls, err := templates.Load()
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	monitor := session.NewMonitor(store, session.Options{
		PollInterval:       cfg.PollInterval,
		AdoptExternalLogin: cfg.AdoptExternalLogin,
	})
	apiClient := apiclient.New(cfg.APIURL, store, cfg.RequestTimeout)
	auth := workflow.NewAuth(apiClient, monitor, store)
	// a rejected token ends the session
	apiClient.OnAuthFailure(func(ctx context.Context) { _ = auth.Logout(ctx) })

	h := handler.New(tmpls, markdown.New(), apiClient, auth, monitor.Session(), handler.Options{
		SecureCookies: cfg.SecureCookies,
		MessageTTL:    cfg.MessageTTL,
	})
	liveness := middleware.NewLiveness(apiClient, auth.Logout)

	ctx, cancel := context.WithCancel(context.Background())
	monitor.Start(ctx)
	h.Watch(ctx, liveness.Reset)

	logger.Log.Info("dependencies ready", "component", "setup", "api_url", cfg.APIURL, "profile_dir", cfg.ProfileDir, "ephemeral", ephemeral)

	return &Dependencies{
		Config:     cfg,
		Store:      store,
		Monitor:    monitor,
		APIClient:  apiClient,
		Auth:       auth,
		Handler:    h,
		Liveness:   liveness,
		CancelFunc: cancel,
		closeStore: closeStore,
	}, nil
}

func (d *Dependencies) Close() error {
	d.CancelFunc()
	d.Monitor.Stop()
	return d.closeStore()
}

// OpenStore opens the profile's credential file, or an in-memory store
// that forgets everything on exit.
func OpenStore(profileDir string, ephemeral bool) (credstore.Store, func() error, error) {
	if ephemeral {
		return credstore.NewMemory(), func() error { return nil }, nil
	}
	store, err := credstore.OpenProfile(profileDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, store.Close, nil
}
