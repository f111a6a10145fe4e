package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/config"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/notifier"
	"github.com/dmitrijs2005/juizlab/internal/client/services"
	"github.com/dmitrijs2005/juizlab/internal/client/session"
	"github.com/dmitrijs2005/juizlab/internal/filex"
	"github.com/dmitrijs2005/juizlab/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   credstore.Store
	api     client.Client
	bus     notifier.Notifier
	auth    services.AuthService
	content services.ContentService
	profile services.ProfileService
	shell   *session.Manager
	nav     *navigator
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

// NewApp opens the session database, connects the notifier and builds the
// API client described by c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	path, err := filex.EnsureParentDir(c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	store, err := credstore.Open(ctx, path, c.StoreKeyFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}
	closers := []func() error{store.Close}

	api, err := client.NewHTTPClient(c.BaseURL, c.RequestTimeout, client.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var bus notifier.Notifier = notifier.NewLocal()
	if c.RedisURL != "" {
		rc, err := notifier.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, auth changes stay in this process", "err", err)
		} else {
			rn, err := notifier.NewRedis(ctx, rc, notifier.DefaultChannel, logger)
			if err != nil {
				_ = rc.Close()
				logger.Warn(ctx, "redis subscribe failed, auth changes stay in this process", "err", err)
			} else {
				bus = rn
				closers = append(closers, rn.Close, rc.Close)
			}
		}
	}

	a := newApp(c, logger, store, api, bus, bufio.NewReader(os.Stdin), os.Stdout)
	a.closers = closers
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, store credstore.Store, api client.Client,
	bus notifier.Notifier, reader *bufio.Reader, out io.Writer) *App {

	a := &App{
		config:  c,
		logger:  logger,
		store:   store,
		api:     api,
		bus:     bus,
		auth:    services.NewAuthService(api, store, bus, logger),
		content: services.NewContentService(api, store),
		profile: services.NewProfileService(api, store),
		nav:     &navigator{},
		reader:  reader,
		out:     out,
	}
	a.shell = a.newManager("shell", session.WithOnChange(func(st session.State) {
		a.logger.Debug(context.Background(), "shell session changed", "status", st.Status.String())
	}))
	return a
}

func (a *App) newManager(view string, opts ...session.Option) *session.Manager {
	opts = append([]session.Option{
		session.WithView(view),
		session.WithInterval(a.config.CheckInterval),
		session.WithRefresher(a.api),
		session.WithNavigator(a.nav),
		session.WithLogger(a.logger),
	}, opts...)
	return session.NewManager(a.store, a.api, a.bus, opts...)
}

// Run mounts the shell session and blocks in the REPL until the user exits
// or ctx is done.
func (a *App) Run(ctx context.Context) error {

	if err := a.shell.Start(ctx); err != nil {
		return err
	}
	defer a.shell.Stop()

	printlnFn("Welcome to Juiz Lab (type 'help' for commands)")
	if st, err := a.awaitSession(ctx, a.shell); err == nil && st.Status == session.Authenticated {
		printlnFn("Signed in as", st.Display())
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.shell.State().Status == session.Authenticated
}

func (a *App) status() string {
	st := a.shell.State()
	switch st.Status {
	case session.Authenticated:
		return "(" + st.Display() + ")"
	case session.Checking:
		if name := st.Display(); name != "" {
			return "(" + name + "?)"
		}
		return "(...)"
	case session.Anonymous:
		return "(guest)"
	default:
		return ""
	}
}

func (a *App) requestTimeout() time.Duration {
	if a.config.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return a.config.RequestTimeout
}

// awaitSession waits up to one request timeout for m to resolve. On timeout
// the current, unresolved state is returned with the context error.
func (a *App) awaitSession(ctx context.Context, m *session.Manager) (session.State, error) {
	actx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()
	return m.Await(actx)
}

func (a *App) checkNow(ctx context.Context, m *session.Manager) (session.State, error) {
	actx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()
	return m.CheckNow(actx)
}

// mountPage starts a manager for a single command. The caller must Stop it.
func (a *App) mountPage(ctx context.Context, view string) (*session.Manager, session.State, error) {
	m := a.newManager(view)
	if err := m.Start(ctx); err != nil {
		return nil, session.State{}, err
	}
	st, _ := a.awaitSession(ctx, m)
	return m, st, nil
}
