// Package session keeps a view's idea of who is signed in.
//
// A Manager reads the stored credential, confirms it with the backend and
// publishes the result as a State. It re-checks on a fixed interval, on
// request and whenever another view announces an auth change. Only an
// Unauthorized answer clears the stored credential; transport failures leave
// the previous state in place until the next attempt.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/notifier"
	"github.com/dmitrijs2005/juizlab/internal/client/tokens"
	"github.com/dmitrijs2005/juizlab/internal/common"
	"github.com/dmitrijs2005/juizlab/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultInterval = 5 * time.Minute

	expiryLeeway = 30 * time.Second
)

var (
	ErrStarted = errors.New("session: manager already started")
	ErrStopped = errors.New("session: manager stopped")

	errStoreMoved = errors.New("stored credential changed during check")
)

// Validator confirms a credential with the backend.
type Validator interface {
	Check(ctx context.Context, accessToken string) (models.Identity, error)
	FetchProfile(ctx context.Context, userID int64, accessToken string) (models.Profile, error)
}

// Refresher exchanges a refresh token for a new credential.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.Credential, error)
}

// Navigator moves the view to sign-in. next is the destination to resume
// after a successful login; it is empty for a plain logout.
type Navigator interface {
	SignIn(next string)
}

type Option func(*Manager)

// WithInterval sets the re-check period. It bounds how long a revoked
// credential can go unnoticed.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithRefresher(r Refresher) Option {
	return func(m *Manager) { m.refresher = r }
}

func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.navigator = n }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithView names the view in logs.
func WithView(name string) Option {
	return func(m *Manager) { m.view = name }
}

// WithOnChange registers a callback invoked with the latest state after
// every change. Calls are serialized.
func WithOnChange(fn func(State)) Option {
	return func(m *Manager) { m.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

type Manager struct {
	store     credstore.Store
	validator Validator
	notifier  notifier.Notifier
	refresher Refresher
	navigator Navigator
	logger    logging.Logger
	onChange  func(State)
	now       func() time.Time
	interval  time.Duration
	view      string
	origin    string

	trigger chan struct{}
	emitMu  sync.Mutex
	fetches sync.WaitGroup

	mu          sync.Mutex
	state       State
	settled     State
	gen         uint64
	begun       uint64
	finished    uint64
	started     bool
	stopped     bool
	changed     chan struct{}
	cancel      context.CancelFunc
	done        chan struct{}
	unsubscribe func()
}

// NewManager returns a manager in the Unchecked state. Nothing happens until
// Start is called.
func NewManager(store credstore.Store, validator Validator, n notifier.Notifier, opts ...Option) *Manager {
	if n == nil {
		n = notifier.NewLocal()
	}
	m := &Manager{
		store:     store,
		validator: validator,
		notifier:  n,
		logger:    logging.Nop(),
		now:       time.Now,
		interval:  DefaultInterval,
		view:      "view",
		origin:    uuid.NewString(),
		trigger:   make(chan struct{}, 1),
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("view", m.view)
	return m
}

// Origin identifies this manager's broadcasts.
func (m *Manager) Origin() string {
	return m.origin
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start mounts the manager: it enters Checking, subscribes to auth change
// events and runs the first check followed by periodic ones. The loop runs
// until Stop is called or ctx is done.
func (m *Manager) Start(ctx context.Context) error {

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.started {
		m.mu.Unlock()
		return ErrStarted
	}
	m.started = true
	m.mu.Unlock()

	var hint *models.Identity
	if id, ok, err := m.store.LoadCachedIdentity(ctx); err != nil {
		m.logger.Warn(ctx, "load cached identity", "err", err)
	} else if ok {
		hint = &id
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	unsubscribe := m.notifier.Subscribe(m.onEvent)

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.unsubscribe = unsubscribe
	m.settled = State{Status: Unchecked, Hint: hint}
	m.setLocked(State{Status: Checking, Hint: hint})
	m.mu.Unlock()
	m.emit()

	go m.loop(loopCtx, done)
	return nil
}

// Stop unmounts the manager. It cancels the timer, releases the
// subscription and waits for the loop to exit; results still in flight are
// discarded. Stop is idempotent.
func (m *Manager) Stop() {

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel, done, unsubscribe := m.cancel, m.done, m.unsubscribe
	m.wakeLocked()
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	m.fetches.Wait()
}

// Recheck queues a check. At most one check is pending at a time and checks
// never run in parallel.
func (m *Manager) Recheck() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Await blocks until the state is Authenticated or Anonymous.
func (m *Manager) Await(ctx context.Context) (State, error) {
	for {
		m.mu.Lock()
		st, stopped, ch := m.state, m.stopped, m.changed
		m.mu.Unlock()

		if st.Resolved() {
			return st, nil
		}
		if stopped {
			return st, ErrStopped
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// CheckNow queues a check and waits for a check that started after the call
// to finish. It returns the state at that point, which may still be
// unresolved if the check failed transiently.
func (m *Manager) CheckNow(ctx context.Context) (State, error) {
	m.mu.Lock()
	target := m.begun + 1
	m.mu.Unlock()

	m.Recheck()

	for {
		m.mu.Lock()
		st, stopped, finished, ch := m.state, m.stopped, m.finished, m.changed
		m.mu.Unlock()

		if finished >= target {
			return st, nil
		}
		if stopped {
			return st, ErrStopped
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Logout clears the stored credential, resolves to Anonymous, tells the
// other views and sends this view to sign-in.
func (m *Manager) Logout(ctx context.Context) error {
	return m.signOut(ctx, "")
}

// HandleUnauthorized is the path for a 401 returned by any authorized call
// made on behalf of this view. It behaves like Logout but keeps next as the
// destination to resume after sign-in.
func (m *Manager) HandleUnauthorized(ctx context.Context, next string) error {
	m.logger.Info(ctx, "credential rejected by backend", "next", next)
	return m.signOut(ctx, next)
}

func (m *Manager) signOut(ctx context.Context, next string) error {

	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	var errs []error
	if err := m.store.Clear(ctx); err != nil {
		errs = append(errs, err)
	}

	m.mu.Lock()
	if !m.stopped {
		m.resolveLocked(State{Status: Anonymous})
	}
	m.mu.Unlock()
	m.emit()

	if err := m.notifier.Notify(ctx, notifier.AuthChange(m.origin)); err != nil {
		errs = append(errs, err)
	}
	if m.navigator != nil {
		m.navigator.SignIn(next)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (m *Manager) onEvent(ev notifier.Event) {
	if ev.Name != common.EventAuthChange || ev.Origin == m.origin {
		return
	}

	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	// results of a check that began before the change are stale
	m.gen++
	m.mu.Unlock()

	m.Recheck()
}

func (m *Manager) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runCheck(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCheck(ctx)
		case <-m.trigger:
			m.runCheck(ctx)
		}
	}
}

func (m *Manager) runCheck(ctx context.Context) {

	gen, ok := m.beginCheck()
	if !ok {
		return
	}
	defer m.finishCheck()

	cred, found, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error(ctx, "load credential", "err", err)
		m.restore(gen)
		return
	}
	if !found {
		m.resolve(gen, State{Status: Anonymous})
		return
	}

	refreshed := false
	if m.refresher != nil && tokens.Expired(cred.AccessToken, m.now(), expiryLeeway) {
		m.logger.Debug(ctx, "access token expired locally, refreshing")
		next, err := m.refresh(ctx, cred)
		if err != nil {
			m.fail(ctx, gen, cred, err)
			return
		}
		cred, refreshed = next, true
	}

	id, err := m.validator.Check(ctx, cred.AccessToken)
	if errors.Is(err, client.ErrUnauthorized) && m.refresher != nil && !refreshed {
		next, rerr := m.refresh(ctx, cred)
		if rerr != nil {
			m.fail(ctx, gen, cred, rerr)
			return
		}
		cred = next
		id, err = m.validator.Check(ctx, cred.AccessToken)
	}
	if err != nil {
		m.fail(ctx, gen, cred, err)
		return
	}

	m.authenticate(ctx, gen, cred, id)
}

func (m *Manager) refresh(ctx context.Context, cred models.Credential) (models.Credential, error) {

	next, err := m.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return cred, err
	}

	swapped, err := m.store.Replace(ctx, cred, next)
	if err != nil {
		return cred, err
	}
	if !swapped {
		return cred, errStoreMoved
	}
	return next, nil
}

func (m *Manager) fail(ctx context.Context, gen uint64, cred models.Credential, err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		m.invalidate(ctx, gen, cred)
	case errors.Is(err, errStoreMoved):
		m.restore(gen)
		m.Recheck()
	case ctx.Err() != nil:
	default:
		m.logger.Warn(ctx, "session check failed, keeping previous state", "err", err)
		m.restore(gen)
	}
}

// invalidate drops a rejected credential. The store is only cleared if it
// still holds that credential; a newer one written meanwhile is checked on
// its own.
func (m *Manager) invalidate(ctx context.Context, gen uint64, cred models.Credential) {

	cleared, err := m.store.ClearIf(ctx, cred)
	if err != nil {
		// Anonymous implies an empty store; keep the prior state until the
		// next check can clear it
		m.logger.Error(ctx, "clear rejected credential", "err", err)
		m.restore(gen)
		return
	}
	if !cleared {
		m.restore(gen)
		m.Recheck()
		return
	}

	m.logger.Info(ctx, "stored credential rejected, signed out")
	m.resolve(gen, State{Status: Anonymous})

	if err := m.notifier.Notify(ctx, notifier.AuthChange(m.origin)); err != nil {
		m.logger.Warn(ctx, "broadcast auth change", "err", err)
	}
}

func (m *Manager) authenticate(ctx context.Context, gen uint64, cred models.Credential, id models.Identity) {

	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		m.logger.Debug(ctx, "discarding stale check result")
		return
	}
	st := State{Status: Authenticated, Identity: &id}
	if prev := m.settled; prev.Status == Authenticated && prev.Identity.UserID == id.UserID {
		st.Profile = prev.Profile
	}
	m.resolveLocked(st)
	m.fetches.Add(1)
	m.mu.Unlock()
	m.emit()

	// a logout after the resolve above has already cleared cred; nothing is
	// cached then
	if _, err := m.store.CacheIdentityFor(ctx, cred, id); err != nil {
		m.logger.Warn(ctx, "cache identity", "err", err)
	}

	go m.fetchProfile(ctx, gen, id, cred.AccessToken)
}

// fetchProfile attaches the profile once it arrives, provided the session
// still belongs to the same check and user.
func (m *Manager) fetchProfile(ctx context.Context, gen uint64, id models.Identity, token string) {
	defer m.fetches.Done()

	p, err := m.validator.FetchProfile(ctx, id.UserID, token)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn(ctx, "profile unavailable", "user_id", id.UserID, "err", err)
		}
		return
	}

	m.mu.Lock()
	if gen != m.gen || m.stopped || m.settled.Status != Authenticated || m.settled.Identity.UserID != id.UserID {
		m.mu.Unlock()
		return
	}
	m.settled.Profile = &p
	if m.state.Status == Authenticated {
		m.setLocked(m.settled)
	}
	m.mu.Unlock()
	m.emit()
}

func (m *Manager) beginCheck() (uint64, bool) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return 0, false
	}
	gen := m.gen
	m.begun++
	m.setLocked(State{Status: Checking, Hint: m.settled.lastKnown()})
	m.mu.Unlock()
	m.emit()
	return gen, true
}

func (m *Manager) finishCheck() {
	m.mu.Lock()
	m.finished++
	m.wakeLocked()
	m.mu.Unlock()
}

func (m *Manager) resolve(gen uint64, st State) {
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		return
	}
	m.resolveLocked(st)
	m.mu.Unlock()
	m.emit()
}

// restore puts back the state from before the check.
func (m *Manager) restore(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		return
	}
	m.setLocked(m.settled)
	m.mu.Unlock()
	m.emit()
}

func (m *Manager) resolveLocked(st State) {
	m.settled = st
	m.setLocked(st)
}

func (m *Manager) setLocked(st State) {
	m.state = st
	m.wakeLocked()
}

func (m *Manager) wakeLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}

func (m *Manager) emit() {
	if m.onChange == nil {
		return
	}
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.onChange(m.State())
}
