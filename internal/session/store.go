package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/cache"
	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
	"github.com/sandeepkv93/storefront-session-gateway/internal/prefs"
	"github.com/sandeepkv93/storefront-session-gateway/internal/token"
)

const tracerName = "storefront-session-gateway"

var (
	// ErrNoSession is returned by operations that need an authenticated
	// session.
	ErrNoSession = errors.New("no active session")
	// ErrStoreNotInCompany rejects selecting a store outside the session
	// company's store list.
	ErrStoreNotInCompany = errors.New("store does not belong to the session company")
	// ErrSuperseded marks a login whose result arrived after a newer
	// attempt already won the epoch race; its result was discarded.
	ErrSuperseded = errors.New("login superseded by a newer attempt")
)

// Deps are the collaborators of a Store, injected explicitly so nothing
// reaches for ambient singletons.
type Deps struct {
	Codec         *token.Codec
	Identity      IdentityService
	Companies     CompanyService
	Subscriptions SubscriptionService
	Inventory     InventoryService
	Preferences   prefs.StorePreferenceRepository
	Cache         cache.InventoryCacheStore
	CacheTTL      time.Duration
	Logger        *slog.Logger
}

// Store is the single authority over one browser's authenticated identity,
// selected store and inventory cache. All mutation funnels through its
// operations; reads return snapshots.
//
// Every mutating attempt takes a monotonically increasing epoch, and a
// result is applied only while its epoch is still the latest. That fences
// overlapping logins and keeps a stale inventory response from
// repopulating state after logout.
type Store struct {
	deps              Deps
	refreshCredential string

	mu            sync.Mutex
	epoch         uint64
	loading       bool
	session       *domain.Session
	selectedStore string
	inventory     []domain.InventoryItem
}

func NewStore(deps Deps, refreshCredential string) *Store {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopInventoryCacheStore()
	}
	return &Store{deps: deps, refreshCredential: refreshCredential, loading: true}
}

// Login decodes credential and builds a fresh session. A malformed
// credential fails without touching any prior session. Company and
// subscription resolve concurrently; the session publishes only after
// both complete, so observers never see a partial one.
func (s *Store) Login(ctx context.Context, credential string) (*domain.Session, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.login")
	defer span.End()

	claims, err := s.deps.Codec.Decode(credential)
	if err != nil {
		observability.RecordSessionLogin("malformed")
		return nil, err
	}
	epoch := s.beginAttempt()
	sess, err := s.resolveSession(ctx, credential, claims)
	if err != nil {
		observability.RecordSessionLogin("error")
		return nil, err
	}
	storeID := s.deriveSelectedStore(ctx, sess)
	if !s.commitSession(epoch, sess, storeID) {
		observability.RecordSessionLogin("superseded")
		return nil, ErrSuperseded
	}
	s.finishInitialLoad()
	s.persistPreference(ctx, sess.User.ID, storeID)
	s.refetchInventory(ctx, epoch, storeID)
	span.SetAttributes(attribute.String("user.id", sess.User.ID))
	observability.RecordSessionLogin("success")
	return sess.Clone(), nil
}

// SilentRefresh tries to re-establish a session from the server-held
// credential. Every failure is swallowed: an anonymous visitor is the
// steady state, not an error. Returns whether a session now exists.
func (s *Store) SilentRefresh(ctx context.Context) bool {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.silent_refresh",
		trace.WithAttributes(attribute.Bool("credential.present", s.refreshCredential != "")))
	defer span.End()
	defer s.finishInitialLoad()

	credential, err := s.deps.Identity.Refresh(ctx, s.refreshCredential)
	if err != nil {
		s.deps.Logger.DebugContext(ctx, "silent refresh resolved anonymous", "error", err)
		observability.RecordSessionRefresh("anonymous")
		return false
	}
	claims, err := s.deps.Codec.Decode(credential)
	if err != nil {
		s.deps.Logger.DebugContext(ctx, "silent refresh returned malformed credential")
		observability.RecordSessionRefresh("malformed")
		return false
	}
	epoch := s.beginAttempt()
	sess, err := s.resolveSession(ctx, credential, claims)
	if err != nil {
		s.deps.Logger.DebugContext(ctx, "silent refresh resolution failed", "error", err)
		observability.RecordSessionRefresh("error")
		return false
	}
	storeID := s.deriveSelectedStore(ctx, sess)
	if !s.commitSession(epoch, sess, storeID) {
		observability.RecordSessionRefresh("superseded")
		return false
	}
	s.refetchInventory(ctx, epoch, storeID)
	observability.RecordSessionRefresh("success")
	return true
}

// Logout clears all local state unconditionally and notifies the identity
// service best-effort. Calling it twice lands in the same end state.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++ // fence out any in-flight login/refresh/refetch
	sess := s.session
	storeID := s.selectedStore
	s.session = nil
	s.selectedStore = ""
	s.inventory = nil
	s.loading = false
	s.mu.Unlock()

	if err := s.deps.Identity.Logout(ctx, s.refreshCredential); err != nil {
		s.deps.Logger.WarnContext(ctx, "identity logout failed", "error", err)
		observability.RecordSessionLogout("remote_error")
	} else {
		observability.RecordSessionLogout("success")
	}
	if sess != nil {
		if err := s.deps.Preferences.Delete(ctx, sess.User.ID); err != nil {
			s.deps.Logger.WarnContext(ctx, "clear store preference failed", "error", err)
		}
	}
	if storeID != "" {
		if err := s.deps.Cache.Invalidate(ctx, storeID); err != nil {
			s.deps.Logger.WarnContext(ctx, "invalidate inventory cache failed", "store_id", storeID, "error", err)
		}
	}
}

// SetSelectedStore switches the store scope. The id must belong to the
// session company; the preference is written durably right away.
func (s *Store) SetSelectedStore(ctx context.Context, storeID string) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	if !s.session.Company.HasStore(storeID) {
		s.mu.Unlock()
		return ErrStoreNotInCompany
	}
	s.epoch++
	epoch := s.epoch
	s.selectedStore = storeID
	s.inventory = nil
	userID := s.session.User.ID
	s.mu.Unlock()

	s.persistPreference(ctx, userID, storeID)
	s.refetchInventory(ctx, epoch, storeID)
	return nil
}

// UpdateCompany replaces the company sub-record, leaving user and
// subscription untouched. A no-op without a session.
func (s *Store) UpdateCompany(company *domain.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return
	}
	sess := s.session.Clone()
	if company == nil {
		sess.Company = nil
	} else {
		c := *company
		c.Stores = append([]domain.Store(nil), company.Stores...)
		sess.Company = &c
	}
	s.session = sess
}

// HasPermission reports membership in the session user's permission set;
// false, not an error, when anonymous.
func (s *Store) HasPermission(p authz.Permission) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return false
	}
	for _, have := range s.session.User.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Session returns a snapshot of the current session, nil when anonymous.
func (s *Store) Session() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

func (s *Store) SelectedStore() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedStore
}

func (s *Store) Inventory() []domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InventoryItem(nil), s.inventory...)
}

// Loading is true only during the initial silent-refresh window.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) resolveSession(ctx context.Context, credential string, claims *token.Claims) (*domain.Session, error) {
	user := domain.User{
		ID:          claims.UserID(),
		Email:       claims.Email,
		Role:        claims.Role,
		Permissions: claims.PermissionSet(),
		GivenName:   claims.GivenName,
		FamilyName:  claims.FamilyName,
	}

	var (
		company      *domain.Company
		subscription *domain.Subscription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.deps.Companies.ByUser(gctx, user.ID)
		if err != nil {
			return err
		}
		if c == nil && claims.CompanyID != "" {
			c, err = s.deps.Companies.ByID(gctx, claims.CompanyID)
			if err != nil {
				return err
			}
		}
		company = c
		return nil
	})
	g.Go(func() error {
		subs, err := s.deps.Subscriptions.ByUser(gctx, user.ID)
		if err != nil {
			return err
		}
		if len(subs) > 0 {
			first := subs[0]
			subscription = &first
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Session{
		Credential:   credential,
		User:         user,
		Company:      company,
		Subscription: subscription,
		IssuedAt:     claims.IssuedAtTime(),
		ExpiresAt:    claims.ExpiresAtTime(),
	}, nil
}

// deriveSelectedStore prefers the durable preference when it still
// belongs to the company, falling back to the company's first store.
func (s *Store) deriveSelectedStore(ctx context.Context, sess *domain.Session) string {
	preferred, err := s.deps.Preferences.Get(ctx, sess.User.ID)
	if err != nil && !errors.Is(err, prefs.ErrPreferenceNotFound) {
		s.deps.Logger.WarnContext(ctx, "read store preference failed", "error", err)
	}
	if preferred != "" && sess.Company.HasStore(preferred) {
		return preferred
	}
	return sess.Company.FirstStoreID()
}

func (s *Store) persistPreference(ctx context.Context, userID, storeID string) {
	if storeID == "" {
		return
	}
	if err := s.deps.Preferences.Set(ctx, userID, storeID); err != nil {
		s.deps.Logger.WarnContext(ctx, "persist store preference failed", "error", err)
	}
}

// refetchInventory reloads the cache slice for storeID under epoch. A
// missing store id short-circuits to empty without a request; fetch
// failures leave the cache empty and are logged, never surfaced.
func (s *Store) refetchInventory(ctx context.Context, epoch uint64, storeID string) {
	if storeID == "" {
		s.commitInventory(epoch, nil)
		return
	}
	if items, ok, err := s.deps.Cache.Get(ctx, storeID); err == nil && ok {
		observability.RecordInventoryCacheEvent("hit")
		s.commitInventory(epoch, items)
		return
	}
	observability.RecordInventoryCacheEvent("miss")
	items, err := s.deps.Inventory.ListByStore(ctx, storeID)
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "inventory refetch failed", "store_id", storeID, "error", err)
		s.commitInventory(epoch, nil)
		return
	}
	if s.commitInventory(epoch, items) {
		if err := s.deps.Cache.Set(ctx, storeID, items, s.deps.CacheTTL); err != nil {
			s.deps.Logger.WarnContext(ctx, "inventory cache write failed", "store_id", storeID, "error", err)
		}
	}
}

func (s *Store) beginAttempt() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	return s.epoch
}

func (s *Store) commitSession(epoch uint64, sess *domain.Session, storeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.session = sess
	s.selectedStore = storeID
	s.inventory = nil
	return true
}

func (s *Store) commitInventory(epoch uint64, items []domain.InventoryItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.inventory = items
	return true
}

func (s *Store) finishInitialLoad() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}
