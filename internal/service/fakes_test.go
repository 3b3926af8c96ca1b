package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"classifieds/internal/config"
	"classifieds/internal/domain"
	apperrors "classifieds/pkg/errors"
)

var errStoreDown = errors.New("store down")

// fakeQuotaRepo повторяет семантику SQL-запросов quotaRepository в памяти
type fakeQuotaRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.QuotaState
	failOn string
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{users: make(map[uuid.UUID]*domain.QuotaState)}
}

func (r *fakeQuotaRepo) put(state domain.QuotaState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[state.UserID] = &state
}

func (r *fakeQuotaRepo) snapshot(id uuid.UUID) domain.QuotaState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func (r *fakeQuotaRepo) Get(_ context.Context, userID uuid.UUID) (*domain.QuotaState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "get" {
		return nil, apperrors.StoreError("get quota", errStoreDown)
	}
	state, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *state
	return &cp, nil
}

func (r *fakeQuotaRepo) Increment(_ context.Context, userID uuid.UUID, limit int, now, nextReset time.Time) (*domain.QuotaState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "increment" {
		return nil, false, apperrors.StoreError("increment quota", errStoreDown)
	}
	state, ok := r.users[userID]
	if !ok {
		return nil, false, nil
	}
	expired := !state.PeriodResetAt.After(now)
	if !expired && state.FreeListingsUsed >= limit {
		return nil, false, nil
	}
	if expired {
		state.FreeListingsUsed = 1
		state.PeriodResetAt = nextReset
	} else {
		state.FreeListingsUsed++
	}
	cp := *state
	return &cp, true, nil
}

func (r *fakeQuotaRepo) Decrement(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.users[userID]; ok && state.FreeListingsUsed > 0 {
		state.FreeListingsUsed--
	}
	return nil
}

func (r *fakeQuotaRepo) ResetExpired(_ context.Context, now, nextReset time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "reset" {
		return 0, apperrors.StoreError("reset quotas", errStoreDown)
	}
	var n int64
	for _, state := range r.users {
		if !state.PeriodResetAt.After(now) {
			state.FreeListingsUsed = 0
			state.PeriodResetAt = nextReset
			n++
		}
	}
	return n, nil
}

const failCreateAddOn = "create_add_on"

type fakeAddOn struct {
	active    bool
	expiresAt time.Time
}

// fakePromotionRepo - листинги и дополнения в памяти с той же фильтрацией, что и UPDATE
type fakePromotionRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
	addOns   map[uuid.UUID]*fakeAddOn
	fail     map[string]bool
}

func newFakePromotionRepo() *fakePromotionRepo {
	return &fakePromotionRepo{
		listings: make(map[uuid.UUID]*domain.Listing),
		addOns:   make(map[uuid.UUID]*fakeAddOn),
		fail:     make(map[string]bool),
	}
}

func (r *fakePromotionRepo) ExpireFeatured(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[sweepFeatured] {
		return 0, apperrors.StoreError("expire featured", errStoreDown)
	}
	var n int64
	for _, l := range r.listings {
		if l.IsFeatured && l.FeaturedUntil != nil && !l.FeaturedUntil.After(now) {
			l.IsFeatured = false
			l.FeaturedUntil = nil
			l.FeaturedPosition = nil
			n++
		}
	}
	return n, nil
}

func (r *fakePromotionRepo) ExpireAddOns(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[sweepAddOns] {
		return 0, apperrors.StoreError("expire add-ons", errStoreDown)
	}
	var n int64
	for _, a := range r.addOns {
		if a.active && !a.expiresAt.After(now) {
			a.active = false
			n++
		}
	}
	return n, nil
}

func (r *fakePromotionRepo) ClearBumps(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[sweepBumps] {
		return 0, apperrors.StoreError("clear bumps", errStoreDown)
	}
	var n int64
	for _, l := range r.listings {
		if l.BumpedAt != nil && !l.BumpedAt.After(cutoff) {
			l.BumpedAt = nil
			n++
		}
	}
	return n, nil
}

func (r *fakePromotionRepo) SetFeatured(_ context.Context, listingID uuid.UUID, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[listingID]
	if !ok {
		return apperrors.ErrListingNotFound
	}
	l.IsFeatured = true
	l.FeaturedUntil = &until
	return nil
}

func (r *fakePromotionRepo) SetBumped(_ context.Context, listingID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[listingID]
	if !ok {
		return apperrors.ErrListingNotFound
	}
	l.BumpedAt = &at
	return nil
}

func (r *fakePromotionRepo) CreateAddOn(_ context.Context, addOn *domain.ListingAddOn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[failCreateAddOn] {
		return apperrors.StoreError("create add-on", errStoreDown)
	}
	r.addOns[addOn.ID] = &fakeAddOn{active: addOn.Active, expiresAt: addOn.ExpiresAt}
	return nil
}

// fakeListingRepo делит карту листингов с fakePromotionRepo
type fakeListingRepo struct {
	promo      *fakePromotionRepo
	failCreate bool
}

func (r *fakeListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	if r.failCreate {
		return apperrors.StoreError("create listing", errStoreDown)
	}
	r.promo.mu.Lock()
	defer r.promo.mu.Unlock()
	cp := *listing
	r.promo.listings[listing.ID] = &cp
	return nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.promo.mu.Lock()
	defer r.promo.mu.Unlock()
	l, ok := r.promo.listings[id]
	if !ok {
		return nil, apperrors.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, at time.Time) error {
	r.promo.mu.Lock()
	defer r.promo.mu.Unlock()
	l, ok := r.promo.listings[id]
	if !ok {
		return apperrors.ErrListingNotFound
	}
	l.Status = status
	l.UpdatedAt = at
	return nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.promo.mu.Lock()
	defer r.promo.mu.Unlock()
	delete(r.promo.listings, id)
	return nil
}

// fakePaymentRepo повторяет условный UPDATE ... RETURNING из paymentRepository.Claim
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (r *fakePaymentRepo) add(id string, userID uuid.UUID, product domain.Product, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[id] = &domain.Payment{ID: id, UserID: userID, Product: product, Status: status}
}

func (r *fakePaymentRepo) consumed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	return ok && p.ConsumedAt != nil
}

func (r *fakePaymentRepo) Claim(_ context.Context, paymentID string, userID uuid.UUID, product domain.Product, listingID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok || p.UserID != userID || p.Product != product || p.Status != domain.PaymentStatusCompleted || p.ConsumedAt != nil {
		return apperrors.ErrPaymentRequired
	}
	p.ConsumedAt = &at
	p.ListingID = &listingID
	return nil
}

func (r *fakePaymentRepo) Release(_ context.Context, paymentID string, listingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[paymentID]; ok && p.ListingID != nil && *p.ListingID == listingID {
		p.ConsumedAt = nil
		p.ListingID = nil
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetBanned(_ context.Context, id uuid.UUID, banned bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsBanned = banned
	if banned {
		u.BannedAt = &at
	} else {
		u.BannedAt = nil
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
	fail    bool
	panics  bool
}

func (r *fakeAuditRepo) CreateLog(_ context.Context, entry *domain.AuditLogEntry) error {
	if r.panics {
		panic("audit table dropped")
	}
	if r.fail {
		return apperrors.StoreError("create audit log", errStoreDown)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter domain.AuditLogFilter) ([]*domain.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func testQuotaConfig() config.QuotaConfig {
	return config.QuotaConfig{
		FreeListingsPerPlan: map[string]int{domain.PlanFree: 3, domain.PlanBasic: 10},
		DefaultPlan:         domain.PlanFree,
	}
}

func testPromotionConfig() config.PromotionConfig {
	return config.PromotionConfig{
		FeaturedDuration: domain.DefaultFeaturedDuration,
		AddOnDuration:    domain.DefaultAddOnDuration,
		BumpTTL:          domain.DefaultBumpTTL,
	}
}
