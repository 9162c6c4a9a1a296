// Package store provides an in-memory implementation of the membership
// store interfaces, for tests and dev. It mirrors the sqlite store's
// observable behavior, including the (client, period) uniqueness outcome
// and the listing engine's ordering.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/report"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	clients    map[string]membership.Client
	payments   map[string]membership.Payment
	attendance []membership.Attendance

	// Clock is injectable so tests control created_at and checkin_at.
	Clock membership.Clock
}

func NewMemory() *Memory {
	return &Memory{
		clients:  make(map[string]membership.Client),
		payments: make(map[string]membership.Payment),
		Clock:    membership.SystemClock{},
	}
}

func (m *Memory) now() time.Time { return m.Clock.Now().UTC() }

// =============================================================================
// PAYMENT STORE
// =============================================================================

// CreatePayment inserts atomically under the store lock: the duplicate
// check and the insert are one critical section, the memory analog of
// the relational unique constraint.
func (m *Memory) CreatePayment(ctx context.Context, in membership.CreatePaymentInput) (membership.Payment, error) {
	if err := in.Validate(); err != nil {
		return membership.Payment{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[in.ClientID]; !ok {
		return membership.Payment{}, membership.ErrClientNotFound
	}
	for _, p := range m.payments {
		if p.ClientID == in.ClientID && p.Period == in.Period {
			return membership.Payment{}, &membership.ConflictError{ClientID: in.ClientID, Period: in.Period}
		}
	}

	p := membership.Payment{
		ID:            uuid.NewString(),
		ClientID:      in.ClientID,
		Amount:        in.Amount,
		Method:        in.Method,
		MethodChannel: in.MethodChannel,
		Note:          in.Note,
		Period:        in.Period,
		CreatedBy:     in.Actor,
		CreatedAt:     m.now(),
	}
	m.payments[p.ID] = p
	return p, nil
}

func (m *Memory) GetPayment(_ context.Context, id string) (membership.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return membership.Payment{}, membership.ErrPaymentNotFound
	}
	return p, nil
}

func (m *Memory) DeletePayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[id]; !ok {
		return membership.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *Memory) PaymentsForClient(_ context.Context, clientID string) ([]membership.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []membership.Payment
	for _, p := range m.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sortPayments(out, membership.SortSpec{Key: membership.SortByPeriod, Dir: membership.SortDesc})
	return out, nil
}

func (m *Memory) ListPayments(_ context.Context, f membership.PaymentFilter, spec membership.SortSpec, page membership.PageRequest) ([]membership.Payment, int, error) {
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []membership.Payment
	for _, p := range m.payments {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	sortPayments(matched, spec)

	total := len(matched)
	return window(matched, page), total, nil
}

// sortPayments maps a SortSpec to a comparator. The key set is the
// payment whitelist from the listing engine; period ordering ties break
// on creation time so the resolver sees the newest row first.
func sortPayments(ps []membership.Payment, spec membership.SortSpec) {
	desc := spec.Dir == membership.SortDesc
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if desc {
			a, b = b, a
		}
		switch spec.Key {
		case membership.SortByAmount:
			return a.Amount.LessThan(b.Amount)
		case membership.SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		default: // period
			if a.Period != b.Period {
				return a.Period.Before(b.Period)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// =============================================================================
// CLIENT STORE
// =============================================================================

func (m *Memory) CreateClient(_ context.Context, in membership.CreateClientInput) (membership.Client, error) {
	if err := in.Validate(); err != nil {
		return membership.Client{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := membership.Client{
		ID:        uuid.NewString(),
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		JoinDate:  m.now(),
		IsActive:  true,
		CreatedBy: in.Actor,
	}
	m.clients[c.ID] = c
	return c, nil
}

func (m *Memory) GetClient(_ context.Context, id string) (membership.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[id]
	if !ok {
		return membership.Client{}, membership.ErrClientNotFound
	}
	return c, nil
}

func (m *Memory) UpdateClient(_ context.Context, id string, in membership.UpdateClientInput) (membership.Client, error) {
	if err := in.Validate(); err != nil {
		return membership.Client{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	if !ok {
		return membership.Client{}, membership.ErrClientNotFound
	}
	if in.FullName != nil {
		c.FullName = *in.FullName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	m.clients[id] = c
	return c, nil
}

func (m *Memory) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[id]; !ok {
		return membership.ErrClientNotFound
	}
	delete(m.clients, id)

	// Ownership cascade, same as the relational foreign keys.
	for pid, p := range m.payments {
		if p.ClientID == id {
			delete(m.payments, pid)
		}
	}
	kept := m.attendance[:0]
	for _, a := range m.attendance {
		if a.ClientID != id {
			kept = append(kept, a)
		}
	}
	m.attendance = kept
	return nil
}

func (m *Memory) ListClients(_ context.Context, search string, spec membership.SortSpec, page membership.PageRequest) ([]membership.Client, int, error) {
	page = page.Normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var matched []membership.Client
	for _, c := range m.clients {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.FullName), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) ||
			strings.Contains(strings.ToLower(c.Phone), needle) {
			matched = append(matched, c)
		}
	}

	desc := spec.Dir == membership.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if desc {
			a, b = b, a
		}
		if spec.Key == membership.SortByJoinDate {
			return a.JoinDate.Before(b.JoinDate)
		}
		return a.FullName < b.FullName
	})

	total := len(matched)
	return window(matched, page), total, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func (m *Memory) Checkin(_ context.Context, in membership.CheckinInput) (membership.Attendance, error) {
	if err := in.Validate(); err != nil {
		return membership.Attendance{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[in.ClientID]; !ok {
		return membership.Attendance{}, membership.ErrClientNotFound
	}
	a := membership.Attendance{
		ID:        uuid.NewString(),
		ClientID:  in.ClientID,
		CheckinAt: m.now(),
		CoachID:   in.CoachID,
	}
	m.attendance = append(m.attendance, a)
	return a, nil
}

func (m *Memory) AttendanceForClient(_ context.Context, clientID string, r membership.DateRange) ([]membership.Attendance, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []membership.Attendance
	for _, a := range m.attendance {
		if a.ClientID == clientID && r.Contains(a.CheckinAt) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinAt.Before(out[j].CheckinAt) })
	return out, nil
}

// =============================================================================
// REPORT EVENT SOURCES
// =============================================================================

func (m *Memory) PaymentEvents(_ context.Context, r membership.DateRange, f report.Filters) ([]report.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []report.Event
	for _, p := range m.payments {
		e := report.Event{
			At:        p.CreatedAt,
			ClientID:  p.ClientID,
			Amount:    p.Amount,
			HasAmount: true,
			Method:    p.Method,
			Channel:   p.MethodChannel,
		}
		if r.Contains(e.At) && f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) AttendanceEvents(_ context.Context, r membership.DateRange) ([]report.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []report.Event
	for _, a := range m.attendance {
		if r.Contains(a.CheckinAt) {
			out = append(out, report.Event{At: a.CheckinAt, ClientID: a.ClientID})
		}
	}
	return out, nil
}

func (m *Memory) SignupEvents(_ context.Context, r membership.DateRange) ([]report.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []report.Event
	for _, c := range m.clients {
		if r.Contains(c.JoinDate) {
			out = append(out, report.Event{At: c.JoinDate, ClientID: c.ID})
		}
	}
	return out, nil
}

// window slices one page out of the full matched set.
func window[T any](items []T, page membership.PageRequest) []T {
	if page.Offset >= len(items) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
