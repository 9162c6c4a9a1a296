/*
Package sqlite provides the SQLite-backed implementation of the
membership store interfaces.

PURPOSE:
  Implements PaymentStore, ClientStore, AttendanceStore, and the report
  event sources against SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

UNIQUENESS ENFORCEMENT:
  The one-payment-per-(client, period) invariant is enforced by a unique
  index, not an application-level existence check. The INSERT either
  lands or fails with a constraint violation that surfaces as
  ConflictError; there is no race window between two writers submitting
  the same period, and a conflict leaves the store unchanged.

KEY TABLES:
  clients:     Member records (owned by the client collaborator)
  payments:    The billing-period ledger, one row per (client, period)
  attendance:  Append-only check-in events

INDEXES:
  idx_unique_payment_period:  The invariant (client, month, year)
  idx_payments_client_period: Ledger reads, newest period first (hot path)
  idx_payments_created_at:    Revenue report range scans
  idx_attendance_checkin_at:  Attendance report range scans
  idx_clients_join_date:      Signup report range scans

CONCURRENCY:
  Every mutating call runs in one BEGIN..COMMIT with rollback on every
  failure path. SQLite is opened in WAL mode so report reads don't block
  ledger writers. A sync.RWMutex serializes access through the single
  connection; with PostgreSQL, database-level concurrency control would
  replace it.

TIMESTAMPS:
  Stored as RFC3339 UTC text. Uniform format and zone keep lexicographic
  comparison equivalent to temporal comparison, so half-open range
  filters work directly on the text columns.

SEE ALSO:
  - membership/store.go: Interface contracts
  - membership/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/report"
)

// Store implements the membership store interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	// Clock is injectable so tests control created_at and checkin_at.
	Clock membership.Clock
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, Clock: membership.SystemClock{}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		join_date TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_clients_full_name ON clients(full_name);
	CREATE INDEX IF NOT EXISTS idx_clients_join_date ON clients(join_date);

	-- The billing-period ledger. Immutable rows: created once, deleted by
	-- a privileged actor, never updated.
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		method_channel TEXT,
		note TEXT,
		period_month INTEGER NOT NULL,
		period_year INTEGER NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: the core invariant. At most one payment per
	-- (client, month, year), enforced here and nowhere else.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_payment_period
		ON payments(client_id, period_month, period_year);

	-- Ledger reads: newest period first (status resolver hot path)
	CREATE INDEX IF NOT EXISTS idx_payments_client_period
		ON payments(client_id, period_year DESC, period_month DESC);

	-- Revenue report range scans
	CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at);

	-- Check-in events, append-only
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		checkin_at TEXT NOT NULL,
		coach_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_checkin_at ON attendance(checkin_at);
	CREATE INDEX IF NOT EXISTS idx_attendance_client ON attendance(client_id, checkin_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) now() time.Time { return s.Clock.Now().UTC() }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// =============================================================================
// PAYMENT STORE (membership.PaymentStore interface)
// =============================================================================

// CreatePayment validates, then inserts within one transaction. The
// duplicate-period outcome comes from the unique index on the INSERT
// itself, so concurrent submissions of the same (client, period) resolve
// to exactly one row and one ConflictError.
func (s *Store) CreatePayment(ctx context.Context, in membership.CreatePaymentInput) (membership.Payment, error) {
	if err := in.Validate(); err != nil {
		return membership.Payment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return membership.Payment{}, &membership.StoreError{Op: "create payment", Err: err}
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients WHERE id = ?", in.ClientID).Scan(&exists)
	if err != nil {
		return membership.Payment{}, &membership.StoreError{Op: "create payment", Err: err}
	}
	if exists == 0 {
		return membership.Payment{}, membership.ErrClientNotFound
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
		CreatedAt:     s.now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments
		(id, client_id, amount, method, method_channel, note, period_month, period_year, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Amount.StringFixed(2), string(p.Method),
		nullString(p.MethodChannel), nullString(p.Note),
		p.Period.Month, p.Period.Year,
		nullString(p.CreatedBy), formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return membership.Payment{}, &membership.ConflictError{ClientID: in.ClientID, Period: in.Period}
		}
		return membership.Payment{}, &membership.StoreError{Op: "create payment", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return membership.Payment{}, &membership.StoreError{Op: "create payment", Err: err}
	}
	return p, nil
}

const paymentColumns = `id, client_id, amount, method, method_channel, note, period_month, period_year, created_by, created_at`

// GetPayment returns a payment by id.
func (s *Store) GetPayment(ctx context.Context, id string) (membership.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return membership.Payment{}, membership.ErrPaymentNotFound
	}
	if err != nil {
		return membership.Payment{}, &membership.StoreError{Op: "get payment", Err: err}
	}
	return p, nil
}

// DeletePayment removes a payment. The only mutation besides create.
func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return &membership.StoreError{Op: "delete payment", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &membership.StoreError{Op: "delete payment", Err: err}
	}
	if n == 0 {
		return membership.ErrPaymentNotFound
	}
	return nil
}

// PaymentsForClient returns the full ledger, most recent period first.
// The ordering is load-bearing: the status resolver reads element zero.
func (s *Store) PaymentsForClient(ctx context.Context, clientID string) ([]membership.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE client_id = ?
		ORDER BY period_year DESC, period_month DESC, created_at DESC`,
		clientID)
}

// ListPayments returns one page plus the unpaginated total for the same
// filter set, so the caller can derive next/prev links.
func (s *Store) ListPayments(ctx context.Context, f membership.PaymentFilter, spec membership.SortSpec, page membership.PageRequest) ([]membership.Payment, int, error) {
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()

	where, args := paymentWhere(f)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payments"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, &membership.StoreError{Op: "count payments", Err: err}
	}

	query := "SELECT " + paymentColumns + " FROM payments" + where +
		" ORDER BY " + paymentOrderClause(spec) +
		" LIMIT ? OFFSET ?"
	items, err := s.queryPayments(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func paymentWhere(f membership.PaymentFilter) (string, []any) {
	var conds []string
	var args []any
	if f.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.Method != "" {
		conds = append(conds, "method = ?")
		args = append(args, string(f.Method))
	}
	if f.MethodChannel != "" {
		conds = append(conds, "method_channel = ?")
		args = append(args, f.MethodChannel)
	}
	if f.PeriodYear != 0 {
		conds = append(conds, "period_year = ?")
		args = append(args, f.PeriodYear)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// paymentOrderClause maps a whitelisted SortSpec to ORDER BY. The spec
// was already validated by the listing engine; keys outside the fixed
// table never reach this switch.
func paymentOrderClause(spec membership.SortSpec) string {
	dir := "ASC"
	if spec.Dir == membership.SortDesc {
		dir = "DESC"
	}
	switch spec.Key {
	case membership.SortByAmount:
		return "CAST(amount AS REAL) " + dir + ", created_at DESC"
	case membership.SortByCreatedAt:
		return "created_at " + dir
	default: // period
		return fmt.Sprintf("period_year %s, period_month %s, created_at DESC", dir, dir)
	}
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]membership.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &membership.StoreError{Op: "query payments", Err: err}
	}
	defer rows.Close()

	var payments []membership.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, &membership.StoreError{Op: "scan payment", Err: err}
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &membership.StoreError{Op: "query payments", Err: err}
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (membership.Payment, error) {
	var (
		p         membership.Payment
		amount    string
		method    string
		channel   sql.NullString
		note      sql.NullString
		createdBy sql.NullString
		createdAt string
	)
	err := row.Scan(&p.ID, &p.ClientID, &amount, &method, &channel, &note,
		&p.Period.Month, &p.Period.Year, &createdBy, &createdAt)
	if err != nil {
		return p, err
	}

	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return p, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	p.Method = membership.PaymentMethod(method)
	p.MethodChannel = channel.String
	p.Note = note.String
	p.CreatedBy = createdBy.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

// =============================================================================
// CLIENT STORE (membership.ClientStore interface)
// =============================================================================

func (s *Store) CreateClient(ctx context.Context, in membership.CreateClientInput) (membership.Client, error) {
	if err := in.Validate(); err != nil {
		return membership.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := membership.Client{
		ID:        uuid.NewString(),
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		JoinDate:  s.now(),
		IsActive:  true,
		CreatedBy: in.Actor,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, full_name, email, phone, join_date, is_active, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FullName, nullString(c.Email), nullString(c.Phone),
		formatTime(c.JoinDate), boolToInt(c.IsActive), nullString(c.CreatedBy),
	)
	if err != nil {
		return membership.Client{}, &membership.StoreError{Op: "create client", Err: err}
	}
	return c, nil
}

const clientColumns = `id, full_name, email, phone, join_date, is_active, created_by`

func (s *Store) GetClient(ctx context.Context, id string) (membership.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)

	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return membership.Client{}, membership.ErrClientNotFound
	}
	if err != nil {
		return membership.Client{}, &membership.StoreError{Op: "get client", Err: err}
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, in membership.UpdateClientInput) (membership.Client, error) {
	if err := in.Validate(); err != nil {
		return membership.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return membership.Client{}, &membership.StoreError{Op: "update client", Err: err}
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return membership.Client{}, membership.ErrClientNotFound
	}
	if err != nil {
		return membership.Client{}, &membership.StoreError{Op: "update client", Err: err}
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

	_, err = tx.ExecContext(ctx, `
		UPDATE clients SET full_name = ?, email = ?, phone = ?, is_active = ?
		WHERE id = ?`,
		c.FullName, nullString(c.Email), nullString(c.Phone), boolToInt(c.IsActive), id,
	)
	if err != nil {
		return membership.Client{}, &membership.StoreError{Op: "update client", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return membership.Client{}, &membership.StoreError{Op: "update client", Err: err}
	}
	return c, nil
}

// DeleteClient removes a client; payments and attendance cascade via
// foreign keys.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return &membership.StoreError{Op: "delete client", Err: err}
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return membership.ErrClientNotFound
	}
	return nil
}

// ListClients matches a free-text search over name, email, and phone.
func (s *Store) ListClients(ctx context.Context, search string, spec membership.SortSpec, page membership.PageRequest) ([]membership.Client, int, error) {
	page = page.Normalize()

	var where string
	var args []any
	if needle := strings.TrimSpace(search); needle != "" {
		like := "%" + strings.ToLower(needle) + "%"
		where = ` WHERE lower(full_name) LIKE ? OR lower(coalesce(email, '')) LIKE ? OR lower(coalesce(phone, '')) LIKE ?`
		args = []any{like, like, like}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, &membership.StoreError{Op: "count clients", Err: err}
	}

	dir := "ASC"
	if spec.Dir == membership.SortDesc {
		dir = "DESC"
	}
	order := "full_name " + dir
	if spec.Key == membership.SortByJoinDate {
		order = "join_date " + dir
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients"+where+" ORDER BY "+order+" LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, &membership.StoreError{Op: "query clients", Err: err}
	}
	defer rows.Close()

	var clients []membership.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, &membership.StoreError{Op: "scan client", Err: err}
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &membership.StoreError{Op: "query clients", Err: err}
	}
	return clients, total, nil
}

func scanClient(row rowScanner) (membership.Client, error) {
	var (
		c         membership.Client
		email     sql.NullString
		phone     sql.NullString
		joinDate  string
		isActive  int
		createdBy sql.NullString
	)
	err := row.Scan(&c.ID, &c.FullName, &email, &phone, &joinDate, &isActive, &createdBy)
	if err != nil {
		return c, err
	}
	c.Email = email.String
	c.Phone = phone.String
	c.JoinDate, _ = time.Parse(time.RFC3339, joinDate)
	c.IsActive = isActive != 0
	c.CreatedBy = createdBy.String
	return c, nil
}

// =============================================================================
// ATTENDANCE STORE (membership.AttendanceStore interface)
// =============================================================================

// Checkin appends a check-in after verifying the client reference.
// Append-only: there is no update or dedup, multiple check-ins per day
// are valid.
func (s *Store) Checkin(ctx context.Context, in membership.CheckinInput) (membership.Attendance, error) {
	if err := in.Validate(); err != nil {
		return membership.Attendance{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return membership.Attendance{}, &membership.StoreError{Op: "checkin", Err: err}
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients WHERE id = ?", in.ClientID).Scan(&exists); err != nil {
		return membership.Attendance{}, &membership.StoreError{Op: "checkin", Err: err}
	}
	if exists == 0 {
		return membership.Attendance{}, membership.ErrClientNotFound
	}

	a := membership.Attendance{
		ID:        uuid.NewString(),
		ClientID:  in.ClientID,
		CheckinAt: s.now(),
		CoachID:   in.CoachID,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance (id, client_id, checkin_at, coach_id)
		VALUES (?, ?, ?, ?)`,
		a.ID, a.ClientID, formatTime(a.CheckinAt), nullString(a.CoachID),
	)
	if err != nil {
		return membership.Attendance{}, &membership.StoreError{Op: "checkin", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return membership.Attendance{}, &membership.StoreError{Op: "checkin", Err: err}
	}
	return a, nil
}

func (s *Store) AttendanceForClient(ctx context.Context, clientID string, r membership.DateRange) ([]membership.Attendance, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, checkin_at, coach_id FROM attendance
		WHERE client_id = ? AND checkin_at >= ? AND checkin_at < ?
		ORDER BY checkin_at ASC`,
		clientID, formatTime(r.From), formatTime(r.ToExclusive))
	if err != nil {
		return nil, &membership.StoreError{Op: "query attendance", Err: err}
	}
	defer rows.Close()

	var out []membership.Attendance
	for rows.Next() {
		var a membership.Attendance
		var checkinAt string
		var coachID sql.NullString
		if err := rows.Scan(&a.ID, &a.ClientID, &checkinAt, &coachID); err != nil {
			return nil, &membership.StoreError{Op: "scan attendance", Err: err}
		}
		a.CheckinAt, _ = time.Parse(time.RFC3339, checkinAt)
		a.CoachID = coachID.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// REPORT EVENT SOURCES
// =============================================================================

// PaymentEvents feeds the revenue reports: payments in [From,
// ToExclusive) with the dimension filters applied in SQL, so every
// report shape aggregates the identical stream.
func (s *Store) PaymentEvents(ctx context.Context, r membership.DateRange, f report.Filters) ([]report.Event, error) {
	conds := []string{"created_at >= ?", "created_at < ?"}
	args := []any{formatTime(r.From), formatTime(r.ToExclusive)}
	if f.Method != "" {
		conds = append(conds, "method = ?")
		args = append(args, string(f.Method))
	}
	if f.Channel != "" {
		conds = append(conds, "method_channel = ?")
		args = append(args, f.Channel)
	}
	if len(f.ClientIDs) > 0 {
		placeholders := strings.Repeat("?,", len(f.ClientIDs))
		conds = append(conds, "client_id IN ("+placeholders[:len(placeholders)-1]+")")
		for _, id := range f.ClientIDs {
			args = append(args, id)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, client_id, amount, method, coalesce(method_channel, '')
		FROM payments WHERE `+strings.Join(conds, " AND "), args...)
	if err != nil {
		return nil, &membership.StoreError{Op: "query payment events", Err: err}
	}
	defer rows.Close()

	var events []report.Event
	for rows.Next() {
		var at, clientID, amount, method, channel string
		if err := rows.Scan(&at, &clientID, &amount, &method, &channel); err != nil {
			return nil, &membership.StoreError{Op: "scan payment event", Err: err}
		}
		e := report.Event{ClientID: clientID, HasAmount: true, Method: membership.PaymentMethod(method), Channel: channel}
		e.At, _ = time.Parse(time.RFC3339, at)
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, &membership.StoreError{Op: "scan payment event", Err: err}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AttendanceEvents feeds the attendance report.
func (s *Store) AttendanceEvents(ctx context.Context, r membership.DateRange) ([]report.Event, error) {
	return s.timestampEvents(ctx, `
		SELECT checkin_at, client_id FROM attendance
		WHERE checkin_at >= ? AND checkin_at < ?`, r)
}

// SignupEvents feeds the new-clients report.
func (s *Store) SignupEvents(ctx context.Context, r membership.DateRange) ([]report.Event, error) {
	return s.timestampEvents(ctx, `
		SELECT join_date, id FROM clients
		WHERE join_date >= ? AND join_date < ?`, r)
}

func (s *Store) timestampEvents(ctx context.Context, query string, r membership.DateRange) ([]report.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, formatTime(r.From), formatTime(r.ToExclusive))
	if err != nil {
		return nil, &membership.StoreError{Op: "query events", Err: err}
	}
	defer rows.Close()

	var events []report.Event
	for rows.Next() {
		var at, clientID string
		if err := rows.Scan(&at, &clientID); err != nil {
			return nil, &membership.StoreError{Op: "scan event", Err: err}
		}
		e := report.Event{ClientID: clientID}
		e.At, _ = time.Parse(time.RFC3339, at)
		events = append(events, e)
	}
	return events, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
