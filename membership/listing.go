/*
listing.go - Generic list/filter/sort engine

PURPOSE:
  Shared machinery for every paginated read: whitelisted sort keys
  resolved through a fixed table, limit/offset pagination, and a total
  count computed independently of the page window so callers can derive
  next/prev links.

SORT KEY POLICY:
  Sort keys are validated against a per-entity whitelist. An unknown key
  is a validation error, never a silent fallback to some default column;
  the caller must be able to observe a typo.

SEE ALSO:
  - store/sqlite: Maps SortSpec to ORDER BY clauses
  - membership/store/memory.go: Maps SortSpec to comparators
*/
package membership

// =============================================================================
// SORTING
// =============================================================================

type SortKey string

const (
	SortByPeriod    SortKey = "period"
	SortByAmount    SortKey = "amount"
	SortByCreatedAt SortKey = "created_at"
	SortByFullName  SortKey = "full_name"
	SortByJoinDate  SortKey = "join_date"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortSpec struct {
	Key SortKey
	Dir SortDirection
}

// Per-entity whitelists. Fixed tables, not reflection: an attribute name
// that isn't listed here cannot reach the store layer.
var (
	paymentSortKeys = map[SortKey]bool{
		SortByPeriod:    true,
		SortByAmount:    true,
		SortByCreatedAt: true,
	}
	clientSortKeys = map[SortKey]bool{
		SortByFullName: true,
		SortByJoinDate: true,
	}
)

// ResolvePaymentSort validates a caller-supplied sort key/direction pair
// for payment listings. Empty inputs fall back to the documented default
// ordering (most recent period first); anything non-empty must match the
// whitelist exactly.
func ResolvePaymentSort(key, dir string) (SortSpec, error) {
	return resolveSort(key, dir, SortSpec{Key: SortByPeriod, Dir: SortDesc}, paymentSortKeys)
}

// ResolveClientSort validates sort parameters for client listings.
func ResolveClientSort(key, dir string) (SortSpec, error) {
	return resolveSort(key, dir, SortSpec{Key: SortByFullName, Dir: SortAsc}, clientSortKeys)
}

func resolveSort(key, dir string, def SortSpec, whitelist map[SortKey]bool) (SortSpec, error) {
	spec := def
	if key != "" {
		if !whitelist[SortKey(key)] {
			return SortSpec{}, &ValidationError{Field: "sort", Reason: "unknown sort key: " + key}
		}
		spec.Key = SortKey(key)
	}
	if dir != "" {
		switch SortDirection(dir) {
		case SortAsc, SortDesc:
			spec.Dir = SortDirection(dir)
		default:
			return SortSpec{}, &ValidationError{Field: "order", Reason: "must be asc or desc: " + dir}
		}
	}
	return spec, nil
}

// =============================================================================
// PAGINATION
// =============================================================================

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// PageRequest is a limit/offset window. Zero values normalize to the
// defaults so an empty query string behaves sensibly.
type PageRequest struct {
	Limit  int
	Offset int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageInfo describes one page against the unpaginated total. TotalCount
// is computed from the filter set alone, so these derivations hold for
// any window the caller picked.
type PageInfo struct {
	TotalCount int
	Limit      int
	Offset     int
}

func (p PageInfo) HasNext() bool { return p.Offset+p.Limit < p.TotalCount }
func (p PageInfo) HasPrev() bool { return p.Offset > 0 }

// =============================================================================
// PAYMENT FILTERS
// =============================================================================

// PaymentFilter narrows a payment listing. Zero values mean "no filter".
type PaymentFilter struct {
	ClientID      string
	Method        PaymentMethod
	MethodChannel string
	PeriodYear    int
}

// Validate enforces filter coherence: a channel filter is only
// meaningful combined with method=transfer. Supplying one with any other
// method (or none) is an error, not a silently-ignored filter.
func (f PaymentFilter) Validate() error {
	if f.Method != "" {
		if _, err := ParseMethod(string(f.Method)); err != nil {
			return err
		}
	}
	if f.MethodChannel != "" && f.Method != MethodTransfer {
		return &ValidationError{Field: "method_channel", Reason: "channel filter requires method=transfer"}
	}
	if f.PeriodYear != 0 && (f.PeriodYear < MinPeriodYear || f.PeriodYear > MaxPeriodYear) {
		return &ValidationError{Field: "period_year", Reason: "out of range"}
	}
	return nil
}

// Match applies the filter in memory. The sqlite store expresses the
// same predicate as SQL; both paths must agree.
func (f PaymentFilter) Match(p Payment) bool {
	if f.ClientID != "" && p.ClientID != f.ClientID {
		return false
	}
	if f.Method != "" && p.Method != f.Method {
		return false
	}
	if f.MethodChannel != "" && p.MethodChannel != f.MethodChannel {
		return false
	}
	if f.PeriodYear != 0 && p.Period.Year != f.PeriodYear {
		return false
	}
	return true
}
