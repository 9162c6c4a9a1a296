/*
handlers.go - HTTP request handlers

PURPOSE:
  Translates HTTP requests into domain operations and domain results
  (or errors) back into JSON responses. All business rules live below
  this layer; handlers only parse, delegate, and render.

KEY CONCEPTS:
  - Error mapping: validation errors become 400, missing records 404,
    duplicate billing periods 409, everything else 500.
  - Actor attribution: the optional X-Actor header is recorded on
    created records for audit purposes.

SEE ALSO:
  - server.go: Route registration
  - membership/: Domain types and store interfaces
  - report/: Aggregation engine
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/membership-engine/config"
	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/report"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	Payments   membership.PaymentStore
	Clients    membership.ClientStore
	Attendance membership.AttendanceStore
	Status     *membership.StatusResolver
	Reports    *report.Aggregator
	Cfg        *config.Config
}

func NewHandler(
	payments membership.PaymentStore,
	clients membership.ClientStore,
	attendance membership.AttendanceStore,
	status *membership.StatusResolver,
	reports *report.Aggregator,
	cfg *config.Config,
) *Handler {
	return &Handler{
		Payments:   payments,
		Clients:    clients,
		Attendance: attendance,
		Status:     status,
		Reports:    reports,
		Cfg:        cfg,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeError maps a domain error onto an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case membership.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Details: err.Error()})
	case membership.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Details: err.Error()})
	case membership.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "duplicate_period", Details: err.Error()})
	default:
		log.Printf("api: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}

func writeBadRequest(w http.ResponseWriter, details string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Details: details})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

// =============================================================================
// QUERY PARAMETER PARSING
// =============================================================================

func parsePage(r *http.Request) (membership.PageRequest, error) {
	page := membership.PageRequest{Limit: membership.DefaultPageLimit}
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, &membership.ValidationError{Field: "limit", Reason: "must be a positive integer"}
		}
		page.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, &membership.ValidationError{Field: "offset", Reason: "must be a non-negative integer"}
		}
		page.Offset = n
	}
	return page.Normalize(), nil
}

func parseOptionalInt(q string, field string) (int, error) {
	if q == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(q)
	if err != nil {
		return 0, &membership.ValidationError{Field: field, Reason: "must be an integer"}
	}
	return n, nil
}

// parseReportRange reads the required from/to date parameters and resolves
// them against the configured reporting timezone. The end date is inclusive.
func (h *Handler) parseReportRange(r *http.Request) (membership.DateRange, error) {
	q := r.URL.Query()
	return membership.ParseDateRange(q.Get("from"), q.Get("to"), h.Cfg.Location)
}

// parseAttendanceRange is like parseReportRange but tolerates missing
// dates: with no from/to the whole visit history is returned.
func (h *Handler) parseAttendanceRange(r *http.Request) (membership.DateRange, error) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return membership.DateRange{
			From:        time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			ToExclusive: time.Now().UTC().Add(24 * time.Hour),
		}, nil
	}
	return membership.ParseDateRange(from, to, h.Cfg.Location)
}

func (h *Handler) parseReportBucket(r *http.Request) (membership.Bucket, error) {
	raw := r.URL.Query().Get("bucket")
	if raw == "" {
		raw = "month"
	}
	return membership.ParseBucket(raw)
}

func parseReportFilters(r *http.Request) (report.Filters, error) {
	q := r.URL.Query()
	f := report.Filters{
		Method:  membership.PaymentMethod(q.Get("method")),
		Channel: q.Get("channel"),
	}
	if ids, ok := q["client_id"]; ok {
		f.ClientIDs = ids
	}
	if err := f.Validate(); err != nil {
		return report.Filters{}, err
	}
	return f, nil
}

// =============================================================================
// CLIENT ENDPOINTS
// =============================================================================

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input := membership.CreateClientInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Actor:    actorFrom(r),
	}
	client, err := h.Clients.CreateClient(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.Clients.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input := membership.UpdateClientInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
	client, err := h.Clients.UpdateClient(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.Clients.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := membership.ResolveClientSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	clients, total, err := h.Clients.ListClients(r.Context(), q.Get("q"), sort, page)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	info := membership.PageInfo{TotalCount: total, Limit: page.Limit, Offset: page.Offset}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, listResponse(dtos, info))
}

func (h *Handler) ClientStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Status.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClientStatusDTO{
		ClientID:         status.ClientID,
		FullName:         status.FullName,
		IsUpToDate:       status.IsUpToDate,
		LastPaymentMonth: status.LastPaymentMonth,
		LastPaymentYear:  status.LastPaymentYear,
	})
}

func (h *Handler) ClientPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Clients.GetClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	payments, err := h.Payments.PaymentsForClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ClientAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Clients.GetClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	rng, err := h.parseAttendanceRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	visits, err := h.Attendance.AttendanceForClient(r.Context(), id, rng)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]AttendanceDTO, len(visits))
	for i, v := range visits {
		dtos[i] = AttendanceDTO{
			ID:        v.ID,
			ClientID:  v.ClientID,
			CheckinAt: v.CheckinAt.Format(time.RFC3339),
			CoachID:   v.CoachID,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYMENT ENDPOINTS
// =============================================================================

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeBadRequest(w, "amount must be a decimal number")
		return
	}
	method, err := membership.ParseMethod(req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	input := membership.CreatePaymentInput{
		ClientID:      req.ClientID,
		Amount:        amount,
		Method:        method,
		MethodChannel: req.MethodChannel,
		Note:          req.Note,
		Period:        membership.Period{Month: req.PeriodMonth, Year: req.PeriodYear},
		Actor:         actorFrom(r),
	}
	payment, err := h.Payments.CreatePayment(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Payments.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Payments.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := parseOptionalInt(q.Get("period_year"), "period_year")
	if err != nil {
		writeError(w, err)
		return
	}
	filter := membership.PaymentFilter{
		ClientID:      q.Get("client_id"),
		Method:        membership.PaymentMethod(q.Get("method")),
		MethodChannel: q.Get("channel"),
		PeriodYear:    year,
	}
	if err := filter.Validate(); err != nil {
		writeError(w, err)
		return
	}
	sort, err := membership.ResolvePaymentSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payments, total, err := h.Payments.ListPayments(r.Context(), filter, sort, page)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	info := membership.PageInfo{TotalCount: total, Limit: page.Limit, Offset: page.Offset}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, listResponse(dtos, info))
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func (h *Handler) Checkin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input := membership.CheckinInput{
		ClientID: req.ClientID,
		CoachID:  actorFrom(r),
	}
	visit, err := h.Attendance.Checkin(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AttendanceDTO{
		ID:        visit.ID,
		ClientID:  visit.ClientID,
		CheckinAt: visit.CheckinAt.Format(time.RFC3339),
		CoachID:   visit.CoachID,
	})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

func (h *Handler) RevenueSeries(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseReportRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bucket, err := h.parseReportBucket(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filters, err := parseReportFilters(r)
	if err != nil {
		writeError(w, err)
		return
	}
	buckets, err := h.Reports.Revenue(r.Context(), rng, bucket, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeBucketDTOs(buckets, true))
}

func (h *Handler) RevenueKPIs(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseReportRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filters, err := parseReportFilters(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.Reports.RevenueKPIs(r.Context(), rng, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, KPIsDTO{
		Count:           summary.Count,
		DistinctClients: summary.DistinctClients,
		AmountSum:       summary.AmountSum.StringFixed(2),
		AmountAvg:       summary.AmountAvg.StringFixed(2),
	})
}

func (h *Handler) RevenueBreakdown(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseReportRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dim, err := report.ParseDimension(r.URL.Query().Get("dimension"))
	if err != nil {
		writeError(w, err)
		return
	}
	filters, err := parseReportFilters(r)
	if err != nil {
		writeError(w, err)
		return
	}
	buckets, err := h.Reports.RevenueBreakdown(r.Context(), rng, dim, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]CategoryBucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = CategoryBucketDTO{
			Category:  b.Category,
			Count:     b.Count,
			AmountSum: b.AmountSum.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AttendanceSeries(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseReportRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bucket, err := h.parseReportBucket(r)
	if err != nil {
		writeError(w, err)
		return
	}
	buckets, err := h.Reports.AttendanceSeries(r.Context(), rng, bucket)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeBucketDTOs(buckets, false))
}

func (h *Handler) NewClientsSeries(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseReportRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bucket, err := h.parseReportBucket(r)
	if err != nil {
		writeError(w, err)
		return
	}
	buckets, err := h.Reports.NewClientsSeries(r.Context(), rng, bucket)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeBucketDTOs(buckets, false))
}
