/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. These decouple the domain model
  from the wire contract: amounts travel as fixed two-decimal strings,
  timestamps as RFC3339, dates as YYYY-MM-DD.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/report"
)

// =============================================================================
// CLIENTS
// =============================================================================

type ClientDTO struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	JoinDate string `json:"join_date"`
	IsActive bool   `json:"is_active"`
}

func toClientDTO(c membership.Client) ClientDTO {
	return ClientDTO{
		ID:       c.ID,
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		JoinDate: c.JoinDate.Format(time.RFC3339),
		IsActive: c.IsActive,
	}
}

type CreateClientRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type UpdateClientRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

type ClientStatusDTO struct {
	ClientID         string `json:"client_id"`
	FullName         string `json:"full_name"`
	IsUpToDate       bool   `json:"is_up_to_date"`
	LastPaymentMonth *int   `json:"last_payment_month"`
	LastPaymentYear  *int   `json:"last_payment_year"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID            string `json:"id"`
	ClientID      string `json:"client_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	MethodChannel string `json:"method_channel,omitempty"`
	Note          string `json:"note,omitempty"`
	PeriodMonth   int    `json:"period_month"`
	PeriodYear    int    `json:"period_year"`
	CreatedAt     string `json:"created_at"`
}

func toPaymentDTO(p membership.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		ClientID:      p.ClientID,
		Amount:        p.Amount.StringFixed(2),
		Method:        string(p.Method),
		MethodChannel: p.MethodChannel,
		Note:          p.Note,
		PeriodMonth:   p.Period.Month,
		PeriodYear:    p.Period.Year,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

type CreatePaymentRequest struct {
	ClientID      string `json:"client_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	MethodChannel string `json:"method_channel"`
	Note          string `json:"note"`
	PeriodMonth   int    `json:"period_month"`
	PeriodYear    int    `json:"period_year"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type CheckinRequest struct {
	ClientID string `json:"client_id"`
}

type AttendanceDTO struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	CheckinAt string `json:"checkin_at"`
	CoachID   string `json:"coach_id,omitempty"`
}

// =============================================================================
// LISTINGS - One page plus the unpaginated total
// =============================================================================

type ListResponse[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"total_count"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func listResponse[T any](items []T, info membership.PageInfo) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: info.TotalCount,
		Limit:      info.Limit,
		Offset:     info.Offset,
		HasNext:    info.HasNext(),
		HasPrev:    info.HasPrev(),
	}
}

// =============================================================================
// REPORTS
// =============================================================================

type TimeBucketDTO struct {
	Bucket    string `json:"bucket"`
	Count     int    `json:"count"`
	AmountSum string `json:"amount_sum,omitempty"`
}

func toTimeBucketDTOs(buckets []report.TimeBucket, withAmount bool) []TimeBucketDTO {
	out := make([]TimeBucketDTO, len(buckets))
	for i, b := range buckets {
		out[i] = TimeBucketDTO{Bucket: b.Start.Format(time.RFC3339), Count: b.Count}
		if withAmount {
			out[i].AmountSum = b.AmountSum.StringFixed(2)
		}
	}
	return out
}

type KPIsDTO struct {
	Count           int    `json:"count"`
	DistinctClients int    `json:"distinct_clients"`
	AmountSum       string `json:"amount_sum"`
	AmountAvg       string `json:"amount_avg"`
}

type CategoryBucketDTO struct {
	Category  string `json:"category"`
	Count     int    `json:"count"`
	AmountSum string `json:"amount_sum"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
