package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"loantrack/internal/api/handler/dto"
	"loantrack/internal/domain/loan"
	"loantrack/internal/domain/payment"
	"loantrack/internal/pkg/apperrors"
	"loantrack/internal/pkg/dates"
)

type LoanHandler struct {
	service  loan.LoanService
	payments payment.PaymentService
	timezone *time.Location
	logger   *slog.Logger
}

func NewLoanHandler(s loan.LoanService, p payment.PaymentService, tz *time.Location, l *slog.Logger) *LoanHandler {
	if tz == nil {
		tz = time.UTC
	}
	return &LoanHandler{
		service:  s,
		payments: p,
		timezone: tz,
		logger:   l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrAlreadyPaid), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrCalculation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func idFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

func (h *LoanHandler) today() dates.Date {
	return dates.Today(h.timezone)
}

// CreateLoan handles the creation of a new loan with its installment schedule.
//
// @Summary Create a new loan
// @Description Creates a loan from principal, annual interest rate, installment count, payment type descriptor and date range. The full installment schedule is generated and stored atomically. Sequence numbers in paidInstallments are created already marked paid.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdLoan, err := h.service.CreateLoan(r.Context(), req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(createdLoan, true, h.today())
	respondJSON(w, http.StatusCreated, resp)
}

// GetLoan retrieves the details of a specific loan.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by its ID including its installment schedule with derived statuses (PENDING, OVERDUE, PAID).
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(domainLoan, true, h.today())
	respondJSON(w, http.StatusOK, resp)
}

// ListLoans lists loans.
//
// @Summary List loans
// @Description Retrieves all loans. Pass active=true to list only active loans. Installment schedules are not included; fetch a single loan for those.
// @Tags Loans
// @Produce json
// @Param active query bool false "Filter to active loans only" Example(true)
// @Success 200 {array} dto.LoanResponse "List of loans"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	loans, err := h.service.ListLoans(r.Context(), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	today := h.today()
	resp := make([]dto.LoanResponse, len(loans))
	for i := range loans {
		resp[i] = dto.NewLoanResponse(&loans[i], false, today)
	}
	respondJSON(w, http.StatusOK, resp)
}

// DeactivateLoan soft deletes a loan.
//
// @Summary Deactivate a loan
// @Description Marks a loan as inactive. Installments and the payment trail are kept.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 204 "Loan successfully deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeactivateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeactivateLoan(r.Context(), loanID); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to deactivate loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RegenerateInstallments rebuilds the schedule of a loan without installments.
//
// @Summary Regenerate the installment schedule
// @Description Recomputes the loan terms for the requested installment count and generates a fresh schedule. Refused with 409 when the loan already has installments.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RegenerateInstallmentsRequest true "Regeneration payload; installmentCount 0 keeps the stored count"
// @Success 200 {object} dto.LoanResponse "Schedule regenerated"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or request payload"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan already has installments"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/installments/regenerate [post]
// @Security BearerAuth
func (h *LoanHandler) RegenerateInstallments(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RegenerateInstallmentsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.RegenerateInstallments(r.Context(), loanID, req.InstallmentCount)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(updated, true, h.today())
	respondJSON(w, http.StatusOK, resp)
}

// ListPayments returns the payment history of a loan.
//
// @Summary List loan payments
// @Description Retrieves the append-only payment records of a loan in chronological order.
// @Tags Payments
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.PaymentResponse "Payment history"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [get]
// @Security BearerAuth
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	records, err := h.payments.ListPayments(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.PaymentResponse, len(records))
	for i := range records {
		resp[i] = dto.NewPaymentResponse(&records[i])
	}
	respondJSON(w, http.StatusOK, resp)
}

// PayInstallment records a payment against one installment.
//
// @Summary Pay an installment
// @Description Marks the installment paid, appends a payment record and deactivates the loan when its last unpaid installment is settled, all in one transaction. Paying an already paid installment returns 409 without side effects.
// @Tags Installments
// @Accept json
// @Produce json
// @Param installmentID path int true "Installment ID"
// @Param request body dto.PayInstallmentRequest true "Payment payload"
// @Success 200 {object} dto.InstallmentResponse "Installment successfully paid"
// @Failure 400 {object} dto.ErrorResponse "Invalid installment ID or request payload"
// @Failure 404 {object} dto.ErrorResponse "Installment not found"
// @Failure 409 {object} dto.ErrorResponse "Installment already paid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /installments/{installmentID}/pay [post]
// @Security BearerAuth
func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	installmentID, err := idFromURL(r, "installmentID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.PayInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	paid, err := h.service.PayInstallment(r.Context(), installmentID, req.Method, req.Notes)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrAlreadyPaid) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to pay installment", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewInstallmentResponse(paid, h.today())
	respondJSON(w, http.StatusOK, resp)
}

// UpdateInstallment edits an installment's late fee and notes.
//
// @Summary Update installment details
// @Description Updates the late fee and/or notes of an installment. The paid state is not editable here.
// @Tags Installments
// @Accept json
// @Produce json
// @Param installmentID path int true "Installment ID"
// @Param request body dto.UpdateInstallmentRequest true "Fields to update; omitted fields are left untouched"
// @Success 200 {object} dto.InstallmentResponse "Installment updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid installment ID or request payload"
// @Failure 404 {object} dto.ErrorResponse "Installment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /installments/{installmentID} [patch]
// @Security BearerAuth
func (h *LoanHandler) UpdateInstallment(w http.ResponseWriter, r *http.Request) {
	installmentID, err := idFromURL(r, "installmentID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateInstallment(r.Context(), installmentID, req.LateFeeDecimal(), req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewInstallmentResponse(updated, h.today())
	respondJSON(w, http.StatusOK, resp)
}
