package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"loantrack/internal/domain/loan"
	"loantrack/internal/domain/payment"
	"loantrack/internal/infrastructure/monitoring"
	"loantrack/internal/pkg/apperrors"
	"loantrack/internal/pkg/dates"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const loanColumns = `id, loan_code, bank_name, loan_type, principal_amount, annual_interest_rate,
        amortization_mode, installment_count, payment_strategy, start_date, end_date,
        installment_amount, final_total_amount, active, created_at, updated_at`

const installmentColumns = `id, loan_id, sequence, due_date, amount, is_paid, paid_date, late_fee, notes, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

type loanRow struct {
	startDate time.Time
	endDate   time.Time
	strategy  string
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	var aux loanRow
	err := row.Scan(
		&l.ID, &l.LoanCode, &l.BankName, &l.LoanType, &l.PrincipalAmount, &l.AnnualInterestRate,
		&l.AmortizationMode, &l.InstallmentCount, &aux.strategy, &aux.startDate, &aux.endDate,
		&l.InstallmentAmount, &l.FinalTotalAmount, &l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Strategy = loan.ParseStrategy(aux.strategy)
	l.StartDate = dates.FromTime(aux.startDate, time.UTC)
	l.EndDate = dates.FromTime(aux.endDate, time.UTC)
	return &l, nil
}

func scanInstallment(row pgx.Row) (*loan.Installment, error) {
	var inst loan.Installment
	var dueDate time.Time
	var notes *string
	err := row.Scan(
		&inst.ID, &inst.LoanID, &inst.Sequence, &dueDate, &inst.Amount,
		&inst.IsPaid, &inst.PaidDate, &inst.LateFee, &notes, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inst.DueDate = dates.FromTime(dueDate, time.UTC)
	if notes != nil {
		inst.Notes = *notes
	}
	return &inst, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan, installments []loan.Installment) (*loan.Loan, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer r.RollbackTx(ctx, tx)

	loanSQL := `
        INSERT INTO loans (loan_code, bank_name, loan_type, principal_amount, annual_interest_rate,
            amortization_mode, installment_count, payment_strategy, start_date, end_date,
            installment_amount, final_total_amount, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
        RETURNING ` + loanColumns

	createdLoan, err := scanLoan(tx.QueryRow(ctx, loanSQL,
		newLoan.LoanCode, newLoan.BankName, newLoan.LoanType, newLoan.PrincipalAmount, newLoan.AnnualInterestRate,
		newLoan.AmortizationMode, newLoan.InstallmentCount, newLoan.Strategy.Descriptor(),
		newLoan.StartDate.Time(), newLoan.EndDate.Time(),
		newLoan.InstallmentAmount, newLoan.FinalTotalAmount, newLoan.Active,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", createdLoan.ID)

	if len(installments) > 0 {
		if err := r.insertInstallmentsInTx(ctx, tx, createdLoan.ID, installments); err != nil {
			return nil, err
		}
	}
	r.logger.InfoContext(ctx, "Installments created in DB", "loan_id", createdLoan.ID, "num_entries", len(installments))

	created, err := r.queryInstallmentsInTx(ctx, tx, createdLoan.ID)
	if err != nil {
		return nil, err
	}
	createdLoan.Installments = created

	if err := r.CommitTx(ctx, tx); err != nil {
		return nil, err
	}
	return createdLoan, nil
}

func (r *LoanRepository) insertInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64, installments []loan.Installment) error {
	installmentSQL := `
        INSERT INTO installments (loan_id, sequence, due_date, amount, is_paid, paid_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(installmentSQL, loanID, inst.Sequence, inst.DueDate.Time(), inst.Amount, inst.IsPaid, inst.PaidDate)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(installments); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.ErrorContext(ctx, "Failed executing installment batch insert", "error", err, "entry_index", i, "loan_id", loanID)
			return fmt.Errorf("%w: failed inserting installment %d: %w", apperrors.ErrDatabase, i+1, err)
		}
	}
	if err := results.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed closing installment batch results", "error", err, "loan_id", loanID)
		return fmt.Errorf("%w: closing batch results failed: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) queryInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) ([]loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM installments
        WHERE loan_id = $1
        ORDER BY sequence ASC`

	rows, err := tx.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query created installments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()
	return collectInstallments(rows)
}

func collectInstallments(rows pgx.Rows) ([]loan.Installment, error) {
	installments := make([]loan.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		installments = append(installments, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return installments, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1`
	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) ListLoans(ctx context.Context, activeOnly bool) ([]loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE ($1 = false OR active)
        ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, *l)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM installments
        WHERE loan_id = $1
        ORDER BY sequence ASC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	installments, err := collectInstallments(rows)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to scan installment rows", "loan_id", loanID, "error", err)
		return nil, err
	}
	return installments, nil
}

func (r *LoanRepository) RegenerateInstallments(ctx context.Context, updated *loan.Loan, installments []loan.Installment) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer r.RollbackTx(ctx, tx)

	var existing int
	countSQL := `SELECT COUNT(*) FROM installments WHERE loan_id = $1`
	if err := tx.QueryRow(ctx, countSQL, updated.ID).Scan(&existing); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count existing installments", "loan_id", updated.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: loan %d already has %d installments", apperrors.ErrConflict, updated.ID, existing)
	}

	updateSQL := `
        UPDATE loans
        SET installment_count = $1, installment_amount = $2, final_total_amount = $3, updated_at = NOW()
        WHERE id = $4`
	cmdTag, err := tx.Exec(ctx, updateSQL, updated.InstallmentCount, updated.InstallmentAmount, updated.FinalTotalAmount, updated.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan terms", "loan_id", updated.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("%w: loan terms update affected zero rows", apperrors.ErrDatabase)
	}

	if err := r.insertInstallmentsInTx(ctx, tx, updated.ID, installments); err != nil {
		return err
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Installments regenerated in DB", "loan_id", updated.ID, "num_entries", len(installments))
	return nil
}

func (r *LoanRepository) UpdateInstallmentDetails(ctx context.Context, installmentID int64, lateFee *decimal.Decimal, notes *string) (*loan.Installment, error) {
	sql := `
        UPDATE installments
        SET late_fee = COALESCE($1, late_fee), notes = COALESCE($2, notes), updated_at = NOW()
        WHERE id = $3
        RETURNING ` + installmentColumns

	inst, err := scanInstallment(r.db.QueryRow(ctx, sql, lateFee, notes, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Installment not found", "installment_id", installmentID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update installment details", "installment_id", installmentID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return inst, nil
}

func (r *LoanRepository) DeactivateLoan(ctx context.Context, loanID int64) error {
	sql := `UPDATE loans SET active = false, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to deactivate loan", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Loan not found for deactivation", "loan_id", loanID)
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Loan deactivated in DB", "loan_id", loanID)
	return nil
}

func (r *LoanRepository) FindDueUnpaidOn(ctx context.Context, due dates.Date) ([]loan.DueInstallment, error) {
	query := `
        SELECT i.id, i.loan_id, i.sequence, i.due_date, i.amount, i.is_paid, i.paid_date,
               i.late_fee, i.notes, i.created_at, i.updated_at, l.loan_code, l.bank_name
        FROM installments i
        JOIN loans l ON l.id = i.loan_id
        WHERE i.due_date = $1 AND i.is_paid = false AND l.active = true
        ORDER BY i.loan_id, i.sequence`

	rows, err := r.db.Query(ctx, query, due.Time())
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query due installments", "date", due.String(), "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	result := make([]loan.DueInstallment, 0)
	for rows.Next() {
		var d loan.DueInstallment
		var dueDate time.Time
		var notes *string
		err := rows.Scan(
			&d.ID, &d.LoanID, &d.Sequence, &dueDate, &d.Amount, &d.IsPaid, &d.PaidDate,
			&d.LateFee, &notes, &d.CreatedAt, &d.UpdatedAt, &d.LoanCode, &d.BankName,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan due installment row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		d.DueDate = dates.FromTime(dueDate, time.UTC)
		if notes != nil {
			d.Notes = *notes
		}
		result = append(result, d)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating due installment rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return result, nil
}

func (r *LoanRepository) FindInstallmentForUpdate(ctx context.Context, tx pgx.Tx, installmentID int64) (*loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM installments
        WHERE id = $1
        FOR UPDATE`

	inst, err := scanInstallment(tx.QueryRow(ctx, query, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.InfoContext(ctx, "Installment not found for update", "installment_id", installmentID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find/lock installment", "installment_id", installmentID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return inst, nil
}

func (r *LoanRepository) MarkInstallmentPaidInTx(ctx context.Context, tx pgx.Tx, inst *loan.Installment) error {
	sql := `
        UPDATE installments
        SET is_paid = $1, paid_date = $2, updated_at = NOW()
        WHERE id = $3 AND loan_id = $4`

	cmdTag, err := tx.Exec(ctx, sql, inst.IsPaid, inst.PaidDate, inst.ID, inst.LoanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark installment paid", "installment_id", inst.ID, "loan_id", inst.LoanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Installment payment update affected zero rows", "installment_id", inst.ID, "loan_id", inst.LoanID)
		return fmt.Errorf("%w: installment payment update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	sql := `
        INSERT INTO payments (loan_id, amount, payment_date, reference_due_date, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id`

	err := tx.QueryRow(ctx, sql, p.LoanID, p.Amount, p.PaymentDate, p.ReferenceDueDate.Time(), p.Notes).Scan(&p.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment record", "loan_id", p.LoanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) CountUnpaidInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM installments WHERE loan_id = $1 AND is_paid = false`
	if err := tx.QueryRow(ctx, query, loanID).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count unpaid installments", "loan_id", loanID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}

func (r *LoanRepository) SetLoanActiveInTx(ctx context.Context, tx pgx.Tx, loanID int64, active bool) error {
	sql := `UPDATE loans SET active = $1, updated_at = NOW() WHERE id = $2`
	cmdTag, err := tx.Exec(ctx, sql, active, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan active flag", "loan_id", loanID, "active", active, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan active flag update affected zero rows", "loan_id", loanID)
		return fmt.Errorf("%w: loan active flag update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Loan active flag updated in DB", "loan_id", loanID, "active", active)
	return nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
		}
		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}
	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
