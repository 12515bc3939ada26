package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	"github.com/sacco-suite/coop_core_app/internal/models"
	"github.com/sacco-suite/coop_core_app/internal/utils/mapping"
	"github.com/sacco-suite/coop_core_app/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates the append-only ledger store. It returns the
// concrete type because the withdrawal repository composes with its
// transaction-scoped append.
func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerEntryColumns = `
	entry_id, account_id, account_kind, sequence, entry_type, amount, entry_date,
	reference, resulting_balance, admin_override,
	created_at, created_by, last_updated_at, last_updated_by`

// insertLedgerEntry inserts one ledger row on the given transaction. Shared
// with the account repositories for opening/disbursement entries.
func insertLedgerEntry(ctx context.Context, tx pgx.Tx, m models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			entry_id, account_id, account_kind, sequence, entry_type, amount, entry_date,
			reference, resulting_balance, admin_override,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID,
		m.AccountID,
		m.AccountKind,
		m.Sequence,
		m.EntryType,
		m.Amount,
		m.EntryDate,
		m.Reference,
		m.ResultingBalance,
		m.AdminOverride,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert ledger entry "+m.EntryID, err)
	}
	return nil
}

// nextSequence returns the next per-account sequence number. Safe only while
// the account row is locked by the calling transaction.
func nextSequence(ctx context.Context, tx pgx.Tx, accountID string) (int64, error) {
	var seq int64
	query := `SELECT COALESCE(MAX(sequence), 0) + 1 FROM ledger_entries WHERE account_id = $1;`
	if err := tx.QueryRow(ctx, query, accountID).Scan(&seq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to compute next sequence for account "+accountID, err)
	}
	return seq, nil
}

func scanLedgerEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.AccountID,
		&m.AccountKind,
		&m.Sequence,
		&m.EntryType,
		&m.Amount,
		&m.EntryDate,
		&m.Reference,
		&m.ResultingBalance,
		&m.AdminOverride,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// appendSavingsEntryInTx locks the savings account row, assigns the next
// sequence, re-checks the minimum-balance floor from the locked balance,
// inserts the entry and updates the snapshot.
func (r *PgxLedgerRepository) appendSavingsEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, minBalance decimal.Decimal) (*domain.LedgerEntry, error) {
	var balance decimal.Decimal
	lockQuery := `SELECT balance FROM savings_accounts WHERE account_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, entry.AccountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if isLockTimeout(err) {
			return nil, apperrors.ErrAccountBusy
		}
		return nil, apperrors.NewAppError(500, "failed to lock savings account "+entry.AccountID, err)
	}

	seq, err := nextSequence(ctx, tx, entry.AccountID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(entry.Amount)
	if !entry.AdminOverride && newBalance.LessThan(minBalance) {
		return nil, apperrors.ErrBelowMinimumBalance
	}
	if newBalance.IsNegative() {
		// Even overrides cannot take a savings account below zero.
		return nil, apperrors.ErrBelowMinimumBalance
	}

	entry.Sequence = seq
	entry.ResultingBalance = newBalance
	if err := insertLedgerEntry(ctx, tx, mapping.ToModelLedgerEntry(entry)); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE savings_accounts
		SET balance = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	args := []interface{}{entry.AccountID, newBalance, entry.LastUpdatedAt, entry.LastUpdatedBy}
	if entry.EntryType == domain.EntryInterestAccrual {
		updateQuery = `
			UPDATE savings_accounts
			SET balance = $2,
			    last_updated_at = $3,
			    last_updated_by = $4,
			    last_accrual_at = $5
			WHERE account_id = $1;
		`
		args = append(args, entry.EntryDate)
	}
	if _, err := tx.Exec(ctx, updateQuery, args...); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update savings balance for "+entry.AccountID, err)
	}
	return &entry, nil
}

// appendLoanEntryInTx is the loan-side counterpart: it additionally verifies
// the loan is still in the expected status and applies the state update.
func (r *PgxLedgerRepository) appendLoanEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, expected domain.LoanStatus, update portsrepo.LoanStateUpdate) (*domain.LedgerEntry, error) {
	var balance decimal.Decimal
	var status string
	lockQuery := `SELECT outstanding_balance, status FROM loan_accounts WHERE loan_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, entry.AccountID).Scan(&balance, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if isLockTimeout(err) {
			return nil, apperrors.ErrAccountBusy
		}
		return nil, apperrors.NewAppError(500, "failed to lock loan account "+entry.AccountID, err)
	}
	if status != string(expected) {
		return nil, apperrors.ErrInvalidTransition
	}

	seq, err := nextSequence(ctx, tx, entry.AccountID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(entry.Amount)
	if newBalance.IsNegative() {
		return nil, apperrors.NewAppError(422, "repayment would overshoot the outstanding balance of loan "+entry.AccountID, apperrors.ErrValidation)
	}

	entry.Sequence = seq
	entry.ResultingBalance = newBalance
	if err := insertLedgerEntry(ctx, tx, mapping.ToModelLedgerEntry(entry)); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE loan_accounts
		SET outstanding_balance = $2,
		    last_updated_at = $3,
		    last_updated_by = $4`
	args := []interface{}{entry.AccountID, newBalance, entry.LastUpdatedAt, entry.LastUpdatedBy}
	if update.Status != nil {
		args = append(args, string(*update.Status))
		updateQuery += ",\n		    status = $" + strconv.Itoa(len(args))
	}
	if update.NextPaymentDue != nil {
		args = append(args, *update.NextPaymentDue)
		updateQuery += ",\n		    next_payment_due = $" + strconv.Itoa(len(args))
	}
	if update.LastPenaltyDate != nil {
		args = append(args, *update.LastPenaltyDate)
		updateQuery += ",\n		    last_penalty_date = $" + strconv.Itoa(len(args))
	}
	updateQuery += `
		WHERE loan_id = $1;`

	if _, err := tx.Exec(ctx, updateQuery, args...); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update loan account "+entry.AccountID, err)
	}
	return &entry, nil
}

func (r *PgxLedgerRepository) AppendSavingsEntry(ctx context.Context, entry domain.LedgerEntry, minBalance decimal.Decimal) (*domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}
	stored, err := r.appendSavingsEntryInTx(ctx, tx, entry, minBalance)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *PgxLedgerRepository) AppendLoanEntry(ctx context.Context, entry domain.LedgerEntry, expected domain.LoanStatus, update portsrepo.LoanStateUpdate) (*domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}
	stored, err := r.appendLoanEntryInTx(ctx, tx, entry, expected, update)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

// AppendRepayment commits the repayment leg on the loan plus any overflow
// legs on the member's savings account in one transaction. Overflow legs
// never apply a floor: the credit leg is positive and the refund leg is an
// admin override by construction.
func (r *PgxLedgerRepository) AppendRepayment(ctx context.Context, loanEntry domain.LedgerEntry, expected domain.LoanStatus, update portsrepo.LoanStateUpdate, savingsEntries []domain.LedgerEntry) (*domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}
	stored, err := r.appendLoanEntryInTx(ctx, tx, loanEntry, expected, update)
	if err != nil {
		return nil, err
	}
	for _, savingsEntry := range savingsEntries {
		if _, err := r.appendSavingsEntryInTx(ctx, tx, savingsEntry, decimal.Zero); err != nil {
			return nil, err
		}
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

// EntriesForAccount returns entries oldest first with cursor pagination.
func (r *PgxLedgerRepository) EntriesForAccount(ctx context.Context, accountID string, params portsrepo.StatementParams) ([]domain.LedgerEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE account_id = $1`
	args := []interface{}{accountID}

	if params.From != nil {
		args = append(args, *params.From)
		baseQuery += ` AND entry_date >= $` + strconv.Itoa(len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		baseQuery += ` AND entry_date < $` + strconv.Itoa(len(args))
	}
	if params.NextToken != nil && *params.NextToken != "" {
		tokenAccountID, lastSequence, decodeErr := pagination.DecodeSequenceToken(*params.NextToken)
		if decodeErr != nil || tokenAccountID != accountID {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastSequence)
		baseQuery += ` AND sequence > $` + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + `
		ORDER BY sequence
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry row for account "+accountID, err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger entry rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeSequenceToken(accountID, last.Sequence)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nextTokenVal, nil
}

// ReplayEntries returns every entry for the account in sequence order.
func (r *PgxLedgerRepository) ReplayEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	query := `SELECT` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY sequence;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries for replay of account "+accountID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row for replay of account "+accountID, err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows for replay of account "+accountID, err)
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// LatestEntry returns the highest-sequence entry for the account.
func (r *PgxLedgerRepository) LatestEntry(ctx context.Context, accountID string) (*domain.LedgerEntry, error) {
	query := `SELECT` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY sequence DESC
		LIMIT 1;`
	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find latest ledger entry for account "+accountID, err)
	}
	entry := mapping.ToDomainLedgerEntry(m)
	return &entry, nil
}
