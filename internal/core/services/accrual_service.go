package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

var daysPerYear = decimal.NewFromInt(365)

// accrualService is the interest & penalty engine. RunScan walks savings
// accounts and past-due loans in ID order, committing each account's accrual
// independently, so a crash mid-scan loses nothing: the next run resumes from
// the per-account markers (last_accrual_at, last_penalty_date).
type accrualService struct {
	productRepo portsrepo.ProductRepositoryFacade
	savingsRepo portsrepo.SavingsRepositoryFacade
	loanRepo    portsrepo.LoanRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	publisher   *events.Publisher

	defaultGraceDays int
	batchSize        int
}

// NewAccrualService creates the scheduled accrual engine. defaultGraceDays
// applies to loan products that do not set their own grace period.
func NewAccrualService(
	repos portsrepo.Repositories,
	publisher *events.Publisher,
	defaultGraceDays int,
	batchSize int,
) portssvc.AccrualSvcFacade {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &accrualService{
		productRepo:      repos.Product,
		savingsRepo:      repos.Savings,
		loanRepo:         repos.Loan,
		ledgerRepo:       repos.Ledger,
		publisher:        publisher,
		defaultGraceDays: defaultGraceDays,
		batchSize:        batchSize,
	}
}

var _ portssvc.AccrualSvcFacade = (*accrualService)(nil)

// RunScan performs one full interest and penalty pass as of now. Running it
// twice for the same day changes nothing.
func (s *accrualService) RunScan(ctx context.Context, now time.Time) (*dto.AccrualScanResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	result := &dto.AccrualScanResult{}

	if err := s.scanSavings(ctx, now, result); err != nil {
		return result, err
	}
	if err := s.scanLoans(ctx, now, result); err != nil {
		return result, err
	}

	logger.Info("Accrual scan finished",
		slog.Int("accounts_scanned", result.AccountsScanned),
		slog.Int("interest_entries", result.InterestEntries),
		slog.Int("loans_scanned", result.LoansScanned),
		slog.Int("penalty_entries", result.PenaltyEntries),
		slog.Int("marked_overdue", result.MarkedOverdue),
		slog.Int("marked_defaulted", result.MarkedDefaulted))
	return result, nil
}

// scanSavings accrues daily interest on every active account not yet accrued
// today. A failure on one account is logged and the scan moves on.
func (s *accrualService) scanSavings(ctx context.Context, now time.Time, result *dto.AccrualScanResult) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	cutoff := startOfDay(now)

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		accounts, err := s.savingsRepo.ListAccountsForAccrual(ctx, cutoff, afterID, s.batchSize)
		if err != nil {
			return fmt.Errorf("failed to list accounts for accrual: %w", err)
		}
		if len(accounts) == 0 {
			return nil
		}
		for i := range accounts {
			account := &accounts[i]
			result.AccountsScanned++
			accrued, err := s.accrueInterest(ctx, account, now)
			if err != nil {
				logger.Error("Interest accrual failed, skipping account",
					slog.String("error", err.Error()),
					slog.String("account_id", account.AccountID))
				continue
			}
			if accrued {
				result.InterestEntries++
			}
		}
		afterID = accounts[len(accounts)-1].AccountID
	}
}

// accrueInterest appends one interest entry covering the days since the
// account's last accrual. The ledger store advances last_accrual_at under the
// same lock, which is what makes the scan idempotent and resumable.
func (s *accrualService) accrueInterest(ctx context.Context, account *domain.SavingsAccount, now time.Time) (bool, error) {
	product, err := s.productRepo.FindSavingsProductByID(ctx, account.ProductID)
	if err != nil {
		return false, fmt.Errorf("failed to find product %s: %w", account.ProductID, err)
	}

	since := account.LastAccrualAt
	if since.IsZero() {
		since = account.CreatedAt
	}
	days := wholeDays(since, now)
	if days <= 0 {
		return false, nil
	}

	interest := account.Balance.
		Mul(product.AnnualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(daysPerYear).
		Round(2)
	if interest.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		AccountID:   account.AccountID,
		AccountKind: domain.KindSavings,
		EntryType:   domain.EntryInterestAccrual,
		Amount:      interest,
		EntryDate:   now,
		Reference:   fmt.Sprintf("interest for %d day(s)", days),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		},
	}
	if _, err := s.ledgerRepo.AppendSavingsEntry(ctx, entry, decimal.Zero); err != nil {
		return false, fmt.Errorf("failed to append interest entry: %w", err)
	}
	return true, nil
}

// scanLoans walks loans past their due date: marks active ones overdue,
// charges the linear penalty for days not yet charged, and defaults loans
// overdue beyond the grace period.
func (s *accrualService) scanLoans(ctx context.Context, now time.Time, result *dto.AccrualScanResult) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		loans, err := s.loanRepo.ListLoansPastDue(ctx, now, afterID, s.batchSize)
		if err != nil {
			return fmt.Errorf("failed to list past-due loans: %w", err)
		}
		if len(loans) == 0 {
			return nil
		}
		for i := range loans {
			loan := &loans[i]
			result.LoansScanned++
			if err := s.processOverdueLoan(ctx, loan, now, result); err != nil {
				logger.Error("Overdue processing failed, skipping loan",
					slog.String("error", err.Error()),
					slog.String("loan_id", loan.LoanID))
			}
		}
		afterID = loans[len(loans)-1].LoanID
	}
}

func (s *accrualService) processOverdueLoan(ctx context.Context, loan *domain.LoanAccount, now time.Time, result *dto.AccrualScanResult) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.productRepo.FindLoanProductByID(ctx, loan.ProductID)
	if err != nil {
		return fmt.Errorf("failed to find product %s: %w", loan.ProductID, err)
	}

	daysOverdue := loan.DaysOverdue(now)
	if daysOverdue <= 0 {
		return nil
	}

	if loan.Status == domain.LoanActive {
		overdue := domain.LoanOverdue
		err := s.loanRepo.UpdateLoanState(ctx, loan.LoanID, domain.LoanActive,
			portsrepo.LoanStateUpdate{Status: &overdue}, "system", now)
		if err != nil {
			return fmt.Errorf("failed to mark loan overdue: %w", err)
		}
		loan.Status = domain.LoanOverdue
		result.MarkedOverdue++
		if perr := s.publisher.Publish(ctx, events.LoanEventsStream, events.PaymentOverdue, events.PaymentOverdueEvent{
			LoanID:      loan.LoanID,
			MemberID:    loan.MemberID,
			DaysOverdue: daysOverdue,
		}); perr != nil {
			logger.Warn("Failed to publish overdue event", slog.String("error", perr.Error()))
		}
	}

	graceDays := product.GraceDays
	if graceDays <= 0 {
		graceDays = s.defaultGraceDays
	}
	if daysOverdue > graceDays {
		defaulted := domain.LoanDefaulted
		err := s.loanRepo.UpdateLoanState(ctx, loan.LoanID, domain.LoanOverdue,
			portsrepo.LoanStateUpdate{Status: &defaulted}, "system", now)
		if err != nil {
			return fmt.Errorf("failed to mark loan defaulted: %w", err)
		}
		result.MarkedDefaulted++
		if perr := s.publisher.Publish(ctx, events.LoanEventsStream, events.LoanDefaulted, events.PaymentOverdueEvent{
			LoanID:      loan.LoanID,
			MemberID:    loan.MemberID,
			DaysOverdue: daysOverdue,
		}); perr != nil {
			logger.Warn("Failed to publish default event", slog.String("error", perr.Error()))
		}
		return nil
	}

	return s.chargePenalty(ctx, loan, product, daysOverdue, now, result)
}

// chargePenalty appends the linear penalty, penaltyRate * monthlyPayment per
// overdue day, for days not yet charged. LastPenaltyDate records how far the
// penalty has been charged; a same-day rerun finds zero chargeable days.
func (s *accrualService) chargePenalty(ctx context.Context, loan *domain.LoanAccount, product *domain.LoanProduct, daysOverdue int, now time.Time, result *dto.AccrualScanResult) error {
	chargedDays := 0
	if loan.LastPenaltyDate != nil {
		chargedDays = wholeDays(loan.NextPaymentDue, *loan.LastPenaltyDate)
	}
	chargeableDays := daysOverdue - chargedDays
	if chargeableDays <= 0 {
		return nil
	}

	penalty := product.PenaltyRate.
		Mul(loan.MonthlyPayment).
		Mul(decimal.NewFromInt(int64(chargeableDays))).
		Round(2)
	if penalty.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		AccountID:   loan.LoanID,
		AccountKind: domain.KindLoan,
		EntryType:   domain.EntryPenaltyAccrual,
		Amount:      penalty,
		EntryDate:   now,
		Reference:   fmt.Sprintf("penalty for %d overdue day(s)", chargeableDays),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		},
	}
	penaltyDate := now
	update := portsrepo.LoanStateUpdate{LastPenaltyDate: &penaltyDate}

	if _, err := s.ledgerRepo.AppendLoanEntry(ctx, entry, loan.Status, update); err != nil {
		return fmt.Errorf("failed to append penalty entry: %w", err)
	}
	result.PenaltyEntries++
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// wholeDays returns the count of full 24h periods from a to b, never negative.
func wholeDays(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
