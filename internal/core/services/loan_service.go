package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

var (
	ErrTooFewGuarantors     = errors.New("application has fewer guarantors than the product requires")
	ErrNotApproved          = errors.New("application is not approved")
	ErrNotDefaulted         = errors.New("only defaulted loans can be restructured")
	ErrAlreadyDisbursed     = errors.New("application already has a disbursed loan")
	ErrMemberNotTransacting = errors.New("member cannot transact")
)

// loanService governs the loan lifecycle: application submission with frozen
// risk figures, disbursement of approved applications and restructuring of
// defaulted loans.
type loanService struct {
	memberRepo      portsrepo.MemberRepositoryFacade
	productRepo     portsrepo.ProductRepositoryFacade
	loanRepo        portsrepo.LoanRepositoryFacade
	applicationRepo portsrepo.ApplicationRepositoryFacade
	scorer          RiskScorer
	publisher       *events.Publisher
}

// NewLoanService creates the loan lifecycle service. The scorer is the
// pluggable risk function; pass NewWeightedRiskScorer() for the default.
func NewLoanService(
	repos portsrepo.Repositories,
	scorer RiskScorer,
	publisher *events.Publisher,
) portssvc.LoanSvcFacade {
	return &loanService{
		memberRepo:      repos.Member,
		productRepo:     repos.Product,
		loanRepo:        repos.Loan,
		applicationRepo: repos.Application,
		scorer:          scorer,
		publisher:       publisher,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// SubmitApplication validates product rules and records the application with
// its risk score and debt-to-income ratio frozen at submission time.
func (s *loanService) SubmitApplication(ctx context.Context, req dto.SubmitApplicationRequest, actorID string) (*domain.LoanApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member %s: %w", req.MemberID, err)
	}
	if !member.CanTransact() {
		return nil, fmt.Errorf("%w: member %s is %s", ErrMemberNotTransacting, member.MemberID, member.Status)
	}

	product, err := s.productRepo.FindLoanProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan product %s", apperrors.ErrInvalidProduct, req.ProductID)
		}
		return nil, fmt.Errorf("failed to find loan product %s: %w", req.ProductID, err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s is inactive", apperrors.ErrInvalidProduct, product.ProductID)
	}
	if !product.AllowsAmount(req.Amount) {
		return nil, fmt.Errorf("%w: amount %s outside [%s, %s]",
			apperrors.ErrInvalidProduct, req.Amount.String(), product.MinAmount.String(), product.MaxAmount.String())
	}
	if !product.AllowsTerm(req.TermMonths) {
		return nil, fmt.Errorf("%w: term %d outside [%d, %d] months",
			apperrors.ErrInvalidProduct, req.TermMonths, product.MinTermMonths, product.MaxTermMonths)
	}
	if len(req.Guarantors) < product.MinGuarantors {
		return nil, fmt.Errorf("%w: %d provided, %d required", ErrTooFewGuarantors, len(req.Guarantors), product.MinGuarantors)
	}

	existingDebt, err := s.existingDebt(ctx, member.MemberID)
	if err != nil {
		return nil, err
	}

	guarantors := make([]domain.Guarantor, len(req.Guarantors))
	for i, g := range req.Guarantors {
		guarantors[i] = domain.Guarantor{
			Name:          g.Name,
			Relationship:  g.Relationship,
			Phone:         g.Phone,
			Address:       g.Address,
			Occupation:    g.Occupation,
			MonthlyIncome: g.MonthlyIncome,
		}
	}

	// Scored once, here. Reviewers later see exactly these figures.
	riskScore, dti := s.scorer.Score(ScoringInput{
		DeclaredMonthlyIncome: member.DeclaredMonthlyIncome,
		RequestedAmount:       req.Amount,
		TermMonths:            req.TermMonths,
		GuarantorCount:        len(guarantors),
		ExistingDebt:          existingDebt,
	})

	now := time.Now().UTC()
	application := domain.LoanApplication{
		ApplicationID:   uuid.NewString(),
		MemberID:        member.MemberID,
		ProductID:       product.ProductID,
		RequestedAmount: req.Amount,
		TermMonths:      req.TermMonths,
		Purpose:         req.Purpose,
		Guarantors:      guarantors,
		RiskScore:       riskScore,
		DebtToIncome:    dti,
		Status:          domain.ApplicationPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.applicationRepo.SaveApplication(ctx, application); err != nil {
		logger.Error("Failed to save loan application", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	logger.Info("Loan application submitted",
		slog.String("application_id", application.ApplicationID),
		slog.String("member_id", member.MemberID),
		slog.String("risk_score", riskScore.String()))
	return &application, nil
}

// existingDebt sums the outstanding balances of the member's open loans.
func (s *loanService) existingDebt(ctx context.Context, memberID string) (decimal.Decimal, error) {
	loans, err := s.loanRepo.FindLoanAccountsByMemberID(ctx, memberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list loans for member %s: %w", memberID, err)
	}
	debt := decimal.Zero
	for i := range loans {
		switch loans[i].Status {
		case domain.LoanActive, domain.LoanOverdue, domain.LoanDefaulted:
			debt = debt.Add(loans[i].OutstandingBalance)
		}
	}
	return debt, nil
}

func (s *loanService) GetApplication(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return s.applicationRepo.FindApplicationByID(ctx, applicationID)
}

func (s *loanService) ListApplications(ctx context.Context, status domain.ApplicationStatus, limit int, offset int) ([]domain.LoanApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.applicationRepo.ListApplicationsByStatus(ctx, status, limit, offset)
}

// BeginReview moves a pending application under review. Conditional on the
// current status, so a decided application cannot be reopened.
func (s *loanService) BeginReview(ctx context.Context, applicationID string, actorID string) (*domain.LoanApplication, error) {
	return s.applicationRepo.MarkUnderReview(ctx, applicationID, actorID, time.Now().UTC())
}

// Disburse turns an approved application into a loan account plus its
// disbursement ledger entry, atomically. A second disbursement of the same
// application fails on the application's unique loan constraint.
func (s *loanService) Disburse(ctx context.Context, applicationID string, actorID string) (*domain.LoanAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	application, err := s.applicationRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application %s: %w", applicationID, err)
	}
	if application.Status != domain.ApplicationApproved {
		return nil, fmt.Errorf("%w: application %s is %s", ErrNotApproved, applicationID, application.Status)
	}

	product, err := s.productRepo.FindLoanProductByID(ctx, application.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan product %s: %w", application.ProductID, err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	loan := domain.LoanAccount{
		LoanID:             uuid.NewString(),
		MemberID:           application.MemberID,
		ProductID:          product.ProductID,
		ApplicationID:      application.ApplicationID,
		Principal:          application.RequestedAmount,
		OutstandingBalance: application.RequestedAmount,
		MonthlyPayment:     monthlyPaymentFor(application.RequestedAmount, product.AnnualRate, application.TermMonths),
		TermMonths:         application.TermMonths,
		NextPaymentDue:     now.AddDate(0, 1, 0),
		Status:             domain.LoanActive,
		AuditFields:        audit,
	}

	disbursement := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		AccountID:        loan.LoanID,
		AccountKind:      domain.KindLoan,
		Sequence:         1,
		EntryType:        domain.EntryDisbursement,
		Amount:           loan.Principal,
		EntryDate:        now,
		Reference:        fmt.Sprintf("disbursement of application %s", application.ApplicationID),
		ResultingBalance: loan.Principal,
		AuditFields:      audit,
	}

	if err := s.loanRepo.SaveLoanAccount(ctx, loan, disbursement); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: application %s", ErrAlreadyDisbursed, applicationID)
		}
		logger.Error("Failed to save loan account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to disburse application %s: %w", applicationID, err)
	}

	if perr := s.publisher.Publish(ctx, events.LoanEventsStream, events.LoanDisbursed, dto.ToLoanAccountResponse(&loan, now)); perr != nil {
		logger.Warn("Failed to publish disbursement event", slog.String("error", perr.Error()))
	}

	logger.Info("Loan disbursed",
		slog.String("loan_id", loan.LoanID),
		slog.String("application_id", applicationID),
		slog.String("principal", loan.Principal.String()))
	return &loan, nil
}

// Restructure spawns a new active loan carrying the defaulted loan's
// outstanding balance as principal. The old loan moves to its terminal
// restructured state in the same transaction; its ledger history stays.
func (s *loanService) Restructure(ctx context.Context, loanID string, actorID string) (*domain.LoanAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	old, err := s.loanRepo.FindLoanAccountByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if old.Status != domain.LoanDefaulted {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrNotDefaulted, loanID, old.Status)
	}

	product, err := s.productRepo.FindLoanProductByID(ctx, old.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan product %s: %w", old.ProductID, err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	oldID := old.LoanID
	loan := domain.LoanAccount{
		LoanID:             uuid.NewString(),
		MemberID:           old.MemberID,
		ProductID:          old.ProductID,
		ApplicationID:      old.ApplicationID,
		Principal:          old.OutstandingBalance,
		OutstandingBalance: old.OutstandingBalance,
		MonthlyPayment:     monthlyPaymentFor(old.OutstandingBalance, product.AnnualRate, old.TermMonths),
		TermMonths:         old.TermMonths,
		NextPaymentDue:     now.AddDate(0, 1, 0),
		Status:             domain.LoanActive,
		RestructuredFrom:   &oldID,
		AuditFields:        audit,
	}

	entry := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		AccountID:        loan.LoanID,
		AccountKind:      domain.KindLoan,
		Sequence:         1,
		EntryType:        domain.EntryDisbursement,
		Amount:           loan.Principal,
		EntryDate:        now,
		Reference:        fmt.Sprintf("restructure of loan %s", oldID),
		ResultingBalance: loan.Principal,
		AuditFields:      audit,
	}

	if err := s.loanRepo.SaveLoanAccount(ctx, loan, entry); err != nil {
		logger.Error("Failed to restructure loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to restructure loan %s: %w", loanID, err)
	}

	logger.Info("Loan restructured",
		slog.String("old_loan_id", oldID),
		slog.String("new_loan_id", loan.LoanID))
	return &loan, nil
}

// monthlyPaymentFor computes the standard annuity payment, falling back to a
// flat split for zero-rate products.
func monthlyPaymentFor(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	term := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRate.Div(decimal.NewFromInt(12))
	if monthlyRate.IsZero() {
		return principal.Div(term).Round(2)
	}
	one := decimal.NewFromInt(1)
	factor := one.Add(monthlyRate).Pow(term) // (1+r)^n
	payment := principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one))
	return payment.Round(2)
}
