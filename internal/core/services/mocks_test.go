package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
)

// --- Mock MemberRepository ---
type MockMemberRepository struct {
	mock.Mock
}

var _ portsrepo.MemberRepositoryFacade = (*MockMemberRepository)(nil)

func (m *MockMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepository) UpdateMember(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// --- Mock ProductRepository ---
type MockProductRepository struct {
	mock.Mock
}

var _ portsrepo.ProductRepositoryFacade = (*MockProductRepository)(nil)

func (m *MockProductRepository) SaveSavingsProduct(ctx context.Context, product domain.SavingsProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindSavingsProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsProduct), args.Error(1)
}

func (m *MockProductRepository) ListSavingsProducts(ctx context.Context) ([]domain.SavingsProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavingsProduct), args.Error(1)
}

func (m *MockProductRepository) SaveLoanProduct(ctx context.Context, product domain.LoanProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindLoanProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanProduct), args.Error(1)
}

func (m *MockProductRepository) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanProduct), args.Error(1)
}

// --- Mock SavingsRepository ---
type MockSavingsRepository struct {
	mock.Mock
}

var _ portsrepo.SavingsRepositoryFacade = (*MockSavingsRepository)(nil)

func (m *MockSavingsRepository) SaveSavingsAccount(ctx context.Context, account domain.SavingsAccount, initialDeposit *domain.LedgerEntry) error {
	args := m.Called(ctx, account, initialDeposit)
	return args.Error(0)
}

func (m *MockSavingsRepository) FindSavingsAccountByID(ctx context.Context, accountID string) (*domain.SavingsAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsAccount), args.Error(1)
}

func (m *MockSavingsRepository) FindSavingsAccountsByMemberID(ctx context.Context, memberID string) ([]domain.SavingsAccount, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavingsAccount), args.Error(1)
}

func (m *MockSavingsRepository) ListAccountsForAccrual(ctx context.Context, before time.Time, afterAccountID string, limit int) ([]domain.SavingsAccount, error) {
	args := m.Called(ctx, before, afterAccountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavingsAccount), args.Error(1)
}

func (m *MockSavingsRepository) UpdateSavingsStatus(ctx context.Context, accountID string, status domain.SavingsStatus, updatedBy string, at time.Time) error {
	args := m.Called(ctx, accountID, status, updatedBy, at)
	return args.Error(0)
}

// --- Mock LoanRepository ---
type MockLoanRepository struct {
	mock.Mock
}

var _ portsrepo.LoanRepositoryFacade = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) SaveLoanAccount(ctx context.Context, loan domain.LoanAccount, disbursement domain.LedgerEntry) error {
	args := m.Called(ctx, loan, disbursement)
	return args.Error(0)
}

func (m *MockLoanRepository) FindLoanAccountByID(ctx context.Context, loanID string) (*domain.LoanAccount, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) FindLoanAccountsByMemberID(ctx context.Context, memberID string) ([]domain.LoanAccount, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) ListLoansPastDue(ctx context.Context, asOf time.Time, afterLoanID string, limit int) ([]domain.LoanAccount, error) {
	args := m.Called(ctx, asOf, afterLoanID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanState(ctx context.Context, loanID string, expected domain.LoanStatus, update portsrepo.LoanStateUpdate, updatedBy string, at time.Time) error {
	args := m.Called(ctx, loanID, expected, update, updatedBy, at)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) AppendSavingsEntry(ctx context.Context, entry domain.LedgerEntry, minBalance decimal.Decimal) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entry, minBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) AppendLoanEntry(ctx context.Context, entry domain.LedgerEntry, expected domain.LoanStatus, update portsrepo.LoanStateUpdate) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entry, expected, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) AppendRepayment(ctx context.Context, loanEntry domain.LedgerEntry, expected domain.LoanStatus, update portsrepo.LoanStateUpdate, savingsEntries []domain.LedgerEntry) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, loanEntry, expected, update, savingsEntries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) EntriesForAccount(ctx context.Context, accountID string, params portsrepo.StatementParams) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var nextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		nextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), nextToken, args.Error(2)
}

func (m *MockLedgerRepository) ReplayEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) LatestEntry(ctx context.Context, accountID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

// --- Mock ApplicationRepository ---
type MockApplicationRepository struct {
	mock.Mock
}

var _ portsrepo.ApplicationRepositoryFacade = (*MockApplicationRepository)(nil)

func (m *MockApplicationRepository) SaveApplication(ctx context.Context, application domain.LoanApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *MockApplicationRepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus, limit int, offset int) ([]domain.LoanApplication, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) MarkUnderReview(ctx context.Context, applicationID string, actorID string, at time.Time) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID, actorID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) DecideApplication(ctx context.Context, applicationID string, record portsrepo.DecisionRecord) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

// --- Mock WithdrawalRepository ---
type MockWithdrawalRepository struct {
	mock.Mock
}

var _ portsrepo.WithdrawalRepositoryFacade = (*MockWithdrawalRepository)(nil)

func (m *MockWithdrawalRepository) SaveWithdrawalRequest(ctx context.Context, request domain.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListWithdrawalRequestsByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int, offset int) ([]domain.WithdrawalRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) DecideWithdrawal(ctx context.Context, requestID string, record portsrepo.DecisionRecord, entry *domain.LedgerEntry, minBalance decimal.Decimal) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID, record, entry, minBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

// testRepositories bundles fresh mocks into the container the service
// constructors take.
func testRepositories(
	member *MockMemberRepository,
	product *MockProductRepository,
	savings *MockSavingsRepository,
	loan *MockLoanRepository,
	ledger *MockLedgerRepository,
	application *MockApplicationRepository,
	withdrawal *MockWithdrawalRepository,
) portsrepo.Repositories {
	return portsrepo.Repositories{
		Member:      member,
		Product:     product,
		Savings:     savings,
		Loan:        loan,
		Ledger:      ledger,
		Application: application,
		Withdrawal:  withdrawal,
	}
}
