package repositories

// Repositories bundles every repository facade, so wiring code can pass one
// value around instead of seven.
type Repositories struct {
	Member      MemberRepositoryFacade
	Product     ProductRepositoryFacade
	Savings     SavingsRepositoryFacade
	Loan        LoanRepositoryFacade
	Ledger      LedgerRepositoryFacade
	Application ApplicationRepositoryFacade
	Withdrawal  WithdrawalRepositoryFacade
}
