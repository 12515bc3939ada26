package services

// Services bundles every service facade for wiring.
type Services struct {
	Member      MemberSvcFacade
	Product     ProductSvcFacade
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Ledger      LedgerSvcFacade
	Loan        LoanSvcFacade
	Approval    ApprovalSvcFacade
	Accrual     AccrualSvcFacade
}
