package services

import "github.com/shopspring/decimal"

// ScoringInput is everything the scorer sees, captured at submission time.
// The resulting figures are frozen on the application record and never
// recomputed against later account state.
type ScoringInput struct {
	DeclaredMonthlyIncome decimal.Decimal
	RequestedAmount       decimal.Decimal
	TermMonths            int
	GuarantorCount        int
	ExistingDebt          decimal.Decimal
}

// RiskScorer computes the risk score and debt-to-income ratio for a loan
// application. The exact weights are a product-configuration concern, so the
// scorer is injected into the loan service.
type RiskScorer interface {
	Score(input ScoringInput) (riskScore decimal.Decimal, debtToIncome decimal.Decimal)
}

// WeightedRiskScorer is the default scorer: a weighted function of declared
// income coverage, guarantor backing and existing debt load, producing a
// score in [0, 100] where higher means riskier.
type WeightedRiskScorer struct {
	// BaseScore is the starting score before adjustments.
	BaseScore decimal.Decimal
	// DTIWeight scales the debt-to-income contribution.
	DTIWeight decimal.Decimal
	// GuarantorRelief is subtracted per guarantor, up to GuarantorCap.
	GuarantorRelief decimal.Decimal
	GuarantorCap    int
	// DebtLoadWeight scales the existing-debt-to-income contribution.
	DebtLoadWeight decimal.Decimal
}

// NewWeightedRiskScorer returns a scorer with the default weights.
func NewWeightedRiskScorer() *WeightedRiskScorer {
	return &WeightedRiskScorer{
		BaseScore:       decimal.NewFromInt(20),
		DTIWeight:       decimal.NewFromFloat(0.8),
		GuarantorRelief: decimal.NewFromInt(5),
		GuarantorCap:    3,
		DebtLoadWeight:  decimal.NewFromFloat(0.2),
	}
}

var _ RiskScorer = (*WeightedRiskScorer)(nil)

var hundred = decimal.NewFromInt(100)

// Score implements RiskScorer.
func (s *WeightedRiskScorer) Score(input ScoringInput) (decimal.Decimal, decimal.Decimal) {
	if input.DeclaredMonthlyIncome.LessThanOrEqual(decimal.Zero) || input.TermMonths <= 0 {
		// No income declared: maximum risk, undefined DTI reported as 100.
		return hundred, hundred
	}

	// Debt-to-income: the requested amount's flat monthly share of the
	// declared income, as a percentage.
	monthlyShare := input.RequestedAmount.Div(decimal.NewFromInt(int64(input.TermMonths)))
	dti := monthlyShare.Div(input.DeclaredMonthlyIncome).Mul(hundred).Round(2)

	score := s.BaseScore.Add(dti.Mul(s.DTIWeight))

	// Existing debt load relative to annual income.
	annualIncome := input.DeclaredMonthlyIncome.Mul(decimal.NewFromInt(12))
	debtLoad := input.ExistingDebt.Div(annualIncome).Mul(hundred)
	score = score.Add(debtLoad.Mul(s.DebtLoadWeight))

	guarantors := input.GuarantorCount
	if guarantors > s.GuarantorCap {
		guarantors = s.GuarantorCap
	}
	score = score.Sub(s.GuarantorRelief.Mul(decimal.NewFromInt(int64(guarantors))))

	if score.LessThan(decimal.Zero) {
		score = decimal.Zero
	}
	if score.GreaterThan(hundred) {
		score = hundred
	}

	return score.Round(2), dti
}
