package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

func TestScore_PersonalLoanWorkedExample(t *testing.T) {
	clauses := contract.ExtractedClauses{
		InterestRate:           "18%",
		InterestModel:          "flat rate",
		LateFee:                "8%",
		EarlySettlementPenalty: "5%",
		CompoundingFrequency:   "monthly",
	}

	scores := Score(clauses, "Personal Loan")

	// financial: 25+15+15+15, legal: 25,
	// poverty: 20+12+20+12+12 (round(points*0.8) per flag)
	assert.Equal(t, 25, scores.LegalRiskScore)
	assert.Equal(t, 70, scores.FinancialBurdenScore)
	assert.Equal(t, 76, scores.PovertyVulnerabilityScore)
	assert.Equal(t, 57, scores.OverallRiskScore)
	assert.Equal(t, LevelMedium, scores.RiskLevel)
}

func TestScore_GuarantorWorkedExample(t *testing.T) {
	clauses := contract.ExtractedClauses{
		LiabilityType:      "Joint and Several Liability, Unlimited",
		GuarantorLiability: "Guarantor remains liable until full repayment",
	}

	scores := Score(clauses, "Guarantor Agreement")

	assert.Equal(t, 65, scores.LegalRiskScore)
	assert.Equal(t, 0, scores.FinancialBurdenScore)
	assert.Equal(t, 52, scores.PovertyVulnerabilityScore)
	assert.Equal(t, 39, scores.OverallRiskScore)
	assert.Equal(t, LevelMedium, scores.RiskLevel)
}

func TestScore_ClampsAt100(t *testing.T) {
	// Match every bucket at once so the raw sums exceed the cap.
	clauses := contract.ExtractedClauses{
		InterestRate:           "18%",
		InterestModel:          "flat",
		LateFee:                "8%",
		EarlySettlementPenalty: "5%",
		CompoundingFrequency:   "monthly compounding",
		LiabilityType:          "joint and several, unlimited, direct recovery",
		GuarantorLiability:     "direct recovery from guarantor",
		RepossessionClause:     "immediate",
		BalloonPayment:         "RM 9,000",
		InsuranceRequirement:   "mandatory",
	}

	scores := Score(clauses, "Personal Loan / Guarantor / Hire Purchase")

	assert.LessOrEqual(t, scores.LegalRiskScore, 100)
	assert.LessOrEqual(t, scores.FinancialBurdenScore, 100)
	assert.LessOrEqual(t, scores.PovertyVulnerabilityScore, 100)
	assert.LessOrEqual(t, scores.OverallRiskScore, 100)
	assert.Equal(t, 100, scores.PovertyVulnerabilityScore)
	assert.Equal(t, LevelHigh, scores.RiskLevel)
}

func TestScore_NoFlags(t *testing.T) {
	scores := Score(contract.ExtractedClauses{}, "Personal Loan")

	assert.Zero(t, scores.LegalRiskScore)
	assert.Zero(t, scores.FinancialBurdenScore)
	assert.Zero(t, scores.PovertyVulnerabilityScore)
	assert.Zero(t, scores.OverallRiskScore)
	assert.Equal(t, LevelLow, scores.RiskLevel)
}

func TestScore_PovertyTracksAllFlags(t *testing.T) {
	clauses := contract.ExtractedClauses{
		InterestRate: "18%", // financial 25
		LateFee:      "8%",  // legal 25
	}

	scores := Score(clauses, "loan")

	// poverty accumulates from legal and financial flags alike
	want := int(math.Round(25*0.8)) + int(math.Round(25*0.8))
	assert.Equal(t, want, scores.PovertyVulnerabilityScore)
}

func TestScore_Determinism(t *testing.T) {
	clauses := contract.ExtractedClauses{
		InterestRate:  "18%",
		InterestModel: "flat",
	}
	first := Score(clauses, "Personal Loan")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(clauses, "Personal Loan"))
	}
}

func TestLevelFor_ThresholdsAreExact(t *testing.T) {
	assert.Equal(t, LevelLow, levelFor(0))
	assert.Equal(t, LevelLow, levelFor(30))
	assert.Equal(t, LevelMedium, levelFor(31))
	assert.Equal(t, LevelMedium, levelFor(60))
	assert.Equal(t, LevelHigh, levelFor(61))
	assert.Equal(t, LevelHigh, levelFor(100))
}
