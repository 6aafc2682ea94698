package risk

import (
	"math"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

// Risk level thresholds on the overall score.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// Score runs the rule table over the clauses and aggregates the triggered
// flags into the four scores. Legal and financial points accumulate per
// category; poverty vulnerability accumulates round(points*0.8) from every
// flag regardless of category, since both legal and financial pressure hit
// vulnerable borrowers. Each of the three sums is capped at 100 before the
// overall average is taken.
func Score(clauses contract.ExtractedClauses, agreementType string) contract.RiskScores {
	flags := DetectFlags(clauses, agreementType)

	legal := 0
	financial := 0
	poverty := 0

	for _, f := range flags {
		switch f.Category {
		case CategoryLegal:
			legal += f.Points
		case CategoryFinancial:
			financial += f.Points
		}
		poverty += int(math.Round(float64(f.Points) * 0.8))
	}

	legal = min(legal, 100)
	financial = min(financial, 100)
	poverty = min(poverty, 100)

	overall := int(math.Round(float64(legal+financial+poverty) / 3))

	return contract.RiskScores{
		LegalRiskScore:            legal,
		FinancialBurdenScore:      financial,
		PovertyVulnerabilityScore: poverty,
		OverallRiskScore:          overall,
		RiskLevel:                 levelFor(overall),
	}
}

// levelFor buckets the overall score into a categorical risk level.
func levelFor(overall int) string {
	switch {
	case overall <= 30:
		return LevelLow
	case overall <= 60:
		return LevelMedium
	default:
		return LevelHigh
	}
}
