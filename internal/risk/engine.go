// Package risk converts extracted contract clauses into numeric risk scores
// using a fixed rule table. Everything here is deterministic string and
// number matching; the LLM is never involved.
package risk

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

// Flag severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Flag categories.
const (
	CategoryLegal     = "legal"
	CategoryFinancial = "financial"
)

// Flag is one triggered risk rule. Flags are transient: they exist only
// while scores are being computed and are never persisted.
type Flag struct {
	Rule     string
	Severity string
	Points   int
	Category string
}

var percentPattern = regexp.MustCompile(`([\d.]+)\s*%`)

// parsePercent extracts the first numeric token preceding a '%' from a
// clause value. A missing or unparsable percentage returns ok=false and
// never an error; the caller treats that as "rule not triggered".
func parsePercent(value string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// DetectFlags evaluates the rule table against the clauses. The agreement
// type is matched by case-insensitive substring against each rule bucket;
// a type string matching several buckets triggers the union of their rules.
// Classification is advisory, not exclusive.
func DetectFlags(clauses contract.ExtractedClauses, agreementType string) []Flag {
	var flags []Flag
	typ := strings.ToLower(agreementType)

	// Personal loan rules
	if strings.Contains(typ, "personal") || strings.Contains(typ, "loan") {
		if rate, ok := parsePercent(clauses.InterestRate); ok && rate > 15 {
			flags = append(flags, Flag{
				Rule:     "Interest rate > 15%",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryFinancial,
			})
		}

		if strings.Contains(strings.ToLower(clauses.InterestModel), "flat") {
			flags = append(flags, Flag{
				Rule:     "Flat interest model",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryFinancial,
			})
		}

		if fee, ok := parsePercent(clauses.LateFee); ok && fee > 5 {
			flags = append(flags, Flag{
				Rule:     "Late fee > 5% of installment",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryLegal,
			})
		}

		if penalty, ok := parsePercent(clauses.EarlySettlementPenalty); ok && penalty > 3 {
			flags = append(flags, Flag{
				Rule:     "Early settlement penalty > 3%",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryFinancial,
			})
		}

		if strings.Contains(strings.ToLower(clauses.CompoundingFrequency), "month") {
			flags = append(flags, Flag{
				Rule:     "Monthly compounding interest",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryFinancial,
			})
		}
	}

	// Guarantor rules
	if strings.Contains(typ, "guarantor") {
		liability := strings.ToLower(clauses.LiabilityType)

		if strings.Contains(liability, "joint") && strings.Contains(liability, "several") {
			flags = append(flags, Flag{
				Rule:     "Joint & Several Liability",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryLegal,
			})
		}

		if strings.Contains(liability, "unlimited") {
			flags = append(flags, Flag{
				Rule:     "Unlimited liability",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryLegal,
			})
		}

		guarantor := strings.ToLower(clauses.GuarantorLiability)
		if !strings.Contains(guarantor, "release") && !strings.Contains(liability, "release") {
			flags = append(flags, Flag{
				Rule:     "No release clause",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryLegal,
			})
		}

		if strings.Contains(guarantor, "direct") ||
			strings.Contains(guarantor, "recovery") ||
			strings.Contains(liability, "direct recovery") {
			flags = append(flags, Flag{
				Rule:     "Direct legal recovery clause",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryLegal,
			})
		}
	}

	// Hire purchase rules
	if strings.Contains(typ, "hire") || strings.Contains(typ, "purchase") {
		repo := strings.ToLower(clauses.RepossessionClause)
		if strings.Contains(repo, "immediate") {
			flags = append(flags, Flag{
				Rule:     "Immediate repossession clause",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryLegal,
			})
		}

		if rate, ok := parsePercent(clauses.InterestRate); ok && rate > 12 {
			flags = append(flags, Flag{
				Rule:     "Hire purchase interest > 12%",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryFinancial,
			})
		}

		balloon := strings.ToLower(clauses.BalloonPayment)
		if balloon != "" &&
			!strings.Contains(balloon, "not applicable") &&
			!strings.Contains(balloon, "none") {
			flags = append(flags, Flag{
				Rule:     "Balloon payment clause",
				Severity: SeverityHigh,
				Points:   25,
				Category: CategoryFinancial,
			})
		}

		insurance := strings.ToLower(clauses.InsuranceRequirement)
		if strings.Contains(insurance, "mandatory") || strings.Contains(insurance, "required") {
			flags = append(flags, Flag{
				Rule:     "Mandatory expensive insurance",
				Severity: SeverityMedium,
				Points:   15,
				Category: CategoryFinancial,
			})
		}
	}

	return flags
}
