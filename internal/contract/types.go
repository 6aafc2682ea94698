// Package contract holds the shared data model for agreement analysis:
// extracted clauses, risk scores, debate transcripts and persisted records.
// Types here are plain values with no behavior.
package contract

import "time"

// Sentinel values the extraction step uses for absent clause fields.
const (
	NotSpecified  = "Not specified"
	NotApplicable = "Not applicable"
)

// ExtractedClauses maps the named clause fields of a financial agreement to
// free-text values. Fields the extraction could not find carry one of the
// sentinel strings above or are empty.
type ExtractedClauses struct {
	InterestRate           string `json:"interest_rate"`
	LateFee                string `json:"late_fee"`
	EarlySettlementPenalty string `json:"early_settlement_penalty"`
	LiabilityType          string `json:"liability_type"`
	RepossessionClause     string `json:"repossession_clause"`
	LoanAmount             string `json:"loan_amount,omitempty"`
	LoanTenure             string `json:"loan_tenure,omitempty"`
	InterestModel          string `json:"interest_model,omitempty"`
	CompoundingFrequency   string `json:"compounding_frequency,omitempty"`
	GuarantorLiability     string `json:"guarantor_liability,omitempty"`
	InsuranceRequirement   string `json:"insurance_requirement,omitempty"`
	BalloonPayment         string `json:"balloon_payment,omitempty"`
}

// NarrativeSimulation describes escalating default scenarios in narrative form.
type NarrativeSimulation struct {
	OneMissedPayment    string `json:"one_missed_payment"`
	ThreeMissedPayments string `json:"three_missed_payments"`
	FullDefault         string `json:"full_default"`
}

// RiskScores is the output of the deterministic risk engine. All four scores
// are integers in [0,100]; RiskLevel is derived from OverallRiskScore alone.
type RiskScores struct {
	LegalRiskScore            int    `json:"legal_risk_score"`
	FinancialBurdenScore      int    `json:"financial_burden_score"`
	PovertyVulnerabilityScore int    `json:"poverty_vulnerability_score"`
	OverallRiskScore          int    `json:"overall_risk_score"`
	RiskLevel                 string `json:"risk_level"`
}

// Debate speaker identities.
const (
	SpeakerDefender  = "defender"
	SpeakerProtector = "protector"
)

// DebateTurn is one utterance in the scripted defender/protector debate.
type DebateTurn struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// AnalysisResponse is the structured result of the LLM analysis call.
type AnalysisResponse struct {
	AgreementType        string              `json:"agreement_type"`
	ExtractedClauses     ExtractedClauses    `json:"extracted_clauses"`
	DefenderAnalysis     string              `json:"defender_analysis"`
	ProtectorAnalysis    string              `json:"protector_analysis"`
	NarrativeSimulation  NarrativeSimulation `json:"narrative_simulation"`
	DetectedRisks        []string            `json:"detected_risks"`
	PlainLanguageSummary string              `json:"plain_language_summary"`
	DebateTranscript     []DebateTurn        `json:"debate_transcript,omitempty"`
}

// AnalysisRecord is a persisted analysis: the LLM response plus the
// deterministic risk scores and request metadata.
type AnalysisRecord struct {
	ID                   string              `json:"id,omitempty"`
	AgreementType        string              `json:"agreement_type"`
	ExtractedClauses     ExtractedClauses    `json:"extracted_clauses"`
	DefenderAnalysis     string              `json:"defender_analysis"`
	ProtectorAnalysis    string              `json:"protector_analysis"`
	NarrativeSimulation  NarrativeSimulation `json:"narrative_simulation"`
	DetectedRisks        []string            `json:"detected_risks"`
	PlainLanguageSummary string              `json:"plain_language_summary"`
	RiskScores           RiskScores          `json:"risk_scores"`
	DebateTranscript     []DebateTurn        `json:"debate_transcript,omitempty"`
	UserDecision         string              `json:"user_decision,omitempty"`
	InputMethod          string              `json:"input_method"` // "text" or "pdf"
	Timestamp            time.Time           `json:"timestamp"`
}

// DebateTimingSegment locates one turn inside the merged audio track as a
// half-open millisecond interval.
type DebateTimingSegment struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"`
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
}

// DebateAudio is the merged debate track plus per-turn timing data.
type DebateAudio struct {
	AudioURL    string                `json:"audioUrl"`
	AudioBase64 string                `json:"audioBase64"` // data:audio/wav;base64,...
	WAVBytes    []byte                `json:"-"`
	Timings     []DebateTimingSegment `json:"timings"`
	DurationMs  int                   `json:"durationMs"`
}

// ChatMessage is one message of a follow-up conversation about an agreement.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AgreementContext carries a completed analysis into the chat prompt.
type AgreementContext struct {
	AgreementType        string              `json:"agreement_type"`
	ExtractedClauses     ExtractedClauses    `json:"extracted_clauses"`
	PlainLanguageSummary string              `json:"plain_language_summary"`
	DetectedRisks        []string            `json:"detected_risks"`
	DefenderAnalysis     string              `json:"defender_analysis"`
	ProtectorAnalysis    string              `json:"protector_analysis"`
	NarrativeSimulation  NarrativeSimulation `json:"narrative_simulation"`
	RiskScores           RiskScores          `json:"risk_scores"`
}

// ChatRequest is a single chat exchange: the new user message plus prior
// conversation and the agreement being discussed.
type ChatRequest struct {
	UserMessage         string           `json:"user_message"`
	ConversationHistory []ChatMessage    `json:"conversation_history"`
	AgreementContext    AgreementContext `json:"agreement_context"`
}
