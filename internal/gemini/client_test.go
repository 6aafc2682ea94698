package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

const validAnalysisJSON = `{
  "agreement_type": "Personal Loan",
  "extracted_clauses": {"interest_rate": "18% per annum", "late_fee": "8%"},
  "defender_analysis": "Lender view.",
  "protector_analysis": "Borrower view.",
  "narrative_simulation": {
    "one_missed_payment": "A late fee applies.",
    "three_missed_payments": "Collection calls begin.",
    "full_default": "Legal action follows."
  },
  "detected_risks": ["High interest rate"],
  "plain_language_summary": "A costly loan.",
  "debate_transcript": [
    {"speaker": "protector", "message": "The 18% rate is steep."},
    {"speaker": "defender", "message": "It reflects unsecured risk."}
  ]
}`

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1}  `))
}

func TestParseAnalysis(t *testing.T) {
	result, err := parseAnalysis(validAnalysisJSON)
	require.NoError(t, err)

	assert.Equal(t, "Personal Loan", result.AgreementType)
	assert.Equal(t, "18% per annum", result.ExtractedClauses.InterestRate)
	assert.Equal(t, "A late fee applies.", result.NarrativeSimulation.OneMissedPayment)
	require.Len(t, result.DebateTranscript, 2)
	assert.Equal(t, contract.SpeakerProtector, result.DebateTranscript[0].Speaker)
}

func TestParseAnalysis_Fenced(t *testing.T) {
	result, err := parseAnalysis("```json\n" + validAnalysisJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Personal Loan", result.AgreementType)
}

func TestParseAnalysis_MissingRequiredFields(t *testing.T) {
	_, err := parseAnalysis(`{"agreement_type": "Personal Loan"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestParseAnalysis_InvalidJSON(t *testing.T) {
	_, err := parseAnalysis("I could not analyze this contract.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestParseAnalysis_NonArrayTranscriptDropped(t *testing.T) {
	bad := strings.Replace(validAnalysisJSON,
		`"debate_transcript": [
    {"speaker": "protector", "message": "The 18% rate is steep."},
    {"speaker": "defender", "message": "It reflects unsecured risk."}
  ]`,
		`"debate_transcript": "not an array"`, 1)

	result, err := parseAnalysis(bad)
	require.NoError(t, err)
	assert.Nil(t, result.DebateTranscript)
}

func newGenerateServer(t *testing.T, reply string, capture *generateRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": reply}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
}

func TestAnalyze(t *testing.T) {
	var captured generateRequest
	srv := newGenerateServer(t, validAnalysisJSON, &captured)
	defer srv.Close()

	c := NewClient(srv.URL, "key", "gemini-2.0-flash-001")
	result, err := c.Analyze(context.Background(), "LOAN AGREEMENT ...", "Personal Loan")
	require.NoError(t, err)

	assert.Equal(t, "Personal Loan", result.AgreementType)
	require.Len(t, captured.Contents, 1)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "LOAN AGREEMENT")
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "AGREEMENT TYPE HINT: Personal Loan")
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
}

func TestChat_CapsHistory(t *testing.T) {
	var captured generateRequest
	srv := newGenerateServer(t, "The late fee is 8% of the installment.", &captured)
	defer srv.Close()

	history := make([]contract.ChatMessage, 0, 15)
	for i := 0; i < 15; i++ {
		history = append(history, contract.ChatMessage{Role: "user", Content: "q"})
	}

	c := NewClient(srv.URL, "key", "gemini-2.0-flash-001")
	reply, err := c.Chat(context.Background(), contract.ChatRequest{
		UserMessage:         "What is the late fee?",
		ConversationHistory: history,
		AgreementContext:    contract.AgreementContext{AgreementType: "Personal Loan"},
	})
	require.NoError(t, err)

	assert.Equal(t, "The late fee is 8% of the installment.", reply)
	// 10 history messages + the current one
	assert.Len(t, captured.Contents, 11)
	require.NotNil(t, captured.SystemInstruction)
	assert.Contains(t, captured.SystemInstruction.Parts[0].Text, "Agreement Type: Personal Loan")
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "gemini-2.0-flash-001")
	_, err := c.Analyze(context.Background(), "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
