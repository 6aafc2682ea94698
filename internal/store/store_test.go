package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord() contract.AnalysisRecord {
	return contract.AnalysisRecord{
		AgreementType: "Personal Loan",
		ExtractedClauses: contract.ExtractedClauses{
			InterestRate: "18% per annum",
			LateFee:      "8%",
		},
		PlainLanguageSummary: "A costly loan.",
		DetectedRisks:        []string{"High interest rate"},
		RiskScores: contract.RiskScores{
			LegalRiskScore:   25,
			OverallRiskScore: 57,
			RiskLevel:        "Medium",
		},
		InputMethod: "text",
	}
}

func TestSaveAnalysisAndHistory(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SaveAnalysis(sampleRecord())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.History(20)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "Personal Loan", records[0].AgreementType)
	assert.Equal(t, "18% per annum", records[0].ExtractedClauses.InterestRate)
	assert.Equal(t, 57, records[0].RiskScores.OverallRiskScore)
	assert.Empty(t, records[0].UserDecision)
}

func TestHistory_NewestFirstAndLimited(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		rec := sampleRecord()
		rec.Timestamp = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		_, err := s.SaveAnalysis(rec)
		require.NoError(t, err)
	}

	records, err := s.History(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
}

func TestLogDecision(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SaveAnalysis(sampleRecord())
	require.NoError(t, err)

	require.NoError(t, s.LogDecision(id, "declined", 57, ""))

	records, err := s.History(20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "declined", records[0].UserDecision)
}

func TestLogDecision_UnknownAnalysisIgnored(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.LogDecision("missing-id", "accepted", 10, ""))
	assert.NoError(t, s.LogDecision("", "accepted", 10, ""))
}

func TestAudioMeta_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SaveAnalysis(sampleRecord())
	require.NoError(t, err)

	// Nothing cached yet.
	meta, err := s.AudioMeta(id)
	require.NoError(t, err)
	assert.Nil(t, meta)

	timings := []contract.DebateTimingSegment{
		{Index: 0, Speaker: contract.SpeakerProtector, StartMs: 0, EndMs: 1200},
		{Index: 1, Speaker: contract.SpeakerDefender, StartMs: 1200, EndMs: 2500},
	}
	require.NoError(t, s.SetAudioMeta(id, "http://store/debate_audio/x.wav", timings, 2500))

	meta, err = s.AudioMeta(id)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "http://store/debate_audio/x.wav", meta.URL)
	assert.Equal(t, timings, meta.Timings)
	assert.Equal(t, 2500, meta.DurationMs)
}

func TestAudioMeta_UnknownAnalysis(t *testing.T) {
	s := newTestStore(t)
	meta, err := s.AudioMeta("missing-id")
	require.NoError(t, err)
	assert.Nil(t, meta)
}
