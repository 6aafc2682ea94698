// Package api exposes the analysis, history, decision, chat, and debate
// audio endpoints over JSON/HTTP.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/gemini"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/pdftext"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/risk"
)

// AnalysisStore is the persistence surface the handlers need.
type AnalysisStore interface {
	SaveAnalysis(rec contract.AnalysisRecord) (string, error)
	History(limit int) ([]contract.AnalysisRecord, error)
	LogDecision(analysisID, decision string, riskScore int, timestamp string) error
}

// AudioGenerator produces the merged debate track for an analysis.
type AudioGenerator interface {
	Generate(ctx context.Context, analysisID string, turns []contract.DebateTurn) (*contract.DebateAudio, error)
}

type API struct {
	analyzer   gemini.Analyzer
	store      AnalysisStore
	audio      AudioGenerator
	extractPDF func([]byte) (string, error)
	router     *mux.Router
}

func New(analyzer gemini.Analyzer, store AnalysisStore, audio AudioGenerator) *API {
	a := &API{
		analyzer:   analyzer,
		store:      store,
		audio:      audio,
		extractPDF: pdftext.ExtractText,
		router:     mux.NewRouter(),
	}
	a.routes()
	return a
}

func (a *API) Router() *mux.Router {
	return a.router
}

func (a *API) routes() {
	a.router.HandleFunc("/health", a.health).Methods("GET")
	a.router.HandleFunc("/analyze", a.analyze).Methods("POST")
	a.router.HandleFunc("/history", a.history).Methods("GET")
	a.router.HandleFunc("/decision", a.decision).Methods("POST")
	a.router.HandleFunc("/chat", a.chat).Methods("POST")
	a.router.HandleFunc("/debate-audio", a.debateAudio).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errMsg, detail string) {
	writeJSON(w, status, map[string]string{"error": errMsg, "message": detail})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	ContractText   string `json:"contract_text"`
	PDFBytesBase64 string `json:"pdf_bytes_base64"`
	AgreementType  string `json:"agreement_type"`
}

// analyzeData is the combined LLM analysis plus deterministic risk scores.
type analyzeData struct {
	contract.AnalysisResponse
	RiskScores contract.RiskScores `json:"risk_scores"`
}

func (a *API) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	text := req.ContractText
	inputMethod := "text"

	if req.PDFBytesBase64 != "" && text == "" {
		pdfBytes, err := base64.StdEncoding.DecodeString(req.PDFBytesBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid PDF payload", err.Error())
			return
		}
		text, err = a.extractPDF(pdfBytes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "PDF extraction failed", err.Error())
			return
		}
		inputMethod = "pdf"
	}

	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "No contract text provided", "")
		return
	}

	// Step 1: AI analysis. Step 2: deterministic, rule-based risk scoring.
	analysis, err := a.analyzer.Analyze(r.Context(), text, req.AgreementType)
	if err != nil {
		log.Printf("Analysis error: %v", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed", err.Error())
		return
	}

	scores := risk.Score(analysis.ExtractedClauses, analysis.AgreementType)

	id, err := a.store.SaveAnalysis(contract.AnalysisRecord{
		AgreementType:        analysis.AgreementType,
		ExtractedClauses:     analysis.ExtractedClauses,
		DefenderAnalysis:     analysis.DefenderAnalysis,
		ProtectorAnalysis:    analysis.ProtectorAnalysis,
		NarrativeSimulation:  analysis.NarrativeSimulation,
		DetectedRisks:        analysis.DetectedRisks,
		PlainLanguageSummary: analysis.PlainLanguageSummary,
		RiskScores:           scores,
		DebateTranscript:     analysis.DebateTranscript,
		InputMethod:          inputMethod,
		Timestamp:            time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Analysis save error: %v", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      id,
		"data":    analyzeData{AnalysisResponse: *analysis, RiskScores: scores},
	})
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 50 {
		limit = 50
	}

	records, err := a.store.History(limit)
	if err != nil {
		log.Printf("History fetch error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch history", err.Error())
		return
	}

	analyses := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		rec.ID = ""
		analyses = append(analyses, map[string]any{"id": id, "data": rec})
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "analyses": analyses})
}

type decisionRequest struct {
	AnalysisID string  `json:"analysis_id"`
	Decision   string  `json:"decision"`
	RiskScore  float64 `json:"risk_score"`
	Timestamp  string  `json:"timestamp"`
}

func (a *API) decision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Decision == "" {
		writeError(w, http.StatusBadRequest, "Missing decision field", "")
		return
	}

	if err := a.store.LogDecision(req.AnalysisID, req.Decision, int(req.RiskScore), req.Timestamp); err != nil {
		log.Printf("Log decision error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log decision", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) chat(w http.ResponseWriter, r *http.Request) {
	var req contract.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req.UserMessage = strings.TrimSpace(req.UserMessage)
	if req.UserMessage == "" {
		writeError(w, http.StatusBadRequest, "Missing user_message", "")
		return
	}
	if req.AgreementContext.AgreementType == "" {
		writeError(w, http.StatusBadRequest, "Missing agreement_context", "")
		return
	}

	reply, err := a.analyzer.Chat(r.Context(), req)
	if err != nil {
		log.Printf("Chat error: %v", err)
		writeError(w, http.StatusInternalServerError, "Chat failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reply": reply})
}

type debateAudioRequest struct {
	AnalysisID       string               `json:"analysis_id"`
	DebateTranscript []contract.DebateTurn `json:"debate_transcript"`
}

func (a *API) debateAudio(w http.ResponseWriter, r *http.Request) {
	var req debateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "Missing analysis_id", "")
		return
	}
	if len(req.DebateTranscript) == 0 {
		writeError(w, http.StatusBadRequest, "Missing or empty debate_transcript", "")
		return
	}

	result, err := a.audio.Generate(r.Context(), req.AnalysisID, req.DebateTranscript)
	if err != nil {
		log.Printf("Debate audio error: %v", err)
		writeError(w, http.StatusInternalServerError, "Audio generation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"audioBase64": result.AudioBase64,
		"timings":     result.Timings,
		"durationMs":  result.DurationMs,
	})
}
