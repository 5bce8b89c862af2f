package handlers

import (
	"log"
	"net/http"
	"sync"

	"schooltimetable/internal/models"
	"schooltimetable/internal/validation"
)

// RuleSettingsSaver persists a rule's enabled flag and threshold
type RuleSettingsSaver interface {
	Save(setting models.RuleSetting) error
}

// ValidationHandler runs the validation engine and manages its rules
type ValidationHandler struct {
	mu       *sync.Mutex
	engine   *validation.Engine
	settings RuleSettingsSaver
}

// NewValidationHandler creates a validation handler. settings may be nil, in
// which case rule changes only live in memory.
func NewValidationHandler(mu *sync.Mutex, engine *validation.Engine, settings RuleSettingsSaver) *ValidationHandler {
	return &ValidationHandler{mu: mu, engine: engine, settings: settings}
}

type validationResponse struct {
	validation.Results
	Summary string `json:"summary"`
}

// Validate runs every enabled rule
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	results := h.engine.Validate()
	summary := h.engine.GetSummary(results)
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, validationResponse{Results: results, Summary: summary})
}

type rulesResponse struct {
	Rules []validation.RuleInfo `json:"rules"`
}

// ListRules returns the registered rules in run order
func (h *ValidationHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	rules := h.engine.GetRules()
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, rulesResponse{Rules: rules})
}

type updateRuleRequest struct {
	Enabled   *bool `json:"enabled"`
	Threshold *int  `json:"threshold"`
}

// UpdateRule toggles a rule or changes its threshold
func (h *ValidationHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID := r.PathValue("ruleId")

	var req updateRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	info, ok := h.ruleInfo(ruleID)
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrUnknownRule, "", nil)
		return
	}
	if req.Threshold != nil {
		if info.Threshold == nil {
			respondWithError(w, http.StatusBadRequest, "Rule has no threshold", "", nil)
			return
		}
		if *req.Threshold < 0 {
			respondWithError(w, http.StatusBadRequest, "Threshold must not be negative", "", nil)
			return
		}
	}

	if req.Enabled != nil {
		h.engine.SetRuleEnabled(ruleID, *req.Enabled)
	}
	if req.Threshold != nil {
		h.engine.SetRuleThreshold(ruleID, *req.Threshold)
	}

	info, _ = h.ruleInfo(ruleID)
	if h.settings != nil {
		setting := models.RuleSetting{RuleID: info.ID, Enabled: info.Enabled, Threshold: info.Threshold}
		if err := h.settings.Save(setting); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save rule setting", err)
			return
		}
	}

	log.Printf("Rule %s updated by %s", info.ID, editorOf(r))
	respondJSON(w, http.StatusOK, info)
}

func (h *ValidationHandler) ruleInfo(ruleID string) (validation.RuleInfo, bool) {
	for _, info := range h.engine.GetRules() {
		if info.ID == ruleID {
			return info, true
		}
	}
	return validation.RuleInfo{}, false
}
