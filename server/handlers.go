package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/formstate"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/scoring"
)

type scoreRequest struct {
	Fields   json.RawMessage `json:"fields" binding:"required"`
	Previous *scoring.Result `json:"previous"`
}

// scoreResponse carries changed criteria once, inside overallScore
type scoreResponse struct {
	ID string `json:"id"`
	scoring.Result
}

type previewRequest struct {
	Fields json.RawMessage `json:"fields"`
	Field  string          `json:"field" binding:"required"`
	Value  string          `json:"value"`
	Base   *scoring.Result `json:"base"`
}

type sectionRules struct {
	scoring.Section
	Rules []scoring.Rule `json:"rules"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	values, err := formstate.ResolveJSON(req.Fields)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form state"})
		return
	}

	res := h.deps.Engine.EvaluateSince(values, req.Previous)
	c.JSON(http.StatusOK, scoreResponse{
		ID:     uuid.NewString(),
		Result: res,
	})
}

func (h *Handler) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	values, err := formstate.ResolveJSON(req.Fields)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form state"})
		return
	}

	p, err := h.deps.Engine.Preview(values, req.Base, scoring.FieldKey(req.Field), req.Value)
	if err != nil {
		if errors.Is(err, scoring.ErrUnknownField) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown field: " + req.Field})
			return
		}
		h.log.Error("preview failed", "error", err, "request_id", c.GetString(middleware.RequestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preview change"})
		return
	}
	if h.deps.Storage != nil {
		h.deps.Storage.RecordPreview()
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) rules(c *gin.Context) {
	catalog := h.deps.Engine.Catalog()
	sections := catalog.Sections()
	out := make([]sectionRules, 0, len(sections))
	for _, s := range sections {
		sr := sectionRules{Section: s, Rules: make([]scoring.Rule, 0, len(s.RuleIDs))}
		for _, id := range s.RuleIDs {
			if r, ok := catalog.Rule(id); ok {
				sr.Rules = append(sr.Rules, r)
			}
		}
		out = append(out, sr)
	}
	c.JSON(http.StatusOK, gin.H{
		"sections":    out,
		"totalPoints": catalog.TotalPoints(),
	})
}

func (h *Handler) impact(c *gin.Context) {
	field := c.Param("field")
	idx := h.deps.Engine.Impact()
	if !idx.Known(field) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown field: " + field})
		return
	}
	criteria := idx.Affected(field)
	if criteria == nil {
		criteria = []int{}
	}
	c.JSON(http.StatusOK, gin.H{
		"field":    field,
		"fields":   scoring.CategoryFields(field),
		"criteria": criteria,
	})
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}

	analysis, err := h.deps.Analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		case errors.Is(err, analyzer.ErrFetch):
			h.log.Warn("page fetch failed", "url", req.URL, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze URL: " + err.Error()})
		default:
			h.log.Error("analysis failed", "url", req.URL, "error", err,
				"request_id", c.GetString(middleware.RequestIDKey))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze URL"})
		}
		return
	}

	h.deps.Traffic.TrackPage(analysis.Page.URL)
	c.JSON(http.StatusOK, analysis)
}

func (h *Handler) statistics(c *gin.Context) {
	body := gin.H{
		"traffic": h.deps.Traffic.Snapshot(h.deps.DevMode),
	}
	if s := h.deps.Storage; s != nil {
		current := s.GetCurrentStats()
		body["usage"] = current
		body["averageScore"] = current.AverageScore()
		if h.deps.DevMode {
			body["months"] = s.GetAllMonths()
		}
	}
	if h.deps.DevMode && h.deps.Analyzer != nil {
		body["cache"] = h.deps.Analyzer.GetCacheStats()
	}
	c.JSON(http.StatusOK, body)
}
