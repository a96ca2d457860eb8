package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jasha9/digitaltwin/internal/model"
	"github.com/jasha9/digitaltwin/internal/pkg/errcode"
	"github.com/jasha9/digitaltwin/internal/pkg/response"
	"github.com/jasha9/digitaltwin/internal/semcache"
	"github.com/jasha9/digitaltwin/internal/twin"
)

type TwinHandler struct {
	twin  *twin.Service
	cache *semcache.Cache
}

func NewTwinHandler(service *twin.Service, cache *semcache.Cache) *TwinHandler {
	return &TwinHandler{twin: service, cache: cache}
}

type queryRequest struct {
	Question string                   `json:"question"`
	History  []model.ConversationTurn `json:"history"`
}

type invalidateRequest struct {
	QuestionContains string  `json:"question_contains"`
	QuestionType     string  `json:"question_type"`
	OlderThanHours   float64 `json:"older_than_hours"`
	QualityBelow     float64 `json:"quality_below"`
	QualityAbove     float64 `json:"quality_above"`
}

// Query always answers 200 with a DigitalTwinResponse; pipeline failures
// surface as success=false inside the payload, not as transport errors.
func (h *TwinHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result := h.twin.Query(c.Request.Context(), req.Question, req.History)
	response.Success(c, result)
}

func (h *TwinHandler) Connectivity(c *gin.Context) {
	report := h.twin.TestConnectivity(c.Request.Context())
	response.Success(c, report)
}

func (h *TwinHandler) CacheStats(c *gin.Context) {
	response.Success(c, h.cache.Stats())
}

func (h *TwinHandler) CacheInvalidate(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	removed := h.cache.Invalidate(semcache.InvalidateCriteria{
		QuestionContains: req.QuestionContains,
		QuestionType:     model.QuestionType(req.QuestionType),
		OlderThan:        time.Duration(req.OlderThanHours * float64(time.Hour)),
		QualityBelow:     req.QualityBelow,
		QualityAbove:     req.QualityAbove,
	})
	response.Success(c, gin.H{"removed": removed})
}

func (h *TwinHandler) CachePurge(c *gin.Context) {
	response.Success(c, gin.H{"removed": h.cache.PurgeExpired()})
}
