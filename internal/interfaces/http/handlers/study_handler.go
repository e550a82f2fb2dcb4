package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dhiren507/skillsync/internal/ai"
	"github.com/Dhiren507/skillsync/internal/ai/providers"
	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/services"
	"github.com/Dhiren507/skillsync/internal/interfaces/http/middleware"
)

type StudyHandler struct {
	studyService    services.StudyService
	defaultProvider models.AIProvider
}

func NewStudyHandler(studyService services.StudyService, defaultProvider models.AIProvider) *StudyHandler {
	if defaultProvider == "" {
		defaultProvider = models.AIProviderGemini
	}
	return &StudyHandler{studyService: studyService, defaultProvider: defaultProvider}
}

type generateRequest struct {
	Provider      models.AIProvider  `json:"provider"`
	QuestionCount int                `json:"question_count" binding:"omitempty,min=1,max=20"`
	NotesFormat   models.NotesFormat `json:"notes_format" binding:"omitempty,oneof=bullet outline detailed"`
	Force         bool               `json:"force"`
}

type tutorRequest struct {
	Provider models.AIProvider `json:"provider"`
	Question string            `json:"question" binding:"required,min=3"`
}

func (h *StudyHandler) GenerateSummary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	summary, err := h.studyService.GenerateSummary(c.Request.Context(), userID, c.Param("id"), req.Provider, req.Force)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *StudyHandler) GenerateQuiz(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	quiz, err := h.studyService.GenerateQuiz(c.Request.Context(), userID, c.Param("id"), req.Provider, req.QuestionCount, req.Force)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *StudyHandler) GenerateNotes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	req, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	notes, err := h.studyService.GenerateNotes(c.Request.Context(), userID, c.Param("id"), req.Provider, req.NotesFormat, req.Force)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// AskTutor answers a question grounded in the video when the route carries a
// video ID, and as a general study question otherwise.
func (h *StudyHandler) AskTutor(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req tutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Provider == "" {
		req.Provider = h.defaultProvider
	}

	answer, err := h.studyService.AskTutor(c.Request.Context(), userID, c.Param("id"), req.Provider, req.Question)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *StudyHandler) ListContent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	contents, err := h.studyService.ListContent(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": contents})
}

func (h *StudyHandler) bindGenerate(c *gin.Context) (*generateRequest, bool) {
	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
	}
	if req.Provider == "" {
		req.Provider = h.defaultProvider
	}
	if !req.Provider.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown provider %q", req.Provider)})
		return nil, false
	}
	return &req, true
}

// writeError maps the pipeline's typed errors onto HTTP statuses. The
// distinctions matter to clients: a configuration problem is theirs to fix, a
// provider or parse failure is retryable upstream trouble.
func (h *StudyHandler) writeError(c *gin.Context, err error) {
	var cfgErr *providers.ConfigurationError
	var provErr *providers.ProviderError
	var parseErr *ai.ParseFailure

	switch {
	case errors.Is(err, services.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"code":  "generation_in_flight",
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrProviderNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{
			"code":  "provider_not_allowed",
			"error": err.Error(),
		})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "configuration_error",
			"error": cfgErr.Error(),
		})
	case errors.As(err, &provErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":  "provider_error",
			"error": provErr.Error(),
		})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":  "parse_failure",
			"error": parseErr.Error(),
		})
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, gin.H{
			"code":  "not_found",
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "internal_error",
			"error": "generation failed",
		})
	}
}
