package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winelist/internal/responses"
	"winelist/internal/services"
)

// writeRequest is the body of every token-gated write: {"data": <document>, "token": "..."}.
// token stays raw so a token of the wrong type is an auth failure, not a malformed body.
type writeRequest struct {
	Data  json.RawMessage `json:"data"`
	Token json.RawMessage `json:"token"`
}

func (r *writeRequest) token() (string, bool) {
	var token string
	if err := json.Unmarshal(r.Token, &token); err != nil {
		return "", false
	}
	return token, true
}

type DocumentHandler struct {
	documents *services.DocumentService
	auth      *services.AuthService
	log       *zap.Logger
}

func NewDocumentHandler(documents *services.DocumentService, auth *services.AuthService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, auth: auth, log: log}
}

func (h *DocumentHandler) Get(c *gin.Context) {
	body, err := h.documents.Get(c.Request.Context())
	if err != nil {
		h.log.Error("failed to read database", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, "Failed to read database")
		return
	}
	responses.Document(c, body)
}

func (h *DocumentHandler) Save(c *gin.Context) {
	req, ok := h.bindWrite(c)
	if !ok {
		return
	}

	if err := h.documents.Save(c.Request.Context(), req.Data); err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			responses.Fail(c, http.StatusBadRequest, nil, verr.Message)
			return
		}
		h.log.Error("failed to save database", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, "Failed to save database")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Saved successfully")
}

func (h *DocumentHandler) Export(c *gin.Context) {
	backup, err := h.documents.Export(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			responses.Fail(c, http.StatusNotFound, nil, "Database file not found")
			return
		}
		h.log.Error("export failed", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, "Failed to export backup")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backup.Filename))
	c.Data(http.StatusOK, "application/json", backup.Body)
}

func (h *DocumentHandler) Import(c *gin.Context) {
	req, ok := h.bindWrite(c)
	if !ok {
		return
	}

	snapshot, err := h.documents.Import(c.Request.Context(), req.Data)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			responses.Fail(c, http.StatusBadRequest, nil, verr.Message)
			return
		}
		h.log.Error("import failed", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, "Failed to import backup")
		return
	}

	var data interface{}
	if snapshot != "" {
		data = gin.H{"safetyBackup": snapshot}
	}
	responses.Success(c, http.StatusOK, data, "Backup imported successfully. Database updated.")
}

// bindWrite decodes the write envelope and checks its token. It writes the error response itself.
func (h *DocumentHandler) bindWrite(c *gin.Context) (*writeRequest, bool) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Fail(c, http.StatusBadRequest, err, "Request body too large")
			return nil, false
		}
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return nil, false
	}

	token, ok := req.token()
	if !ok {
		h.log.Warn("rejected write with non-string token", zap.String("path", c.FullPath()), zap.String("ip", c.ClientIP()))
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return nil, false
	}
	if err := h.auth.Authorize(token); err != nil {
		h.log.Warn("rejected write with bad token", zap.String("path", c.FullPath()), zap.String("ip", c.ClientIP()))
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return nil, false
	}
	return &req, true
}
