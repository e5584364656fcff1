package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winelist/internal/responses"
	"winelist/internal/services"
)

type CatalogHandler struct {
	catalog   *services.CatalogService
	integrity *services.IntegrityService
	log       *zap.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, integrity *services.IntegrityService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, integrity: integrity, log: log}
}

func (h *CatalogHandler) Zones(c *gin.Context) {
	zones, err := h.catalog.Zones(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, http.StatusOK, zones, "")
}

func (h *CatalogHandler) Wineries(c *gin.Context) {
	wineries, err := h.catalog.Wineries(c.Request.Context(), c.Query("zone"))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, http.StatusOK, wineries, "")
}

func (h *CatalogHandler) Search(c *gin.Context) {
	res, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, http.StatusOK, res, "")
}

func (h *CatalogHandler) Integrity(c *gin.Context) {
	report, err := h.integrity.Report(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, http.StatusOK, report, "")
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyQuery):
		responses.Fail(c, http.StatusBadRequest, nil, "Query parameter q is required")
	case errors.Is(err, services.ErrUnknownZone):
		responses.Fail(c, http.StatusBadRequest, nil, "Unknown zone")
	default:
		h.log.Error("catalog request failed", zap.String("path", c.FullPath()), zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, "Failed to read database")
	}
}
