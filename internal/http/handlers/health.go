package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/timlawrenz/fluffy-train-sub000/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// GET /healthcheck
func (h *HealthHandler) Health(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "ok"})
}
