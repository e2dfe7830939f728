package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timlawrenz/fluffy-train-sub000/internal/http/response"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/services"
)

type ConfigHandler struct {
	log    *logger.Logger
	config services.ConfigService
}

func NewConfigHandler(log *logger.Logger, config services.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		log:    log.With("handler", "ConfigHandler"),
		config: config,
	}
}

// POST /api/config/reload
//
// Re-reads the strategy config from disk. The previous config stays
// active if the new file fails validation.
func (h *ConfigHandler) Reload(c *gin.Context) {
	cfg, err := h.config.Reload()
	if err != nil {
		h.log.Error("Config reload failed", "error", err)
		response.RespondError(c, http.StatusUnprocessableEntity, "config_reload_failed", err)
		return
	}
	h.log.Info("Config reloaded", "env", h.config.Env())
	response.RespondOK(c, gin.H{"env": h.config.Env(), "config": cfg})
}
