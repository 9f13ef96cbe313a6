package api_router

import (
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dto"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the version and health endpoints
// SystemHandler 版本与健康检查
type SystemHandler struct {
	*Handler
}

func NewSystemHandler(a *app.App, wss *pkgapp.WebsocketServer) *SystemHandler {
	return &SystemHandler{Handler: NewHandlerWithWSS(a, wss)}
}

// Version
// @Summary Get server version info
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/version [get]
func (h *SystemHandler) Version(c *gin.Context) {
	info := h.App.Version()
	ids := make([]string, 0)
	for _, lt := range h.App.Registry.LinkTypes() {
		ids = append(ids, lt.ID())
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.VersionDTO{
		Name:        app.Name,
		Version:     info.Version,
		GitTag:      info.GitTag,
		BuildTime:   info.BuildTime,
		LinkTypes:   len(ids),
		LinkTypeIDs: ids,
	}))
}

// Health reports database reachability, websocket watchers and worker pool load.
// The service is unhealthy when the database does not answer or the pool has been closed.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO}
// @Router /api/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	health := dto.HealthDTO{
		Status:   dto.HealthStatusHealthy,
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: dto.DatabaseConnected,
		Workers:  h.App.WorkerPool().Stats(),
	}
	if h.WSS != nil {
		health.Watchers = h.WSS.Count()
	}

	var one int
	if err := h.App.DB.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		h.logError(ctx, "SystemHandler.Health", err)
		health.Status = dto.HealthStatusUnhealthy
		health.Database = dto.DatabaseError
		pkgapp.NewResponse(c).ToResponse(code.ErrorDBQuery.WithData(health))
		return
	}
	if health.Workers.Closed {
		health.Status = dto.HealthStatusUnhealthy
		pkgapp.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails("worker pool closed").WithData(health))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(health))
}
