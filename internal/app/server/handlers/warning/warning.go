package warning

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/request"
	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/server/middlewares"
)

// List 过滤分页查询告警
// GET /api/v1/warnings?type=&severity=&resolved=&limit=&offset=
func (h *WarningHandler) List(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	resolved, err := ginx.QueryBool(c, "resolved")
	if err != nil {
		ginx.Error(c, err)
		return
	}

	filter := etwarning.Filter{
		Type:     ginx.QueryString(c, "type"),
		Resolved: resolved,
		Limit:    limit,
		Offset:   offset,
	}
	if s := ginx.QueryString(c, "severity"); s != nil {
		severity := etwarning.Severity(*s)
		filter.Severity = &severity
	}

	warnings, page, err := h.warningService.ListWarnings(c.Request.Context(), filter)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.WarningListResponse{
		Warnings:   response.FromWarningEntities(warnings),
		Pagination: page,
	})
}

// Stats 告警统计
// GET /api/v1/warnings/stats
func (h *WarningHandler) Stats(c *gin.Context) {
	stats, err := h.warningService.Stats(c.Request.Context())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, stats)
}

// Get 查询单条告警
// GET /api/v1/warnings/:id
func (h *WarningHandler) Get(c *gin.Context) {
	w, err := h.warningService.GetWarning(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromWarningEntity(w))
}

// Resolve 标记告警为已处理，body 可省略
// POST /api/v1/warnings/:id/resolve
func (h *WarningHandler) Resolve(c *gin.Context) {
	var req request.ResolveWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	w, err := h.warningService.ResolveWarning(c.Request.Context(), c.Param("id"), resolvedBy(c, req.ResolvedBy))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromWarningEntity(w))
}

// ResolveBulk 批量处理告警，已处理的条目不计数
// POST /api/v1/warnings/resolve-bulk
func (h *WarningHandler) ResolveBulk(c *gin.Context) {
	var req request.ResolveBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	n, err := h.warningService.ResolveBulk(c.Request.Context(), req.IDs, resolvedBy(c, req.ResolvedBy))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}

// Delete 删除单条告警
// DELETE /api/v1/warnings/:id
func (h *WarningHandler) Delete(c *gin.Context) {
	if err := h.warningService.DeleteWarning(c.Request.Context(), c.Param("id")); err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, nil)
}

// ClearResolved 删除全部已处理告警
// DELETE /api/v1/warnings/resolved
func (h *WarningHandler) ClearResolved(c *gin.Context) {
	n, err := h.warningService.ClearResolved(c.Request.Context())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}

// resolvedBy 未指定处理人时使用调用方 App 名称
func resolvedBy(c *gin.Context, by string) string {
	if by != "" {
		return by
	}
	if app := middlewares.CurrentApp(c); app != nil {
		return app.Name
	}
	return ""
}
