package lookup

import (
	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/request"
	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/pkg/ginx"
)

// AddValue 写入单条映射
// POST /api/v1/lookups/:name/values
func (h *LookupHandler) AddValue(c *gin.Context) {
	var req request.LookupValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	v, err := h.lookupService.AddValue(c.Request.Context(), c.Param("name"), req.ToBulkItem())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Created(c, response.FromLookupValueEntity(v))
}

// ListValues 分页查询映射（新写入在前）
// GET /api/v1/lookups/:name/values
func (h *LookupHandler) ListValues(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	values, page, err := h.lookupService.ListValues(c.Request.Context(), c.Param("name"), etprimitive.NewPagination(limit, offset))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.LookupValueListResponse{
		Values:     response.FromLookupValueEntities(values),
		Pagination: page,
	})
}

// SearchValues 搜索映射：left/right 精确匹配，search 对两侧做子串匹配
// GET /api/v1/lookups/:name/values/search?left=&right=&search=
func (h *LookupHandler) SearchValues(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	values, page, err := h.lookupService.SearchValues(c.Request.Context(), c.Param("name"), etlookup.SearchQuery{
		Left:   ginx.QueryString(c, "left"),
		Right:  ginx.QueryString(c, "right"),
		Search: ginx.QueryString(c, "search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.LookupValueListResponse{
		Values:     response.FromLookupValueEntities(values),
		Pagination: page,
	})
}

// AddValuesBulk 批量写入，mode 支持 insert/skip/upsert
// POST /api/v1/lookups/:name/values/bulk
func (h *LookupHandler) AddValuesBulk(c *gin.Context) {
	var req request.BulkLookupValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.lookupService.AddValuesBulk(c.Request.Context(), c.Param("name"), etlookup.BulkMode(req.Mode), req.ToBulkItems())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromLookupBulkAdd(result))
}

// UpdateValue 修改映射
// PUT /api/v1/lookups/:name/values/:valueId
func (h *LookupHandler) UpdateValue(c *gin.Context) {
	var req request.LookupValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	v, err := h.lookupService.UpdateValue(c.Request.Context(), c.Param("name"), c.Param("valueId"), req.ToBulkItem())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromLookupValueEntity(v))
}

// RemoveValue 按 ID 删除映射
// DELETE /api/v1/lookups/:name/values/:valueId
func (h *LookupHandler) RemoveValue(c *gin.Context) {
	if err := h.lookupService.RemoveValue(c.Request.Context(), c.Param("name"), c.Param("valueId")); err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, nil)
}

// ClearValues 清空映射表
// DELETE /api/v1/lookups/:name/values
func (h *LookupHandler) ClearValues(c *gin.Context) {
	n, err := h.lookupService.ClearValues(c.Request.Context(), c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}

// DeleteValues 按 ID 列表删除
// POST /api/v1/lookups/:name/values/delete
func (h *LookupHandler) DeleteValues(c *gin.Context) {
	var req request.DeleteValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	n, err := h.lookupService.DeleteValuesList(c.Request.Context(), c.Param("name"), req.IDs)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}
