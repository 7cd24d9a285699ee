package lookup

import (
	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/request"
	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/pkg/ginx"
)

// Create 创建映射表
// POST /api/v1/lookups
func (h *LookupHandler) Create(c *gin.Context) {
	var req request.CreateLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	lookup, err := h.lookupService.CreateLookup(c.Request.Context(), req.Name, req.ToOptions())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Created(c, response.FromLookupEntity(lookup))
}

// List 分页查询映射表
// GET /api/v1/lookups
func (h *LookupHandler) List(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	lookups, page, err := h.lookupService.ListLookups(c.Request.Context(), etprimitive.NewPagination(limit, offset))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.LookupListResponse{
		Lookups:    response.FromLookupEntities(lookups),
		Pagination: page,
	})
}

// Get 查询映射表（含映射数量）
// GET /api/v1/lookups/:name
func (h *LookupHandler) Get(c *gin.Context) {
	lookup, err := h.lookupService.GetLookup(c.Request.Context(), c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromLookupEntity(lookup))
}

// Update 更新描述、系统名和策略
// PUT /api/v1/lookups/:name
func (h *LookupHandler) Update(c *gin.Context) {
	var req request.UpdateLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := h.lookupService.GetLookup(ctx, c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	lookup, err := h.lookupService.UpdateLookup(ctx, current.Name, req.MergeOptions(current))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromLookupEntity(lookup))
}

// Delete 删除映射表及其全部映射
// DELETE /api/v1/lookups/:name
func (h *LookupHandler) Delete(c *gin.Context) {
	if err := h.lookupService.DeleteLookup(c.Request.Context(), c.Param("name")); err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, nil)
}
