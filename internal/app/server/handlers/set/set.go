package set

import (
	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/request"
	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/pkg/ginx"
)

// Create 创建集合
// POST /api/v1/sets
func (h *SetHandler) Create(c *gin.Context) {
	var req request.CreateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	set, err := h.setService.CreateSet(c.Request.Context(), req.Name, req.ToOptions())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Created(c, response.FromSetEntity(set))
}

// List 分页查询集合
// GET /api/v1/sets?limit=50&offset=0
func (h *SetHandler) List(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	sets, page, err := h.setService.ListSets(c.Request.Context(), etprimitive.NewPagination(limit, offset))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.SetListResponse{
		Sets:       response.FromSetEntities(sets),
		Pagination: page,
	})
}

// Get 查询集合（含值数量）
// GET /api/v1/sets/:name
func (h *SetHandler) Get(c *gin.Context) {
	set, err := h.setService.GetSet(c.Request.Context(), c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetEntity(set))
}

// Update 更新描述和策略，未传字段保持不变
// PUT /api/v1/sets/:name
func (h *SetHandler) Update(c *gin.Context) {
	var req request.UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := h.setService.GetSet(ctx, c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	set, err := h.setService.UpdateSet(ctx, current.Name, req.MergeOptions(current))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetEntity(set))
}

// Delete 删除集合及其全部值
// DELETE /api/v1/sets/:name
func (h *SetHandler) Delete(c *gin.Context) {
	if err := h.setService.DeleteSet(c.Request.Context(), c.Param("name")); err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, nil)
}
