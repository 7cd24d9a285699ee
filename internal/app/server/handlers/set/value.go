package set

import (
	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/request"
	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/pkg/ginx"
)

// AddValue 写入单个值
// POST /api/v1/sets/:name/values
func (h *SetHandler) AddValue(c *gin.Context) {
	var req request.SetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	v, err := h.setService.AddValue(c.Request.Context(), c.Param("name"), req.Value, req.Metadata)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Created(c, response.FromSetValueEntity(v))
}

// ListValues 分页查询值（新写入在前）
// GET /api/v1/sets/:name/values
func (h *SetHandler) ListValues(c *gin.Context) {
	limit, offset, err := ginx.Page(c)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	values, page, err := h.setService.ListValues(c.Request.Context(), c.Param("name"), etprimitive.NewPagination(limit, offset))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.SetValueListResponse{
		Values:     response.FromSetValueEntities(values),
		Pagination: page,
	})
}

// CheckValue 检查值是否存在
// GET /api/v1/sets/:name/values/check?value=
func (h *SetHandler) CheckValue(c *gin.Context) {
	check, err := h.setService.CheckValue(c.Request.Context(), c.Param("name"), c.Query("value"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetCheck(check))
}

// AddValuesBulk 批量写入，单条失败不影响其他条目
// POST /api/v1/sets/:name/values/bulk
func (h *SetHandler) AddValuesBulk(c *gin.Context) {
	var req request.BulkSetValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.setService.AddValuesBulk(c.Request.Context(), c.Param("name"), req.ToBulkItems())
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetBulkAdd(result))
}

// CheckValuesBulk 批量检查
// POST /api/v1/sets/:name/values/check-bulk
func (h *SetHandler) CheckValuesBulk(c *gin.Context) {
	var req request.CheckSetValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.setService.CheckValuesBulk(c.Request.Context(), c.Param("name"), req.Values)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetBulkCheck(result))
}

// UpdateValue 修改值和元数据
// PUT /api/v1/sets/:name/values/:valueId
func (h *SetHandler) UpdateValue(c *gin.Context) {
	var req request.SetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	v, err := h.setService.UpdateValue(c.Request.Context(), c.Param("name"), c.Param("valueId"), req.Value, req.Metadata)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, response.FromSetValueEntity(v))
}

// RemoveValue 按 ID 或字面值删除
// DELETE /api/v1/sets/:name/values/:valueId
func (h *SetHandler) RemoveValue(c *gin.Context) {
	if err := h.setService.RemoveValue(c.Request.Context(), c.Param("name"), c.Param("valueId")); err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, nil)
}

// ClearValues 清空集合
// DELETE /api/v1/sets/:name/values
func (h *SetHandler) ClearValues(c *gin.Context) {
	n, err := h.setService.ClearValues(c.Request.Context(), c.Param("name"))
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}

// DeleteValues 按 ID 列表删除
// POST /api/v1/sets/:name/values/delete
func (h *SetHandler) DeleteValues(c *gin.Context) {
	var req request.DeleteValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	n, err := h.setService.DeleteValuesList(c.Request.Context(), c.Param("name"), req.IDs)
	if err != nil {
		ginx.Error(c, err)
		return
	}
	ginx.Success(c, &response.CountResponse{Count: n})
}
