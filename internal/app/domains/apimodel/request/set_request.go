package request

import "encoding/json"

// CreateSetRequest 创建集合请求
type CreateSetRequest struct {
	Name            string  `json:"name" binding:"required,max=100" example:"processed-orders"`
	Description     *string `json:"description" binding:"omitempty,max=500"`
	AllowDuplicates *bool   `json:"allowDuplicates" example:"true"`
	StrictChecking  *bool   `json:"strictChecking" example:"false"`
}

// UpdateSetRequest 更新集合请求，未传字段保持不变
type UpdateSetRequest struct {
	Description     *string `json:"description" binding:"omitempty,max=500"`
	AllowDuplicates *bool   `json:"allowDuplicates"`
	StrictChecking  *bool   `json:"strictChecking"`
}

// SetValueRequest 写入/修改单个值
type SetValueRequest struct {
	Value    string          `json:"value" binding:"required,max=500" example:"ORD-20240101-001"`
	Metadata json.RawMessage `json:"metadata" swaggertype:"object"`
}

// BulkSetValuesRequest 批量写入，单条校验失败记入该条结果
type BulkSetValuesRequest struct {
	Values []SetValueRequest `json:"values" binding:"required,min=1"`
}

// CheckSetValuesRequest 批量检查
type CheckSetValuesRequest struct {
	Values []string `json:"values" binding:"required,min=1"`
}

// DeleteValuesRequest 按 ID 列表删除
type DeleteValuesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}
