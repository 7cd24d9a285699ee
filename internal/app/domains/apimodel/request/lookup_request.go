package request

import "encoding/json"

// CreateLookupRequest 创建映射表请求
type CreateLookupRequest struct {
	Name               string  `json:"name" binding:"required,max=100" example:"crm-to-erp"`
	Description        *string `json:"description" binding:"omitempty,max=500"`
	LeftSystem         *string `json:"leftSystem" binding:"omitempty,max=100" example:"crm"`
	RightSystem        *string `json:"rightSystem" binding:"omitempty,max=100" example:"erp"`
	AllowLeftDups      *bool   `json:"allowLeftDups"`
	AllowRightDups     *bool   `json:"allowRightDups"`
	AllowLeftRightDups *bool   `json:"allowLeftRightDups"`
	StrictChecking     *bool   `json:"strictChecking"`
}

// UpdateLookupRequest 更新映射表请求，未传字段保持不变
type UpdateLookupRequest struct {
	Description        *string `json:"description" binding:"omitempty,max=500"`
	LeftSystem         *string `json:"leftSystem" binding:"omitempty,max=100"`
	RightSystem        *string `json:"rightSystem" binding:"omitempty,max=100"`
	AllowLeftDups      *bool   `json:"allowLeftDups"`
	AllowRightDups     *bool   `json:"allowRightDups"`
	AllowLeftRightDups *bool   `json:"allowLeftRightDups"`
	StrictChecking     *bool   `json:"strictChecking"`
}

// LookupValueRequest 写入/修改单条映射
type LookupValueRequest struct {
	Left          string          `json:"left" binding:"required,max=500" example:"crm-1001"`
	Right         string          `json:"right" binding:"required,max=500" example:"erp-9001"`
	LeftMetadata  json.RawMessage `json:"leftMetadata" swaggertype:"object"`
	RightMetadata json.RawMessage `json:"rightMetadata" swaggertype:"object"`
}

// BulkLookupValuesRequest 批量写入，mode 为空时按 insert 处理
type BulkLookupValuesRequest struct {
	Mode   string               `json:"mode" binding:"omitempty,oneof=insert skip upsert" example:"insert"`
	Values []LookupValueRequest `json:"values" binding:"required,min=1"`
}
