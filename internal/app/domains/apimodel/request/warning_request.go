package request

// ResolveWarningRequest 处理告警，body 可省略
type ResolveWarningRequest struct {
	ResolvedBy string `json:"resolvedBy" binding:"omitempty,max=100"`
}

// ResolveBulkRequest 批量处理告警
type ResolveBulkRequest struct {
	IDs        []string `json:"ids" binding:"required,min=1"`
	ResolvedBy string   `json:"resolvedBy" binding:"omitempty,max=100"`
}
