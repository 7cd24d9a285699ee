package set

import "stratools/internal/app/domains/services/svset"

// SetHandler 集合 HTTP 处理器
type SetHandler struct {
	setService *svset.SetService
}

// NewSetHandler 创建集合处理器实例
func NewSetHandler(setService *svset.SetService) *SetHandler {
	return &SetHandler{
		setService: setService,
	}
}
