package lookup

import "stratools/internal/app/domains/services/svlookup"

// LookupHandler 映射表 HTTP 处理器
type LookupHandler struct {
	lookupService *svlookup.LookupService
}

// NewLookupHandler 创建映射表处理器实例
func NewLookupHandler(lookupService *svlookup.LookupService) *LookupHandler {
	return &LookupHandler{
		lookupService: lookupService,
	}
}
