package warning

import "stratools/internal/app/domains/services/svwarning"

// WarningHandler 告警 HTTP 处理器
type WarningHandler struct {
	warningService *svwarning.WarningService
}

// NewWarningHandler 创建告警处理器实例
func NewWarningHandler(warningService *svwarning.WarningService) *WarningHandler {
	return &WarningHandler{
		warningService: warningService,
	}
}
