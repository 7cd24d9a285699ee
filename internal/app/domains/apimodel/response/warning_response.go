package response

import (
	"encoding/json"
	"time"

	"stratools/internal/app/domains/entity/etprimitive"
)

// WarningResponse 告警响应
type WarningResponse struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	TypeName           string          `json:"typeName"`
	TypeID             string          `json:"typeId"`
	ItemID             string          `json:"itemId"`
	LeftDuplicate      bool            `json:"leftDuplicate"`
	RightDuplicate     bool            `json:"rightDuplicate"`
	LeftRightDuplicate bool            `json:"leftRightDuplicate"`
	Severity           string          `json:"severity"`
	Details            json.RawMessage `json:"details" swaggertype:"object"`
	IsResolved         bool            `json:"isResolved"`
	ResolvedAt         *time.Time      `json:"resolvedAt"`
	ResolvedBy         *string         `json:"resolvedBy"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// WarningListResponse 告警分页列表
type WarningListResponse struct {
	Warnings   []*WarningResponse     `json:"warnings"`
	Pagination etprimitive.Pagination `json:"pagination"`
}

// CountResponse 批量删除/处理影响的条数
type CountResponse struct {
	Count int64 `json:"count"`
}

// TriggerResponse 手动触发任务结果
type TriggerResponse struct {
	Job    string `json:"job"`
	Queued bool   `json:"queued"`
	// JobID 投递到队列时返回的消息 ID
	JobID string `json:"jobId,omitempty"`
	// 以下字段仅在 wait=true 且等到完成通知时返回
	Completed  bool       `json:"completed,omitempty"`
	Warnings   *int       `json:"warnings,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
