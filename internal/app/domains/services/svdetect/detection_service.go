package svdetect

import (
	"context"
	"fmt"
	"time"

	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/app/domains/modules/mdlookup"
	"stratools/internal/app/domains/modules/mdwarning"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/logger"
)

// JobName 重复检测任务名
const JobName = "duplicate_detection"

// Notifier 任务完成通知
type Notifier interface {
	PublishWarningsRefreshed(ctx context.Context, n *redis.WarningsRefreshed) error
}

// DetectionService 重复检测任务：全量扫描所有 Lookup，全量替换 lookup 类告警
type DetectionService struct {
	lookupModule  *mdlookup.LookupModule
	warningModule *mdwarning.WarningModule
	checker       *DuplicateChecker
	notifier      Notifier
	logger        logger.Logger
}

// NewDetectionService 创建检测服务实例，notifier 可为 nil
func NewDetectionService(
	lookupModule *mdlookup.LookupModule,
	warningModule *mdwarning.WarningModule,
	notifier Notifier,
	log logger.Logger,
) *DetectionService {
	return &DetectionService{
		lookupModule:  lookupModule,
		warningModule: warningModule,
		checker:       NewDuplicateChecker(),
		notifier:      notifier,
		logger:        log,
	}
}

// Execute 执行一次检测
// 1. 加载全部 Lookup 及其映射，任一失败整体中止，不修改已有告警
// 2. 逐个 Lookup 分组检测
// 3. 同一事务内删除旧告警并写入新告警
// 4. 发布完成通知（失败只记录日志）
func (s *DetectionService) Execute(ctx context.Context) error {
	ctx = logger.WithJob(ctx, JobName)
	start := time.Now()
	s.logger.Infof(ctx, "duplicate detection started")

	lookups, err := s.lookupModule.ListAllLookups(ctx)
	if err != nil {
		s.logger.Errorf(ctx, "duplicate detection aborted: %v", err)
		return err
	}

	warnings := make([]*etwarning.Warning, 0)
	scanned := 0
	for _, lookup := range lookups {
		values, err := s.lookupModule.ListAllValues(ctx, lookup.ID)
		if err != nil {
			err = fmt.Errorf("scan lookup %s: %w", lookup.Name, err)
			s.logger.Errorf(ctx, "duplicate detection aborted: %v", err)
			return err
		}
		scanned += len(values)
		warnings = append(warnings, s.checker.Check(lookup, values)...)
	}

	if err := s.warningModule.Replace(ctx, etwarning.TypeLookup, warnings); err != nil {
		s.logger.Errorf(ctx, "duplicate detection aborted: %v", err)
		return err
	}

	bySeverity := make(map[etwarning.Severity]int)
	for _, w := range warnings {
		bySeverity[w.Severity]++
	}
	s.logger.Infof(ctx, "duplicate detection finished: lookups=%d, values=%d, warnings=%d, high=%d, medium=%d, duration=%s",
		len(lookups), scanned, len(warnings), bySeverity[etwarning.SeverityHigh], bySeverity[etwarning.SeverityMedium], time.Since(start))

	if s.notifier != nil {
		n := &redis.WarningsRefreshed{Job: JobName, Warnings: len(warnings), FinishedAt: time.Now()}
		if err := s.notifier.PublishWarningsRefreshed(ctx, n); err != nil {
			s.logger.Warnf(ctx, "publish warnings refreshed failed: %v", err)
		}
	}
	return nil
}
