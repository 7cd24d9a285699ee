package svdetect

import (
	"encoding/json"

	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etwarning"
)

// DuplicateChecker Lookup 重复检测器（规则引擎）
type DuplicateChecker struct{}

// NewDuplicateChecker 创建重复检测器实例
func NewDuplicateChecker() *DuplicateChecker {
	return &DuplicateChecker{}
}

// Details 告警详情
type Details struct {
	LookupName   string   `json:"lookupName"`
	Left         string   `json:"left"`
	Right        string   `json:"right"`
	GroupKey     string   `json:"groupKey"`
	GroupSize    int      `json:"groupSize"`
	DuplicateIDs []string `json:"duplicateIds"`
}

// Check 对单个 Lookup 的全部映射做分组检测，按输入顺序产出告警
func (c *DuplicateChecker) Check(lookup *etlookup.Lookup, values []*etlookup.Value) []*etwarning.Warning {
	byLeft := groupBy(values, func(v *etlookup.Value) string { return v.Left })
	byRight := groupBy(values, func(v *etlookup.Value) string { return v.Right })
	byPair := groupBy(values, func(v *etlookup.Value) etlookup.Pair { return v.Pair() })

	warnings := make([]*etwarning.Warning, 0)
	for _, v := range values {
		// 规则 1：完全相同的 left/right 视为最高优先级，一行只报一次
		if group := byPair[v.Pair()]; len(group) > 1 {
			w := c.newWarning(lookup, v, etwarning.SeverityHigh, v.Pair().String(), group)
			w.LeftRightDuplicate = true
			warnings = append(warnings, w)
			continue
		}

		// 规则 2：left 重复
		if group := byLeft[v.Left]; len(group) > 1 {
			w := c.newWarning(lookup, v, etwarning.SeverityMedium, v.Left, group)
			w.LeftDuplicate = true
			warnings = append(warnings, w)
		}

		// 规则 3：right 重复
		if group := byRight[v.Right]; len(group) > 1 {
			w := c.newWarning(lookup, v, etwarning.SeverityMedium, v.Right, group)
			w.RightDuplicate = true
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func (c *DuplicateChecker) newWarning(lookup *etlookup.Lookup, v *etlookup.Value, severity etwarning.Severity, key string, group []*etlookup.Value) *etwarning.Warning {
	others := make([]string, 0, len(group)-1)
	for _, g := range group {
		if g.ID != v.ID {
			others = append(others, g.ID)
		}
	}

	// 字段均为可序列化类型，Marshal 不会失败
	details, _ := json.Marshal(Details{
		LookupName:   lookup.Name,
		Left:         v.Left,
		Right:        v.Right,
		GroupKey:     key,
		GroupSize:    len(group),
		DuplicateIDs: others,
	})
	return etwarning.New(etwarning.TypeLookup, lookup.Name, lookup.ID, v.ID, severity, details)
}

func groupBy[K comparable](values []*etlookup.Value, key func(*etlookup.Value) K) map[K][]*etlookup.Value {
	groups := make(map[K][]*etlookup.Value, len(values))
	for _, v := range values {
		k := key(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}
