package response

import (
	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/domains/entity/etset"
	"stratools/internal/app/domains/entity/etwarning"
)

// FromSetEntity 将领域对象转换为 Response DTO
func FromSetEntity(s *etset.Set) *SetResponse {
	if s == nil {
		return nil
	}
	return &SetResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		AllowDuplicates: s.AllowDuplicates,
		StrictChecking:  s.StrictChecking,
		ValueCount:      s.ValueCount,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromSetEntities 批量转换集合
func FromSetEntities(sets []*etset.Set) []*SetResponse {
	out := make([]*SetResponse, 0, len(sets))
	for _, s := range sets {
		out = append(out, FromSetEntity(s))
	}
	return out
}

// FromSetValueEntity 转换集合值
func FromSetValueEntity(v *etset.Value) *SetValueResponse {
	if v == nil {
		return nil
	}
	return &SetValueResponse{
		ID:        v.ID,
		SetID:     v.SetID,
		Value:     v.Value,
		Metadata:  v.Metadata,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// FromSetValueEntities 批量转换集合值
func FromSetValueEntities(values []*etset.Value) []*SetValueResponse {
	out := make([]*SetValueResponse, 0, len(values))
	for _, v := range values {
		out = append(out, FromSetValueEntity(v))
	}
	return out
}

// FromSetCheck 转换检查结果
func FromSetCheck(c *etset.Check) *SetCheckResponse {
	if c == nil {
		return nil
	}
	return &SetCheckResponse{
		Value:    c.Value,
		Exists:   c.Exists,
		SetValue: FromSetValueEntity(c.SetValue),
	}
}

// FromSetBulkAdd 转换批量写入结果
func FromSetBulkAdd(r *etset.BulkAddResult) *SetBulkAddResponse {
	return &SetBulkAddResponse{
		Created: r.Created,
		Errors:  r.Errors,
		Values:  FromSetValueEntities(r.Values),
		Results: mapResults(r.Results, FromSetValueEntity),
	}
}

// FromSetBulkCheck 转换批量检查结果
func FromSetBulkCheck(r *etset.BulkCheckResult) *SetBulkCheckResponse {
	checks := make([]*SetCheckResponse, 0, len(r.Checks))
	for i := range r.Checks {
		checks = append(checks, FromSetCheck(&r.Checks[i]))
	}
	return &SetBulkCheckResponse{
		Found:    r.Found,
		NotFound: r.NotFound,
		Errors:   r.Errors,
		Checks:   checks,
		Results:  mapResults(r.Results, FromSetCheck),
	}
}

// FromLookupEntity 转换映射表
func FromLookupEntity(l *etlookup.Lookup) *LookupResponse {
	if l == nil {
		return nil
	}
	return &LookupResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Description:        l.Description,
		LeftSystem:         l.LeftSystem,
		RightSystem:        l.RightSystem,
		AllowLeftDups:      l.AllowLeftDups,
		AllowRightDups:     l.AllowRightDups,
		AllowLeftRightDups: l.AllowLeftRightDups,
		StrictChecking:     l.StrictChecking,
		ValueCount:         l.ValueCount,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// FromLookupEntities 批量转换映射表
func FromLookupEntities(lookups []*etlookup.Lookup) []*LookupResponse {
	out := make([]*LookupResponse, 0, len(lookups))
	for _, l := range lookups {
		out = append(out, FromLookupEntity(l))
	}
	return out
}

// FromLookupValueEntity 转换映射
func FromLookupValueEntity(v *etlookup.Value) *LookupValueResponse {
	if v == nil {
		return nil
	}
	return &LookupValueResponse{
		ID:            v.ID,
		LookupID:      v.LookupID,
		Left:          v.Left,
		Right:         v.Right,
		LeftMetadata:  v.LeftMetadata,
		RightMetadata: v.RightMetadata,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// FromLookupValueEntities 批量转换映射
func FromLookupValueEntities(values []*etlookup.Value) []*LookupValueResponse {
	out := make([]*LookupValueResponse, 0, len(values))
	for _, v := range values {
		out = append(out, FromLookupValueEntity(v))
	}
	return out
}

// FromLookupBulkAdd 转换批量写入结果
func FromLookupBulkAdd(r *etlookup.BulkAddResult) *LookupBulkAddResponse {
	return &LookupBulkAddResponse{
		Created: r.Created,
		Updated: r.Updated,
		Skipped: r.Skipped,
		Errors:  r.Errors,
		Values:  FromLookupValueEntities(r.Values),
		Results: mapResults(r.Results, func(o *etlookup.BulkOutcome) *LookupBulkOutcome {
			if o == nil {
				return nil
			}
			return &LookupBulkOutcome{Outcome: string(o.Outcome), Value: FromLookupValueEntity(o.Value)}
		}),
	}
}

// FromWarningEntity 转换告警
func FromWarningEntity(w *etwarning.Warning) *WarningResponse {
	if w == nil {
		return nil
	}
	return &WarningResponse{
		ID:                 w.ID,
		Type:               w.Type,
		TypeName:           w.TypeName,
		TypeID:             w.TypeID,
		ItemID:             w.ItemID,
		LeftDuplicate:      w.LeftDuplicate,
		RightDuplicate:     w.RightDuplicate,
		LeftRightDuplicate: w.LeftRightDuplicate,
		Severity:           string(w.Severity),
		Details:            w.Details,
		IsResolved:         w.IsResolved,
		ResolvedAt:         w.ResolvedAt,
		ResolvedBy:         w.ResolvedBy,
		CreatedAt:          w.CreatedAt,
	}
}

// FromWarningEntities 批量转换告警
func FromWarningEntities(ws []*etwarning.Warning) []*WarningResponse {
	out := make([]*WarningResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, FromWarningEntity(w))
	}
	return out
}

func mapResults[T, R any](results []etprimitive.ItemResult[T], convert func(T) R) []etprimitive.ItemResult[R] {
	out := make([]etprimitive.ItemResult[R], 0, len(results))
	for _, r := range results {
		mapped := etprimitive.ItemResult[R]{Index: r.Index, OK: r.OK, Error: r.Error}
		if r.OK {
			mapped.Value = convert(r.Value)
		}
		out = append(out, mapped)
	}
	return out
}
