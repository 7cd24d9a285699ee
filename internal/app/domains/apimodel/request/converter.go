package request

import (
	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etset"
)

// ToOptions 将 Request DTO 转换为领域对象，未传的开关取默认值
func (r *CreateSetRequest) ToOptions() etset.Options {
	opts := etset.DefaultOptions()
	opts.Description = r.Description
	setBool(&opts.AllowDuplicates, r.AllowDuplicates)
	setBool(&opts.StrictChecking, r.StrictChecking)
	return opts
}

// MergeOptions 在当前配置上覆盖请求中出现的字段
func (r *UpdateSetRequest) MergeOptions(current *etset.Set) etset.Options {
	opts := etset.Options{
		Description:     current.Description,
		AllowDuplicates: current.AllowDuplicates,
		StrictChecking:  current.StrictChecking,
	}
	if r.Description != nil {
		opts.Description = r.Description
	}
	setBool(&opts.AllowDuplicates, r.AllowDuplicates)
	setBool(&opts.StrictChecking, r.StrictChecking)
	return opts
}

// ToBulkItems 转换批量写入条目
func (r *BulkSetValuesRequest) ToBulkItems() []etset.BulkItem {
	items := make([]etset.BulkItem, 0, len(r.Values))
	for _, v := range r.Values {
		items = append(items, etset.BulkItem{Value: v.Value, Metadata: v.Metadata})
	}
	return items
}

// ToOptions 将 Request DTO 转换为领域对象，未传的开关取默认值
func (r *CreateLookupRequest) ToOptions() etlookup.Options {
	opts := etlookup.DefaultOptions()
	opts.Description = r.Description
	opts.LeftSystem = r.LeftSystem
	opts.RightSystem = r.RightSystem
	setBool(&opts.AllowLeftDups, r.AllowLeftDups)
	setBool(&opts.AllowRightDups, r.AllowRightDups)
	setBool(&opts.AllowLeftRightDups, r.AllowLeftRightDups)
	setBool(&opts.StrictChecking, r.StrictChecking)
	return opts
}

// MergeOptions 在当前配置上覆盖请求中出现的字段
func (r *UpdateLookupRequest) MergeOptions(current *etlookup.Lookup) etlookup.Options {
	opts := etlookup.Options{
		Description:        current.Description,
		LeftSystem:         current.LeftSystem,
		RightSystem:        current.RightSystem,
		AllowLeftDups:      current.AllowLeftDups,
		AllowRightDups:     current.AllowRightDups,
		AllowLeftRightDups: current.AllowLeftRightDups,
		StrictChecking:     current.StrictChecking,
	}
	if r.Description != nil {
		opts.Description = r.Description
	}
	if r.LeftSystem != nil {
		opts.LeftSystem = r.LeftSystem
	}
	if r.RightSystem != nil {
		opts.RightSystem = r.RightSystem
	}
	setBool(&opts.AllowLeftDups, r.AllowLeftDups)
	setBool(&opts.AllowRightDups, r.AllowRightDups)
	setBool(&opts.AllowLeftRightDups, r.AllowLeftRightDups)
	setBool(&opts.StrictChecking, r.StrictChecking)
	return opts
}

// ToBulkItem 转换单条映射
func (r *LookupValueRequest) ToBulkItem() etlookup.BulkItem {
	return etlookup.BulkItem{
		Left:          r.Left,
		Right:         r.Right,
		LeftMetadata:  r.LeftMetadata,
		RightMetadata: r.RightMetadata,
	}
}

// ToBulkItems 转换批量写入条目
func (r *BulkLookupValuesRequest) ToBulkItems() []etlookup.BulkItem {
	items := make([]etlookup.BulkItem, 0, len(r.Values))
	for i := range r.Values {
		items = append(items, r.Values[i].ToBulkItem())
	}
	return items
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
