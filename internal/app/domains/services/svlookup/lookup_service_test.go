package svlookup

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/config"
	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/domains/modules/mdlookup"
	"stratools/internal/app/domains/repo/rplookup"
	"stratools/internal/app/infra/persistence/dbtest"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

func newTestService(t *testing.T) *LookupService {
	t.Helper()
	repo := rplookup.NewLookupRepository(dbtest.Open(t))
	return NewLookupService(mdlookup.NewLookupModule(repo), config.BulkConfig{BatchSize: 2, MaxItems: 10}, logger.NewNop())
}

func item(left, right string) etlookup.BulkItem {
	return etlookup.BulkItem{Left: left, Right: right}
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetLookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	opts := etlookup.DefaultOptions()
	opts.LeftSystem = strPtr("crm")
	_, err := svc.CreateLookup(ctx, "crm_to_erp", opts)
	require.NoError(t, err)

	_, err = svc.AddValue(ctx, "crm_to_erp", item("c-1", "e-1"))
	require.NoError(t, err)

	got, err := svc.GetLookup(ctx, "crm_to_erp")
	require.NoError(t, err)
	assert.Equal(t, "crm", *got.LeftSystem)
	assert.Equal(t, int64(1), got.ValueCount)

	_, err = svc.CreateLookup(ctx, "crm_to_erp", etlookup.DefaultOptions())
	assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateName))

	_, err = svc.CreateLookup(ctx, "bad name", etlookup.DefaultOptions())
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidName))

	_, err = svc.AddValue(ctx, "missing", item("a", "b"))
	assert.True(t, errorx.IsCode(err, errorx.CodeNotFound))
}

func TestBulkInsert_PartialFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateLookup(ctx, "ids", etlookup.DefaultOptions())
	require.NoError(t, err)

	out, err := svc.AddValuesBulk(ctx, "ids", "", []etlookup.BulkItem{
		item("a", "1"), item("", "2"), item("b", "3"), item("a", "1"), item("c", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Created)
	assert.Zero(t, out.Updated)
	assert.Zero(t, out.Skipped)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, 1, out.Errors[0].Index)
	assert.Equal(t, 4, out.Errors[1].Index)

	_, err = svc.AddValuesBulk(ctx, "ids", "merge", []etlookup.BulkItem{item("a", "1")})
	assert.True(t, errorx.IsCode(err, errorx.CodeValidation))

	_, err = svc.AddValuesBulk(ctx, "ids", etlookup.BulkModeInsert, make([]etlookup.BulkItem, 11))
	assert.True(t, errorx.IsCode(err, errorx.CodeValidation))
}

func TestBulkSkip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateLookup(ctx, "ids", etlookup.DefaultOptions())
	require.NoError(t, err)
	existing, err := svc.AddValue(ctx, "ids", item("a", "1"))
	require.NoError(t, err)

	out, err := svc.AddValuesBulk(ctx, "ids", etlookup.BulkModeSkip, []etlookup.BulkItem{
		item("a", "1"), item("a", "2"), item("a", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 2, out.Skipped)
	assert.Equal(t, existing.ID, out.Results[0].Value.Value.ID)

	got, err := svc.GetLookup(ctx, "ids")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ValueCount)

	// 值中含分隔符时不能与其他映射混淆
	_, err = svc.AddValue(ctx, "ids", item("x|y", "z"))
	require.NoError(t, err)
	out, err = svc.AddValuesBulk(ctx, "ids", etlookup.BulkModeSkip, []etlookup.BulkItem{
		item("x|y", "w"), item("x", "y|z"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Created)
	assert.Zero(t, out.Skipped)
}

func TestBulkUpsert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateLookup(ctx, "ids", etlookup.DefaultOptions())
	require.NoError(t, err)
	a, err := svc.AddValue(ctx, "ids", etlookup.BulkItem{Left: "a", Right: "1", LeftMetadata: json.RawMessage(`{"x":1}`)})
	require.NoError(t, err)

	out, err := svc.AddValuesBulk(ctx, "ids", etlookup.BulkModeUpsert, []etlookup.BulkItem{
		{Left: "a", Right: "1", LeftMetadata: json.RawMessage(`{ "x": 1 }`)},
		item("b", "2"),
		item("a", "9"),
		item("b", "3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 2, out.Updated)
	assert.Empty(t, out.Errors)

	values, _, err := svc.SearchValues(ctx, "ids", etlookup.SearchQuery{Left: strPtr("a")})
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, a.ID, values[0].ID)
	assert.Equal(t, "9", values[0].Right)
	assert.Nil(t, values[0].LeftMetadata)

	values, _, err = svc.SearchValues(ctx, "ids", etlookup.SearchQuery{Left: strPtr("b")})
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "3", values[0].Right)
}

func TestStrictPolicy(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	opts := etlookup.Options{AllowLeftDups: false, AllowRightDups: true, AllowLeftRightDups: true, StrictChecking: true}
	_, err := svc.CreateLookup(ctx, "strict_left", opts)
	require.NoError(t, err)

	a, err := svc.AddValue(ctx, "strict_left", item("a", "1"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "strict_left", item("a", "2"))
	assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateValue))
	_, err = svc.AddValue(ctx, "strict_left", item("b", "1"))
	require.NoError(t, err)

	// 更新自身不算重复
	_, err = svc.UpdateValue(ctx, "strict_left", a.ID, item("a", "3"))
	require.NoError(t, err)
	_, err = svc.UpdateValue(ctx, "strict_left", a.ID, item("b", "3"))
	assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateValue))

	pairOpts := etlookup.DefaultOptions()
	pairOpts.AllowLeftRightDups = false
	pairOpts.StrictChecking = true
	_, err = svc.CreateLookup(ctx, "strict_pair", pairOpts)
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "strict_pair", item("a", "1"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "strict_pair", item("a", "2"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "strict_pair", item("a", "1"))
	assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateValue))

	// 未开启严格模式时策略只用于检测
	loose := etlookup.Options{AllowLeftDups: false}
	_, err = svc.CreateLookup(ctx, "loose", loose)
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "loose", item("a", "1"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "loose", item("a", "1"))
	require.NoError(t, err)
}

func TestStrictPolicy_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	opts := etlookup.DefaultOptions()
	opts.AllowLeftRightDups = false
	opts.StrictChecking = true
	_, err := svc.CreateLookup(ctx, "strict_pair", opts)
	require.NoError(t, err)

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddValue(ctx, "strict_pair", item("a", "1"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateValue), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	got, err := svc.GetLookup(ctx, "strict_pair")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ValueCount)
}

func TestSearchAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateLookup(ctx, "ids", etlookup.DefaultOptions())
	require.NoError(t, err)

	a, err := svc.AddValue(ctx, "ids", item("Customer-1", "ERP-1"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "ids", item("customer-2", "erp-2"))
	require.NoError(t, err)
	_, err = svc.AddValue(ctx, "ids", item("vendor-1", "erp-3"))
	require.NoError(t, err)

	values, page, err := svc.SearchValues(ctx, "ids", etlookup.SearchQuery{Search: strPtr("customer")})
	require.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, etprimitive.DefaultLimit, page.Limit)

	values, _, err = svc.SearchValues(ctx, "ids", etlookup.SearchQuery{Right: strPtr("ERP-1")})
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, a.ID, values[0].ID)

	require.NoError(t, svc.RemoveValue(ctx, "ids", a.ID))
	err = svc.RemoveValue(ctx, "ids", a.ID)
	assert.True(t, errorx.IsCode(err, errorx.CodeNotFound))

	_, err = svc.UpdateValue(ctx, "ids", a.ID, item("x", "y"))
	assert.True(t, errorx.IsCode(err, errorx.CodeNotFound))
}

func TestClearDeleteAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateLookup(ctx, "ids", etlookup.DefaultOptions())
	require.NoError(t, err)

	var ids []string
	for _, l := range []string{"a", "b", "c", "d"} {
		v, err := svc.AddValue(ctx, "ids", item(l, "x"))
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}

	values, page, err := svc.ListValues(ctx, "ids", etprimitive.NewPagination(3, 0))
	require.NoError(t, err)
	assert.Len(t, values, 3)
	assert.True(t, page.HasMore)

	n, err := svc.DeleteValuesList(ctx, "ids", ids[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.ClearValues(ctx, "ids")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	lookups, page, err := svc.ListLookups(ctx, etprimitive.NewPagination(10, 0))
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	assert.Zero(t, lookups[0].ValueCount)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.DeleteLookup(ctx, "ids"))
	_, err = svc.GetLookup(ctx, "ids")
	assert.True(t, errorx.IsCode(err, errorx.CodeNotFound))
}
