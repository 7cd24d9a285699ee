package svdetect

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/app/domains/modules/mdlookup"
	"stratools/internal/app/domains/modules/mdwarning"
	"stratools/internal/app/domains/repo/rplookup"
	"stratools/internal/app/domains/repo/rpwarning"
	"stratools/internal/app/infra/persistence/dbtest"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/logger"
)

type fakeNotifier struct {
	events []*redis.WarningsRefreshed
	err    error
}

func (f *fakeNotifier) PublishWarningsRefreshed(_ context.Context, n *redis.WarningsRefreshed) error {
	f.events = append(f.events, n)
	return f.err
}

// flakyLookupRepo 扫描指定 Lookup 时失败
type flakyLookupRepo struct {
	rplookup.LookupRepository
	failID string
}

func (r *flakyLookupRepo) ListAllValues(ctx context.Context, lookupID string) ([]*etlookup.Value, error) {
	if lookupID == r.failID {
		return nil, errors.New("read timeout")
	}
	return r.LookupRepository.ListAllValues(ctx, lookupID)
}

type fixture struct {
	lookupRepo  *flakyLookupRepo
	warningRepo rpwarning.WarningRepository
	notifier    *fakeNotifier
	svc         *DetectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{
		lookupRepo:  &flakyLookupRepo{LookupRepository: rplookup.NewLookupRepository(db)},
		warningRepo: rpwarning.NewWarningRepository(db),
		notifier:    &fakeNotifier{},
	}
	f.svc = NewDetectionService(
		mdlookup.NewLookupModule(f.lookupRepo),
		mdwarning.NewWarningModule(f.warningRepo),
		f.notifier,
		logger.NewNop(),
	)
	return f
}

func (f *fixture) lookup(t *testing.T, name string, pairs ...[2]string) *etlookup.Lookup {
	t.Helper()
	ctx := context.Background()
	l, err := etlookup.NewLookup(name, etlookup.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.lookupRepo.Create(ctx, l))
	for _, p := range pairs {
		v, err := etlookup.NewValue(l.ID, p[0], p[1], nil, nil)
		require.NoError(t, err)
		require.NoError(t, f.lookupRepo.CreateValue(ctx, v))
	}
	return l
}

func (f *fixture) warnings(t *testing.T) []*etwarning.Warning {
	t.Helper()
	ws, _, err := f.warningRepo.List(context.Background(), etwarning.Filter{Limit: 1000})
	require.NoError(t, err)
	return ws
}

// fingerprint 忽略 ID 和时间，只比较告警内容
func fingerprint(ws []*etwarning.Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.TypeID+"/"+w.ItemID+"/"+string(w.Severity)+"/"+
			boolStr(w.LeftDuplicate)+boolStr(w.RightDuplicate)+boolStr(w.LeftRightDuplicate)+"/"+string(w.Details))
	}
	sort.Strings(out)
	return out
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func TestExecute_ProducesWarnings(t *testing.T) {
	f := newFixture(t)
	f.lookup(t, "single_side", [2]string{"A", "X"}, [2]string{"A", "Y"}, [2]string{"B", "X"})
	f.lookup(t, "pairs", [2]string{"A", "X"}, [2]string{"A", "X"}, [2]string{"A", "Z"})
	f.lookup(t, "clean", [2]string{"A", "X"})

	require.NoError(t, f.svc.Execute(context.Background()))

	ws := f.warnings(t)
	require.Len(t, ws, 7)
	high := 0
	for _, w := range ws {
		if w.Severity == etwarning.SeverityHigh {
			high++
			assert.Equal(t, "pairs", w.TypeName)
		}
	}
	assert.Equal(t, 2, high)
	// HIGH 排在 MEDIUM 之前
	assert.Equal(t, etwarning.SeverityHigh, ws[0].Severity)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, JobName, f.notifier.events[0].Job)
	assert.Equal(t, 7, f.notifier.events[0].Warnings)
}

func TestExecute_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lookup(t, "ids", [2]string{"A", "X"}, [2]string{"A", "Y"}, [2]string{"B", "X"}, [2]string{"C", "Z"}, [2]string{"C", "Z"})

	require.NoError(t, f.svc.Execute(ctx))
	first := fingerprint(f.warnings(t))

	require.NoError(t, f.svc.Execute(ctx))
	second := fingerprint(f.warnings(t))

	assert.Equal(t, first, second)
	assert.Len(t, second, 6)
}

func TestExecute_ResolvedWarningsReappear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lookup(t, "ids", [2]string{"A", "X"}, [2]string{"A", "X"})
	require.NoError(t, f.svc.Execute(ctx))

	ws := f.warnings(t)
	require.Len(t, ws, 2)
	_, err := f.warningRepo.ResolveBulk(ctx, []string{ws[0].ID, ws[1].ID}, "ops", ws[0].CreatedAt)
	require.NoError(t, err)

	require.NoError(t, f.svc.Execute(ctx))
	for _, w := range f.warnings(t) {
		assert.False(t, w.IsResolved)
	}
}

func TestExecute_FixedDataClearsWarnings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.lookup(t, "ids", [2]string{"A", "X"}, [2]string{"A", "X"})
	require.NoError(t, f.svc.Execute(ctx))
	require.Len(t, f.warnings(t), 2)

	_, err := f.lookupRepo.ClearValues(ctx, l.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Execute(ctx))
	assert.Empty(t, f.warnings(t))
}

func TestExecute_ScanFailureKeepsPreviousWarnings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lookup(t, "a_first", [2]string{"A", "X"}, [2]string{"A", "X"})
	broken := f.lookup(t, "b_broken", [2]string{"B", "Y"})
	require.NoError(t, f.svc.Execute(ctx))
	before := fingerprint(f.warnings(t))
	require.Len(t, before, 2)

	f.lookupRepo.failID = broken.ID
	err := f.svc.Execute(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b_broken")

	assert.Equal(t, before, fingerprint(f.warnings(t)))
	assert.Len(t, f.notifier.events, 1)
}

func TestExecute_NotifyFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("redis down")
	f.lookup(t, "ids", [2]string{"A", "X"})

	require.NoError(t, f.svc.Execute(context.Background()))
}

func TestExecute_NilNotifier(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewDetectionService(
		mdlookup.NewLookupModule(rplookup.NewLookupRepository(db)),
		mdwarning.NewWarningModule(rpwarning.NewWarningRepository(db)),
		nil,
		logger.NewNop(),
	)
	require.NoError(t, svc.Execute(context.Background()))
}
