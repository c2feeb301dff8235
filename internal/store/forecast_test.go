package store

import (
	"context"
	"testing"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/testutil"
	"github.com/shopspring/decimal"
)

func newLine(channel, code, version string, versionID int64, qty int64) *model.ForecastLine {
	return &model.ForecastLine{
		Month:       "202501",
		Channel:     channel,
		ProductCode: code,
		ProductName: "name " + code,
		Category:    "0101",
		Quantity:    decimal.NewFromInt(qty),
		Version:     version,
		VersionID:   versionID,
	}
}

func TestReplaceChannelIsNotAdditive(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(testutil.NewDB(t))

	first := []*model.ForecastLine{
		newLine("全家", "A", "v1", 1, 10),
		newLine("全家", "B", "v1", 1, 20),
		newLine("全家", "C", "v1", 1, 30),
	}
	if err := s.ReplaceChannel(ctx, "202501", "全家", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	other := newLine("711", "A", "v0", 0, 5)
	if err := s.Create(ctx, nil, other); err != nil {
		t.Fatalf("create other channel: %v", err)
	}

	second := []*model.ForecastLine{
		newLine("全家", "A", "v2", 2, 11),
		newLine("全家", "B", "v2", 2, 21),
	}
	if err := s.ReplaceChannel(ctx, "202501", "全家", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	rows, err := s.FindByMonth(ctx, nil, "202501")
	if err != nil {
		t.Fatalf("FindByMonth: %v", err)
	}
	var family, seven int
	for _, r := range rows {
		switch r.Channel {
		case "全家":
			family++
			if r.Version != "v2" {
				t.Errorf("stale row survived replace: %+v", r)
			}
		case "711":
			seven++
		}
	}
	if family != 2 || seven != 1 {
		t.Errorf("expected 2 全家 rows and 1 711 row, got %d and %d", family, seven)
	}
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(testutil.NewDB(t))

	if err := s.Create(ctx, nil, newLine("全家", "A", "v1", 1, 10)); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Create(ctx, nil, newLine("全家", "A", "v1", 1, 10))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestDistinctVersionsOrderedByRecency(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(testutil.NewDB(t))

	// Labels deliberately sort against issue order; ids decide.
	lines := []*model.ForecastLine{
		newLine("全家", "A", "b-old", 10, 1),
		newLine("711", "A", "a-new", 30, 1),
		newLine("愛買", "A", "c-mid", 20, 1),
		newLine("愛買", "B", "c-mid", 20, 1),
	}
	for _, l := range lines {
		if err := s.Create(ctx, nil, l); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	versions, err := s.DistinctVersions(ctx, nil, "202501")
	if err != nil {
		t.Fatalf("DistinctVersions: %v", err)
	}
	want := []string{"a-new", "c-mid", "b-old"}
	if len(versions) != len(want) {
		t.Fatalf("expected %v, got %v", want, versions)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, versions)
		}
	}

	rows, err := s.FindByMonthAndVersion(ctx, nil, "202501", "c-mid")
	if err != nil || len(rows) != 2 {
		t.Errorf("expected 2 rows for c-mid, got %d (%v)", len(rows), err)
	}
}

func TestFindOneAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(testutil.NewDB(t))

	line := newLine("全家", "A", "v1", 1, 10)
	if err := s.Create(ctx, nil, line); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := s.FindOne(ctx, nil, "202501", "全家", "A")
	if err != nil || found == nil || found.ID != line.ID {
		t.Fatalf("expected to find line %d, got %+v (%v)", line.ID, found, err)
	}
	if missing, err := s.FindOne(ctx, nil, "202501", "711", "A"); err != nil || missing != nil {
		t.Errorf("expected nil for missing key, got %+v (%v)", missing, err)
	}

	if err := s.Delete(ctx, nil, line.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gone, err := s.FindByID(ctx, nil, line.ID); err != nil || gone != nil {
		t.Errorf("expected row to be gone, got %+v (%v)", gone, err)
	}
}

func TestChannelVersions(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(testutil.NewDB(t))

	if err := s.ReplaceChannel(ctx, "202501", "全家", []*model.ForecastLine{
		newLine("全家", "B", "v1", 1, 10),
		newLine("全家", "A", "v1", 1, 10),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	edited := newLine("全家", "C", "v2", 2, 10)
	if err := s.Create(ctx, nil, edited); err != nil {
		t.Fatalf("create: %v", err)
	}

	infos, err := s.ChannelVersions(ctx, nil, "202501", "全家")
	if err != nil {
		t.Fatalf("ChannelVersions: %v", err)
	}
	if len(infos) != 2 || infos[0].Version != "v2" || infos[1].RowCount != 2 {
		t.Fatalf("unexpected versions: %+v", infos)
	}
	if infos[0].UpdatedAt.IsZero() || time.Since(infos[0].UpdatedAt) > time.Minute {
		t.Errorf("expected a recent updated_at, got %v", infos[0].UpdatedAt)
	}

	latest, ok, err := s.LatestChannelVersion(ctx, nil, "202501", "全家")
	if err != nil || !ok || latest != "v2" {
		t.Errorf("expected latest v2, got %q %v %v", latest, ok, err)
	}

	rows, err := s.FindChannelVersion(ctx, nil, "202501", "全家", "v1")
	if err != nil || len(rows) != 2 || rows[0].ProductCode != "A" {
		t.Errorf("expected v1 rows ordered by product code, got %+v (%v)", rows, err)
	}
}
