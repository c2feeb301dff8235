package model

import (
	"reflect"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"202501", false},
		{"202512", false},
		{"202513", true},
		{"2025-01", true},
		{"20251", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseMonth(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMonth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestMonthRange(t *testing.T) {
	got, err := MonthRange("202411", "202502")
	if err != nil {
		t.Fatalf("MonthRange returned error: %v", err)
	}
	want := []string{"202411", "202412", "202501", "202502"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := MonthRange("202502", "202501"); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestMonthConfigTransitions(t *testing.T) {
	m := &MonthConfig{Month: "202501", AutoCloseDay: 10}
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if !m.Close(now) || !m.IsClosed || m.ClosedAt == nil || !m.ClosedAt.Equal(now) {
		t.Fatalf("expected month to close at %v, got %+v", now, m)
	}
	if m.Close(now.Add(time.Hour)) {
		t.Error("closing a closed month must be a no-op")
	}
	if !m.ClosedAt.Equal(now) {
		t.Error("closedAt must not move on a repeated close")
	}
	if !m.Reopen() || m.IsClosed || m.ClosedAt != nil {
		t.Fatalf("expected month to reopen, got %+v", m)
	}
	if m.Reopen() {
		t.Error("reopening an open month must be a no-op")
	}
}
