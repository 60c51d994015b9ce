package clock

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stewardhq/steward/pkg/domain"
)

func TestCreateAlarm(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "create_alarm", map[string]any{
		"hour": 7, "minute": 30, "label": "work",
	})

	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if s.Message != "Alarm set for 7:30 (work)" {
		t.Errorf("message = %q", s.Message)
	}
	alarms := m.Alarms()
	if len(alarms) != 1 || alarms[0].Hour != 7 || alarms[0].Minute != 30 {
		t.Errorf("alarms = %+v", alarms)
	}
}

func TestCreateAlarm_MinuteDefaultsToZero(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "create_alarm", map[string]any{"hour": 9})

	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if s.Message != "Alarm set for 9:00" {
		t.Errorf("message = %q", s.Message)
	}
}

func TestCreateAlarm_RangeChecks(t *testing.T) {
	m := New()
	cases := []map[string]any{
		{"hour": 24},
		{"hour": -1},
		{"hour": 7, "minute": 60},
	}
	for _, params := range cases {
		resp := m.Execute(context.Background(), "create_alarm", params)
		e, ok := resp.(domain.Error)
		if !ok || e.Code != domain.CodeInvalidParams {
			t.Errorf("params %v: resp = %#v", params, resp)
		}
	}
	if len(m.Alarms()) != 0 {
		t.Errorf("rejected alarms were stored: %+v", m.Alarms())
	}
}

func TestSetTimer(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "set_timer", map[string]any{"duration": "10m"})

	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if !strings.Contains(s.Message, "10m") {
		t.Errorf("message = %q", s.Message)
	}
	if s.Data["duration_seconds"] != 600 {
		t.Errorf("data = %v", s.Data)
	}
}

func TestSetTimer_BareNumberMeansMinutes(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "set_timer", map[string]any{"duration": "5"})

	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if s.Data["duration_seconds"] != 300 {
		t.Errorf("data = %v", s.Data)
	}
}

func TestSetTimer_InvalidDuration(t *testing.T) {
	m := New()
	for _, dur := range []string{"", "soon", "-5m"} {
		resp := m.Execute(context.Background(), "set_timer", map[string]any{"duration": dur})
		e, ok := resp.(domain.Error)
		if !ok || e.Code != domain.CodeInvalidParams {
			t.Errorf("duration %q: resp = %#v", dur, resp)
		}
	}
}

func TestGetTime(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 15, 4, 0, 0, time.UTC)
	m := New(WithNow(func() time.Time { return fixed }))

	resp := m.Execute(context.Background(), "get_time", nil)
	s, ok := resp.(domain.Success)
	if !ok {
		t.Fatalf("resp = %#v", resp)
	}
	if s.Message != "It is 3:04 PM" {
		t.Errorf("message = %q", s.Message)
	}
}

func TestUnknownOperation(t *testing.T) {
	m := New()
	resp := m.Execute(context.Background(), "snooze", nil)
	e, ok := resp.(domain.Error)
	if !ok || e.Code != domain.CodeNotFound {
		t.Errorf("resp = %#v", resp)
	}
}
