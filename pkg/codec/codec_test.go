package codec

import (
	"testing"

	"github.com/stewardhq/steward/pkg/domain"
)

func TestRepair_BareEnumValue(t *testing.T) {
	got := ParseAction(`{"action":CLICK,"target":"ok"}`)
	if got == nil {
		t.Fatal("expected action, got nil")
	}
	if got.Type != domain.ActionClick {
		t.Errorf("Type = %q, want CLICK", got.Type)
	}
	if got.Target != "ok" {
		t.Errorf("Target = %q, want ok", got.Target)
	}
}

func TestRepair_TruncatedBareValue(t *testing.T) {
	got := Repair(`{"action":CLICK`)
	want := `{"action":"CLICK"}`
	if got != want {
		t.Fatalf("Repair = %q, want %q", got, want)
	}
	a := ParseAction(`{"action":CLICK`)
	if a == nil {
		t.Fatal("expected action, got nil")
	}
	if a.Type != domain.ActionClick {
		t.Errorf("Type = %q, want CLICK", a.Type)
	}
}

func TestRepair_OpenStringBeforeBrace(t *testing.T) {
	got := ParseAction(`{"action":"CLICK","target":"ok}`)
	if got == nil {
		t.Fatal("expected action, got nil")
	}
	if got.Target != "ok" {
		t.Errorf("Target = %q, want ok", got.Target)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		`{"action":CLICK,"target":"ok"}`,
		`{"action":CLICK`,
		"```json\n{\"call\":\"clock.get_time\"}\n```",
		`{"a":"unterminated`,
		`{"a":"ok}`,
		`{"a":1,}`,
		`{"a":1,`,
		`{"nested":{"b":2}`,
	}
	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestRepair_DoesNotQuoteLiterals(t *testing.T) {
	in := `{"a":true,"b":false,"c":null}`
	if got := Repair(in); got != in {
		t.Errorf("Repair(%q) = %q, literals must stay unquoted", in, got)
	}
}

func TestStripFences(t *testing.T) {
	in := "```json\n{\"call\":\"clock.get_time\"}\n```"
	want := `{"call":"clock.get_time"}`
	if got := StripFences(in); got != want {
		t.Errorf("StripFences = %q, want %q", got, want)
	}
}

func TestExtractBalancedObject(t *testing.T) {
	text := `Sure! Here is the call: {"call":"notes.create_note","params":{"content":"a {brace} inside"}} hope that helps`
	obj, ok := ExtractBalancedObject(text)
	if !ok {
		t.Fatal("expected an object")
	}
	want := `{"call":"notes.create_note","params":{"content":"a {brace} inside"}}`
	if obj != want {
		t.Errorf("got %q, want %q", obj, want)
	}
}

func TestExtractBalancedObject_BracesInStrings(t *testing.T) {
	text := `{"a":"}"}`
	obj, ok := ExtractBalancedObject(text)
	if !ok || obj != text {
		t.Errorf("got %q ok=%v, want full object", obj, ok)
	}
}

func TestParseAction_TypeAlias(t *testing.T) {
	got := ParseAction(`{"type":"scroll","direction":"down"}`)
	if got == nil {
		t.Fatal("expected action, got nil")
	}
	if got.Type != domain.ActionScroll {
		t.Errorf("Type = %q, want SCROLL", got.Type)
	}
	if got.Direction != "down" {
		t.Errorf("Direction = %q, want down", got.Direction)
	}
}

func TestParseAction_Garbage(t *testing.T) {
	for _, in := range []string{"", "not json at all", `{"target":"ok"}`, `[1,2,3]`} {
		if got := ParseAction(in); got != nil {
			t.Errorf("ParseAction(%q) = %+v, want nil", in, got)
		}
	}
}

func TestParseToolCall(t *testing.T) {
	got := ParseToolCall("```json\n{\"call\":\"clock.create_alarm\",\"params\":{\"hour\":7,\"minute\":30}}\n```")
	if got == nil {
		t.Fatal("expected tool call, got nil")
	}
	if got.Call != "clock.create_alarm" {
		t.Errorf("Call = %q", got.Call)
	}
	if got.Params["hour"] != float64(7) {
		t.Errorf("hour = %v (%T), want 7", got.Params["hour"], got.Params["hour"])
	}
}

func TestParseToolCall_ToolAlias(t *testing.T) {
	got := ParseToolCall(`{"tool":"notes.list_notes"}`)
	if got == nil || got.Call != "notes.list_notes" {
		t.Fatalf("got %+v, want notes.list_notes", got)
	}
}

func TestParseRisk(t *testing.T) {
	got := ParseRisk(`{"dangerous":true,"confidence":1.7,"reason":"payment button"}`)
	if got == nil {
		t.Fatal("expected risk, got nil")
	}
	if !got.Dangerous {
		t.Error("Dangerous = false, want true")
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want clamped to 1.0", got.Confidence)
	}
}

func TestParseRisk_MissingDangerousKey(t *testing.T) {
	if got := ParseRisk(`{"confidence":0.9}`); got != nil {
		t.Errorf("got %+v, want nil when dangerous key is absent", got)
	}
}
