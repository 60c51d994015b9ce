package nodes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stewardhq/steward/pkg/capabilities/clock"
	"github.com/stewardhq/steward/pkg/capabilities/notes"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/registry"
	"github.com/stewardhq/steward/pkg/safety"
)

// stubInference replays scripted outputs in order.
type stubInference struct {
	outputs []string
	err     error
	ready   bool
	calls   int
}

func (s *stubInference) Infer(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	out := ""
	if s.calls < len(s.outputs) {
		out = s.outputs[s.calls]
	}
	s.calls++
	return out, nil
}

func (s *stubInference) InferWithGrammar(ctx context.Context, prompt, systemPrompt, grammarPath string) (string, error) {
	return s.Infer(ctx, prompt, systemPrompt)
}

func (s *stubInference) IsModelReady(ctx context.Context) bool { return s.ready }

type stubPerformer struct {
	performed []domain.Action
	err       error
}

func (p *stubPerformer) Perform(ctx context.Context, action domain.Action) error {
	if p.err != nil {
		return p.err
	}
	p.performed = append(p.performed, action)
	return nil
}

func newState(text string) *domain.TurnState {
	return domain.NewTurnState("s1", text, "")
}

func TestIntent_Classifies(t *testing.T) {
	inf := &stubInference{
		ready:   true,
		outputs: []string{`{"intent": "SET_ALARM", "entities": {"hour": "7", "minute": "30"}}`},
	}
	node := NewIntent(inf, nil)

	out := node.Process(context.Background(), newState("wake me at 7:30"))
	if out.Intent != domain.IntentSetAlarm {
		t.Fatalf("intent = %s, want SET_ALARM", out.Intent)
	}
	if out.Entities["hour"] != "7" || out.Entities["minute"] != "30" {
		t.Errorf("entities = %v", out.Entities)
	}
	if out.NeedsClarification {
		t.Error("classified turn should not need clarification")
	}
}

func TestIntent_InferenceErrorDegrades(t *testing.T) {
	inf := &stubInference{ready: true, err: errors.New("connection refused")}
	node := NewIntent(inf, nil)

	out := node.Process(context.Background(), newState("wake me up"))
	if out.Intent != domain.IntentUnknown {
		t.Errorf("intent = %s, want UNKNOWN", out.Intent)
	}
	if out.Err != "" {
		t.Errorf("model failure must not be fatal, got Err = %q", out.Err)
	}
	if out.LastFault == "" || !out.NeedsClarification {
		t.Errorf("want explanatory fault and clarification, got fault=%q clarify=%v", out.LastFault, out.NeedsClarification)
	}
}

func TestIntent_UnparseableOutputDegrades(t *testing.T) {
	inf := &stubInference{ready: true, outputs: []string{"I think you want an alarm"}}
	node := NewIntent(inf, nil)

	out := node.Process(context.Background(), newState("wake me up"))
	if out.Intent != domain.IntentUnknown || out.LastFault == "" {
		t.Errorf("got intent=%s fault=%q", out.Intent, out.LastFault)
	}
}

func TestIntent_ModelNotReady(t *testing.T) {
	node := NewIntent(&stubInference{ready: false}, nil)
	out := node.Process(context.Background(), newState("hello"))
	if out.Intent != domain.IntentUnknown || !out.NeedsClarification {
		t.Errorf("got intent=%s clarify=%v", out.Intent, out.NeedsClarification)
	}
}

func TestPlan_PassThroughForSingleStep(t *testing.T) {
	node := NewPlan(&stubInference{ready: true}, nil)
	in := newState("wake me at 7")
	in.Intent = domain.IntentSetAlarm

	out := node.Process(context.Background(), in)
	if out.Plan != nil {
		t.Errorf("single-step turn got a plan: %+v", out.Plan)
	}
}

func TestPlan_ParsesSteps(t *testing.T) {
	inf := &stubInference{
		ready: true,
		outputs: []string{`{"steps": [
			{"description": "set an alarm", "intent": "SET_ALARM", "call": "clock.create_alarm"},
			{"description": "go home", "intent": "NAVIGATE_HOME"}
		]}`},
	}
	node := NewPlan(inf, nil)
	in := newState("set an alarm then go home")
	in.Intent = domain.IntentMultiStep

	out := node.Process(context.Background(), in)
	if out.Plan == nil || len(out.Plan.Steps) != 2 {
		t.Fatalf("plan = %+v", out.Plan)
	}
	if out.Plan.Steps[0].Call != "clock.create_alarm" {
		t.Errorf("step call = %q", out.Plan.Steps[0].Call)
	}
	if out.Plan.Steps[1].Intent != domain.IntentNavigateHome {
		t.Errorf("step intent = %s", out.Plan.Steps[1].Intent)
	}
}

func TestPlan_UnparseableDowngrades(t *testing.T) {
	inf := &stubInference{ready: true, outputs: []string{"first do this, then that"}}
	node := NewPlan(inf, nil)
	in := newState("do two things")
	in.Intent = domain.IntentMultiStep

	out := node.Process(context.Background(), in)
	if out.Plan != nil {
		t.Errorf("unexpected plan: %+v", out.Plan)
	}
	if out.Intent != domain.IntentUnknown || !out.NeedsClarification {
		t.Errorf("got intent=%s clarify=%v", out.Intent, out.NeedsClarification)
	}
}

func TestToolSelect_MapsIntent(t *testing.T) {
	reg := registry.New()
	reg.Register(clock.New())
	node := NewToolSelect(reg, nil)

	in := newState("wake me at 7")
	in.Intent = domain.IntentSetAlarm
	out := node.Process(context.Background(), in)
	if out.SelectedCapability != "clock.create_alarm" {
		t.Errorf("selected = %q", out.SelectedCapability)
	}
}

func TestToolSelect_UnregisteredModuleSkipped(t *testing.T) {
	reg := registry.New()
	reg.Register(clock.New())
	node := NewToolSelect(reg, nil)

	in := newState("note that I parked on level 3")
	in.Intent = domain.IntentTakeNote
	out := node.Process(context.Background(), in)
	if out.SelectedCapability != "" {
		t.Errorf("selected = %q, want empty for unregistered module", out.SelectedCapability)
	}
}

func TestToolSelect_UIIntentStaysEmpty(t *testing.T) {
	reg := registry.New()
	reg.Register(clock.New())
	node := NewToolSelect(reg, nil)

	in := newState("tap the blue button")
	in.Intent = domain.IntentClickElement
	out := node.Process(context.Background(), in)
	if out.SelectedCapability != "" {
		t.Errorf("selected = %q", out.SelectedCapability)
	}
}

func TestToolSelect_PlanStepCall(t *testing.T) {
	reg := registry.New()
	reg.Register(notes.New())
	node := NewToolSelect(reg, nil)

	in := newState("two things")
	in.Intent = domain.IntentMultiStep
	in.Plan = &domain.Plan{Steps: []domain.PlanStep{
		{Description: "take a note", Intent: domain.IntentTakeNote, Call: "notes.create_note"},
	}}
	out := node.Process(context.Background(), in)
	if out.SelectedCapability != "notes.create_note" {
		t.Errorf("selected = %q", out.SelectedCapability)
	}
}

func TestParams_FromEntities(t *testing.T) {
	reg := registry.New()
	reg.Register(clock.New())
	node := NewParams(nil, reg, nil)

	in := newState("wake me at 7:30")
	in.SelectedCapability = "clock.create_alarm"
	in.Entities = map[string]string{"hour": "7", "minute": "30"}
	out := node.Process(context.Background(), in)

	if out.LastFault != "" {
		t.Fatalf("unexpected fault: %q", out.LastFault)
	}
	if out.Params["hour"] != 7 || out.Params["minute"] != 30 {
		t.Errorf("params = %v", out.Params)
	}
}

func TestParams_PromptsWhenEntitiesInsufficient(t *testing.T) {
	inf := &stubInference{
		ready:   true,
		outputs: []string{`{"call": "clock.create_alarm", "params": {"hour": 7}}`},
	}
	reg := registry.New()
	reg.Register(clock.New())
	node := NewParams(inf, reg, nil)

	in := newState("set a morning alarm at seven")
	in.SelectedCapability = "clock.create_alarm"
	out := node.Process(context.Background(), in)

	if inf.calls != 1 {
		t.Fatalf("inference calls = %d, want 1", inf.calls)
	}
	if _, ok := out.Params["hour"]; !ok {
		t.Errorf("params = %v, want extracted hour", out.Params)
	}
}

func TestParams_DropsUndeclaredKeys(t *testing.T) {
	inf := &stubInference{
		ready:   true,
		outputs: []string{`{"call": "clock.create_alarm", "params": {"hour": 7, "mood": "chipper"}}`},
	}
	reg := registry.New()
	reg.Register(clock.New())
	node := NewParams(inf, reg, nil)

	in := newState("set a morning alarm at seven")
	in.SelectedCapability = "clock.create_alarm"
	out := node.Process(context.Background(), in)

	if _, ok := out.Params["hour"]; !ok {
		t.Fatalf("params = %v, want extracted hour", out.Params)
	}
	if _, ok := out.Params["mood"]; ok {
		t.Errorf("params = %v, undeclared key must be dropped", out.Params)
	}
}

func TestParams_NoSelectionPassesThrough(t *testing.T) {
	reg := registry.New()
	node := NewParams(nil, reg, nil)

	in := newState("go back")
	out := node.Process(context.Background(), in)
	if out.Params != nil || out.LastFault != "" {
		t.Errorf("params=%v fault=%q", out.Params, out.LastFault)
	}
}

func TestExecute_SuccessAppendsResult(t *testing.T) {
	reg := registry.New()
	reg.Register(notes.New())
	node := NewExecute(registry.NewRouter(reg), nil)

	in := newState("note milk")
	in.SelectedCapability = "notes.create_note"
	in.Params = map[string]any{"content": "buy milk"}
	out := node.Process(context.Background(), in)

	if len(out.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(out.Results))
	}
	if _, ok := out.Results[0].(domain.Success); !ok {
		t.Errorf("result = %#v, want Success", out.Results[0])
	}
	if out.Err != "" {
		t.Errorf("unexpected fatal error: %q", out.Err)
	}
}

func TestExecute_MissingOperationIsFatal(t *testing.T) {
	reg := registry.New()
	reg.Register(clock.New())
	node := NewExecute(registry.NewRouter(reg), nil)

	in := newState("do the thing")
	in.SelectedCapability = "clock.explode"
	out := node.Process(context.Background(), in)

	if out.Err == "" {
		t.Fatal("missing operation must set the fatal error")
	}
	if len(out.Results) != 1 {
		t.Errorf("results = %d, want the error recorded", len(out.Results))
	}
}

func TestExecute_AdvancesPlan(t *testing.T) {
	reg := registry.New()
	reg.Register(notes.New())
	node := NewExecute(registry.NewRouter(reg), nil)

	in := newState("two things")
	in.SelectedCapability = "notes.create_note"
	in.Params = map[string]any{"content": "step one"}
	in.Plan = &domain.Plan{Steps: []domain.PlanStep{
		{Description: "take a note", Intent: domain.IntentTakeNote, Call: "notes.create_note"},
	}}
	out := node.Process(context.Background(), in)

	if !out.Plan.Done() {
		t.Errorf("plan not advanced: %+v", out.Plan)
	}
}

func newGate() *safety.Gate {
	return safety.NewGate(safety.NewFirewall(safety.DefaultKeywordSets()), nil)
}

func TestUIAction_AllowedActionPerformed(t *testing.T) {
	performer := &stubPerformer{}
	node := NewUIAction(newGate(), performer, nil)

	in := newState("go back")
	in.Intent = domain.IntentNavigateBack
	out := node.Process(context.Background(), in)

	if len(performer.performed) != 1 || performer.performed[0].Type != domain.ActionBack {
		t.Fatalf("performed = %+v", performer.performed)
	}
	if last, ok := out.LastResult(); !ok {
		t.Fatal("no result recorded")
	} else if s, ok := last.(domain.Success); !ok || s.Message != "Went back." {
		t.Errorf("result = %#v", last)
	}
}

func TestUIAction_DangerousActionParked(t *testing.T) {
	performer := &stubPerformer{}
	node := NewUIAction(newGate(), performer, nil)

	in := newState("tap delete account")
	in.Intent = domain.IntentClickElement
	in.Entities = map[string]string{"target": "Delete account"}
	out := node.Process(context.Background(), in)

	if len(performer.performed) != 0 {
		t.Fatalf("dangerous action was performed: %+v", performer.performed)
	}
	if out.PendingConfirmation == nil {
		t.Fatal("dangerous action not parked")
	}
	if out.PendingConfirmation.Action.Target != "Delete account" {
		t.Errorf("pending action = %+v", out.PendingConfirmation.Action)
	}
}

func TestUIAction_PassThroughWhenCapabilitySelected(t *testing.T) {
	performer := &stubPerformer{}
	node := NewUIAction(newGate(), performer, nil)

	in := newState("wake me at 7")
	in.Intent = domain.IntentSetAlarm
	in.SelectedCapability = "clock.create_alarm"
	node.Process(context.Background(), in)

	if len(performer.performed) != 0 {
		t.Errorf("performed = %+v", performer.performed)
	}
}

func TestUIAction_ScrollDefaultsDown(t *testing.T) {
	performer := &stubPerformer{}
	node := NewUIAction(newGate(), performer, nil)

	in := newState("scroll")
	in.Intent = domain.IntentScroll
	node.Process(context.Background(), in)

	if len(performer.performed) != 1 || performer.performed[0].Direction != "down" {
		t.Errorf("performed = %+v", performer.performed)
	}
}

func TestUIAction_PerformerErrorIsRecoverable(t *testing.T) {
	performer := &stubPerformer{err: errors.New("screen changed")}
	node := NewUIAction(newGate(), performer, nil)

	in := newState("go home")
	in.Intent = domain.IntentNavigateHome
	out := node.Process(context.Background(), in)

	if out.Err != "" {
		t.Errorf("dispatch failure must not be fatal, got %q", out.Err)
	}
	last, ok := out.LastResult()
	if !ok {
		t.Fatal("no result recorded")
	}
	e, ok := last.(domain.Error)
	if !ok || e.Code != domain.CodeSystemError {
		t.Errorf("result = %#v", last)
	}
}

func TestRespond_RendersLastResult(t *testing.T) {
	node := NewRespond(&stubInference{}, nil)

	in := newState("wake me at 7:30")
	in.Results = []domain.Response{domain.Success{Message: "Alarm set for 7:30"}}
	out := node.Process(context.Background(), in)

	if !out.Completed {
		t.Fatal("turn not completed")
	}
	if out.Response != "Alarm set for 7:30" {
		t.Errorf("response = %q", out.Response)
	}
}

func TestRespond_ConfirmationPrompt(t *testing.T) {
	node := NewRespond(&stubInference{}, nil)

	in := newState("tap delete")
	in.PendingConfirmation = &domain.PendingAction{
		Action:  domain.Action{Type: domain.ActionClick, Target: "Delete account"},
		Message: `Tapped "Delete account".`,
		Reason:  "matched destructive keyword",
	}
	out := node.Process(context.Background(), in)

	if !out.Completed {
		t.Fatal("confirmation turn must complete")
	}
	if !strings.HasPrefix(out.Response, "Before I continue:") ||
		!strings.Contains(out.Response, "Say yes to confirm") {
		t.Errorf("response = %q", out.Response)
	}
}

func TestRespond_ActivePlanContinuesCycle(t *testing.T) {
	node := NewRespond(&stubInference{}, nil)

	in := newState("two things")
	in.Plan = &domain.Plan{Steps: []domain.PlanStep{
		{Description: "first"}, {Description: "second"},
	}, Current: 1}
	out := node.Process(context.Background(), in)

	if out.Completed || out.Response != "" {
		t.Errorf("plan cycle ended early: completed=%v response=%q", out.Completed, out.Response)
	}
}

func TestRespond_ClarificationMentionsFault(t *testing.T) {
	node := NewRespond(&stubInference{}, nil)

	in := newState("mumble")
	in.NeedsClarification = true
	in.LastFault = "could not parse intent classification"
	out := node.Process(context.Background(), in)

	if !strings.Contains(out.Response, "rephrase") ||
		!strings.Contains(out.Response, in.LastFault) {
		t.Errorf("response = %q", out.Response)
	}
}

func TestRespond_AnswerUsesModel(t *testing.T) {
	inf := &stubInference{ready: true, outputs: []string{"It is sunny in Lisbon."}}
	node := NewRespond(inf, nil)

	in := newState("what's the weather in Lisbon?")
	in.Intent = domain.IntentAnswer
	out := node.Process(context.Background(), in)

	if out.Response != "It is sunny in Lisbon." {
		t.Errorf("response = %q", out.Response)
	}
}
