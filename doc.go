/*
Package steward is an on-device assistant orchestration layer. It turns a
natural-language request plus the current screen context into either a
capability call (alarms, notes, ...) or a UI action, with every UI action
passing through a deterministic safety firewall and an optional semantic risk
classifier before it may execute.

The high-level entry point is the Assistant:

	a, err := steward.New(
		steward.WithInference(ollama.New("http://localhost:11434", "qwen2.5:3b")),
	)
	if err != nil {
		log.Fatal(err)
	}
	a.RegisterModule(clock.New())

	state, err := a.HandleTurn(ctx, "", "set an alarm for 7:30", "")
	fmt.Println(state.Response)

Dangerous actions are never executed directly. The turn completes with a
confirmation prompt and the withheld action parked on the session; Confirm
resolves it.
*/
package steward
