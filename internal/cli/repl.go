package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/pkg/domain"
)

// ReplOptions configures the interactive loop.
type ReplOptions struct {
	SessionID string
	// Once handles a single request and exits.
	Once string
}

// RunRepl drives a conversation with the assistant on stdin/stdout.
func RunRepl(ctx context.Context, assistant *steward.Assistant, opts ReplOptions) error {
	render := NewRenderer()

	if opts.Once != "" {
		state, err := assistant.HandleTurn(ctx, opts.SessionID, opts.Once, "")
		if err != nil {
			return err
		}
		fmt.Print(render(state.Response))
		fmt.Println()
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	sessionID := opts.SessionID
	awaitingConfirmation := false

	for {
		if ctx.Err() != nil {
			return nil
		}

		if awaitingConfirmation {
			fmt.Print("confirm (y/n)> ")
		} else {
			fmt.Print("you> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			fmt.Println("Bye!")
			return nil
		}

		var state *domain.TurnState
		if awaitingConfirmation && isYesNo(text) {
			state, err = assistant.Confirm(ctx, sessionID, isYes(text))
			if errors.Is(err, domain.ErrNoPendingAction) {
				awaitingConfirmation = false
				continue
			}
		} else {
			state, err = assistant.HandleTurn(ctx, sessionID, text, "")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		sessionID = state.SessionID
		awaitingConfirmation = state.PendingConfirmation != nil

		fmt.Print(render(state.Response))
		fmt.Println()
	}
}

func isYesNo(text string) bool {
	return isYes(text) || isNo(text)
}

func isYes(text string) bool {
	switch strings.ToLower(text) {
	case "y", "yes", "yeah", "yep", "confirm", "ok", "okay":
		return true
	}
	return false
}

func isNo(text string) bool {
	switch strings.ToLower(text) {
	case "n", "no", "nope", "cancel", "stop":
		return true
	}
	return false
}
