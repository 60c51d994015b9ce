package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stewardhq/steward/pkg/domain"
)

// KeywordSets are the firewall's substring lists. All matching is done on the
// lower-cased click target. The zero value is unusable; start from
// DefaultKeywordSets and override from configuration if needed.
type KeywordSets struct {
	// Safe substrings win over every dangerous category.
	Safe []string `yaml:"safe"`

	Destructive   []string `yaml:"destructive"`
	Financial     []string `yaml:"financial"`
	Permissions   []string `yaml:"permissions"`
	Communication []string `yaml:"communication"`
}

// DefaultKeywordSets returns the built-in firewall keyword lists.
func DefaultKeywordSets() KeywordSets {
	return KeywordSets{
		Safe: []string{
			"cancel", "back", "home", "close", "dismiss", "undo", "not now", "no thanks",
		},
		Destructive: []string{
			"delete", "remove", "erase", "wipe", "format", "factory reset",
			"uninstall", "clear data", "deactivate", "unsubscribe",
		},
		Financial: []string{
			"pay", "purchase", "buy", "order", "checkout", "transfer",
			"send money", "confirm payment", "subscribe",
		},
		Permissions: []string{
			"allow", "grant", "enable access", "give access", "authorize",
			"always allow",
		},
		Communication: []string{
			"send", "post", "share", "publish", "reply", "forward", "tweet",
		},
	}
}

// Validate rejects keyword sets that would leave the firewall blind to a
// whole category. Configuration overrides must keep every list non-empty.
func (k KeywordSets) Validate() error {
	for _, set := range []struct {
		name  string
		words []string
	}{
		{"safe", k.Safe},
		{"destructive", k.Destructive},
		{"financial", k.Financial},
		{"permissions", k.Permissions},
		{"communication", k.Communication},
	} {
		if len(set.words) == 0 {
			return fmt.Errorf("keyword set %q is empty", set.name)
		}
	}
	return nil
}

// sensitiveTextPatterns flag TYPE input that looks like a credential or a
// financial/identity number.
var sensitiveTextPatterns = []*regexp.Regexp{
	// Card-number-length digit runs, with optional separators.
	regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`),
	// SSN-shaped digit groups.
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// Credential words match as substrings: typed credentials rarely arrive
	// word-separated ("password123", "apitoken=..."). "pin" stays
	// word-anchored so "typing" and "spinning" do not trip it.
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)\bpin\b`),
	regexp.MustCompile(`(?i)token`),
}

// Firewall is the deterministic first safety layer. It holds no mutable
// state; every call is a pure function of the action and the keyword sets.
type Firewall struct {
	keywords KeywordSets
}

// NewFirewall creates a firewall with the given keyword sets.
func NewFirewall(keywords KeywordSets) *Firewall {
	return &Firewall{keywords: keywords}
}

// Verdict is the firewall's decision for one action.
type Verdict struct {
	Dangerous bool
	// Category names the keyword set or pattern that matched, empty when safe.
	Category string
	Matched  string
}

// Evaluate classifies an action. The switch below is intentionally exhaustive
// over every ActionType with no default branch: adding an action type must
// not compile its way past this decision point unnoticed. Unknown types are
// rejected by Validate before the firewall runs.
func (f *Firewall) Evaluate(action domain.Action) Verdict {
	switch action.Type {
	case domain.ActionClick:
		return f.evaluateClick(action.Target)
	case domain.ActionTypeText:
		return evaluateTypedText(action.Text)
	case domain.ActionScroll:
		return Verdict{}
	case domain.ActionHome:
		return Verdict{}
	case domain.ActionBack:
		return Verdict{}
	case domain.ActionWait:
		return Verdict{}
	case domain.ActionNone:
		return Verdict{}
	}
	// Unreachable for validated actions; fail toward caution regardless.
	return Verdict{Dangerous: true, Category: "unknown-action-type", Matched: string(action.Type)}
}

func (f *Firewall) evaluateClick(target string) Verdict {
	lower := strings.ToLower(target)
	for _, safe := range f.keywords.Safe {
		if strings.Contains(lower, safe) {
			return Verdict{}
		}
	}
	for _, set := range []struct {
		name  string
		words []string
	}{
		{"destructive", f.keywords.Destructive},
		{"financial", f.keywords.Financial},
		{"permissions", f.keywords.Permissions},
		{"communication", f.keywords.Communication},
	} {
		for _, w := range set.words {
			if strings.Contains(lower, w) {
				return Verdict{Dangerous: true, Category: set.name, Matched: w}
			}
		}
	}
	return Verdict{}
}

func evaluateTypedText(text string) Verdict {
	for _, re := range sensitiveTextPatterns {
		if m := re.FindString(text); m != "" {
			return Verdict{Dangerous: true, Category: "sensitive-input", Matched: m}
		}
	}
	return Verdict{}
}

// Validate performs the structural required-field checks each action type has
// before it may reach the firewall.
func Validate(action domain.Action) error {
	if !action.Type.Known() {
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	switch action.Type {
	case domain.ActionClick:
		if strings.TrimSpace(action.Target) == "" {
			return fmt.Errorf("CLICK action requires a target")
		}
	case domain.ActionTypeText:
		if action.Text == "" {
			return fmt.Errorf("TYPE action requires text")
		}
	case domain.ActionScroll:
		if strings.TrimSpace(action.Direction) == "" {
			return fmt.Errorf("SCROLL action requires a direction")
		}
	case domain.ActionHome, domain.ActionBack, domain.ActionWait, domain.ActionNone:
	}
	return nil
}
