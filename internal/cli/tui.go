package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintBanner outputs the startup banner.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	s1 := termenv.String(`      _                            _ `).Foreground(p.Color("#818cf8"))
	s2 := termenv.String(`  ___| |_ _____      ____ _ _ __ __| |`).Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(` / __| __/ _ \ \ /\ / / _' | '__/ _' |`).Foreground(p.Color("#c084fc"))
	s4 := termenv.String(` \__ \ ||  __/\ V  V / (_| | | | (_| |`).Foreground(p.Color("#e879f9"))
	s5 := termenv.String(` |___/\__\___| \_/\_/ \__,_|_|  \__,_|`).Foreground(p.Color("#f472b6"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Printf("  on-device assistant %s\n\n", version)
}

// NewRenderer returns a function that renders markdown for the terminal.
// Outside a TTY it returns the text unchanged.
func NewRenderer() func(string) string {
	if !IsInteractive() {
		return func(markdown string) string { return markdown }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) string { return markdown }
	}

	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
}
