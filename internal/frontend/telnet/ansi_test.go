package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	result := Colorize(Red, "danger")
	assert.Equal(t, "\033[31mdanger\033[0m", result)
}

func TestRenderMarkdown_Spans(t *testing.T) {
	got := RenderMarkdown("**ST** 10: *Thr* 1d-2, _c_ `3d6` __u__")
	assert.Equal(t,
		Bold+"ST"+Reset+" 10: "+Italic+"Thr"+Reset+" 1d-2, "+Italic+"c"+Reset+" "+Cyan+"3d6"+Reset+" "+Underline+"u"+Reset,
		got)
}

func TestRenderMarkdown_CodeFence(t *testing.T) {
	got := RenderMarkdown("alice rolled\n```\n3d6: 4 + 4 + 3 (Total: 11)\n```")
	assert.Equal(t, "alice rolled\n"+Dim+"  3d6: 4 + 4 + 3 (Total: 11)"+Reset, got)
}

func TestRenderMarkdown_LeavesFencedTextAlone(t *testing.T) {
	got := RenderMarkdown("```\n**not bold**\n```")
	assert.Equal(t, Dim+"  **not bold**"+Reset, got)
}

func TestRenderMarkdown_IdentifiersKeepUnderscores(t *testing.T) {
	assert.Equal(t, "snake_case_name", RenderMarkdown("snake_case_name"))
}

func TestPropertyRenderMarkdownPlainTextUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 .,!?]{0,60}`).Draw(t, "text")
		assert.Equal(t, text, RenderMarkdown(text))
	})
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	result := StripANSI(input)
	assert.Equal(t, "red normal bold green", result)
}

func TestStripANSI_NoEscapes(t *testing.T) {
	input := "plain text"
	assert.Equal(t, input, StripANSI(input))
}

func TestStripANSI_EmptyString(t *testing.T) {
	assert.Equal(t, "", StripANSI(""))
}

// Property: StripANSI(Colorize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Yellow, Cyan, BrightCyan, BrightWhite, Bold, Dim, Italic}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		colorIdx := rapid.IntRange(0, len(colors)-1).Draw(t, "color")
		colored := Colorize(colors[colorIdx], text)
		stripped := StripANSI(colored)
		assert.Equal(t, text, stripped, "stripping ANSI from colorized text should yield original")
	})
}

// Property: StripANSI output never contains ESC character.
func TestPropertyStripANSINoEscapeInOutput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,30}`).Draw(t, "text")
		styled := Bold + Red + text + Reset
		stripped := StripANSI(styled)
		for _, c := range stripped {
			assert.NotEqual(t, '\033', c, "output should not contain ESC character")
		}
	})
}

// Property: StripANSI output length <= input length.
func TestPropertyStripANSIOutputShorterOrEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		result := StripANSI(text)
		assert.LessOrEqual(t, len(result), len(text))
	})
}
