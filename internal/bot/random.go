package bot

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed answers.yaml
var answersYAML []byte

func loadAnswers() ([]string, error) {
	var answers []string
	if err := yaml.Unmarshal(answersYAML, &answers); err != nil {
		return nil, fmt.Errorf("parsing 8-ball answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("parsing 8-ball answers: no answers")
	}
	return answers, nil
}

// splitChoices splits "a, b, or c" style input into its options.
func splitChoices(input string) []string {
	parts := []string{input}
	for _, sep := range []string{", or ", ", ", ",", " or "} {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	choices := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			choices = append(choices, p)
		}
	}
	return choices
}

func (b *Bot) cmdChoose(_ context.Context, req *Request) (Reply, error) {
	if req.RawArgs == "" {
		return Reply{}, ErrUsage
	}
	choices := splitChoices(req.RawArgs)
	if len(choices) < 2 {
		return b.reply(req.Message.ChannelID, "No."), nil
	}
	return b.reply(req.Message.ChannelID, choices[b.src.Intn(len(choices))]), nil
}

func (b *Bot) cmdFlip(_ context.Context, req *Request) (Reply, error) {
	var result string
	switch {
	case b.src.Intn(100) == 0:
		result = "Edge!"
	case b.src.Intn(2) == 0:
		result = "Heads!"
	default:
		result = "Tails!"
	}
	return b.reply(req.Message.ChannelID, result), nil
}

func (b *Bot) cmdEightBall(_ context.Context, req *Request) (Reply, error) {
	if req.RawArgs == "" {
		return Reply{}, ErrUsage
	}
	return b.reply(req.Message.ChannelID, b.answers[b.src.Intn(len(b.answers))]), nil
}
