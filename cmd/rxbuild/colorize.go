package main

import (
	"fmt"
)

var ansiColorMap = map[string]string{
	"dark-red": "31m",
	"red":      "31;1m",

	"dark-green": "32m",
	"green":      "32;1m",

	"dark-yellow": "33m",
	"yellow":      "33;1m",

	"dark-blue": "34m",
	"blue":      "34;1m",

	"dark-magenta": "35m",
	"magenta":      "35;1m",

	"dark-cyan": "36m",
	"cyan":      "36;1m",
}

// palette colors the output parts.
// A disabled palette returns the text unchanged.
type palette struct {
	enabled bool

	name     string
	index    string
	rejected string
}

func newPalette(args *arguments) (palette, error) {
	p := palette{
		enabled:  !args.NoColor,
		name:     args.NameColor,
		index:    args.IndexColor,
		rejected: args.ErrorColor,
	}
	colors := []struct {
		flag  string
		color string
	}{
		{"color-name", p.name},
		{"color-index", p.index},
		{"color-error", p.rejected},
	}
	for _, c := range colors {
		if _, err := colorizeText("", c.color); err != nil {
			return p, fmt.Errorf("%s: %w", c.flag, err)
		}
	}
	return p, nil
}

// paint expects a color that was checked by newPalette.
func (p palette) paint(s, color string) string {
	if !p.enabled {
		return s
	}
	result, err := colorizeText(s, color)
	if err != nil {
		panic(err)
	}
	return result
}

func colorizeText(s, color string) (string, error) {
	switch color {
	case "", "white":
		return s, nil
	default:
		escape, ok := ansiColorMap[color]
		if !ok {
			return "", fmt.Errorf("unsupported color: %s", color)
		}
		return "\033[" + escape + s + "\033[0m", nil
	}
}
