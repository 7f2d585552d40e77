package main

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/quasilyte/rxbuild"
	"github.com/quasilyte/rxbuild/dsl"
)

// patternData is the --format template data.
type patternData struct {
	Pattern string
	Flags   string
	Mask    int
	Engine  string
	Groups  []dsl.GroupIndex
}

func renderPattern(tmpl *template.Template, data patternData, rejected bool, colors palette) (string, error) {
	if rejected {
		data.Pattern = colors.paint(data.Pattern, colors.rejected)
	}
	var buf strings.Builder
	buf.Grow(len(data.Pattern) * 2) // Approx
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderGroup(tmpl *template.Template, g dsl.GroupIndex, colors palette) (string, error) {
	data := map[string]string{
		"Name":  colors.paint(g.Name, colors.name),
		"Index": colors.paint(strconv.Itoa(g.Index), colors.index),
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatFlags(flags []rxbuild.Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}
