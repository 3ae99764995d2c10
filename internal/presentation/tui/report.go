package tui

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/muesli/termenv"
)

// Printer writes validation outcomes in color.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter returns a Printer writing to w with the given color profile.
func NewPrinter(w io.Writer, profile termenv.Profile) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

func (p *Printer) styled(s, color string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(color))
}

// Report prints a ValidationResult under a heading naming the schema.
func (p *Printer) Report(key string, result schema.ValidationResult) {
	if result.Valid {
		fmt.Fprintf(p.w, "%s %s\n", p.styled("✔ valid", "#22c55e").Bold(), key)
	} else {
		fmt.Fprintf(p.w, "%s %s\n", p.styled("✖ invalid", "#ef4444").Bold(), key)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(p.w, "  %s %s\n", p.styled("error", "#ef4444"), e)
	}
	for _, path := range slices.Sorted(maps.Keys(result.PropertyErrors)) {
		for _, e := range result.PropertyErrors[path] {
			fmt.Fprintf(p.w, "  %s [%s] %s\n", p.styled("error", "#ef4444"), path, e)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(p.w, "  %s %s\n", p.styled("warn", "#eab308"), w)
	}
}

// Error prints a failure line.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.styled("✖", "#ef4444").Bold(), err)
}

// Success prints a confirmation line.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.styled("✔", "#22c55e").Bold(), msg)
}
