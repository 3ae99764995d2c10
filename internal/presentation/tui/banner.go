package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner shown when a server starts.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	out := termenv.NewOutput(w, termenv.WithProfile(profile))
	lines := []struct {
		text  string
		color string
	}{
		{"                               _                           ", "#818cf8"},
		{"  _ __  _ __ ___  _ __  ___  ___| |__   ___ _ __ ___   __ _ ", "#a78bfa"},
		{" | '_ \\| '__/ _ \\| '_ \\/ __|/ __| '_ \\ / _ \\ '_ ` _ \\ / _` |", "#c084fc"},
		{" | |_) | | | (_) | |_) \\__ \\ (__| | | |  __/ | | | | | (_| |", "#e879f9"},
		{" | .__/|_|  \\___/| .__/|___/\\___|_| |_|\\___|_| |_| |_|\\__,_|", "#f472b6"},
		{" |_|             |_|                                       ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
