package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"equiv/internal/store"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func eventKindColors(kind string) text.Colors {
	switch store.EventKind(kind) {
	case store.EventSuccess:
		return text.Colors{text.FgGreen}
	case store.EventFailure:
		return text.Colors{text.FgRed}
	case store.EventRunStarted, store.EventRunFinished:
		return text.Colors{text.FgBlue}
	default:
		return nil
	}
}

func formatScore(score *float64) string {
	if score == nil {
		return "null"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
