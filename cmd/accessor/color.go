package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

var (
	colorOnce sync.Once
	colorOn   bool
)

func detectColor() bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func useColor() bool {
	colorOnce.Do(func() {
		colorOn = detectColor()
	})
	return colorOn
}

func ansi(code int, s string) string {
	if !useColor() {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", code, s)
}

func bold(s string) string   { return ansi(1, s) }
func dim(s string) string    { return ansi(2, s) }
func cyan(s string) string   { return ansi(36, s) }
func yellow(s string) string { return ansi(33, s) }
func red(s string) string    { return ansi(31, s) }
