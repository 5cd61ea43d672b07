package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// painter colors text only when writing to a terminal.
type painter struct{ on bool }

func newPainter(w io.Writer) painter { return painter{on: isTTY(w) && !color.NoColor} }

func (p painter) paint(fn func(...any) string, s string) string {
	if !p.on {
		return s
	}
	return fn(s)
}

func (p painter) bold(s string) string   { return p.paint(bold, s) }
func (p painter) green(s string) string  { return p.paint(green, s) }
func (p painter) cyan(s string) string   { return p.paint(cyan, s) }
func (p painter) gray(s string) string   { return p.paint(gray, s) }
func (p painter) yellow(s string) string { return p.paint(yellow, s) }

func errorText(s string) string { return newPainter(os.Stderr).paint(red, s) }
