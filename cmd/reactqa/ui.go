package main

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func printBanner(w io.Writer, provider, model string, toolNames []string) {
	fmt.Fprintf(w, "%s%sreactqa%s %s(%s, %s)%s\n",
		colorBold, colorYellow, colorReset,
		colorDim, provider, model, colorReset)
	fmt.Fprintf(w, "%s%s%s\n", colorYellow, strings.Repeat("=", 55), colorReset)
	fmt.Fprintf(w, "%sTools:%s %s\n", colorWhite, colorReset, strings.Join(toolNames, ", "))
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "\n%sCommands:%s\n", colorBold, colorReset)
	fmt.Fprintln(w, "  <question>       ask anything, earlier answers are remembered")
	fmt.Fprintln(w, "  help, h          show this help")
	fmt.Fprintln(w, "  history, hist    show the conversation history")
	fmt.Fprintln(w, "  clear, reset     clear the conversation history")
	fmt.Fprintln(w, "  new, restart     start a new conversation")
	fmt.Fprintln(w, "  quit, exit, q    end the session")
}
