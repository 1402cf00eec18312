// Command reactqa is a question answering assistant built on a ReAct agent.
//
// Usage:
//
//	reactqa chat                     interactive session with conversation memory
//	reactqa ask "what is 2^10?"      answer one question and exit
//	reactqa tools                    list the available tools
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}
