package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// conversation is the part of *session.Session the REPL drives.
type conversation interface {
	AnswerQuestion(ctx context.Context, question string) string
	InitConversation()
	EndConversation()
	GetHistory() []string
}

// lineReader is satisfied by *readline.Instance.
type lineReader interface {
	Readline() (string, error)
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question answering session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg := newMetricsRegistry(ctx, a.cfg.MetricsAddr)
			sess, err := newSession(ctx, a.cfg, reg)
			if err != nil {
				return err
			}

			rl, err := readline.New(colorCyan + colorBold + "You: " + colorReset)
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			out := cmd.OutOrStdout()
			printBanner(out, a.cfg.Provider, a.cfg.ModelName(), a.cfg.Tools)
			printHelp(out)
			fmt.Fprintln(out)

			return (&repl{conv: sess, in: rl, out: out}).run(ctx)
		},
	}
}

// repl reads questions and commands until quit or end of input.
type repl struct {
	conv conversation
	in   lineReader
	out  io.Writer
}

func (r *repl) run(ctx context.Context) error {
	r.conv.InitConversation()
	defer r.conv.EndConversation()

	for {
		line, err := r.in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintf(r.out, "\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handle processes one input line and reports whether the session should end.
func (r *repl) handle(ctx context.Context, input string) bool {
	switch strings.ToLower(input) {
	case "":
		return false
	case "quit", "exit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", colorGreen, colorReset)
		return true
	case "help", "h":
		printHelp(r.out)
		return false
	case "history", "hist":
		r.printHistory()
		return false
	case "clear", "reset":
		r.conv.EndConversation()
		r.conv.InitConversation()
		fmt.Fprintf(r.out, "%sConversation history cleared.%s\n", colorYellow, colorReset)
		return false
	case "new", "restart":
		r.conv.EndConversation()
		r.conv.InitConversation()
		fmt.Fprintf(r.out, "%sNew conversation started.%s\n", colorYellow, colorReset)
		return false
	}

	// Ctrl-C while the agent works cancels the question, not the session.
	askCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(r.out, "%sThinking...%s\n", colorDim, colorReset)
	answer := r.conv.AnswerQuestion(askCtx, input)
	fmt.Fprintf(r.out, "%s%sAnswer:%s %s\n\n", colorBold, colorGreen, colorReset, answer)
	return false
}

func (r *repl) printHistory() {
	history := r.conv.GetHistory()
	if len(history) == 0 {
		fmt.Fprintf(r.out, "%sNo conversation history yet.%s\n", colorDim, colorReset)
		return
	}
	fmt.Fprintf(r.out, "%sConversation history:%s\n", colorBold, colorReset)
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
	for _, entry := range history {
		fmt.Fprintf(r.out, "  %s\n", entry)
	}
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
}
