// Package agent provides an interactive assistant that answers questions
// about a finished PnL run, backed by Gemini with function calls into the
// result.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent handles the chat session.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	Analyst *Expert
}

// New creates an Agent. It takes an io.Writer for the agent's output
// (e.g. os.Stdout) and an io.Reader for user input (e.g. os.Stdin).
func New(w io.Writer, r io.Reader, analyst *Expert) *Agent {
	return &Agent{
		w:       w,
		r:       bufio.NewReader(r),
		Analyst: analyst,
	}
}

func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	return a.Analyst.Start(ctx, client)
}

const prompt = "assist> "

// Run starts the interactive REPL session. Initial prompts are consumed
// before reading from the user.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Analyst.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to pnlcalc assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Analyst.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, content.Parts[0].Text)
	}
}
