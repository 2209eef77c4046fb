// Package console runs the interactive chat loop on a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bobmcallan/apichat/internal/common"
)

const (
	promptText  = "👤 You: "
	replyPrefix = "🤖 "
	goodbye     = "👋 Goodbye!"
	exitCommand = "exit"
)

// Router answers one line of user input.
type Router interface {
	Route(ctx context.Context, userInput string) string
}

// Loop reads user lines from in and writes replies to out.
type Loop struct {
	router Router
	in     io.Reader
	out    io.Writer
	banner string
	logger *common.Logger
}

// New creates a Loop. banner is printed once before the first prompt.
func New(router Router, in io.Reader, out io.Writer, banner string, logger *common.Logger) *Loop {
	return &Loop{router: router, in: in, out: out, banner: banner, logger: logger}
}

// Banner is the default greeting for model.
func Banner(model string) string {
	return fmt.Sprintf("🤖 Interactive AI Agent (%s). Type 'exit' to quit.", model)
}

// Run prompts until the user types exit, input ends, or ctx is cancelled.
// Input is processed strictly one line at a time.
func (l *Loop) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go l.read(ctx, lines, readErr)

	if l.banner != "" {
		fmt.Fprintln(l.out, l.banner)
	}

	turns := 0
	for {
		fmt.Fprint(l.out, promptText)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			fmt.Fprintln(l.out, goodbye)
			l.logger.Info().Int("turns", turns).Msg("console interrupted")
			return nil
		case err := <-readErr:
			fmt.Fprintln(l.out)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			l.logger.Info().Int("turns", turns).Msg("console input closed")
			return nil
		case line = <-lines:
		}

		input := strings.TrimSpace(line)
		if strings.EqualFold(input, exitCommand) {
			fmt.Fprintln(l.out, goodbye)
			l.logger.Info().Int("turns", turns).Msg("console exited")
			return nil
		}
		if input == "" {
			continue
		}

		turns++
		result := l.router.Route(ctx, input)
		fmt.Fprintf(l.out, "%s%s\n\n", replyPrefix, result)
	}
}

// read feeds lines until EOF. A nil error on readErr means clean EOF.
func (l *Loop) read(ctx context.Context, lines chan<- string, readErr chan<- error) {
	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	readErr <- scanner.Err()
}
