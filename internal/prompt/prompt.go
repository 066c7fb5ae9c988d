// Package prompt runs the interactive catalog search loop.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when the input ends before the user asks to stop.
var ErrInputClosed = errors.New("input closed")

const (
	welcomeMsg  = "\nWelcome to the Catalog Search program!"
	subjectAsk  = "Enter the Subject:"
	catalogAsk  = "Enter the CatalogNbr:"
	missingMsg  = "Both a subject and a catalog number are required!"
	continueAsk = "Would you like to search for another title? (Y or N)"
	invalidMsg  = "Invalid input!"
	farewellMsg = "Thanks for using the Catalog Search program."
)

// TitleFinder looks up a course title by subject and catalog number.
type TitleFinder interface {
	FindTitle(ctx context.Context, subject, catalogNbr string) (string, bool)
}

type readResult struct {
	line string
	err  error
}

// Prompt reads searches from in and writes results to out.
type Prompt struct {
	finder TitleFinder
	in     *bufio.Reader
	out    io.Writer

	// pending is the read in flight, kept across a cancelled ask.
	pending chan readResult
}

// New creates a Prompt.
func New(finder TitleFinder, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		finder: finder,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run loops until the user answers "n" (returns nil), the input ends
// (ErrInputClosed) or ctx is cancelled.
//
// Each pass collects a subject and catalog number, prints the lookup result
// and asks whether to continue. An empty field or an unrecognised answer
// starts a new pass from the top.
func (p *Prompt) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(p.out, welcomeMsg)
		subject, err := p.ask(ctx, subjectAsk)
		if err != nil {
			return err
		}
		catalogNbr, err := p.ask(ctx, catalogAsk)
		if err != nil {
			return err
		}
		if subject == "" || catalogNbr == "" {
			fmt.Fprintln(p.out, missingMsg)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if title, ok := p.finder.FindTitle(ctx, subject, catalogNbr); ok {
			fmt.Fprintf(p.out, "The title of %s %s is %s\n", subject, catalogNbr, title)
		} else {
			fmt.Fprintf(p.out, "%s %s not found!\n", subject, catalogNbr)
		}

		choice, err := p.ask(ctx, continueAsk)
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "y":
		case "n":
			fmt.Fprintln(p.out, farewellMsg)
			return nil
		default:
			fmt.Fprintln(p.out, invalidMsg)
		}
	}
}

// ask prints label without a newline and reads one line, minus its line ending.
// The read runs in its own goroutine so a cancelled ctx ends the wait.
func (p *Prompt) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)

	if p.pending == nil {
		p.pending = make(chan readResult, 1)
		go func(ch chan<- readResult) {
			line, err := p.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}(p.pending)
	}

	var r readResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r = <-p.pending:
		p.pending = nil
	}

	if r.err != nil {
		if !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", r.err)
		}
		if r.line == "" {
			return "", ErrInputClosed
		}
	}
	return strings.TrimRight(r.line, "\r\n"), nil
}
