package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// REPL reads command lines and hands them to an Executor.
type REPL struct {
	in        io.Reader
	out       *syncWriter
	exec      Executor
	completer *Completer
	history   *History
	prompt    string
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.in = in
		r.out = &syncWriter{w: out}
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithPrompt sets the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// New creates a REPL executing lines with exec. commands names the
// commands exec understands, for help and suggestions.
func New(exec Executor, commands []string, opts ...Option) *REPL {
	r := &REPL{
		in:        os.Stdin,
		out:       &syncWriter{w: os.Stdout},
		exec:      exec,
		completer: NewCompleter(commands...),
		history:   NewHistory("", 0),
		prompt:    "isoauth> ",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Output returns the REPL's writer. Writes through it do not interleave
// with event notices.
func (r *REPL) Output() io.Writer {
	return r.out
}

// Run loops until exit, EOF or ctx is done. Command errors are printed
// and do not end the loop.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.out, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.out, "warning: save history: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(r.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, r.prompt)

		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			r.help()
			continue
		case "history":
			for i, e := range r.history.Entries() {
				fmt.Fprintf(r.out, "%4d  %s\n", i+1, e)
			}
			continue
		}

		if !strings.HasPrefix(args[0], "-") && !r.completer.Known(args[0]) {
			fmt.Fprintf(r.out, "unknown command %q", args[0])
			if s := r.completer.Complete(args[0]); len(s) > 0 {
				fmt.Fprintf(r.out, ", did you mean: %s", strings.Join(s, ", "))
			}
			fmt.Fprintln(r.out)
			continue
		}

		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *REPL) help() {
	fmt.Fprintln(r.out, "commands:")
	for _, c := range r.completer.Commands() {
		fmt.Fprintf(r.out, "  %s\n", c)
	}
	fmt.Fprintln(r.out, "run '<command> --help' for flags")
}

// Follow prints a notice for every session change until events closes
// or ctx is done.
func (r *REPL) Follow(ctx context.Context, events <-chan *domain.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(r.out, "\n%s\n", describe(s))
		}
	}
}

func describe(s *domain.Session) string {
	switch {
	case s == nil:
		return "[auth] signed out"
	case s.IsAnonymous:
		return "[auth] signed in anonymously as " + s.UID
	case s.Email != "":
		return fmt.Sprintf("[auth] signed in as %s (%s)", s.UID, s.Email)
	default:
		return "[auth] signed in as " + s.UID
	}
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a line into words. Single and double quotes group
// words and a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(c)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
