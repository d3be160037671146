package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// lineReader reads one line of input, printing prompt first.
type lineReader func(prompt string) (string, error)

// scannerReader reads lines from a non-terminal input.
func scannerReader(in io.Reader, out io.Writer, echoPrompt bool) lineReader {
	sc := bufio.NewScanner(in)
	return func(prompt string) (string, error) {
		if echoPrompt {
			fmt.Fprint(out, prompt)
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return sc.Text(), nil
	}
}

// repl reads chunks until EOF. A chunk may span several lines: input that
// is incomplete at end of line is continued on the next one.
func (s *session) repl(read lineReader, out, errOut io.Writer, onChunk func(string)) error {
	var buf string
	for {
		prompt := "> "
		if buf != "" {
			prompt = ">> "
		}
		line, err := read(prompt)
		if errors.Is(err, errInterrupted) {
			buf = ""
			continue
		}
		if errors.Is(err, io.EOF) {
			if buf != "" {
				fmt.Fprintln(errOut, "incomplete input discarded")
			}
			return nil
		}
		if err != nil {
			return err
		}

		if buf != "" {
			buf += "\n" + line
		} else {
			buf = line
		}
		if buf == "" {
			continue
		}
		if needsMore(buf) {
			continue
		}

		if onChunk != nil {
			onChunk(buf)
		}
		values, err := s.eval(buf)
		buf = ""
		if err != nil {
			s.log.Debug("chunk failed", zap.Error(err))
			fmt.Fprintf(errOut, "error: %s\n", formatError(err))
			continue
		}
		s.printValues(out, values)
	}
}

// runREPL starts the interactive loop on stdin, with the line editor when
// stdin is a terminal.
func (s *session) runREPL() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return s.repl(scannerReader(os.Stdin, os.Stdout, false), os.Stdout, os.Stderr, nil)
	}

	editor := NewLineEditor(s.completions)
	fmt.Printf("protolua: %s namespace loaded. Tab completes, Ctrl-D exits.\n", s.ns.Name())
	return s.repl(editor.ReadLine, os.Stdout, os.Stderr, editor.AddHistory)
}
