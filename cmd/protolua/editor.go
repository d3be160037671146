package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errInterrupted is returned by ReadLine on Ctrl-C.
var errInterrupted = errors.New("interrupted")

// keyResult holds a key press result
type keyResult struct {
	key string
	err error
}

// LineEditor is a raw-mode line editor with history and a completion popup.
type LineEditor struct {
	complete func(prefix string) []string
	in       *os.File
	out      io.Writer
	fd       int
	oldState *term.State

	// current line
	line   []rune
	cursor int

	// completion popup
	completions    []string
	selected       int
	showPopup      bool
	popupLineCount int

	history    []string
	historyPos int // len(history) when not browsing
	saved      []rune

	pendingInput []byte
	keyChan      chan keyResult
	reading      bool
}

// NewLineEditor creates an editor on stdin. complete returns the
// candidates for the word before the cursor.
func NewLineEditor(complete func(prefix string) []string) *LineEditor {
	return &LineEditor{
		complete: complete,
		in:       os.Stdin,
		out:      os.Stdout,
		fd:       int(os.Stdin.Fd()),
	}
}

func (e *LineEditor) enterRawMode() error {
	oldState, err := term.MakeRaw(e.fd)
	if err != nil {
		return err
	}
	e.oldState = oldState
	return nil
}

func (e *LineEditor) exitRawMode() {
	if e.oldState != nil {
		term.Restore(e.fd, e.oldState)
		e.oldState = nil
	}
}

func (e *LineEditor) terminalWidth() int {
	width, _, err := term.GetSize(e.fd)
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// readByte reads a single byte, using the pending buffer first.
func (e *LineEditor) readByte() (byte, error) {
	if len(e.pendingInput) > 0 {
		b := e.pendingInput[0]
		e.pendingInput = e.pendingInput[1:]
		return b, nil
	}
	buf := make([]byte, 32)
	n, err := e.in.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if n > 1 {
		e.pendingInput = append(e.pendingInput, buf[1:n]...)
	}
	return buf[0], nil
}

// skipToTerminator skips bytes up to a CSI terminator (0x40-0x7E).
func (e *LineEditor) skipToTerminator() {
	for {
		b, err := e.readByte()
		if err != nil || (b >= 0x40 && b <= 0x7E) {
			return
		}
	}
}

// readKey reads one key press, decoding escape sequences.
func (e *LineEditor) readKey() (string, error) {
	ch, err := e.readByte()
	if err != nil {
		return "", err
	}

	if ch == 0x1b {
		ch2, err := e.readByte()
		if err != nil || ch2 != '[' {
			return "escape", nil
		}
		ch3, err := e.readByte()
		if err != nil {
			return "escape", nil
		}
		switch ch3 {
		case 'A':
			return "up", nil
		case 'B':
			return "down", nil
		case 'C':
			return "right", nil
		case 'D':
			return "left", nil
		case 'H':
			return "home", nil
		case 'F':
			return "end", nil
		case 'Z':
			return "shift-tab", nil
		case '3':
			e.readByte() // ~
			return "delete", nil
		}
		// bracketed paste markers, focus events and the like
		if ch3 < 0x40 || ch3 > 0x7E {
			e.skipToTerminator()
		}
		return e.readKey()
	}

	switch ch {
	case 0x01: // Ctrl-A
		return "home", nil
	case 0x03: // Ctrl-C
		return "ctrl-c", nil
	case 0x04: // Ctrl-D
		return "ctrl-d", nil
	case 0x05: // Ctrl-E
		return "end", nil
	case 0x09:
		return "tab", nil
	case 0x0d, 0x0a:
		return "enter", nil
	case 0x7f, 0x08:
		return "backspace", nil
	case 0x15: // Ctrl-U
		return "ctrl-u", nil
	case 0x17: // Ctrl-W
		return "ctrl-w", nil
	}
	return string(ch), nil
}

// render redraws the prompt, the line and the popup.
func (e *LineEditor) render(prompt string) {
	e.clearPopup()
	fmt.Fprint(e.out, "\r\033[K", prompt, string(e.line))
	if e.showPopup && len(e.completions) > 0 {
		e.renderPopup()
	}
	fmt.Fprintf(e.out, "\r\033[%dC", len(prompt)+e.cursor)
}

// renderPopup shows up to ten candidates below the line.
func (e *LineEditor) renderPopup() {
	shown := min(len(e.completions), 10)
	maxLen := max(e.terminalWidth()-2, 20)

	for i := 0; i < shown; i++ {
		prefix := "  "
		if i == e.selected {
			prefix = "> "
		}
		text := prefix + e.completions[i]
		if len(text) > maxLen {
			text = text[:maxLen-3] + "..."
		}
		fmt.Fprint(e.out, "\n\r\033[K")
		if i == e.selected {
			fmt.Fprintf(e.out, "\033[7m%s\033[0m", text)
		} else {
			fmt.Fprintf(e.out, "\033[2m%s\033[0m", text)
		}
	}
	e.popupLineCount = shown
	if shown > 0 {
		fmt.Fprintf(e.out, "\033[%dA\r", shown)
	}
}

func (e *LineEditor) clearPopup() {
	if e.popupLineCount == 0 {
		return
	}
	for i := 0; i < e.popupLineCount; i++ {
		fmt.Fprint(e.out, "\n\033[2K")
	}
	fmt.Fprintf(e.out, "\033[%dA\r", e.popupLineCount)
	e.popupLineCount = 0
}

func (e *LineEditor) hidePopup() {
	if e.showPopup || e.popupLineCount > 0 {
		e.clearPopup()
		e.showPopup = false
		e.completions = nil
	}
}

// wordStart returns the index where the identifier before the cursor
// begins. Dots are part of the word so that "llvm.Mo" completes as a whole.
func (e *LineEditor) wordStart() int {
	i := e.cursor
	for i > 0 && !isWordBreak(e.line[i-1]) {
		i--
	}
	return i
}

func isWordBreak(r rune) bool {
	switch {
	case r == '.' || r == '_':
		return false
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return true
}

func (e *LineEditor) fetchCompletions() {
	e.completions = nil
	if e.complete == nil {
		return
	}
	e.completions = e.complete(string(e.line[e.wordStart():e.cursor]))
}

// applyCompletion replaces the word before the cursor with the selection.
func (e *LineEditor) applyCompletion() {
	if e.selected < 0 || e.selected >= len(e.completions) {
		return
	}
	text := []rune(e.completions[e.selected])
	start := e.wordStart()

	line := make([]rune, 0, len(e.line)+len(text))
	line = append(line, e.line[:start]...)
	line = append(line, text...)
	line = append(line, e.line[e.cursor:]...)
	e.line = line
	e.cursor = start + len(text)

	e.showPopup = false
	e.completions = nil
}

// historyMove steps through history; delta is -1 for older entries.
func (e *LineEditor) historyMove(delta int) {
	next := e.historyPos + delta
	if next < 0 || next > len(e.history) {
		return
	}
	if e.historyPos == len(e.history) {
		e.saved = append([]rune(nil), e.line...)
	}
	e.historyPos = next
	if next == len(e.history) {
		e.line = e.saved
	} else {
		e.line = []rune(e.history[next])
	}
	e.cursor = len(e.line)
}

// AddHistory appends a non-empty entry that differs from the last one.
func (e *LineEditor) AddHistory(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" || (len(e.history) > 0 && e.history[len(e.history)-1] == entry) {
		return
	}
	e.history = append(e.history, entry)
}

// startKeyReader starts the key reader goroutine once. It outlives a
// single ReadLine so that no key is lost between prompts.
func (e *LineEditor) startKeyReader() {
	if e.reading {
		return
	}
	e.keyChan = make(chan keyResult, 16)
	e.reading = true
	go func() {
		for {
			key, err := e.readKey()
			e.keyChan <- keyResult{key, err}
			if err != nil {
				return
			}
		}
	}()
}

// ReadLine reads one line of input. It returns io.EOF on Ctrl-D at an
// empty line and errInterrupted on Ctrl-C.
func (e *LineEditor) ReadLine(prompt string) (string, error) {
	if err := e.enterRawMode(); err != nil {
		return "", err
	}
	defer e.exitRawMode()

	resize, stop := setupResizeSignal()
	defer stop()

	e.startKeyReader()

	e.line = nil
	e.cursor = 0
	e.showPopup = false
	e.completions = nil
	e.selected = 0
	e.historyPos = len(e.history)

	e.render(prompt)
	for {
		var kr keyResult
		select {
		case <-resize:
			e.render(prompt)
			continue
		case kr = <-e.keyChan:
		}
		if kr.err != nil {
			e.reading = false
			return "", kr.err
		}

		popup := e.showPopup && len(e.completions) > 0
		switch kr.key {
		case "enter":
			if popup {
				e.applyCompletion()
				break
			}
			e.hidePopup()
			fmt.Fprint(e.out, "\r\n")
			return string(e.line), nil

		case "ctrl-c":
			e.hidePopup()
			fmt.Fprint(e.out, "\r\n")
			return "", errInterrupted

		case "ctrl-d":
			if len(e.line) == 0 {
				e.hidePopup()
				fmt.Fprint(e.out, "\r\n")
				return "", io.EOF
			}
			if e.cursor < len(e.line) {
				e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
			}
			e.hidePopup()

		case "tab":
			if popup {
				e.selected = (e.selected + 1) % len(e.completions)
				break
			}
			e.fetchCompletions()
			e.selected = 0
			if len(e.completions) == 1 {
				e.applyCompletion()
			} else {
				e.showPopup = len(e.completions) > 0
			}

		case "shift-tab", "up":
			if popup {
				e.selected = (e.selected + len(e.completions) - 1) % len(e.completions)
			} else if kr.key == "up" {
				e.historyMove(-1)
			}

		case "down":
			if popup {
				e.selected = (e.selected + 1) % len(e.completions)
			} else {
				e.historyMove(1)
			}

		case "left":
			if e.cursor > 0 {
				e.cursor--
			}
			e.hidePopup()

		case "right":
			if e.cursor < len(e.line) {
				e.cursor++
			}
			e.hidePopup()

		case "home":
			e.cursor = 0
			e.hidePopup()

		case "end":
			e.cursor = len(e.line)
			e.hidePopup()

		case "backspace":
			if e.cursor > 0 {
				e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
				e.cursor--
			}
			e.hidePopup()

		case "delete":
			if e.cursor < len(e.line) {
				e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
			}
			e.hidePopup()

		case "ctrl-u":
			e.line = e.line[e.cursor:]
			e.cursor = 0
			e.hidePopup()

		case "ctrl-w":
			start := e.cursor
			for start > 0 && e.line[start-1] == ' ' {
				start--
			}
			for start > 0 && e.line[start-1] != ' ' {
				start--
			}
			e.line = append(e.line[:start], e.line[e.cursor:]...)
			e.cursor = start
			e.hidePopup()

		case "escape":
			e.hidePopup()

		default:
			if len(kr.key) == 1 && kr.key[0] >= 32 && kr.key[0] < 127 {
				line := make([]rune, 0, len(e.line)+1)
				line = append(line, e.line[:e.cursor]...)
				line = append(line, rune(kr.key[0]))
				line = append(line, e.line[e.cursor:]...)
				e.line = line
				e.cursor++
				e.hidePopup()
			}
		}
		e.render(prompt)
	}
}
