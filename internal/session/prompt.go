package session

import (
	"bufio"
	"errors"
	"io"

	"github.com/tcnksm/go-input"
)

// Prompter asks the user for a line of input, it returns io.EOF once there is
// no more input to read.
//
// note: fault injection point
type Prompter interface {
	Ask(query string) (string, error)
}

// lineReader hands out at most one line per Read so that the fresh
// bufio.Reader go-input creates for every question does not swallow the lines
// after it. It also remembers hitting EOF, which go-input does not report.
type lineReader struct {
	r   *bufio.Reader
	eof bool
}

func (l *lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.eof = true
			}
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	return n, nil
}

// InputPrompter implements Prompter with go-input.
type InputPrompter struct {
	ui     *input.UI
	reader *lineReader
}

func NewInputPrompter(in io.Reader, out io.Writer) *InputPrompter {
	reader := &lineReader{r: bufio.NewReader(in)}
	return &InputPrompter{
		ui: &input.UI{
			Reader: reader,
			Writer: out,
		},
		reader: reader,
	}
}

func (p *InputPrompter) Ask(query string) (string, error) {
	answer, err := p.ui.Ask(query, &input.Options{
		Default:     "",
		HideDefault: true,
		HideOrder:   true,
	})
	if errors.Is(err, input.ErrInterrupted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if answer == "" && p.reader.eof {
		return "", io.EOF
	}
	return answer, nil
}
