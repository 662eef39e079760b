package runner

import (
	"bytes"
	"strings"
)

type streamKind int

const (
	stdoutLine streamKind = iota
	stderrChunk
	workerExited
)

// message is what the process readers send to the owning goroutine.
type message struct {
	kind streamKind
	text string
	err  error
}

// lineWriter splits a stream into lines and sends each as a message.
// exec.Cmd calls Write from a single copying goroutine.
type lineWriter struct {
	out chan<- message
	buf bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.out <- message{kind: stdoutLine, text: strings.TrimRight(line, "\r\n")}
	}
	return len(p), nil
}

// Flush sends any unterminated trailing line.
func (w *lineWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	w.out <- message{kind: stdoutLine, text: strings.TrimRight(w.buf.String(), "\r")}
	w.buf.Reset()
}

// chunkWriter forwards raw bytes untouched.
type chunkWriter struct {
	out chan<- message
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.out <- message{kind: stderrChunk, text: string(p)}
	return len(p), nil
}
