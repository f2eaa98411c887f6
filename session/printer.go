package session

import (
	"fmt"
	"io"
	"sync"
)

// Printer writes what the user sees. Chat goes to stdout, replies and
// diagnostics to stderr.
type Printer struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func NewPrinter(stdout, stderr io.Writer) *Printer {
	return &Printer{stdout: stdout, stderr: stderr}
}

func (p *Printer) Chat(displayName, contents string) {
	p.printf(p.stdout, "%s: %s\n", displayName, contents)
}

func (p *Printer) Reply(result bool, contents string) {
	status := "Failure"
	if result {
		status = "Success"
	}
	p.printf(p.stderr, "%s: %s\n", status, contents)
}

func (p *Printer) PeerError(displayName, contents string) {
	p.printf(p.stderr, "ERR FROM %s: %s\n", displayName, contents)
}

func (p *Printer) Error(err error) {
	p.printf(p.stderr, "ERROR: %s\n", err)
}

func (p *Printer) Info(text string) {
	p.printf(p.stdout, "%s\n", text)
}

func (p *Printer) printf(w io.Writer, format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}
