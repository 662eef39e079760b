package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/use-agent/bannerscout/models"
)

// Reporter writes worker progress lines. The server turns lines starting
// with [*], [+] or [-] into session progress.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter creates a Reporter writing to w. A nil *Reporter discards
// everything.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Info(format string, args ...any)    { r.line("[*] ", format, args...) }
func (r *Reporter) Success(format string, args ...any) { r.line("[+] ", format, args...) }
func (r *Reporter) Fail(format string, args ...any)    { r.line("[-] ", format, args...) }

// Result writes the framed result line.
func (r *Reporter) Result(res *models.ScrapeResult) error {
	if r == nil {
		return nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = fmt.Fprintf(r.w, "%s%s\n", models.ResultFrame, b)
	return err
}

func (r *Reporter) line(prefix, format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, prefix+format+"\n", args...)
}
