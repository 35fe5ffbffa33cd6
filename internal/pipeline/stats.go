package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sod/ng-annotate-patched/internal/engine"
)

// Report is the timing breakdown printed with --stats. All values are
// whole milliseconds.
type Report struct {
	// All is the wall-clock time since process start.
	All int64
	// Parser is parser load time plus parse time.
	Parser int64
	// Init is everything before and around the run not spent parsing.
	Init int64
	// Run is the engine call minus its parse time.
	Run int64
}

// NewReport computes the breakdown for an engine call bounded by runStart
// and runEnd, in a process that started at start and is now at end.
func NewReport(start, end, runStart, runEnd time.Time, s *engine.Stats) Report {
	all := millis(end.Sub(start))
	runParser := millis(s.ParserParseEnd.Sub(s.ParserParseStart))
	allParser := runParser + millis(s.ParserRequireEnd.Sub(s.ParserRequireStart))
	run := millis(runEnd.Sub(runStart)) - runParser

	return Report{
		All:    all,
		Parser: allParser,
		Init:   all - allParser - run,
		Run:    run,
	}
}

// Percent returns n as a rounded percentage of All, or 0 when All is zero.
func (r Report) Percent(n int64) int64 {
	if r.All == 0 {
		return 0
	}
	return int64(math.Floor(100*float64(n)/float64(r.All) + 0.5))
}

// Write prints the absolute and percentage lines.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "[%d ms] parser: %d, nga init: %d, nga run: %d\n",
		r.All, r.Parser, r.Init, r.Run); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[%%] parser: %d, nga init: %d, nga run: %d\n",
		r.Percent(r.Parser), r.Percent(r.Init), r.Percent(r.Run))
	return err
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
