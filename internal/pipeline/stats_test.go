package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sod/ng-annotate-patched/internal/engine"
)

func TestNewReport(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := func(n int) time.Time { return base.Add(time.Duration(n) * time.Millisecond) }

	s := &engine.Stats{
		ParserRequireStart: ms(2), ParserRequireEnd: ms(12),
		ParserParseStart: ms(30), ParserParseEnd: ms(70),
	}

	r := NewReport(ms(0), ms(200), ms(20), ms(120), s)

	assert.Equal(t, Report{All: 200, Parser: 50, Init: 90, Run: 60}, r)
	assert.Equal(t, r.All, r.Parser+r.Init+r.Run)
}

func TestReport_Percent(t *testing.T) {
	tests := []struct {
		name string
		all  int64
		n    int64
		want int64
	}{
		{name: "zero total", all: 0, n: 5, want: 0},
		{name: "exact", all: 200, n: 50, want: 25},
		{name: "rounds half up", all: 8, n: 1, want: 13},
		{name: "rounds down", all: 3, n: 1, want: 33},
		{name: "whole", all: 7, n: 7, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Report{All: tt.all}.Percent(tt.n))
		})
	}
}

func TestReport_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report{All: 200, Parser: 50, Init: 90, Run: 60}.Write(&buf))

	assert.Equal(t,
		"[200 ms] parser: 50, nga init: 90, nga run: 60\n"+
			"[%] parser: 25, nga init: 45, nga run: 30\n",
		buf.String())
}

func TestReport_WriteZeroElapsed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report{}.Write(&buf))

	assert.Equal(t,
		"[0 ms] parser: 0, nga init: 0, nga run: 0\n"+
			"[%] parser: 0, nga init: 0, nga run: 0\n",
		buf.String())
}
