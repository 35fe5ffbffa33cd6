package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// edit replaces src[start:end] with text.
type edit struct {
	start int
	end   int
	text  string
}

// annotator rewrites injectable call sites in a single source text.
type annotator struct {
	src     string
	toks    []token
	partner []int

	add    bool
	remove bool
	quote  string
	short  *regexp.Regexp
	rename map[string]string

	named   map[string]bool
	single  map[string]bool
	bare    map[string]bool
	plugins []Plugin
	matched map[string]bool

	edits  []edit
	errors []string

	// origins[n] is the source line output line n starts on.
	origins []int
}

func newAnnotator(src string, cfg *Config, short *regexp.Regexp, opts []optional) *annotator {
	toks := tokenize(src)
	a := &annotator{
		src:     src,
		toks:    toks,
		partner: pairBrackets(toks),
		add:     cfg.Add,
		remove:  cfg.Remove,
		quote:   `"`,
		short:   short,
		rename:  make(map[string]string),
		named:   toSet(namedMethods),
		single:  toSet(singleMethods),
		bare:    make(map[string]bool),
		plugins: cfg.Plugins,
		matched: make(map[string]bool),
	}
	if cfg.SingleQuotes {
		a.quote = "'"
	}
	for _, r := range cfg.Rename {
		if r.To != nil {
			a.rename[r.From] = *r.To
		}
	}
	for _, o := range opts {
		for _, m := range o.named {
			a.named[m] = true
		}
		for _, m := range o.bare {
			a.bare[m] = true
		}
	}
	return a
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

// run walks the token stream and returns the rewritten source.
func (a *annotator) run() (string, []string) {
	toks := a.toks
	for i := 0; i < len(toks); i++ {
		switch {
		case toks[i].is(".") && i+2 < len(toks) && toks[i+1].kind == tokIdent && toks[i+2].is("("):
			a.visitMember(i)
		case toks[i].kind == tokIdent && a.bare[toks[i].text] && i+1 < len(toks) && toks[i+1].is("("):
			if i > 0 && toks[i-1].is(".") {
				continue
			}
			a.visitArg(i + 2)
		}
	}
	if len(a.errors) > 0 {
		return "", a.errors
	}
	return a.apply(), nil
}

// visitMember handles <receiver>.<method>(...) where dot is the index of ".".
func (a *annotator) visitMember(dot int) {
	method := a.toks[dot+1].text
	open := dot + 2

	switch {
	case a.single[method]:
		if a.receiverMatches(dot) {
			a.visitArg(open + 1)
		}
	case a.named[method] || a.pluginMatch(method):
		if !a.receiverMatches(dot) {
			return
		}
		name := open + 1
		if name+2 >= len(a.toks) || a.toks[name].kind != tokString || !a.toks[name+1].is(",") {
			return
		}
		a.renameString(name)
		a.visitArg(name + 2)
	}
}

func (a *annotator) pluginMatch(method string) bool {
	if len(a.plugins) == 0 {
		return false
	}
	if ok, seen := a.matched[method]; seen {
		return ok
	}
	ok := false
	for _, p := range a.plugins {
		m, err := p.Match(method)
		if err != nil {
			a.errors = append(a.errors, fmt.Sprintf("error: plugin %s failed on %q: %v", p.Name(), method, err))
			break
		}
		if m {
			ok = true
			break
		}
	}
	a.matched[method] = ok
	return ok
}

// receiverMatches reports whether the member chain ending at dot starts
// with angular.module(...) or with an identifier matching the short-form
// regexp.
func (a *annotator) receiverMatches(dot int) bool {
	toks := a.toks
	j := dot - 1
	for j >= 0 {
		t := toks[j]
		if t.is(")") || t.is("]") {
			p := a.partner[j]
			if p <= 0 {
				return false
			}
			j = p - 1
			continue
		}
		if t.kind != tokIdent {
			return false
		}
		if j >= 1 && toks[j-1].is(".") {
			j -= 2
			continue
		}
		break
	}
	if j < 0 {
		return false
	}

	root := toks[j].text
	if root == "angular" && j+3 < dot && toks[j+1].is(".") && toks[j+2].text == "module" && toks[j+3].is("(") {
		return true
	}
	return a.short != nil && a.short.MatchString(root)
}

// visitArg rewrites the injectable argument starting at token i.
func (a *annotator) visitArg(i int) {
	if i >= len(a.toks) {
		return
	}
	switch t := a.toks[i]; {
	case t.kind == tokIdent && t.text == "function":
		fn, ok := a.parseFunction(i)
		if !ok || !a.add || len(fn.params) == 0 {
			return
		}
		a.edits = append(a.edits,
			edit{start: a.toks[i].start, end: a.toks[i].start, text: "[" + a.annotation(fn.params)},
			edit{start: a.toks[fn.end].end, end: a.toks[fn.end].end, text: "]"},
		)
	case t.is("["):
		a.visitArray(i)
	}
}

// visitArray handles ["a", "b", function(a, b) {...}].
func (a *annotator) visitArray(open int) {
	closeIdx := a.partner[open]
	if closeIdx < 0 {
		return
	}

	var names []int
	k := open + 1
	for k < closeIdx && a.toks[k].kind == tokString && a.toks[k+1].is(",") {
		names = append(names, k)
		k += 2
	}
	if a.toks[k].kind != tokIdent || a.toks[k].text != "function" {
		return
	}
	fn, ok := a.parseFunction(k)
	if !ok || fn.end+1 != closeIdx {
		return
	}

	if !a.remove {
		for _, n := range names {
			a.renameString(n)
		}
		return
	}

	prefix, suffix := "", ""
	if a.add && len(fn.params) > 0 {
		prefix, suffix = "["+a.annotation(fn.params), "]"
	}
	a.edits = append(a.edits,
		edit{start: a.toks[open].start, end: a.toks[k].start, text: prefix},
		edit{start: a.toks[fn.end].end, end: a.toks[closeIdx].end, text: suffix},
	)
}

type function struct {
	params []string
	// end is the index of the closing brace of the body.
	end int
}

// parseFunction reads function [name](a, b) {...} starting at i. Functions
// with destructured or default parameters are not annotated.
func (a *annotator) parseFunction(i int) (function, bool) {
	toks := a.toks
	j := i + 1
	if j < len(toks) && toks[j].kind == tokIdent {
		j++
	}
	if j >= len(toks) || !toks[j].is("(") {
		return function{}, false
	}
	closeParen := a.partner[j]
	if closeParen < 0 || closeParen+1 >= len(toks) || !toks[closeParen+1].is("{") {
		return function{}, false
	}
	end := a.partner[closeParen+1]
	if end < 0 {
		return function{}, false
	}

	var params []string
	for k := j + 1; k < closeParen; k++ {
		t := toks[k]
		wantIdent := (k-j-1)%2 == 0
		switch {
		case wantIdent && t.kind == tokIdent:
			params = append(params, t.text)
		case !wantIdent && t.is(","):
		default:
			return function{}, false
		}
	}
	return function{params: params, end: end}, true
}

func (a *annotator) annotation(params []string) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(a.quoted(a.renamed(p)))
		b.WriteString(", ")
	}
	return b.String()
}

func (a *annotator) renamed(name string) string {
	if to, ok := a.rename[name]; ok {
		return to
	}
	return name
}

func (a *annotator) quoted(s string) string {
	return a.quote + s + a.quote
}

// renameString replaces a string literal whose value has a rename rule,
// keeping the original quote character.
func (a *annotator) renameString(i int) {
	t := a.toks[i]
	to, ok := a.rename[stringValue(t)]
	if !ok {
		return
	}
	q := t.text[:1]
	a.edits = append(a.edits, edit{start: t.start, end: t.end, text: q + to + q})
}

// apply performs the collected edits in source order and records, for
// every output line, the source line it starts on.
func (a *annotator) apply() string {
	edits := append([]edit(nil), a.edits...)
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})

	var b strings.Builder
	b.Grow(len(a.src))
	a.origins = []int{0}
	line, pos := 0, 0

	copySource := func(s string) {
		b.WriteString(s)
		for k := strings.Count(s, "\n"); k > 0; k-- {
			line++
			a.origins = append(a.origins, line)
		}
	}

	for _, e := range edits {
		copySource(a.src[pos:e.start])
		b.WriteString(e.text)
		for k := strings.Count(e.text, "\n"); k > 0; k-- {
			a.origins = append(a.origins, line)
		}
		line += strings.Count(a.src[e.start:e.end], "\n")
		pos = e.end
	}
	copySource(a.src[pos:])

	return b.String()
}
