package engine

import "strings"

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokTemplate
	tokNumber
	tokRegexp
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) is(punct string) bool {
	return t.kind == tokPunct && t.text == punct
}

// keywords after which a slash starts a regular expression literal
var regexpPrefixKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "instanceof": true, "new": true, "delete": true, "void": true,
	"throw": true, "yield": true, "await": true,
}

// tokenize splits JavaScript source into a flat token list, dropping
// whitespace and comments. The input is expected to be syntactically valid;
// malformed input produces a best-effort token stream.
func tokenize(src string) []token {
	var toks []token
	i := 0
	n := len(src)

	// blocks tracks, for each open brace, whether it starts a block
	// rather than an object literal. closedBlock reports the last "}".
	var blocks []bool
	closedBlock := false

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += end + 4
			}
		case c == '"' || c == '\'':
			start := i
			i = skipQuoted(src, i, c)
			toks = append(toks, token{kind: tokString, text: src[start:i], start: start, end: i})
		case c == '`':
			start := i
			i = skipTemplate(src, i)
			toks = append(toks, token{kind: tokTemplate, text: src[start:i], start: start, end: i})
		case c == '/' && regexpAllowed(toks, closedBlock):
			start := i
			i = skipRegexp(src, i)
			toks = append(toks, token{kind: tokRegexp, text: src[start:i], start: start, end: i})
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], start: start, end: i})
		case c >= '0' && c <= '9':
			start := i
			for i < n && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], start: start, end: i})
		default:
			switch c {
			case '{':
				blocks = append(blocks, braceStartsBlock(toks))
			case '}':
				closedBlock = true
				if len(blocks) > 0 {
					closedBlock = blocks[len(blocks)-1]
					blocks = blocks[:len(blocks)-1]
				}
			}
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], start: i, end: i + 1})
			i++
		}
	}

	return toks
}

func skipQuoted(src string, i int, quote byte) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(src)
}

func skipTemplate(src string, i int) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '`':
			return i + 1
		case '$':
			if i+1 < len(src) && src[i+1] == '{' {
				i = skipBraces(src, i+1)
				continue
			}
		}
		i++
	}
	return len(src)
}

// skipBraces returns the index just past the brace matching src[i].
func skipBraces(src string, i int) int {
	depth := 0
	for i < len(src) {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"', '\'':
			i = skipQuoted(src, i, c)
			continue
		case '`':
			i = skipTemplate(src, i)
			continue
		}
		i++
	}
	return len(src)
}

func skipRegexp(src string, i int) int {
	i++
	inClass := false
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				i++
				for i < len(src) && isIdentPart(src[i]) {
					i++
				}
				return i
			}
		case '\n':
			return i
		}
		i++
	}
	return len(src)
}

// regexpAllowed reports whether a slash after toks starts a regular
// expression. afterBlock tells whether a trailing "}" closed a block.
func regexpAllowed(toks []token, afterBlock bool) bool {
	if len(toks) == 0 {
		return true
	}
	prev := toks[len(toks)-1]
	switch prev.kind {
	case tokPunct:
		if prev.text == "}" {
			return afterBlock
		}
		return prev.text != ")" && prev.text != "]"
	case tokIdent:
		return regexpPrefixKeywords[prev.text]
	default:
		return false
	}
}

// braceStartsBlock reports whether a "{" following toks opens a block
// statement or function body instead of an object literal.
func braceStartsBlock(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	prev := toks[len(toks)-1]
	switch prev.kind {
	case tokPunct:
		switch prev.text {
		case ")", ";", "{", "}":
			return true
		case ">":
			// arrow function body
			if len(toks) < 2 {
				return false
			}
			eq := toks[len(toks)-2]
			return eq.is("=") && eq.end == prev.start
		}
		return false
	case tokIdent:
		return !regexpPrefixKeywords[prev.text]
	default:
		return false
	}
}

func isIdentStart(c byte) bool {
	return c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// pairBrackets maps every bracket token to the index of its partner, or -1.
func pairBrackets(toks []token) []int {
	partner := make([]int, len(toks))
	var stack []int
	for i, t := range toks {
		partner[i] = -1
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			partner[open] = i
			partner[i] = open
		}
	}
	return partner
}

// stringValue returns the contents of a string literal token.
func stringValue(t token) string {
	if len(t.text) < 2 {
		return ""
	}
	return t.text[1 : len(t.text)-1]
}
