// Package purify removes stylesheet rules whose selectors are not referenced
// by the scanned source files.
package purify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var selectorNamePattern = regexp.MustCompile(`[.#](-?[_a-zA-Z][_a-zA-Z0-9-]*)`)

// groupingAtRules contain rulesets and are dropped when nothing in them
// survives.
var groupingAtRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@document":  true,
	"@layer":     true,
	"@container": true,
}

// Set holds the words found in the scanned sources.
type Set map[string]struct{}

func (s Set) Add(word string) { s[word] = struct{}{} }

func (s Set) Has(word string) bool {
	_, ok := s[word]
	return ok
}

type frame struct {
	header []byte
	body   bytes.Buffer
	keep   bool
}

// Purify returns src without the rulesets whose selectors all reference a
// class or id missing from used. Element selectors, keyframes and font faces
// are kept; grouping at-rules left empty are removed.
func Purify(src []byte, used Set) ([]byte, error) {
	p := css.NewParser(parse.NewInput(bytes.NewReader(src)), false)

	root := &frame{keep: true}
	stack := []*frame{root}
	top := func() *frame { return stack[len(stack)-1] }

	var (
		selectors []string
		skipping  int
	)

	for {
		gt, _, data := p.Next()

		if skipping > 0 {
			switch gt {
			case css.ErrorGrammar:
				// handled below
			case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
				skipping++
				continue
			case css.EndRulesetGrammar, css.EndAtRuleGrammar:
				skipping--
				continue
			default:
				continue
			}
		}

		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("parse stylesheet: %w", err)
			}
			for len(stack) > 1 {
				closeFrame(&stack)
			}
			return root.body.Bytes(), nil

		case css.CommentGrammar:
			// comments are dropped

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, splitSelectors(render(data, p.Values()))...)

		case css.BeginRulesetGrammar:
			selectors = append(selectors, splitSelectors(render(data, p.Values()))...)
			kept := keepSelectors(selectors, used)
			selectors = selectors[:0]
			if len(kept) == 0 {
				skipping = 1
				continue
			}
			top().body.WriteString(strings.Join(kept, ","))
			top().body.WriteByte('{')

		case css.EndRulesetGrammar:
			top().body.WriteByte('}')

		case css.BeginAtRuleGrammar:
			name := strings.ToLower(string(data))
			f := &frame{
				header: append([]byte(render(data, p.Values())), '{'),
				keep:   !groupingAtRules[name],
			}
			stack = append(stack, f)

		case css.EndAtRuleGrammar:
			if len(stack) > 1 {
				closeFrame(&stack)
			}

		case css.AtRuleGrammar:
			top().body.WriteString(render(data, p.Values()))
			top().body.WriteByte(';')

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			top().body.Write(data)
			top().body.WriteByte(':')
			for _, v := range p.Values() {
				top().body.Write(v.Data)
			}
			top().body.WriteByte(';')

		default:
			top().body.Write(data)
		}
	}
}

func closeFrame(stack *[]*frame) {
	s := *stack
	f := s[len(s)-1]
	*stack = s[:len(s)-1]
	parent := (*stack)[len(*stack)-1]

	if f.body.Len() == 0 && !f.keep {
		return
	}

	parent.body.Write(f.header)
	parent.body.Write(f.body.Bytes())
	parent.body.WriteByte('}')
}

func render(data []byte, values []css.Token) string {
	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && data[0] == '@' && len(values) > 0 && values[0].TokenType != css.WhitespaceToken {
		b.WriteByte(' ')
	}
	for _, v := range values {
		b.Write(v.Data)
	}
	return strings.TrimSpace(b.String())
}

// splitSelectors splits a selector list on the commas outside of brackets
// and parentheses.
func splitSelectors(list string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range list {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(list[start:]); last != "" {
		out = append(out, last)
	}
	return out
}

func keepSelectors(selectors []string, used Set) []string {
	var kept []string
	for _, sel := range selectors {
		if Used(sel, used) {
			kept = append(kept, sel)
		}
	}
	return kept
}

// Used reports whether every class and id referenced by selector is present
// in used. Attribute blocks, quoted strings and :not() arguments never
// require a name.
func Used(selector string, used Set) bool {
	for _, m := range selectorNamePattern.FindAllStringSubmatch(requiredPart(selector), -1) {
		if !used.Has(m[1]) {
			return false
		}
	}
	return true
}

// requiredPart returns selector without the parts whose names do not have to
// appear in the sources for the selector to match.
func requiredPart(selector string) string {
	var b strings.Builder
	for i := 0; i < len(selector); i++ {
		switch c := selector[i]; {
		case c == '\\' && i+1 < len(selector):
			b.WriteByte(c)
			b.WriteByte(selector[i+1])
			i++
		case c == '"' || c == '\'':
			i = skipString(selector, i)
		case c == '[':
			i = skipBlock(selector, i, '[', ']')
		case c == ':' && strings.HasPrefix(strings.ToLower(selector[i:]), ":not("):
			i = skipBlock(selector, i+len(":not"), '(', ')')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// skipString returns the index of the quote closing the string opened at i.
func skipString(s string, i int) int {
	quote := s[i]
	for i++; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(s)
}

// skipBlock returns the index of the end byte matching the open byte at i,
// stepping over nested blocks and quoted strings.
func skipBlock(s string, i int, open, end byte) int {
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"', '\'':
			i = skipString(s, i)
		case open:
			depth++
		case end:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}
