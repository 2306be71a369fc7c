package dom

import (
	"fmt"
	"strings"

	"github.com/matzehuels/autofilter/pkg/errors"
)

// Compile translates a CSS selector into an XPath expression for htmlquery.
//
// Supported syntax: type selectors, "*", .class, #id, [attr], [attr=value]
// (quoted or bare), :not(compound), descendant (space) and child (>)
// combinators, and comma-separated groups.
func Compile(selector string) (string, error) {
	if err := errors.ValidateSelector("selector", selector); err != nil {
		return "", err
	}

	groups, err := splitTop(selector)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidSelector, err, "compile %q", selector)
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		x, err := compileGroup(strings.TrimSpace(g))
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidSelector, err, "compile %q", selector)
		}
		out = append(out, x)
	}
	return strings.Join(out, " | "), nil
}

// MustCompile is Compile for selectors known at build time.
func MustCompile(selector string) string {
	x, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return x
}

// splitTop splits on commas outside brackets, parentheses and quotes.
func splitTop(s string) ([]string, error) {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string")
	}
	parts = append(parts, s[start:])
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("empty selector group")
		}
	}
	return parts, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSpace(p.s[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) ident() (string, error) {
	start := p.pos
	for !p.eof() && isIdent(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d", start)
	}
	return p.s[start:p.pos], nil
}

func compileGroup(g string) (string, error) {
	p := &parser{s: g}
	var sb strings.Builder
	axis := "//"

	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() == '>' {
			if sb.Len() == 0 {
				return "", fmt.Errorf("combinator without left side")
			}
			axis = "/"
			p.pos++
			p.skipSpace()
		}
		tag, conds, err := p.compound()
		if err != nil {
			return "", err
		}
		sb.WriteString(axis)
		sb.WriteString(tag)
		for _, c := range conds {
			sb.WriteString("[" + c + "]")
		}
		axis = "//"
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty selector")
	}
	return sb.String(), nil
}

// compound parses one compound selector such as a.card[data-tags]:not(.x).
func (p *parser) compound() (string, []string, error) {
	tag := "*"
	var conds []string
	start := p.pos

	switch c := p.peek(); {
	case c == '*':
		p.pos++
	case isIdentStart(c):
		name, _ := p.ident()
		tag = strings.ToLower(name)
	}

	for !p.eof() {
		switch p.peek() {
		case '.':
			p.pos++
			name, err := p.ident()
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", name))
		case '#':
			p.pos++
			name, err := p.ident()
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, "@id="+literal(name))
		case '[':
			c, err := p.attr()
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, c)
		case ':':
			c, err := p.not()
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, c)
		default:
			if !isSpace(p.peek()) && p.peek() != '>' {
				return "", nil, fmt.Errorf("unexpected %q at offset %d", p.peek(), p.pos)
			}
			return tag, conds, nil
		}
	}
	if p.pos == start {
		return "", nil, fmt.Errorf("empty compound at offset %d", start)
	}
	return tag, conds, nil
}

func (p *parser) attr() (string, error) {
	p.pos++ // [
	p.skipSpace()
	name, err := p.ident()
	if err != nil {
		return "", err
	}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return "@" + name, nil
	}
	if p.peek() != '=' {
		return "", fmt.Errorf("unsupported attribute operator at offset %d", p.pos)
	}
	p.pos++
	p.skipSpace()

	var value string
	if q := p.peek(); q == '"' || q == '\'' {
		end := strings.IndexByte(p.s[p.pos+1:], q)
		if end < 0 {
			return "", fmt.Errorf("unterminated string at offset %d", p.pos)
		}
		value = p.s[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	} else {
		value, err = p.ident()
		if err != nil {
			return "", err
		}
	}
	p.skipSpace()
	if p.peek() != ']' {
		return "", fmt.Errorf("expected ] at offset %d", p.pos)
	}
	p.pos++
	return "@" + name + "=" + literal(value), nil
}

func (p *parser) not() (string, error) {
	if !strings.HasPrefix(p.s[p.pos:], ":not(") {
		return "", fmt.Errorf("unsupported pseudo-class at offset %d", p.pos)
	}
	p.pos += len(":not(")
	end := strings.IndexByte(p.s[p.pos:], ')')
	if end < 0 {
		return "", fmt.Errorf("unterminated :not")
	}
	inner := &parser{s: strings.TrimSpace(p.s[p.pos : p.pos+end])}
	p.pos += end + 1

	tag, conds, err := inner.compound()
	if err != nil {
		return "", err
	}
	if !inner.eof() {
		return "", fmt.Errorf(":not accepts a single compound selector")
	}
	if tag != "*" {
		conds = append([]string{"self::" + tag}, conds...)
	}
	if len(conds) == 0 {
		return "", fmt.Errorf("empty :not")
	}
	return "not(" + strings.Join(conds, " and ") + ")", nil
}

// literal quotes s as an XPath string literal.
func literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
