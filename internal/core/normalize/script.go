package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// scriptTokenizer lexes plain script text (python/R style surface syntax).
// It does not parse; it only needs a stable token stream:
// - comments (# and //) stripped
// - string/numeric literals reduced to <str>/<num>
// - local identifiers renamed to positional placeholders (v0, v1, ...)
// - call names, keywords, and imported module names kept verbatim
// - structural punctuation kept so statement shape survives
type scriptTokenizer struct{}

// keywords kept verbatim; covers the overlap of the supported surface syntaxes
var keywords = map[string]struct{}{
	"def": {}, "class": {}, "lambda": {}, "return": {}, "yield": {},
	"if": {}, "elif": {}, "else": {}, "for": {}, "while": {}, "in": {},
	"and": {}, "or": {}, "not": {}, "is": {}, "with": {}, "as": {},
	"try": {}, "except": {}, "finally": {}, "raise": {}, "pass": {},
	"break": {}, "continue": {}, "global": {}, "del": {}, "assert": {},
	"import": {}, "from": {}, "function": {}, "library": {}, "require": {},
	"true": {}, "false": {}, "none": {}, "null": {}, "na": {},
}

// importKeywords begin a statement whose identifiers are module names and
// must be kept verbatim (renaming them would erase the strongest signal)
var importKeywords = map[string]struct{}{
	"import": {}, "from": {}, "library": {}, "require": {},
}

// lexer holds per-document renaming state; one per Tokenize call
type lexer struct {
	toks    []string
	stmts   []int
	names   map[string]string   // original identifier -> placeholder
	imps    map[string]struct{} // imported module names, kept verbatim everywhere
	depth   int                 // bracket nesting; newlines inside brackets don't end statements
	inImp   bool                // inside an import-style statement
	atStmt  bool                // next token starts a statement
	pendDef bool                // the next identifier is a local definition (after def/class)
}

func (scriptTokenizer) Tokenize(text string) ([]string, []int, error) {
	lx := &lexer{names: make(map[string]string), imps: make(map[string]struct{}), atStmt: true}
	for _, line := range strings.Split(text, "\n") {
		lx.line(line)
	}
	return lx.toks, lx.stmts, nil
}

// line lexes one physical line; called with comments and literals intact
func (lx *lexer) line(s string) {
	i, n := 0, len(s)
	hadTok := false
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			i = n // comment to end of line
		case c == '/' && i+1 < n && s[i+1] == '/':
			i = n
		case c == '\'' || c == '"' || c == '`':
			i = lx.stringLit(s, i)
			hadTok = true
		case c >= '0' && c <= '9':
			i = lx.numberLit(s, i)
			hadTok = true
		case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
			i = lx.ident(s, i)
			hadTok = true
		default:
			i = lx.operator(s, i)
			hadTok = true
		}
	}
	// a newline outside brackets ends the statement
	if lx.depth == 0 && hadTok {
		lx.atStmt = true
		lx.inImp = false
	}
}

// emit appends a token, recording a statement boundary when one is pending
func (lx *lexer) emit(tok string) {
	if lx.atStmt {
		lx.stmts = append(lx.stmts, len(lx.toks))
		lx.atStmt = false
	}
	lx.toks = append(lx.toks, tok)
}

// stringLit consumes a quoted literal (with backslash escapes) and emits <str>.
// Unterminated literals run to end of line; scripts are messy and a lone quote
// should not fail the whole document
func (lx *lexer) stringLit(s string, i int) int {
	quote := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == '\\' && j+1 < len(s) {
			j += 2
			continue
		}
		if s[j] == quote {
			j++
			break
		}
		j++
	}
	lx.emit(TokStr)
	return j
}

// numberLit consumes digits, dots, exponents, and hex and emits <num>
func (lx *lexer) numberLit(s string, i int) int {
	j := i
	for j < len(s) {
		c := s[j]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' ||
			c == 'x' || c == 'X' || c == 'e' || c == 'E' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			((c == '+' || c == '-') && (s[j-1] == 'e' || s[j-1] == 'E')) {
			j++
			continue
		}
		break
	}
	lx.emit(TokNum)
	return j
}

// ident consumes an identifier and classifies it: keyword, call name, import
// target, or local (renamed to a positional placeholder)
func (lx *lexer) ident(s string, i int) int {
	j := i
	for j < len(s) {
		r, sz := utf8.DecodeRuneInString(s[j:])
		if !isIdentPart(r) {
			break
		}
		j += sz
	}
	word := s[i:j]
	lower := strings.ToLower(word)

	// next non-space byte decides whether this is a call
	k := j
	for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
		k++
	}
	isCall := k < len(s) && s[k] == '('

	switch {
	case isKeyword(lower):
		lx.emit(lower)
		if _, ok := importKeywords[lower]; ok {
			lx.inImp = true
		}
		lx.pendDef = lower == "def" || lower == "class"
	case lx.inImp:
		// module names are the strongest comparable vocabulary; keep them
		// verbatim here and at every later use
		lx.emit(lower)
		lx.imps[lower] = struct{}{}
	case lx.pendDef:
		// a locally defined name gets a placeholder so renaming a helper
		// function does not defeat detection
		lx.emit(lx.placeholder(word))
		lx.pendDef = false
	case isImported(lx, lower):
		lx.emit(lower)
	case isLocal(lx, word):
		lx.emit(lx.names[word])
	case isCall:
		// unknown called names are library operations, kept verbatim
		lx.emit(lower)
	default:
		lx.emit(lx.placeholder(word))
	}
	return j
}

func isImported(lx *lexer, lower string) bool { _, ok := lx.imps[lower]; return ok }
func isLocal(lx *lexer, word string) bool     { _, ok := lx.names[word]; return ok }

// placeholder renames a local identifier by order of first appearance, so
// variable renaming alone does not defeat detection
func (lx *lexer) placeholder(name string) string {
	if p, ok := lx.names[name]; ok {
		return p
	}
	p := "v" + itoa(len(lx.names))
	lx.names[name] = p
	return p
}

// operator consumes one or two punctuation bytes and tracks nesting.
// Semicolons end statements like newlines do
func (lx *lexer) operator(s string, i int) int {
	c := s[i]
	switch c {
	case '(', '[', '{':
		lx.depth++
	case ')', ']', '}':
		if lx.depth > 0 {
			lx.depth--
		}
	case ';':
		lx.emit(";")
		if lx.depth == 0 {
			lx.atStmt = true
			lx.inImp = false
		}
		return i + 1
	}

	// two-byte operators worth keeping as one token (<- <= >= == != ** %>%)
	if i+1 < len(s) {
		two := s[i : i+2]
		switch two {
		case "<-", "<=", ">=", "==", "!=", "**", "->", "|>":
			lx.emit(two)
			return i + 2
		}
		if i+2 < len(s) && s[i:i+3] == "%>%" {
			lx.emit("%>%")
			return i + 3
		}
	}
	lx.emit(string(c))
	return i + 1
}

func isKeyword(s string) bool { _, ok := keywords[s]; return ok }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// itoa avoids strconv for the tiny placeholder counter
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
