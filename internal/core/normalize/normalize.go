// Package normalize converts raw analysis-script text into a canonical,
// order-preserving sequence of operation tokens
// Pipeline order
// 1 Byte sanitation drop NUL/control/invalid bytes
// 2 Unicode NFKC normalization, strip format chars, width fold
// 3 Format adapter tokenization (comments stripped, literals reduced to kind)
// 4 Structural identifier renaming to positional placeholders
package normalize

import (
	"strings"
	"sync"
	"unicode"

	perr "dejavu/internal/platform/errors"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// FormatTag selects the tokenizer adapter for a script
type FormatTag string

const (
	// FormatGenericScript is plain script text (python/R style surface syntax)
	FormatGenericScript FormatTag = "generic-script"
	// FormatNotebook is a notebook JSON document treated as a cell sequence
	FormatNotebook FormatTag = "notebook-cell-sequence"
)

// Literal kind placeholders; values are stripped, kinds are kept so that
// x = 5 and x = 9 normalize identically
const (
	TokStr = "<str>"
	TokNum = "<num>"
)

// Tokenizer is the per-format capability. Implementations must be pure
// functions of their input and safe for concurrent use
type Tokenizer interface {
	Tokenize(text string) (toks []string, stmts []int, err error)
}

// Document is the canonical form of one script version
// Tokens is the operation-token sequence; Stmts holds the token index at
// which each statement begins
type Document struct {
	Tokens  []string
	Stmts   []int
	Profile Profile
}

// Limits bounds normalization work; zero values fall back to defaults
type Limits struct {
	MaxBytes int
}

// DefaultMaxBytes caps raw script size before tokenization is attempted
const DefaultMaxBytes = 1 << 20

// Normalizer dispatches to format adapters and owns the shared limits.
// The zero value is not usable; construct with New
type Normalizer struct {
	adapters map[FormatTag]Tokenizer
	limits   Limits
}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// New constructs a Normalizer with the built-in format adapters registered
func New(limits Limits) *Normalizer {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultMaxBytes
	}
	return &Normalizer{
		adapters: map[FormatTag]Tokenizer{
			FormatGenericScript: scriptTokenizer{},
			FormatNotebook:      notebookTokenizer{},
		},
		limits: limits,
	}
}

// Register installs (or replaces) the adapter for a format tag
func (n *Normalizer) Register(tag FormatTag, t Tokenizer) { n.adapters[tag] = t }

// Normalize produces the canonical Document for raw script text.
// Pure function of (raw, tag); returns ErrorCodeMalformedScript when the text
// cannot be tokenized within limits
func (n *Normalizer) Normalize(raw string, tag FormatTag) (*Document, error) {
	if len(raw) > n.limits.MaxBytes {
		return nil, perr.MalformedScriptf("script exceeds %d bytes", n.limits.MaxBytes)
	}
	tok, ok := n.adapters[tag]
	if !ok {
		return nil, perr.MalformedScriptf("unsupported format tag %q", tag)
	}

	s := Sanitize(raw)
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	toks, stmts, err := tok.Tokenize(ns)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, perr.MalformedScriptf("no operation tokens")
	}

	doc := &Document{Tokens: toks, Stmts: stmts}
	doc.Profile = buildProfile(toks)
	return doc, nil
}
