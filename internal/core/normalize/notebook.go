package normalize

import (
	"encoding/json"
	"strings"

	perr "dejavu/internal/platform/errors"
)

// notebookTokenizer treats a notebook JSON document as an ordered sequence of
// code cells and delegates each cell's source to the script lexer. Markdown
// and raw cells carry no operations and are skipped. Cell boundaries always
// start a new statement
type notebookTokenizer struct{}

// nbDoc is the subset of the notebook format we read
type nbDoc struct {
	Cells []nbCell `json:"cells"`
}

type nbCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

func (notebookTokenizer) Tokenize(text string) ([]string, []int, error) {
	var doc nbDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeMalformedScript, "notebook is not valid JSON")
	}
	if len(doc.Cells) == 0 {
		return nil, nil, perr.MalformedScriptf("notebook has no cells")
	}

	// one lexer across cells so placeholder renaming is document-wide
	lx := &lexer{names: make(map[string]string), imps: make(map[string]struct{}), atStmt: true}
	for _, c := range doc.Cells {
		if c.CellType != "code" {
			continue
		}
		src, err := cellSource(c.Source)
		if err != nil {
			return nil, nil, err
		}
		lx.atStmt = true
		for _, line := range strings.Split(src, "\n") {
			lx.line(line)
		}
		// a cell edge closes any dangling statement even inside brackets
		lx.depth = 0
		lx.inImp = false
		lx.pendDef = false
	}
	return lx.toks, lx.stmts, nil
}

// cellSource accepts both notebook source encodings: a single string or an
// array of line strings
func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeMalformedScript, "unreadable cell source")
	}
	return strings.Join(many, ""), nil
}
