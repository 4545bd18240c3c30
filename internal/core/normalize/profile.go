package normalize

import "strings"

// OpClass buckets recognized analysis operations; used for alert descriptions,
// never for similarity scoring
type OpClass string

const (
	// OpLoad covers data-loading calls
	OpLoad OpClass = "load"
	// OpTransform covers dataframe/column transformations
	OpTransform OpClass = "transform"
	// OpVisualize covers plotting calls
	OpVisualize OpClass = "visualize"
	// OpFit covers model fitting and prediction
	OpFit OpClass = "fit"
)

// Profile summarizes the recognizable operations of a document
type Profile struct {
	Ops     map[OpClass]int
	Imports []string
}

// Summary renders the op classes present in pipeline order; alert text uses
// it to say what kind of work repeated
func (p Profile) Summary() string {
	var parts []string
	for _, c := range []OpClass{OpLoad, OpTransform, OpFit, OpVisualize} {
		if p.Ops[c] > 0 {
			parts = append(parts, string(c))
		}
	}
	return strings.Join(parts, "/")
}

// opVocab maps well-known call names to their class. The vocabulary is small
// and curated; unknown calls simply stay unclassified
var opVocab = map[string]OpClass{
	// load
	"read_csv": OpLoad, "read_table": OpLoad, "read_excel": OpLoad,
	"read_parquet": OpLoad, "read_json": OpLoad, "fread": OpLoad,
	"load": OpLoad, "open": OpLoad,
	// transform
	"merge": OpTransform, "groupby": OpTransform, "dropna": OpTransform,
	"fillna": OpTransform, "filter": OpTransform, "mutate": OpTransform,
	"select": OpTransform, "apply": OpTransform, "join": OpTransform,
	"pivot": OpTransform, "melt": OpTransform, "sort_values": OpTransform,
	// visualize
	"plot": OpVisualize, "ggplot": OpVisualize, "hist": OpVisualize,
	"scatter": OpVisualize, "boxplot": OpVisualize, "barplot": OpVisualize,
	"imshow": OpVisualize, "lineplot": OpVisualize, "heatmap": OpVisualize,
	// fit
	"fit": OpFit, "predict": OpFit, "train": OpFit, "lm": OpFit,
	"glm": OpFit, "randomforest": OpFit, "svm": OpFit, "kmeans": OpFit,
	"xgboost": OpFit, "cross_val_score": OpFit,
}

// buildProfile classifies calls and collects import targets from the token
// stream. Imports are the tokens following an import-style keyword up to the
// next statement boundary marker
func buildProfile(toks []string) Profile {
	p := Profile{Ops: make(map[OpClass]int)}
	inImp := false
	for i, t := range toks {
		if _, ok := importKeywords[t]; ok {
			inImp = true
			continue
		}
		if t == ";" {
			inImp = false
			continue
		}
		if inImp && isWordToken(t) && !isKeyword(t) {
			p.Imports = append(p.Imports, t)
			inImp = false
			continue
		}
		// calls are word tokens directly followed by an open paren
		if i+1 < len(toks) && toks[i+1] == "(" {
			if cls, ok := opVocab[t]; ok {
				p.Ops[cls]++
			}
		}
	}
	return p
}

// isWordToken filters out placeholders and literal-kind markers
func isWordToken(t string) bool {
	if t == TokStr || t == TokNum {
		return false
	}
	if len(t) >= 2 && t[0] == 'v' && t[1] >= '0' && t[1] <= '9' {
		return false
	}
	r := rune(t[0])
	return isIdentStart(r)
}
