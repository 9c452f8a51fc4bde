package expr

// OpKind identifies the operator of a Binary node.
type OpKind int

const (
	// OpOther is any operator the front end has no dedicated kind for.
	// Its meaning is carried by Op.Text alone.
	OpOther OpKind = iota
	OpEqual
	OpAnd
	OpOr
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpMatch
)

var opKindNames = [...]string{
	OpOther:        "other",
	OpEqual:        "equal",
	OpAnd:          "and",
	OpOr:           "or",
	OpNotEqual:     "not_equal",
	OpLess:         "less",
	OpLessEqual:    "less_equal",
	OpGreater:      "greater",
	OpGreaterEqual: "greater_equal",
	OpMatch:        "match",
}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opKindNames) {
		return "unknown"
	}
	return opKindNames[k]
}

// Op is an operator token: its kind plus the spelling it had in the source.
type Op struct {
	Kind OpKind
	Text string
}

func (o Op) String() string { return o.Text }

// sourceSpellings maps front-end operator spellings to kinds.
var sourceSpellings = map[string]OpKind{
	"==": OpEqual,
	"&&": OpAnd,
	"||": OpOr,
	"!=": OpNotEqual,
	"<":  OpLess,
	"<=": OpLessEqual,
	">":  OpGreater,
	">=": OpGreaterEqual,
	"=~": OpMatch,
}

// LookupOp classifies an operator spelling. Unknown spellings yield an
// OpOther token that keeps the spelling verbatim.
func LookupOp(text string) Op {
	return Op{Kind: sourceSpellings[text], Text: text}
}
