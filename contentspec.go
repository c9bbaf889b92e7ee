package cidxml

// ContentSpecKind distinguishes the node kinds of a content-spec AST,
// mirroring the EBNF shape of the `children` production (design component
// C5): a leaf names one child element; the rest combine or repeat leaves.
type ContentSpecKind int

const (
	SpecLeaf ContentSpecKind = iota
	SpecSequence
	SpecAlternation
	SpecZeroOrOne
	SpecZeroOrMore
	SpecOneOrMore
)

// ContentSpecNode is one node of a compiled ELEMENT content-spec AST. Leaf
// nodes carry ElementID, the leaf's position assigned during numbering
// (used as the alphabet symbol in the firstpos/lastpos/followpos
// computation in dfa.go); -1 marks a leaf not yet numbered,
// epsilonElementID (-2) the placeholder from `?` desugaring, and -3 the
// synthetic end-marker leaf appended during compilation.
type ContentSpecNode struct {
	Kind       ContentSpecKind
	Name       string // valid only for SpecLeaf
	ElementID  int
	Left, Right *ContentSpecNode
}

func leaf(name string) *ContentSpecNode { return &ContentSpecNode{Kind: SpecLeaf, Name: name, ElementID: -1} }

func seq(a, b *ContentSpecNode) *ContentSpecNode {
	return &ContentSpecNode{Kind: SpecSequence, Left: a, Right: b}
}

func alt(a, b *ContentSpecNode) *ContentSpecNode {
	return &ContentSpecNode{Kind: SpecAlternation, Left: a, Right: b}
}

// rewriteOccurrence applies the standard `+`/`?` desugaring so the DFA
// compiler (dfa.go) only has to handle Leaf/Sequence/Alternation/
// ZeroOrMore:
//
//	X+  ->  Sequence(X, ZeroOrMore(X))
//	X?  ->  Alternation(X, Leaf(epsilon))
//
// `*` is left as-is (ZeroOrMore is a first-class node the DFA compiler
// understands directly via firstpos/lastpos/followpos over a starred
// subexpression).
func rewriteOccurrence(kind ContentSpecKind, x *ContentSpecNode) *ContentSpecNode {
	switch kind {
	case SpecOneOrMore:
		return seq(x, &ContentSpecNode{Kind: SpecZeroOrMore, Left: x})
	case SpecZeroOrOne:
		return alt(x, &ContentSpecNode{Kind: SpecLeaf, Name: "", ElementID: epsilonElementID})
	case SpecZeroOrMore:
		return &ContentSpecNode{Kind: SpecZeroOrMore, Left: x}
	default:
		return x
	}
}

// epsilonElementID marks the nullable placeholder leaf introduced by `?`
// desugaring: a leaf with this id matches nothing and is never a "real"
// child element, but participates in firstpos/followpos so the subset
// construction sees the right nullability.
const epsilonElementID = -2

// numberLeaves walks spec depth-first assigning sequential leaf ids
// (starting at 0) to every SpecLeaf node except epsilon placeholders,
// building the id<->name tables used both by the DFA compiler and by
// runtime validation's diagnostics. The synthetic end-marker is appended
// separately by compileChildrenDFA in dfa.go.
func numberLeaves(spec *ContentSpecNode) (names []string) {
	var walk func(n *ContentSpecNode)
	walk = func(n *ContentSpecNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case SpecLeaf:
			if n.ElementID == epsilonElementID {
				return
			}
			n.ElementID = len(names)
			names = append(names, n.Name)
		default:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(spec)
	return names
}
