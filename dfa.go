package cidxml

// DFA is the compiled runtime form of a Children content model (design
// component C6), built from a ContentSpecNode AST via the classical
// Aho/Sethi/Ullman construction: augment the regex with an end marker,
// number every leaf position, compute nullable/firstpos/lastpos/followpos,
// then run subset construction over position sets.
type DFA struct {
	// posName[i] is the element name matched by leaf position i; the final
	// position (len(posName)-1) is the synthetic end marker and matches
	// nothing.
	posName []string
	endPos  int

	// transitions[i] maps an element name to the next DFA state; a name
	// with no entry has no transition out of state i (a mismatch).
	// accepting[i] reports whether state i holds the end-marker position.
	transitions []map[string]int
	accepting   []bool
	start       int
}

type posSet map[int]bool

func unionInto(dst posSet, src []int) {
	for _, p := range src {
		dst[p] = true
	}
}

func (s posSet) key() string {
	// Deterministic key for deduplicating discovered states: the ids are
	// sorted first, so two sets holding the same positions give the same
	// key whatever the map iteration order.
	ids := make([]int, 0, len(s))
	for p := range s {
		ids = append(ids, p)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	buf := make([]byte, 0, len(ids)*4)
	for _, id := range ids {
		buf = append(buf, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(buf)
}

// compileChildrenDFA compiles a rewritten (occurrence-desugared) content
// spec into a DFA.
func compileChildrenDFA(spec *ContentSpecNode) *DFA {
	// Augment with an end marker via Sequence so followpos naturally
	// threads through to an accepting position.
	endLeaf := &ContentSpecNode{Kind: SpecLeaf, Name: "", ElementID: -3}
	root := seq(spec, endLeaf)

	// Assign each real leaf (including the end marker, excluding epsilon
	// placeholders from `?` desugaring) a dense position id.
	posName := []string{}
	posOf := map[*ContentSpecNode]int{}
	var numberPositions func(n *ContentSpecNode)
	numberPositions = func(n *ContentSpecNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case SpecLeaf:
			if n.ElementID == epsilonElementID {
				return
			}
			posOf[n] = len(posName)
			posName = append(posName, n.Name)
		default:
			numberPositions(n.Left)
			numberPositions(n.Right)
		}
	}
	numberPositions(root)
	endPos := posOf[endLeaf]

	nullableOf := map[*ContentSpecNode]bool{}
	firstposOf := map[*ContentSpecNode][]int{}
	lastposOf := map[*ContentSpecNode][]int{}
	followpos := map[int][]int{}

	var compute func(n *ContentSpecNode)
	compute = func(n *ContentSpecNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case SpecLeaf:
			if n.ElementID == epsilonElementID {
				nullableOf[n] = true
				firstposOf[n] = nil
				lastposOf[n] = nil
				return
			}
			p := posOf[n]
			nullableOf[n] = false
			firstposOf[n] = []int{p}
			lastposOf[n] = []int{p}
		case SpecSequence:
			compute(n.Left)
			compute(n.Right)
			nullableOf[n] = nullableOf[n.Left] && nullableOf[n.Right]
			if nullableOf[n.Left] {
				firstposOf[n] = append(append([]int{}, firstposOf[n.Left]...), firstposOf[n.Right]...)
			} else {
				firstposOf[n] = firstposOf[n.Left]
			}
			if nullableOf[n.Right] {
				lastposOf[n] = append(append([]int{}, lastposOf[n.Left]...), lastposOf[n.Right]...)
			} else {
				lastposOf[n] = lastposOf[n.Right]
			}
			for _, i := range lastposOf[n.Left] {
				followpos[i] = append(followpos[i], firstposOf[n.Right]...)
			}
		case SpecAlternation:
			compute(n.Left)
			compute(n.Right)
			nullableOf[n] = nullableOf[n.Left] || nullableOf[n.Right]
			firstposOf[n] = append(append([]int{}, firstposOf[n.Left]...), firstposOf[n.Right]...)
			lastposOf[n] = append(append([]int{}, lastposOf[n.Left]...), lastposOf[n.Right]...)
		case SpecZeroOrMore:
			compute(n.Left)
			nullableOf[n] = true
			firstposOf[n] = firstposOf[n.Left]
			lastposOf[n] = lastposOf[n.Left]
			for _, i := range lastposOf[n.Left] {
				followpos[i] = append(followpos[i], firstposOf[n.Left]...)
			}
		}
	}
	compute(root)

	start := posSet{}
	unionInto(start, firstposOf[root])

	var states []posSet
	var transitions []map[string]int
	var accepting []bool
	index := map[string]int{}

	addState := func(s posSet) int {
		k := s.key()
		if id, ok := index[k]; ok {
			return id
		}
		id := len(states)
		index[k] = id
		states = append(states, s)
		transitions = append(transitions, map[string]int{})
		accepting = append(accepting, s[endPos])
		return id
	}

	startID := addState(start)
	queue := []int{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		byName := map[string]posSet{}
		for p := range states[id] {
			if p == endPos {
				continue
			}
			name := posName[p]
			dst := byName[name]
			if dst == nil {
				dst = posSet{}
				byName[name] = dst
			}
			unionInto(dst, followpos[p])
		}
		for name, dst := range byName {
			before := len(states)
			newID := addState(dst)
			transitions[id][name] = newID
			if len(states) > before {
				queue = append(queue, newID)
			}
		}
	}

	return &DFA{posName: posName, endPos: endPos, transitions: transitions, accepting: accepting, start: startID}
}

// dfaState is the live cursor over a DFA during validation.
type dfaState struct {
	d   *DFA
	cur int
}

func (d *DFA) NewCursor() *dfaState { return &dfaState{d: d, cur: d.start} }

// Advance consumes a child element name; ok is false if name is not a
// legal next child in the current state.
func (s *dfaState) Advance(name string) bool {
	next, ok := s.d.transitions[s.cur][name]
	if !ok {
		return false
	}
	s.cur = next
	return true
}

// Accepted reports whether the sequence consumed so far is a complete
// match (the element may legally end here).
func (s *dfaState) Accepted() bool { return s.d.accepting[s.cur] }

// ExpectedNames returns the set of child names legal from the current
// state, for "too few"/"mismatch" diagnostics.
func (s *dfaState) ExpectedNames() []string {
	out := make([]string, 0, len(s.d.transitions[s.cur]))
	for name := range s.d.transitions[s.cur] {
		out = append(out, name)
	}
	return out
}

// CompiledContentModel is the runtime-checkable form of an ElementDecl's
// content spec (design component C6/C7): Empty and Any need no structure;
// Mixed is checked by mixedcontent.go's id-set membership test; Children
// is checked by walking the compiled DFA.
type CompiledContentModel struct {
	Kind         ElementTypeVal
	MixedNames   []string
	MixedSet     *mixedContentSet
	AcceptsEmpty bool
	DFA          *DFA
}

// compileContentModel turns an ElementDecl's declared type and (for
// Mixed/Children) raw spec into its runtime-checkable CompiledContentModel.
func compileContentModel(decltype ElementTypeVal, spec *ContentSpecNode, mixedNames []string) *CompiledContentModel {
	switch decltype {
	case EmptyElementType:
		return &CompiledContentModel{Kind: EmptyElementType, AcceptsEmpty: true}
	case AnyElementType:
		return &CompiledContentModel{Kind: AnyElementType, AcceptsEmpty: true}
	case MixedElementType:
		return &CompiledContentModel{Kind: MixedElementType, MixedNames: mixedNames, MixedSet: newMixedContentSet(mixedNames), AcceptsEmpty: true}
	case ElementElementType:
		dfa := compileChildrenDFA(spec)
		return &CompiledContentModel{Kind: ElementElementType, DFA: dfa, AcceptsEmpty: dfa.accepting[dfa.start]}
	default:
		return &CompiledContentModel{Kind: decltype}
	}
}
