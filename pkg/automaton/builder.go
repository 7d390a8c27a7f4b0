package automaton

// trieNode is a build-time-only node: sparse explicit children plus the
// fields that become the final per-state metadata once resolved.
type trieNode struct {
	children  map[byte]int32
	fail      int32
	output    int32
	isFinal   bool
	patternID int32
	depth     int32
}

// builder accumulates trie nodes during insertion and completes them into
// a total goto function breadth-first.
type builder struct {
	nodes []trieNode
	goto_ [][256]int32
}

func newBuilder() *builder {
	b := &builder{}
	b.nodes = append(b.nodes, trieNode{children: make(map[byte]int32), fail: 0, output: noState})
	return b
}

// insert adds one literal to the trie, creating new nodes as needed and
// marking the terminal node final with the given pattern id. Where two
// literals share a terminal (a later, shorter literal duplicates an
// existing node), the earlier pattern id wins so the first pattern that
// reaches a given state is the one reported.
func (b *builder) insert(pattern []byte, patternID int32) error {
	cur := int32(0)
	for _, ch := range pattern {
		n := &b.nodes[cur]
		next, ok := n.children[ch]
		if !ok {
			next = int32(len(b.nodes))
			b.nodes = append(b.nodes, trieNode{children: make(map[byte]int32), fail: 0, output: noState})
			b.nodes[cur].children[ch] = next
		}
		cur = next
	}
	term := &b.nodes[cur]
	if !term.isFinal {
		term.isFinal = true
		term.patternID = patternID
		term.depth = int32(len(pattern))
	}
	return nil
}

// complete fills in the total goto function breadth-first: root's missing
// transitions loop back to root; every deeper state copies its missing
// transitions from its failure target's already-completed row, and
// records an output link to the nearest final proper suffix.
func (b *builder) complete() error {
	n := len(b.nodes)
	b.goto_ = make([][256]int32, n)

	root := &b.nodes[0]
	for bb := 0; bb < 256; bb++ {
		if child, ok := root.children[byte(bb)]; ok {
			b.goto_[0][bb] = child
		} else {
			b.goto_[0][bb] = 0
		}
	}

	queue := make([]int32, 0, len(root.children))
	for _, child := range root.children {
		b.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		un := &b.nodes[u]
		failRow := b.goto_[un.fail]
		for bb := 0; bb < 256; bb++ {
			if v, ok := un.children[byte(bb)]; ok {
				f := failRow[bb]
				b.nodes[v].fail = f
				if b.nodes[f].isFinal {
					b.nodes[v].output = f
				} else {
					b.nodes[v].output = b.nodes[f].output
				}
				b.goto_[u][bb] = v
				queue = append(queue, v)
			} else {
				b.goto_[u][bb] = failRow[bb]
			}
		}
	}

	return nil
}

// meta materializes the compact, cache-separated per-state metadata array.
func (b *builder) meta() []stateMeta {
	out := make([]stateMeta, len(b.nodes))
	for i, n := range b.nodes {
		out[i] = stateMeta{
			output:    n.output,
			patternID: n.patternID,
			depth:     n.depth,
			isFinal:   n.isFinal,
		}
	}
	return out
}
