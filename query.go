package stockroom

// Operation is the boolean operator of a query node.
type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, components []Component, children []QueryNode) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   children,
		components: components,
	}
}

// Mask evaluates the node against the presence indices of sto.
// Not(a, b) matches entities carrying none of its items.
func (n *compositeNode) Mask(sto Store) Mask {
	s := asStore(sto)
	masks := make([]Mask, 0, len(n.components)+len(n.children))
	for _, comp := range n.components {
		masks = append(masks, s.columns[s.slotFor(comp)].present())
	}
	for _, child := range n.children {
		masks = append(masks, child.Mask(sto))
	}

	switch n.op {
	case OpAnd:
		if len(masks) == 0 {
			return s.alive
		}
		return And(masks...)
	case OpOr:
		return Or(masks...)
	case OpNot:
		return Not(Or(masks...))
	}
	return emptyMask{}
}

func (q *query) And(items ...any) QueryNode {
	return q.node(OpAnd, items)
}

func (q *query) Or(items ...any) QueryNode {
	return q.node(OpOr, items)
}

func (q *query) Not(items ...any) QueryNode {
	return q.node(OpNot, items)
}

// node builds a composite node. The first node built becomes the query's root.
func (q *query) node(op Operation, items []any) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(op, components, children)
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) processItems(items ...any) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Mask(sto Store) Mask {
	if q.root == nil {
		return emptyMask{}
	}
	return q.root.Mask(sto)
}
