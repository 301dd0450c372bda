package cache

// node is one arena slot of a tier. The slot index doubles as the cell
// index, so recycling a slot reuses its cell in place and never changes
// the backing storage layout.
type node[K comparable] struct {
	key   K
	newer int32
	older int32

	// lastBatch is the batch id that most recently resolved this cell.
	// Under batch protection a cell whose lastBatch equals the current
	// batch must not be recycled.
	lastBatch uint64
}

const noNode = int32(-1)

// tier is one size class: a fixed arena of cells with an intrusive
// recency list threaded through it. head is the most recently used cell,
// tail the least.
type tier[K comparable] struct {
	cfg          TierConfig
	cellsPerPage int

	// nodes grows by appending, so fresh slots are handed out
	// sequentially and pages fill in order. Once len(nodes) reaches
	// capacity, reuse goes through the recency list instead.
	nodes []node[K]
	index map[K]int32
	head  int32
	tail  int32
}

func newTier[K comparable](cfg TierConfig) tier[K] {
	return tier[K]{
		cfg:          cfg,
		cellsPerPage: cfg.cellsPerPage(),
		nodes:        make([]node[K], 0, cfg.Capacity),
		index:        make(map[K]int32, cfg.Capacity),
		head:         noNode,
		tail:         noNode,
	}
}

// unlink removes slot i from the recency list without touching the map.
func (t *tier[K]) unlink(i int32) {
	n := &t.nodes[i]
	if n.newer != noNode {
		t.nodes[n.newer].older = n.older
	} else {
		t.head = n.older
	}
	if n.older != noNode {
		t.nodes[n.older].newer = n.newer
	} else {
		t.tail = n.newer
	}
	n.newer, n.older = noNode, noNode
}

// pushFront makes slot i the most recently used cell.
func (t *tier[K]) pushFront(i int32) {
	n := &t.nodes[i]
	n.newer = noNode
	n.older = t.head
	if t.head != noNode {
		t.nodes[t.head].newer = i
	}
	t.head = i
	if t.tail == noNode {
		t.tail = i
	}
}

// touch moves an already linked slot to the front.
func (t *tier[K]) touch(i int32) {
	if t.head == i {
		return
	}
	t.unlink(i)
	t.pushFront(i)
}

// reset drops all entries. Arena storage is kept for reuse; slots are
// handed out from zero again.
func (t *tier[K]) reset() {
	t.nodes = t.nodes[:0]
	clear(t.index)
	t.head, t.tail = noNode, noNode
}
