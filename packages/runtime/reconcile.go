package runtime

import (
	"golang.org/x/net/html"

	"bfc-go/packages/compiler/src/output"
)

// Keyed region reconciliation at a comment anchor. Rows keep DOM identity
// across reorders: a row whose key survives is moved, not rebuilt, so
// state attached to its nodes is preserved. Reconciling an unchanged key
// list leaves the DOM untouched.

// row is one materialized list row: its nodes plus the effects bound to
// positions inside it. Disposing a row runs its effects' cleanups.
type row struct {
	nodes    []*html.Node
	effects  []*Effect
	item     interface{}
	index    float64
	bound    bool
	disposed bool
}

func (r *row) dispose() {
	r.disposed = true
	for _, e := range r.effects {
		e.dispose()
	}
	for _, n := range r.nodes {
		detach(n)
	}
}

type rowSpec struct {
	key string
	// build materializes a fresh row.
	build func() *row
	// adopt refreshes a surviving row with the current item value.
	adopt func(*row)
}

// regionAfter collects the nodes owned by an anchor: everything after it
// up to the next structural anchor comment or the parent's end.
func regionAfter(anchor *html.Node) []*html.Node {
	var region []*html.Node
	for n := anchor.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.CommentNode && isAnchorData(n.Data) {
			break
		}
		region = append(region, n)
	}
	return region
}

func isAnchorData(data string) bool {
	return len(data) > 3 && data[:3] == "bf-"
}

// serverRows indexes an anchor's server-rendered region by key attribute.
// The rows carry no effects yet; the first reconcile adopts them.
func serverRows(anchor *html.Node) map[string]*row {
	rows := map[string]*row{}
	for _, n := range regionAfter(anchor) {
		if n.Type != html.ElementNode {
			continue
		}
		if key, ok := attr(n, output.KeyAttr); ok {
			rows[key] = &row{nodes: []*html.Node{n}}
		}
	}
	return rows
}

// reconcileRows brings the anchor's region to the desired row sequence.
// Surviving keys keep their nodes and effects; removed keys are disposed;
// a node already in position is not touched, so an unchanged key list
// performs no DOM mutation.
func reconcileRows(anchor *html.Node, prev map[string]*row, desired []rowSpec) map[string]*row {
	next := map[string]*row{}
	for _, spec := range desired {
		if r, ok := prev[spec.key]; ok {
			next[spec.key] = r
			if spec.adopt != nil {
				spec.adopt(r)
			}
		} else {
			next[spec.key] = spec.build()
		}
	}
	for key, r := range prev {
		if next[key] == nil {
			r.dispose()
		}
	}
	at := anchor
	for _, spec := range desired {
		for _, n := range next[spec.key].nodes {
			if at.NextSibling != n {
				insertAfter(at, n)
			}
			at = n
		}
	}
	return next
}

// swapRegion replaces the anchor's region wholesale, for conditional
// branches.
func swapRegion(anchor *html.Node, nodes []*html.Node) {
	for _, n := range regionAfter(anchor) {
		detach(n)
	}
	at := anchor
	for _, n := range nodes {
		insertAfter(at, n)
		at = n
	}
}
