package billing

import (
	"sort"

	"github.com/google/uuid"
)

// ChainNode is one document in a traceability chain, with the documents
// derived from it (receipts, credit notes, delivery guides) as children.
type ChainNode struct {
	Document *FiscalDocument `json:"document"`
	Children []*ChainNode    `json:"children,omitempty"`
}

// BuildChain assembles the parent/child forest rooted at the given document
// from its descendants. Documents reference their parent through
// SourceDocumentID, so the set of related documents is enough to rebuild the
// tree; descendants whose parent is not in the set are ignored.
func BuildChain(root *FiscalDocument, descendants []*FiscalDocument) *ChainNode {
	nodes := make(map[uuid.UUID]*ChainNode, len(descendants)+1)
	rootNode := &ChainNode{Document: root}
	nodes[root.ID] = rootNode

	for _, d := range descendants {
		if d.ID == root.ID {
			continue
		}
		nodes[d.ID] = &ChainNode{Document: d}
	}

	for _, d := range descendants {
		if d.ID == root.ID || d.SourceDocumentID == nil {
			continue
		}
		parent, ok := nodes[*d.SourceDocumentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, nodes[d.ID])
	}

	sortChain(rootNode)
	return rootNode
}

// sortChain orders children by creation time so chains render deterministically
func sortChain(node *ChainNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Document.CreatedAt.Before(node.Children[j].Document.CreatedAt)
	})
	for _, child := range node.Children {
		sortChain(child)
	}
}

// Flatten returns the chain as a depth-first list, root first
func (n *ChainNode) Flatten() []*FiscalDocument {
	out := []*FiscalDocument{n.Document}
	for _, child := range n.Children {
		out = append(out, child.Flatten()...)
	}
	return out
}

// FindByType returns all documents of the given type in the chain
func (n *ChainNode) FindByType(docType DocumentType) []*FiscalDocument {
	var out []*FiscalDocument
	for _, d := range n.Flatten() {
		if d.Type == docType {
			out = append(out, d)
		}
	}
	return out
}
