package wiki

// DocumentLink is a directed edge between documents. If document A's content
// links to document B, LinkedFromID is A and LinkedToID is B. Edges are
// unique per ordered pair and regenerated wholesale whenever A re-renders.
type DocumentLink struct {
	LinkedFromID string `json:"linked_from_id" db:"linked_from_id"`
	LinkedToID   string `json:"linked_to_id" db:"linked_to_id"`
	Kind         string `json:"kind" db:"kind"`
}
