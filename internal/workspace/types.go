package workspace

// NodeKind identifies the type of a workspace tree node.
type NodeKind int

const (
	KindCollection NodeKind = iota
	KindFolder
	KindRequest
)

func (k NodeKind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindFolder:
		return "folder"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Collection is a root-level container. Collections never have a parent
// other than the workspace root.
type Collection struct {
	ID         string
	Name       string
	OrderIndex int64
}

// Folder is a nestable container inside a collection. An empty
// ParentFolderID means the folder sits directly under the collection root.
type Folder struct {
	ID             string
	CollectionID   string
	ParentFolderID string
	Name           string
	OrderIndex     int64
}

// Request is a single API call definition, always a leaf. An empty FolderID
// means the request sits directly under the collection root. The editable
// payload lives with the editing layer and the store, not on the tree node.
type Request struct {
	ID           string
	CollectionID string
	FolderID     string
	Name         string
	OrderIndex   int64
}

// Payload is the editable body of a request. The tree only tracks identity;
// sessions and the store carry this around.
type Payload struct {
	Method      string
	URL         string
	Headers     string
	Body        string
	Script      string
	Description string
}

// Node is one row of a full-tree snapshot: type tag, parent link and display
// order baked in.
type Node struct {
	ID           string
	Kind         NodeKind
	Name         string
	ParentID     string
	CollectionID string
	OrderIndex   int64
	Depth        int
}
