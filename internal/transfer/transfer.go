package transfer

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/order"
	"github.com/davrell/reqnest/internal/workspace"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the on-disk workspace interchange shape. Node order in the
// arrays is the display order; order_index is carried verbatim so a
// re-import reproduces the exact sibling indices, not just their order.
type Document struct {
	Collections []Collection `json:"collections" yaml:"collections"`
}

type Collection struct {
	Name       string    `json:"name" yaml:"name"`
	OrderIndex *int64    `json:"order_index,omitempty" yaml:"order_index,omitempty"`
	Folders    []Folder  `json:"folders,omitempty" yaml:"folders,omitempty"`
	Requests   []Request `json:"requests,omitempty" yaml:"requests,omitempty"`
}

type Folder struct {
	Name       string    `json:"name" yaml:"name"`
	OrderIndex *int64    `json:"order_index,omitempty" yaml:"order_index,omitempty"`
	Folders    []Folder  `json:"folders,omitempty" yaml:"folders,omitempty"`
	Requests   []Request `json:"requests,omitempty" yaml:"requests,omitempty"`
}

type Request struct {
	Name        string `json:"name" yaml:"name"`
	OrderIndex  *int64 `json:"order_index,omitempty" yaml:"order_index,omitempty"`
	Method      string `json:"method,omitempty" yaml:"method,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Headers     string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`
	Script      string `json:"script,omitempty" yaml:"script,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PayloadLoader resolves a request id to its editable payload during export.
type PayloadLoader func(requestID string) (workspace.Payload, error)

// PayloadSaver persists an imported request's payload.
type PayloadSaver func(requestID string, p workspace.Payload) error

// Export flattens a model into an interchange document, every node's
// order_index emitted verbatim.
func Export(m *workspace.TreeModel, load PayloadLoader) (Document, error) {
	var doc Document
	cols := m.Collections()
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].OrderIndex < cols[j].OrderIndex })
	for _, c := range cols {
		idx := c.OrderIndex
		out := Collection{Name: c.Name, OrderIndex: &idx}
		folders, requests, err := exportContainer(m, c.ID, "", load)
		if err != nil {
			return Document{}, err
		}
		out.Folders = folders
		out.Requests = requests
		doc.Collections = append(doc.Collections, out)
	}
	return doc, nil
}

func exportContainer(m *workspace.TreeModel, collectionID, folderID string, load PayloadLoader) ([]Folder, []Request, error) {
	var folders []workspace.Folder
	for _, f := range m.Folders() {
		if f.CollectionID == collectionID && f.ParentFolderID == folderID {
			folders = append(folders, f)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool { return folders[i].OrderIndex < folders[j].OrderIndex })

	var outFolders []Folder
	for _, f := range folders {
		idx := f.OrderIndex
		out := Folder{Name: f.Name, OrderIndex: &idx}
		subFolders, subRequests, err := exportContainer(m, collectionID, f.ID, load)
		if err != nil {
			return nil, nil, err
		}
		out.Folders = subFolders
		out.Requests = subRequests
		outFolders = append(outFolders, out)
	}

	var requests []workspace.Request
	for _, r := range m.Requests() {
		if r.CollectionID == collectionID && r.FolderID == folderID {
			requests = append(requests, r)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].OrderIndex < requests[j].OrderIndex })

	var outRequests []Request
	for _, r := range requests {
		idx := r.OrderIndex
		out := Request{Name: r.Name, OrderIndex: &idx}
		if load != nil {
			p, err := load(r.ID)
			if err != nil {
				return nil, nil, errdef.Wrap(errdef.CodePersistence, err, "export request payload")
			}
			out.Method = p.Method
			out.URL = p.URL
			out.Headers = p.Headers
			out.Body = p.Body
			out.Script = p.Script
			out.Description = p.Description
		}
		outRequests = append(outRequests, out)
	}
	return outFolders, outRequests, nil
}

// Import adds a document's collections to a model. A supplied order_index
// is honored verbatim; without one, nodes get AtIndex placements matching
// their source-array position, so an un-annotated file reproduces its
// literal order rather than any alphabetic or id-based order.
func Import(doc Document, m *workspace.TreeModel, save PayloadSaver) error {
	for i, c := range doc.Collections {
		created, err := m.CreateCollection(c.Name, placement(c.OrderIndex, i))
		if err != nil {
			return errdef.Wrap(errdef.CodeImport, err, "import collection")
		}
		if err := importContainer(m, created.ID, "", c.Folders, c.Requests, save); err != nil {
			return err
		}
	}
	return nil
}

func importContainer(m *workspace.TreeModel, collectionID, folderID string, folders []Folder, requests []Request, save PayloadSaver) error {
	for i, f := range folders {
		created, err := m.CreateFolder(collectionID, folderID, f.Name, placement(f.OrderIndex, i))
		if err != nil {
			return errdef.Wrap(errdef.CodeImport, err, "import folder")
		}
		if err := importContainer(m, collectionID, created.ID, f.Folders, f.Requests, save); err != nil {
			return err
		}
	}
	for i, r := range requests {
		created, err := m.CreateRequest(collectionID, folderID, r.Name, placement(r.OrderIndex, i))
		if err != nil {
			return errdef.Wrap(errdef.CodeImport, err, "import request")
		}
		if save != nil {
			p := workspace.Payload{
				Method:      r.Method,
				URL:         r.URL,
				Headers:     r.Headers,
				Body:        r.Body,
				Script:      r.Script,
				Description: r.Description,
			}
			if err := save(created.ID, p); err != nil {
				return errdef.Wrap(errdef.CodeImport, err, "import request payload")
			}
		}
	}
	return nil
}

func placement(idx *int64, position int) order.Placement {
	if idx != nil {
		return order.Explicit(*idx)
	}
	return order.AtIndex(position)
}

// Encode serializes a document in the requested format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		return data, errdef.Wrap(errdef.CodeImport, err, "encode yaml")
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		return data, errdef.Wrap(errdef.CodeImport, err, "encode json")
	}
}

// Decode parses a document in the requested format.
func Decode(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, errdef.Wrap(errdef.CodeImport, err, "decode yaml")
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, errdef.Wrap(errdef.CodeImport, err, "decode json")
		}
	}
	return doc, nil
}
