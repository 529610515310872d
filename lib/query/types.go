package query

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Query Type Definition
// --------------------------------------------------------------------------

// QueryType defines the kind of operation a query performs against a collection.
type QueryType uint8

const (
	// QTUnknown is the zero value and never valid on the wire
	QTUnknown QueryType = iota

	// Write operations

	QTAdd       // Append documents to a collection
	QTUpdate    // Merge override data into all matching documents
	QTUpdateOne // Merge override data into the first matching document
	QTDelete    // Remove all matching documents
	QTDeleteOne // Remove the first matching document

	// Read operations

	QTSearch    // Return all matching documents (sort/offset/limit aware)
	QTSearchOne // Return the first matching document
	QTGetAll    // Return every document of a collection
	QTCount     // Return the number of matching documents

	// Maintenance operations (prohibited over the wire by default)

	QTClear             // Remove every document of a collection
	QTClearAdd          // Clear a collection and add new documents atomically
	QTConformToTemplate // Reshape every document to a template
	QTRenameField       // Rename a field in every document
)

// String returns the wire name of a QueryType.
func (t QueryType) String() string {
	switch t {
	case QTAdd:
		return "add"
	case QTUpdate:
		return "update"
	case QTUpdateOne:
		return "updateOne"
	case QTDelete:
		return "delete"
	case QTDeleteOne:
		return "deleteOne"
	case QTSearch:
		return "search"
	case QTSearchOne:
		return "searchOne"
	case QTGetAll:
		return "getAll"
	case QTCount:
		return "count"
	case QTClear:
		return "clear"
	case QTClearAdd:
		return "clearAdd"
	case QTConformToTemplate:
		return "conformToTemplate"
	case QTRenameField:
		return "renameField"
	default:
		return "unknown"
	}
}

// ParseQueryType converts a wire name back to a QueryType.
func ParseQueryType(s string) (QueryType, error) {
	switch s {
	case "add":
		return QTAdd, nil
	case "update":
		return QTUpdate, nil
	case "updateOne":
		return QTUpdateOne, nil
	case "delete":
		return QTDelete, nil
	case "deleteOne":
		return QTDeleteOne, nil
	case "search":
		return QTSearch, nil
	case "searchOne":
		return QTSearchOne, nil
	case "getAll":
		return QTGetAll, nil
	case "count":
		return QTCount, nil
	case "clear":
		return QTClear, nil
	case "clearAdd":
		return QTClearAdd, nil
	case "conformToTemplate":
		return QTConformToTemplate, nil
	case "renameField":
		return QTRenameField, nil
	default:
		return QTUnknown, fmt.Errorf("unknown query type: %s", s)
	}
}

// IsWrite reports whether the query type mutates collection state.
func (t QueryType) IsWrite() bool {
	switch t {
	case QTAdd, QTUpdate, QTUpdateOne, QTDelete, QTDeleteOne,
		QTClear, QTClearAdd, QTConformToTemplate, QTRenameField:
		return true
	default:
		return false
	}
}

// MarshalJSON implements the json.Marshaller interface for QueryType.
// This allows QueryType to be serialized as a string in JSON.
func (t QueryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for QueryType.
// This allows QueryType to be deserialized from a string in JSON.
func (t *QueryType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseQueryType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
