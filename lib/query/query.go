package query

import (
	"encoding/json"
	"fmt"
)

// Wire class names, used as the envelope discriminator.
const (
	classNameQuery       = "Query"
	classNameTransaction = "TransactionQuery"
)

// --------------------------------------------------------------------------
// Request Interface
// --------------------------------------------------------------------------

// Request is either a single Query or a TransactionQuery. It is what the
// server restores from an incoming request body.
type Request interface {
	// QueryTypes returns the types of all contained queries. A plain query
	// returns a single element, a transaction one element per sub query.
	QueryTypes() []QueryType
}

// ParseRequest restores a Request from its wire form. The JSON envelope
// carries a "className" discriminator ("Query" or "TransactionQuery").
func ParseRequest(raw []byte) (Request, error) {
	var envelope struct {
		ClassName string `json:"className"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	switch envelope.ClassName {
	case classNameQuery:
		var q Query
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, err
		}
		return &q, nil
	case classNameTransaction:
		var tq TransactionQuery
		if err := json.Unmarshal(raw, &tq); err != nil {
			return nil, err
		}
		return &tq, nil
	default:
		return nil, fmt.Errorf("unknown request class: %q", envelope.ClassName)
	}
}

// --------------------------------------------------------------------------
// Query
// --------------------------------------------------------------------------

// Query describes a single operation against one collection. Which fields
// are used depends on the query type.
type Query struct {
	// Target is the name of the collection the query operates on.
	Target string
	// Type of the operation.
	Type QueryType

	// AddData holds the documents for add and clearAdd queries.
	AddData []map[string]any
	// OverrideData holds the fields merged into matches by update queries.
	OverrideData map[string]any
	// Cause restricts the query to matching documents. A nil cause matches
	// every document.
	Cause Node
	// Sort orders the result of search queries.
	Sort Sort
	// Offset and Limit page the result of search queries. Zero means
	// "from the start" and "no limit" respectively.
	Offset int
	Limit  int

	// ReturnData requests the affected documents in the result of write
	// queries (reads always return data).
	ReturnData bool
	// MustAffectAtLeastOne fails update/delete queries that match nothing.
	MustAffectAtLeastOne bool

	// SerialKey names the document field that receives an auto-incremented
	// serial number on add. Empty disables serial numbering.
	SerialKey string
	// ResetSerial resets the serial counter on clear and clearAdd.
	ResetSerial bool

	// Template is the document shape for conformToTemplate queries.
	Template map[string]any
	// RenameBefore/RenameAfter are the field names for renameField queries.
	RenameBefore string
	RenameAfter  string
}

// QueryTypes implements the Request interface.
func (q *Query) QueryTypes() []QueryType {
	return []QueryType{q.Type}
}

// queryJSON is the wire form of a Query.
type queryJSON struct {
	ClassName            string           `json:"className"`
	Target               string           `json:"target"`
	Type                 QueryType        `json:"type"`
	AddData              []map[string]any `json:"addData,omitempty"`
	OverrideData         map[string]any   `json:"overrideData,omitempty"`
	Cause                json.RawMessage  `json:"cause,omitempty"`
	Sort                 Sort             `json:"sort,omitempty"`
	Offset               int              `json:"offset,omitempty"`
	Limit                int              `json:"limit,omitempty"`
	ReturnData           bool             `json:"returnData,omitempty"`
	MustAffectAtLeastOne bool             `json:"mustAffectAtLeastOne,omitempty"`
	SerialKey            string           `json:"serialKey,omitempty"`
	ResetSerial          bool             `json:"resetSerial,omitempty"`
	Template             map[string]any   `json:"template,omitempty"`
	RenameBefore         string           `json:"renameBefore,omitempty"`
	RenameAfter          string           `json:"renameAfter,omitempty"`
}

// MarshalJSON implements the json.Marshaller interface.
func (q *Query) MarshalJSON() ([]byte, error) {
	wire := queryJSON{
		ClassName:            classNameQuery,
		Target:               q.Target,
		Type:                 q.Type,
		AddData:              q.AddData,
		OverrideData:         q.OverrideData,
		Sort:                 q.Sort,
		Offset:               q.Offset,
		Limit:                q.Limit,
		ReturnData:           q.ReturnData,
		MustAffectAtLeastOne: q.MustAffectAtLeastOne,
		SerialKey:            q.SerialKey,
		ResetSerial:          q.ResetSerial,
		Template:             q.Template,
		RenameBefore:         q.RenameBefore,
		RenameAfter:          q.RenameAfter,
	}
	if q.Cause != nil {
		raw, err := EncodeNode(q.Cause)
		if err != nil {
			return nil, err
		}
		wire.Cause = raw
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (q *Query) UnmarshalJSON(data []byte) error {
	var wire queryJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Target == "" {
		return fmt.Errorf("query requires a target collection")
	}

	*q = Query{
		Target:               wire.Target,
		Type:                 wire.Type,
		AddData:              wire.AddData,
		OverrideData:         wire.OverrideData,
		Sort:                 wire.Sort,
		Offset:               wire.Offset,
		Limit:                wire.Limit,
		ReturnData:           wire.ReturnData,
		MustAffectAtLeastOne: wire.MustAffectAtLeastOne,
		SerialKey:            wire.SerialKey,
		ResetSerial:          wire.ResetSerial,
		Template:             wire.Template,
		RenameBefore:         wire.RenameBefore,
		RenameAfter:          wire.RenameAfter,
	}
	if len(wire.Cause) > 0 {
		cause, err := DecodeNode(wire.Cause)
		if err != nil {
			return err
		}
		q.Cause = cause
	}
	return nil
}

// --------------------------------------------------------------------------
// TransactionQuery
// --------------------------------------------------------------------------

// TransactionQuery bundles multiple queries into one atomic unit. Either
// every query succeeds or none of them leaves a trace.
type TransactionQuery struct {
	Queries []*Query
}

// QueryTypes implements the Request interface.
func (tq *TransactionQuery) QueryTypes() []QueryType {
	types := make([]QueryType, 0, len(tq.Queries))
	for _, q := range tq.Queries {
		types = append(types, q.Type)
	}
	return types
}

type transactionJSON struct {
	ClassName string   `json:"className"`
	Queries   []*Query `json:"queries"`
}

// MarshalJSON implements the json.Marshaller interface.
func (tq *TransactionQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ClassName: classNameTransaction,
		Queries:   tq.Queries,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (tq *TransactionQuery) UnmarshalJSON(data []byte) error {
	var wire transactionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Queries) == 0 {
		return fmt.Errorf("transaction requires at least one query")
	}
	tq.Queries = wire.Queries
	return nil
}

// --------------------------------------------------------------------------
// Query Factory Functions
// --------------------------------------------------------------------------

// NewAdd creates an add query.
func NewAdd(target string, docs ...map[string]any) *Query {
	return &Query{Target: target, Type: QTAdd, AddData: docs}
}

// NewSearch creates a search query. A nil cause matches every document.
func NewSearch(target string, cause Node) *Query {
	return &Query{Target: target, Type: QTSearch, Cause: cause}
}

// NewSearchOne creates a searchOne query.
func NewSearchOne(target string, cause Node) *Query {
	return &Query{Target: target, Type: QTSearchOne, Cause: cause}
}

// NewGetAll creates a getAll query.
func NewGetAll(target string) *Query {
	return &Query{Target: target, Type: QTGetAll}
}

// NewCount creates a count query. A nil cause counts every document.
func NewCount(target string, cause Node) *Query {
	return &Query{Target: target, Type: QTCount, Cause: cause}
}

// NewUpdate creates an update query.
func NewUpdate(target string, cause Node, override map[string]any) *Query {
	return &Query{Target: target, Type: QTUpdate, Cause: cause, OverrideData: override}
}

// NewUpdateOne creates an updateOne query.
func NewUpdateOne(target string, cause Node, override map[string]any) *Query {
	return &Query{Target: target, Type: QTUpdateOne, Cause: cause, OverrideData: override}
}

// NewDelete creates a delete query.
func NewDelete(target string, cause Node) *Query {
	return &Query{Target: target, Type: QTDelete, Cause: cause}
}

// NewDeleteOne creates a deleteOne query.
func NewDeleteOne(target string, cause Node) *Query {
	return &Query{Target: target, Type: QTDeleteOne, Cause: cause}
}

// NewClear creates a clear query.
func NewClear(target string, resetSerial bool) *Query {
	return &Query{Target: target, Type: QTClear, ResetSerial: resetSerial}
}

// NewClearAdd creates a clearAdd query.
func NewClearAdd(target string, resetSerial bool, docs ...map[string]any) *Query {
	return &Query{Target: target, Type: QTClearAdd, ResetSerial: resetSerial, AddData: docs}
}

// NewConformToTemplate creates a conformToTemplate query.
func NewConformToTemplate(target string, template map[string]any) *Query {
	return &Query{Target: target, Type: QTConformToTemplate, Template: template}
}

// NewRenameField creates a renameField query.
func NewRenameField(target, before, after string) *Query {
	return &Query{Target: target, Type: QTRenameField, RenameBefore: before, RenameAfter: after}
}

// NewTransaction creates a transaction from the given queries.
func NewTransaction(queries ...*Query) *TransactionQuery {
	return &TransactionQuery{Queries: queries}
}
