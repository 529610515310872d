package query

import "encoding/json"

// --------------------------------------------------------------------------
// Query Results
// --------------------------------------------------------------------------

// Outcome is the common surface of plain and transaction results. It is
// what the server serializes back to the caller.
type Outcome interface {
	// Success reports whether the request was executed without error.
	Success() bool
}

// Result is the outcome of a single query.
type Result struct {
	IsSuccess bool      `json:"isSuccess"`
	Target    string    `json:"target,omitempty"`
	Type      QueryType `json:"type,omitempty"`

	// Result holds the returned documents (reads always, writes only when
	// the query requested them via returnData).
	Result []map[string]any `json:"result"`

	// DBLength is the number of documents in the target collection after
	// the query ran.
	DBLength int `json:"dbLength"`
	// UpdateCount is the number of documents a write query affected.
	UpdateCount int `json:"updateCount"`
	// HitCount is the number of documents the cause matched.
	HitCount int `json:"hitCount"`

	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Success implements the Outcome interface.
func (r *Result) Success() bool { return r.IsSuccess }

// NewErrorResult creates a failed result for the given query.
func NewErrorResult(q *Query, msg string) *Result {
	return &Result{
		IsSuccess:    false,
		Target:       q.Target,
		Type:         q.Type,
		Result:       []map[string]any{},
		ErrorMessage: msg,
	}
}

// TransactionResult is the outcome of a transaction. Results holds one
// entry per sub query in execution order; on failure it holds the results
// up to and including the failing query.
type TransactionResult struct {
	IsSuccess    bool      `json:"isSuccess"`
	Results      []*Result `json:"results"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Success implements the Outcome interface.
func (r *TransactionResult) Success() bool { return r.IsSuccess }

// ParseResult restores a Result from its wire form.
func ParseResult(raw []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
