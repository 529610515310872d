package db

import (
	"fmt"
	"slices"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
)

// --------------------------------------------------------------------------
// Request Execution
// --------------------------------------------------------------------------

// Execute runs a parsed request against the database. Query types listed
// in prohibit fail before any state is touched. Execution never returns an
// error to the caller; failures are reported through the outcome's
// isSuccess flag and error message.
func (d *Database) Execute(req query.Request, prohibit ...query.QueryType) query.Outcome {
	switch r := req.(type) {
	case *query.Query:
		return d.ExecuteQuery(r, prohibit...)
	case *query.TransactionQuery:
		return d.ExecuteTransaction(r, prohibit...)
	default:
		return &query.Result{
			IsSuccess:    false,
			Result:       []map[string]any{},
			ErrorMessage: fmt.Sprintf("unsupported request type %T", req),
		}
	}
}

// ExecuteQuery runs a single query against the database.
func (d *Database) ExecuteQuery(q *query.Query, prohibit ...query.QueryType) *query.Result {
	d.txMu.RLock()
	defer d.txMu.RUnlock()
	return d.executeQuery(q, prohibit)
}

// ExecuteTransaction runs all queries of a transaction as one atomic unit.
// If any query fails, the affected collections are rolled back to their
// state before the transaction.
func (d *Database) ExecuteTransaction(tq *query.TransactionQuery, prohibit ...query.QueryType) *query.TransactionResult {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	// prohibited check up front so a rejected transaction has no side
	// effects and needs no rollback
	for _, q := range tq.Queries {
		if slices.Contains(prohibit, q.Type) {
			return &query.TransactionResult{
				IsSuccess:    false,
				Results:      []*query.Result{},
				ErrorMessage: fmt.Sprintf("prohibited query type: %s", q.Type),
			}
		}
	}

	// snapshot every collection the transaction touches
	snapshots := map[string]collectionState{}
	for _, q := range tq.Queries {
		if _, ok := snapshots[q.Target]; !ok {
			snapshots[q.Target] = d.Collection(q.Target).snapshot()
		}
	}

	results := make([]*query.Result, 0, len(tq.Queries))
	for _, q := range tq.Queries {
		result := d.executeQuery(q, prohibit)
		results = append(results, result)
		if !result.IsSuccess {
			for name, state := range snapshots {
				d.Collection(name).restore(state)
			}
			return &query.TransactionResult{
				IsSuccess:    false,
				Results:      results,
				ErrorMessage: fmt.Sprintf("transaction rolled back: %s", result.ErrorMessage),
			}
		}
	}
	return &query.TransactionResult{IsSuccess: true, Results: results}
}

// --------------------------------------------------------------------------
// Single Query Execution
// --------------------------------------------------------------------------

// executeQuery dispatches one query to its collection. Callers must hold
// txMu (read side for plain queries, write side for transactions).
func (d *Database) executeQuery(q *query.Query, prohibit []query.QueryType) *query.Result {
	if slices.Contains(prohibit, q.Type) {
		return query.NewErrorResult(q, fmt.Sprintf("prohibited query type: %s", q.Type))
	}
	if err := validateQuery(q); err != nil {
		return query.NewErrorResult(q, err.Error())
	}

	var (
		col    = d.Collection(q.Target)
		result = &query.Result{
			IsSuccess: true,
			Target:    q.Target,
			Type:      q.Type,
			Result:    []map[string]any{},
		}
	)

	switch q.Type {
	case query.QTAdd:
		added := col.Add(q.AddData, q.SerialKey)
		result.UpdateCount = len(added)
		if q.ReturnData {
			result.Result = added
		}

	case query.QTUpdate, query.QTUpdateOne:
		hits, updated := col.Update(q.Cause, q.OverrideData, q.Type == query.QTUpdateOne)
		if hits == 0 && q.MustAffectAtLeastOne {
			return query.NewErrorResult(q, "no document matched the update")
		}
		result.HitCount = hits
		result.UpdateCount = hits
		if q.ReturnData {
			result.Result = updated
		}

	case query.QTDelete, query.QTDeleteOne:
		hits, removed := col.Delete(q.Cause, q.Type == query.QTDeleteOne)
		if hits == 0 && q.MustAffectAtLeastOne {
			return query.NewErrorResult(q, "no document matched the delete")
		}
		result.HitCount = hits
		result.UpdateCount = hits
		if q.ReturnData {
			result.Result = removed
		}

	case query.QTSearch, query.QTSearchOne:
		docs, hits := col.Search(q.Cause, q.Sort, q.Offset, q.Limit, q.Type == query.QTSearchOne)
		result.Result = docs
		result.HitCount = hits

	case query.QTGetAll:
		docs, hits := col.Search(nil, q.Sort, q.Offset, q.Limit, false)
		result.Result = docs
		result.HitCount = hits

	case query.QTCount:
		result.HitCount = col.Count(q.Cause)

	case query.QTClear:
		result.UpdateCount = col.Clear(q.ResetSerial)

	case query.QTClearAdd:
		added := col.ClearAdd(q.AddData, q.SerialKey, q.ResetSerial)
		result.UpdateCount = len(added)
		if q.ReturnData {
			result.Result = added
		}

	case query.QTConformToTemplate:
		result.UpdateCount = col.ConformToTemplate(q.Template)

	case query.QTRenameField:
		renamed, err := col.RenameField(q.RenameBefore, q.RenameAfter)
		if err != nil {
			return query.NewErrorResult(q, err.Error())
		}
		result.UpdateCount = renamed

	default:
		return query.NewErrorResult(q, fmt.Sprintf("unsupported query type: %s", q.Type))
	}

	result.DBLength = col.Length()
	return result
}

// validateQuery rejects queries that are structurally unusable for their
// type before they reach a collection.
func validateQuery(q *query.Query) error {
	switch q.Type {
	case query.QTAdd, query.QTClearAdd:
		if len(q.AddData) == 0 {
			return NewErrorf(RetCInvalidQuery, "%s query requires addData", q.Type)
		}
	case query.QTUpdate, query.QTUpdateOne:
		if len(q.OverrideData) == 0 {
			return NewErrorf(RetCInvalidQuery, "%s query requires overrideData", q.Type)
		}
	case query.QTConformToTemplate:
		if len(q.Template) == 0 {
			return NewError(RetCInvalidQuery, "conformToTemplate query requires a template")
		}
	case query.QTRenameField:
		if q.RenameBefore == "" || q.RenameAfter == "" {
			return NewError(RetCInvalidQuery, "renameField query requires renameBefore and renameAfter")
		}
		if q.RenameBefore == q.RenameAfter {
			return NewError(RetCInvalidQuery, "renameField query requires distinct field names")
		}
	}
	return nil
}
