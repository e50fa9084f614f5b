// Package querybuilder provides a chainable, declarative query construction
// API that compiles to parameterized SQL against an Executor. It mirrors the
// shape of a hosted-database client so consumers can be written once and
// pointed at either the embedded store or a server database unchanged.
//
// Execution is explicit: stage exactly one operation (insert, else update,
// else select) through the chain, then call Execute. Delete is the
// exception and runs eagerly, since it has no read variant to disambiguate
// against. Errors never escape as panics or returned errors; they are
// carried in Result.Err so callers written against the result-pair
// convention behave identically on every backend.
package querybuilder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Executor is the storage layer a builder compiles against. Both
// localdb.Store and the database/sql adapter in this package satisfy it.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	Exec(ctx context.Context, query string, args ...any) error
	GenerateID() string
}

// ErrNoRows is returned in Result.Err when Single() finds no matching row.
var ErrNoRows = errors.New("querybuilder: no rows returned")

// ErrEmptyPayload is returned when Insert or Update was staged without data.
var ErrEmptyPayload = errors.New("querybuilder: empty payload")

// Result is the uniform outcome of a builder execution. Data holds
// []map[string]any for list selects, map[string]any (or nil) for
// Single/MaybeSingle, and the inserted rows for inserts.
type Result struct {
	Data any
	Err  error
}

// boolColumns is the fixed allow-list of 0/1-valued columns coerced to Go
// bools after a select. Columns not listed round-trip as their raw type.
var boolColumns = map[string]bool{
	"onboarding_completed": true,
	"is_admin":             true,
	"is_active":            true,
	"is_user_brand":        true,
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client is the entry point for building queries against one Executor.
type Client struct {
	exec Executor
}

// NewClient creates a query-builder client.
func NewClient(exec Executor) *Client {
	return &Client{exec: exec}
}

// Executor returns the underlying executor, for callers that need raw access.
func (c *Client) Executor() Executor {
	return c.exec
}

// From starts a builder bound to one table.
func (c *Client) From(table string) *Builder {
	b := &Builder{exec: c.exec, table: table}
	if !identPattern.MatchString(table) {
		b.err = fmt.Errorf("querybuilder: invalid table name %q", table)
	}
	return b
}

type filterOp string

const (
	opEq  filterOp = "="
	opNeq filterOp = "!="
	opIn  filterOp = "IN"
)

type filter struct {
	field  string
	op     filterOp
	value  any
	values []any
}

type resultMode int

const (
	modeList resultMode = iota
	modeSingle
	modeMaybeSingle
)

// Builder accumulates one staged operation plus filters, ordering and
// limits. All chainable methods return the receiver.
type Builder struct {
	exec    Executor
	table   string
	columns []string
	filters []filter

	orderField string
	orderAsc   bool
	hasOrder   bool
	limit      int
	hasLimit   bool

	mode resultMode

	insertRows []map[string]any
	hasInsert  bool
	updateData map[string]any
	hasUpdate  bool

	err error
}

// Select records the columns to project. Without it all columns are
// returned.
func (b *Builder) Select(columns ...string) *Builder {
	for _, col := range columns {
		if !identPattern.MatchString(col) {
			b.fail(fmt.Errorf("querybuilder: invalid column name %q", col))
			return b
		}
	}
	b.columns = columns
	return b
}

// Eq records an equality filter. Multiple filters AND together.
func (b *Builder) Eq(field string, value any) *Builder {
	return b.addFilter(field, opEq, value, nil)
}

// Neq records an inequality filter.
func (b *Builder) Neq(field string, value any) *Builder {
	return b.addFilter(field, opNeq, value, nil)
}

// In records a membership filter.
func (b *Builder) In(field string, values []any) *Builder {
	return b.addFilter(field, opIn, nil, values)
}

func (b *Builder) addFilter(field string, op filterOp, value any, values []any) *Builder {
	if !identPattern.MatchString(field) {
		b.fail(fmt.Errorf("querybuilder: invalid field name %q", field))
		return b
	}
	b.filters = append(b.filters, filter{field: field, op: op, value: value, values: values})
	return b
}

// Order records a single sort key. ascending=false sorts descending.
func (b *Builder) Order(field string, ascending bool) *Builder {
	if !identPattern.MatchString(field) {
		b.fail(fmt.Errorf("querybuilder: invalid order field %q", field))
		return b
	}
	b.orderField = field
	b.orderAsc = ascending
	b.hasOrder = true
	return b
}

// Limit caps the result count.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	b.hasLimit = true
	return b
}

// Single asserts exactly one row is expected; zero rows is an error.
// When more than one row matches, the first is used.
func (b *Builder) Single() *Builder {
	b.mode = modeSingle
	return b
}

// MaybeSingle is like Single but zero rows yields nil data with no error.
func (b *Builder) MaybeSingle() *Builder {
	b.mode = modeMaybeSingle
	return b
}

// Insert stages rows for insertion. Rows without an "id" get one generated
// by the executor.
func (b *Builder) Insert(rows ...map[string]any) *Builder {
	b.insertRows = append(b.insertRows, rows...)
	b.hasInsert = true
	return b
}

// Update stages a partial patch applied to every row matching the filters.
func (b *Builder) Update(data map[string]any) *Builder {
	b.updateData = data
	b.hasUpdate = true
	return b
}

// Execute runs the single staged operation: insert if staged, else update,
// else select.
func (b *Builder) Execute(ctx context.Context) Result {
	if b.err != nil {
		return Result{Err: b.err}
	}
	switch {
	case b.hasInsert:
		return b.executeInsert(ctx)
	case b.hasUpdate:
		return b.executeUpdate(ctx)
	default:
		return b.executeSelect(ctx)
	}
}

// Delete removes every row matching the accumulated filters. It executes
// immediately rather than waiting for Execute.
func (b *Builder) Delete(ctx context.Context) Result {
	if b.err != nil {
		return Result{Err: b.err}
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(b.table)
	args := b.writeWhere(&sb)

	if err := b.exec.Exec(ctx, sb.String(), args...); err != nil {
		return Result{Err: err}
	}
	return Result{}
}

func (b *Builder) executeSelect(ctx context.Context) Result {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	args := b.writeWhere(&sb)

	if b.hasOrder {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderField)
		if b.orderAsc {
			sb.WriteString(" ASC")
		} else {
			sb.WriteString(" DESC")
		}
	}
	if b.hasLimit {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	rows, err := b.exec.Query(ctx, sb.String(), args...)
	if err != nil {
		return Result{Err: err}
	}

	for _, row := range rows {
		coerceBools(row)
	}

	switch b.mode {
	case modeSingle:
		if len(rows) == 0 {
			return Result{Err: ErrNoRows}
		}
		return Result{Data: rows[0]}
	case modeMaybeSingle:
		if len(rows) == 0 {
			return Result{Data: nil}
		}
		return Result{Data: rows[0]}
	default:
		return Result{Data: rows}
	}
}

func (b *Builder) executeInsert(ctx context.Context) Result {
	if len(b.insertRows) == 0 {
		return Result{Err: ErrEmptyPayload}
	}

	inserted := make([]map[string]any, 0, len(b.insertRows))
	for _, row := range b.insertRows {
		staged := make(map[string]any, len(row)+1)
		for k, v := range row {
			staged[k] = v
		}
		if id, ok := staged["id"]; !ok || id == nil || id == "" {
			staged["id"] = b.exec.GenerateID()
		}

		cols := make([]string, 0, len(staged))
		for col := range staged {
			if !identPattern.MatchString(col) {
				return Result{Err: fmt.Errorf("querybuilder: invalid column name %q", col)}
			}
			cols = append(cols, col)
		}
		sort.Strings(cols)

		placeholders := make([]string, len(cols))
		args := make([]any, len(cols))
		for i, col := range cols {
			placeholders[i] = "?"
			args[i] = normalizeValue(staged[col])
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			b.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if err := b.exec.Exec(ctx, stmt, args...); err != nil {
			return Result{Err: err}
		}
		inserted = append(inserted, staged)
	}

	return Result{Data: inserted}
}

func (b *Builder) executeUpdate(ctx context.Context) Result {
	if len(b.updateData) == 0 {
		return Result{Err: ErrEmptyPayload}
	}

	cols := make([]string, 0, len(b.updateData))
	for col := range b.updateData {
		if !identPattern.MatchString(col) {
			return Result{Err: fmt.Errorf("querybuilder: invalid column name %q", col)}
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
		args = append(args, normalizeValue(b.updateData[col]))
	}
	args = append(args, b.writeWhereArgs(&sb)...)

	if err := b.exec.Exec(ctx, sb.String(), args...); err != nil {
		return Result{Err: err}
	}
	return Result{}
}

// writeWhere appends the WHERE clause and returns its bind arguments.
func (b *Builder) writeWhere(sb *strings.Builder) []any {
	return b.writeWhereArgs(sb)
}

func (b *Builder) writeWhereArgs(sb *strings.Builder) []any {
	if len(b.filters) == 0 {
		return nil
	}

	var args []any
	sb.WriteString(" WHERE ")
	for i, f := range b.filters {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		switch f.op {
		case opIn:
			placeholders := make([]string, len(f.values))
			for j, v := range f.values {
				placeholders[j] = "?"
				args = append(args, normalizeValue(v))
			}
			if len(f.values) == 0 {
				// Empty membership matches nothing.
				sb.WriteString("1 = 0")
				continue
			}
			sb.WriteString(f.field)
			sb.WriteString(" IN (")
			sb.WriteString(strings.Join(placeholders, ", "))
			sb.WriteString(")")
		default:
			sb.WriteString(f.field)
			sb.WriteString(" ")
			sb.WriteString(string(f.op))
			sb.WriteString(" ?")
			args = append(args, normalizeValue(f.value))
		}
	}
	return args
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// normalizeValue maps Go bools onto the 0/1 integer representation used by
// the schema's boolean columns.
func normalizeValue(v any) any {
	if bv, ok := v.(bool); ok {
		if bv {
			return 1
		}
		return 0
	}
	return v
}

// coerceBools converts allow-listed 0/1 columns to true booleans in place.
func coerceBools(row map[string]any) {
	for col := range boolColumns {
		v, ok := row[col]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int64:
			row[col] = n != 0
		case int:
			row[col] = n != 0
		case float64:
			row[col] = n != 0
		case bool:
			// already coerced
		}
	}
}
