// Package discovery turns raw tool output into structured schema knowledge.
package discovery

import (
	"encoding/json"

	"github.com/elliotchance/orderedmap/v2"
)

// Results accumulates discovery output across tool calls. Databases and
// tables keep first-seen order and stay deduplicated, so repeated tool calls
// cannot reorder or duplicate what an earlier call found.
type Results struct {
	databases *orderedmap.OrderedMap[string, bool]
	tables    *orderedmap.OrderedMap[string, bool]
	ddl       *orderedmap.OrderedMap[string, string]
	previews  *orderedmap.OrderedMap[string, []map[string]interface{}]
}

// NewResults creates an empty accumulator.
func NewResults() *Results {
	return &Results{
		databases: orderedmap.NewOrderedMap[string, bool](),
		tables:    orderedmap.NewOrderedMap[string, bool](),
		ddl:       orderedmap.NewOrderedMap[string, string](),
		previews:  orderedmap.NewOrderedMap[string, []map[string]interface{}](),
	}
}

// AddDatabases merges database names, keeping first-seen order.
func (r *Results) AddDatabases(names []string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := r.databases.Get(n); !ok {
			r.databases.Set(n, true)
		}
	}
}

// AddTables merges table names, keeping first-seen order.
func (r *Results) AddTables(names []string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := r.tables.Get(n); !ok {
			r.tables.Set(n, true)
		}
	}
}

// SetDDL stores the DDL text for a table. Later calls overwrite earlier ones,
// matching how the server would return a refreshed definition.
func (r *Results) SetDDL(table, ddl string) {
	if table == "" || ddl == "" {
		return
	}
	r.ddl.Set(table, ddl)
	r.AddTables([]string{table})
}

// SetPreview stores sample rows keyed by the tool or table that produced
// them, capped at maxRows.
func (r *Results) SetPreview(key string, rows []map[string]interface{}, maxRows int) {
	if key == "" || len(rows) == 0 {
		return
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	r.previews.Set(key, rows)
}

// Databases returns discovered database names in first-seen order.
func (r *Results) Databases() []string {
	return r.databases.Keys()
}

// Tables returns discovered table names in first-seen order.
func (r *Results) Tables() []string {
	return r.tables.Keys()
}

// DDL returns the stored DDL text for a table.
func (r *Results) DDL(table string) (string, bool) {
	return r.ddl.Get(table)
}

// DDLTables returns the tables that have stored DDL, in first-seen order.
func (r *Results) DDLTables() []string {
	return r.ddl.Keys()
}

// Preview returns the stored sample rows for a key.
func (r *Results) Preview(key string) ([]map[string]interface{}, bool) {
	return r.previews.Get(key)
}

// PreviewKeys returns the keys that have stored previews, in first-seen order.
func (r *Results) PreviewKeys() []string {
	return r.previews.Keys()
}

// Empty reports whether nothing at all was discovered.
func (r *Results) Empty() bool {
	return r.databases.Len() == 0 && r.tables.Len() == 0 &&
		r.ddl.Len() == 0 && r.previews.Len() == 0
}

// Snapshot returns a plain-data view of the results, used for planner context
// and the final summary JSON.
type Snapshot struct {
	Databases []string                            `json:"databases"`
	Tables    []string                            `json:"tables"`
	DDL       map[string]string                   `json:"ddl,omitempty"`
	Previews  map[string][]map[string]interface{} `json:"previews,omitempty"`
}

// Snapshot materializes the accumulated results.
func (r *Results) Snapshot() Snapshot {
	snap := Snapshot{
		Databases: r.Databases(),
		Tables:    r.Tables(),
	}
	if r.ddl.Len() > 0 {
		snap.DDL = make(map[string]string, r.ddl.Len())
		for _, k := range r.ddl.Keys() {
			v, _ := r.ddl.Get(k)
			snap.DDL[k] = v
		}
	}
	if r.previews.Len() > 0 {
		snap.Previews = make(map[string][]map[string]interface{}, r.previews.Len())
		for _, k := range r.previews.Keys() {
			v, _ := r.previews.Get(k)
			snap.Previews[k] = v
		}
	}
	return snap
}

// MarshalJSON renders the snapshot form.
func (r *Results) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}
