package discovery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dbsmedya/dqscout/internal/mcp"
)

// Parsing here is best-effort by design: every matcher below is a pure
// function that extracts what it recognizes and ignores the rest. Nothing in
// this file returns an error; garbage input yields empty output.

// ddlPattern matches the table name of a CREATE TABLE statement, including
// Teradata's MULTISET/SET variants.
var ddlPattern = regexp.MustCompile(`(?i)CREATE\s+(?:MULTISET\s+|SET\s+)?TABLE\s+([A-Za-z0-9_.]+)`)

// labeledListPattern matches lines like "Tables: orders, customers" or
// "Databases: finance sales".
var labeledListPattern = regexp.MustCompile(`(?i)^\s*(databases?|tables?)\s*[:\-]\s*(.+)$`)

// nameSeparators splits delimited name lists on commas, semicolons and runs
// of whitespace.
var nameSeparators = regexp.MustCompile(`[,;\s]+`)

// Apply folds one tool response into the accumulated results. Responses that
// carry an error, no result, or an unrecognizable payload are skipped whole.
func Apply(tool string, resp *mcp.Response, res *Results, maxPreviewRows int) {
	if resp == nil || resp.Error != nil || len(resp.Result) == 0 {
		return
	}
	var payload interface{}
	if err := json.Unmarshal(resp.Result, &payload); err != nil {
		return
	}
	applyPayload(mcp.CanonicalToolName(tool), payload, res, maxPreviewRows)
}

func applyPayload(tool string, payload interface{}, res *Results, maxPreviewRows int) {
	switch v := payload.(type) {
	case string:
		applyText(tool, v, res)
	case []interface{}:
		applyList(tool, v, res, maxPreviewRows)
	case map[string]interface{}:
		applyObject(tool, v, res, maxPreviewRows)
	}
}

// applyObject handles dict payloads: MCP content wrappers, keyed name lists,
// embedded DDL strings and row previews.
func applyObject(tool string, payload map[string]interface{}, res *Results, maxPreviewRows int) {
	// MCP tool results wrap the real payload in a content list of text items.
	if content, ok := payload["content"].([]interface{}); ok {
		for _, item := range content {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			text, ok := entry["text"].(string)
			if !ok {
				continue
			}
			var inner interface{}
			if err := json.Unmarshal([]byte(text), &inner); err == nil {
				applyPayload(tool, inner, res, maxPreviewRows)
			} else {
				applyText(tool, text, res)
			}
		}
		return
	}

	if data, ok := payload["data"]; ok {
		applyPayload(tool, data, res, maxPreviewRows)
		return
	}

	for _, key := range []string{"databases", "databaseList", "dbs"} {
		if names := stringList(payload[key]); len(names) > 0 {
			res.AddDatabases(names)
		}
	}
	for _, key := range []string{"tables", "tableList", "tbls"} {
		if names := stringList(payload[key]); len(names) > 0 {
			res.AddTables(names)
		}
	}

	for _, v := range payload {
		if s, ok := v.(string); ok {
			if table, ok := ExtractDDLTable(s); ok {
				res.SetDDL(table, s)
				break
			}
		}
	}

	for _, key := range []string{"rows", "preview", "sample"} {
		if rows := rowList(payload[key]); len(rows) > 0 {
			res.SetPreview(tool, rows, maxPreviewRows)
			break
		}
	}
}

// applyList classifies a bare list payload: a list of names or a list of rows.
func applyList(tool string, values []interface{}, res *Results, maxPreviewRows int) {
	if len(values) == 0 {
		return
	}
	if names := stringList(values); len(names) == len(values) {
		databases, tables := ClassifyNameList(tool, names)
		res.AddDatabases(databases)
		res.AddTables(tables)
		return
	}
	if rows := rowList(values); len(rows) == len(values) {
		res.SetPreview(tool, rows, maxPreviewRows)
	}
}

// applyText handles free-form text: labeled name lists and DDL statements.
func applyText(tool string, text string, res *Results) {
	if table, ok := ExtractDDLTable(text); ok {
		res.SetDDL(table, text)
		return
	}
	databases, tables := ParseLabeledLists(text)
	res.AddDatabases(databases)
	res.AddTables(tables)

	// A bare newline-separated list from a list tool is still a name list.
	if len(databases) == 0 && len(tables) == 0 {
		d, t := ClassifyNameList(tool, bareNameLines(text))
		res.AddDatabases(d)
		res.AddTables(t)
	}
}

// identifierPattern matches a bare, possibly qualified, SQL identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// bareNameLines treats text as a one-name-per-line list. Any line that is not
// a bare identifier disqualifies the whole text, so prose never turns into
// phantom table names.
func bareNameLines(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !identifierPattern.MatchString(line) {
			return nil
		}
		names = append(names, line)
	}
	return names
}

// ClassifyNameList decides whether a list of bare names enumerates databases
// or tables. Dotted names are qualified tables; otherwise the tool name and
// an upper-case ratio heuristic decide. Unclassifiable lists yield nothing.
func ClassifyNameList(tool string, names []string) (databases, tables []string) {
	if len(names) == 0 {
		return nil, nil
	}

	upper := 0
	dotted := false
	for _, n := range names {
		if n == strings.ToUpper(n) && n != strings.ToLower(n) {
			upper++
		}
		if strings.Contains(n, ".") {
			dotted = true
		}
	}
	upperRatio := float64(upper) / float64(len(names))

	if !dotted && upperRatio > 0.3 && strings.HasSuffix(tool, "databaseList") {
		return names, nil
	}
	if dotted || strings.HasSuffix(tool, "tableList") {
		return nil, names
	}
	if strings.HasSuffix(tool, "databaseList") {
		return names, nil
	}
	return nil, nil
}

// ParseLabeledLists extracts "Databases: ..." and "Tables: ..." lines from
// free-form text.
func ParseLabeledLists(text string) (databases, tables []string) {
	for _, line := range strings.Split(text, "\n") {
		m := labeledListPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names := SplitNameList(m[2])
		switch strings.ToLower(m[1])[:1] {
		case "d":
			databases = append(databases, names...)
		case "t":
			tables = append(tables, names...)
		}
	}
	return databases, tables
}

// SplitNameList splits a delimited list of identifiers, dropping empties.
func SplitNameList(s string) []string {
	var names []string
	for _, part := range nameSeparators.Split(s, -1) {
		part = strings.Trim(part, `"'`)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// ExtractDDLTable returns the table name of the first CREATE TABLE statement
// found in the text.
func ExtractDDLTable(text string) (string, bool) {
	m := ddlPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// stringList converts an interface value into a string slice, dropping
// non-string members.
func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return names
}

// rowList converts an interface value into a slice of row maps, dropping
// non-map members.
func rowList(v interface{}) []map[string]interface{} {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var rows []map[string]interface{}
	for _, item := range items {
		if row, ok := item.(map[string]interface{}); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
