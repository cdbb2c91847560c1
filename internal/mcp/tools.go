package mcp

import "strings"

// genericToolNames maps the short names planners tend to produce onto the
// canonical namespaced names the server exposes.
var genericToolNames = map[string]string{
	"databaseList": "base_databaseList",
	"tableList":    "base_tableList",
	"tableDDL":     "base_tableDDL",
	"tablePreview": "base_tablePreview",

	"missingValues":         "qlty_missingValues",
	"distinctCategories":    "qlty_distinctCategories",
	"univariateStatistics":  "qlty_univariateStatistics",
	"rowsWithMissingValues": "qlty_rowsWithMissingValues",
}

// CanonicalToolName normalizes a tool name to the server's canonical form:
// generic names gain their base_/qlty_ prefix and vendor-prefixed td_ variants
// are stripped back to the shared namespace. Unknown names pass through
// unchanged and are dispatched anyway.
func CanonicalToolName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := genericToolNames[name]; ok {
		return canonical
	}
	if strings.HasPrefix(name, "td_base_") {
		return strings.Replace(name, "td_base_", "base_", 1)
	}
	if strings.HasPrefix(name, "td_qlty_") {
		return strings.Replace(name, "td_qlty_", "qlty_", 1)
	}
	return name
}

// IsQualityTool reports whether a canonical tool name belongs to the quality
// metric namespace.
func IsQualityTool(name string) bool {
	return strings.HasPrefix(CanonicalToolName(name), "qlty_")
}

// IsDiscoveryTool reports whether a canonical tool name belongs to the
// metadata discovery namespace.
func IsDiscoveryTool(name string) bool {
	return strings.HasPrefix(CanonicalToolName(name), "base_")
}
