package planner

// Prompt templates for the planning and summarization calls. The model is
// always asked for bare JSON; anything else degrades to the fixed fallback.

const intentSystemPrompt = "You extract structured intent for a database data-quality assessment. " +
	"Return JSON with keys: goal, target_patterns (list), constraints (list)."

const intentUserPrompt = "Prompt: %s\nReturn JSON only."

const discoverySystemPrompt = "Given a data-quality intent object, decide schema discovery steps. " +
	"Always include: base_databaseList, base_tableList. Optionally base_tableDDL, base_tablePreview. " +
	"Return JSON with a steps list (each step: tool, args, why)."

const discoveryUserPrompt = "Intent: %s\nReturn JSON only."

const qualitySystemPrompt = "Choose data-quality metric tools for the discovered tables. " +
	"Prefer qlty_missingValues, qlty_distinctCategories, qlty_univariateStatistics. " +
	"Return JSON with a dq_tools list (each entry: tool, args, reason)."

const qualityUserPrompt = "Discovered: %s\nReturn JSON only."

const summarySystemPrompt = "Summarize database data-quality metrics. Rank issues and propose actions. " +
	"Return JSON with keys: summary, issues (list), recommendations (list)."

const summaryUserPrompt = "Discovery: %s\nMetrics: %s\nReturn JSON only."
