package composition

import (
	"strings"

	"github.com/shun1423/sia/internal/model"
)

// toolTemplate is the domain-agnostic shape _generate_tools' nested
// dicts share before a connected source's permissions are merged in.
type toolTemplate struct {
	toolType string
	name     string
	model    string // non-empty for type "llm"
}

const (
	toolMCP      = "mcp"
	toolLLM      = "llm"
	toolFunction = "function"
	toolUnknown  = "unknown"
)

const defaultLLMModel = "claude-3-5-sonnet-20241022"

// domainToolMappings ports _generate_tools' domain_tool_mappings.
var domainToolMappings = map[string]map[string]toolTemplate{
	"email": {
		"email_reader":    {toolMCP, "gmail", ""},
		"classifier":      {toolLLM, "email_classifier", defaultLLMModel},
		"label_applier":   {toolMCP, "gmail", ""},
		"priority_scorer": {toolLLM, "priority_scorer", defaultLLMModel},
		"sorter":          {toolFunction, "email_sorter", ""},
		"summarizer":      {toolLLM, "email_summarizer", defaultLLMModel},
	},
	"github": {
		"pr_reader":       {toolMCP, "github", ""},
		"reviewer":        {toolLLM, "pr_reviewer", defaultLLMModel},
		"notifier":        {toolMCP, "slack", ""},
		"priority_scorer": {toolLLM, "pr_priority_scorer", defaultLLMModel},
	},
	"health": {
		"health_reader": {toolMCP, "apple_health", ""},
		"analyzer":      {toolLLM, "health_analyzer", defaultLLMModel},
		"notifier":      {toolMCP, "notification", ""},
	},
	"finance": {
		"transaction_reader": {toolMCP, "finance_app", ""},
		"categorizer":        {toolLLM, "transaction_categorizer", defaultLLMModel},
		"analyzer":           {toolLLM, "spending_analyzer", defaultLLMModel},
	},
}

// commonTools ports _generate_tools' common_tools, available
// regardless of domain.
var commonTools = map[string]toolTemplate{
	"notification":     {toolMCP, "notification", ""},
	"report_generator": {toolLLM, "report_generator", defaultLLMModel},
}

// GenerateTools resolves each name in requiredTools to a
// model.ToolDescriptor, preferring the domain's own mapping, then the
// common tools, then any other domain's mapping (cross-domain
// compatibility, matching _generate_tools' third lookup tier), and
// finally an "unknown" placeholder. An MCP tool whose name matches a
// connected source (of any status) has its permissions filled in from
// that source.
func GenerateTools(requiredTools []string, sources map[string]model.ConnectedSource, domain string) []model.ToolDescriptor {
	mapping, ok := domainToolMappings[domain]
	if !ok {
		mapping = domainToolMappings["email"]
	}

	bySourceName := make(map[string]model.ConnectedSource, len(sources))
	for _, src := range sources {
		bySourceName[strings.ToLower(src.Name)] = src
	}

	tools := make([]model.ToolDescriptor, 0, len(requiredTools))
	for _, toolName := range requiredTools {
		tpl, found := mapping[toolName]
		if !found {
			tpl, found = commonTools[toolName]
		}
		if !found {
			for _, otherMapping := range domainToolMappings {
				if t, ok := otherMapping[toolName]; ok {
					tpl, found = t, true
					break
				}
			}
		}

		if !found {
			tools = append(tools, model.ToolDescriptor{Type: toolUnknown, Name: toolName})
			continue
		}

		descriptor := model.ToolDescriptor{Type: tpl.toolType, Name: tpl.name, Model: tpl.model}
		if tpl.toolType == toolMCP {
			if src, ok := bySourceName[strings.ToLower(tpl.name)]; ok {
				descriptor.Permissions = src.Permissions
			}
		}
		tools = append(tools, descriptor)
	}

	return tools
}
