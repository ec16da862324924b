// Package policy implements the Policy & Consent cross-cutting
// concern: a pure function from action/tool/World-Model/agent-config
// to an allow/block/approval verdict, ported from
// original_source/layers/crosscutting/policy.py.
package policy

import (
	"strings"

	"github.com/shun1423/sia/internal/model"
)

// Classify is the cheap keyword classifier _classify_action applies
// to every action string before checking permission.
func Classify(action string) model.ActionType {
	lower := strings.ToLower(action)
	switch {
	case containsAny(lower, "read", "get", "fetch", "load"):
		return model.ActionRead
	case containsAny(lower, "write", "create", "update", "apply", "send"):
		return model.ActionWrite
	case containsAny(lower, "delete", "remove", "drop"):
		return model.ActionDelete
	case containsAny(lower, "notify", "notification", "alert"):
		return model.ActionNotification
	default:
		return model.ActionExecute
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Check is check_permission: the full permission decision for one
// action against one tool, given the World Model's safety policy and
// an optional agent-level risk/approval override.
func Check(action string, policyCfg model.PolicyConfig, agentCfg *model.AgentConfig) model.PolicyDecision {
	actionType := Classify(action)

	if (actionType == model.ActionWrite || actionType == model.ActionDelete) && policyCfg.DefaultWriteBlock {
		if !contains(policyCfg.ActionAllowlist, action) {
			if contains(policyCfg.ForbiddenActions, action) {
				return model.PolicyDecision{Allowed: false, RequiresApproval: false, Reason: "action is in the forbidden list"}
			}
			return model.PolicyDecision{Allowed: false, RequiresApproval: true, Reason: "write actions are blocked by default and require user approval"}
		}
	}

	if contains(policyCfg.ActionAllowlist, action) {
		return model.PolicyDecision{Allowed: true, RequiresApproval: false, Reason: "action is in the allowlist"}
	}

	if contains(policyCfg.ForbiddenActions, action) {
		return model.PolicyDecision{Allowed: false, RequiresApproval: false, Reason: "action is in the forbidden list"}
	}

	if agentCfg != nil && actionType == model.ActionWrite {
		if verdict, ok := agentCfg.Safety.ApprovalPolicy["write_operations"]; ok {
			switch verdict {
			case "block":
				return model.PolicyDecision{Allowed: false, RequiresApproval: false, Reason: "write operations are blocked for this agent's risk level"}
			case "require_approval":
				return model.PolicyDecision{Allowed: true, RequiresApproval: true, Reason: "write operations require approval for this agent"}
			}
		}
	}

	if actionType == model.ActionRead {
		return model.PolicyDecision{Allowed: true, RequiresApproval: false, Reason: "read actions are allowed"}
	}

	return model.PolicyDecision{Allowed: true, RequiresApproval: true, Reason: "unrecognized action type requires approval"}
}

// CheckConsent reports whether a connected source has granted scope
// for action, per check_consent.
func CheckConsent(action string, toolName string, sources map[string]model.ConnectedSource) bool {
	for name, src := range sources {
		if !strings.EqualFold(name, toolName) {
			continue
		}
		if Classify(action) == model.ActionWrite {
			return len(src.Permissions["write"]) > 0
		}
		return true
	}
	return false
}

// ValidationResult is the outcome of ValidateAgentConfig.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateAgentConfig ports validate_agent_config: checks required
// fields are present and that every write action names a tool that
// actually carries write permission.
func ValidateAgentConfig(cfg model.AgentConfig) ValidationResult {
	var errs, warnings []string

	if cfg.ID == "" {
		errs = append(errs, "required field 'id' is missing")
	}
	if cfg.Trigger.Type == "" {
		errs = append(errs, "required field 'trigger' is missing")
	}
	if len(cfg.Tools) == 0 {
		errs = append(errs, "required field 'tools' is missing")
	}
	if len(cfg.Actions) == 0 {
		errs = append(errs, "required field 'actions' is missing")
	}

	toolsByDo := map[string]model.ToolDescriptor{}
	for _, t := range cfg.Tools {
		toolsByDo[t.Name] = t
	}

	for _, action := range cfg.Actions {
		if action.Type != model.ActionWrite {
			continue
		}
		tool, found := toolsByDo[action.Do]
		if !found {
			warnings = append(warnings, "could not find tool required by write action '"+action.Do+"'")
			continue
		}
		if len(tool.Permissions["write"]) == 0 {
			errs = append(errs, "tool '"+action.Do+"' has no write permission")
		}
	}

	if cfg.RiskLevel == model.RiskHigh {
		if _, ok := cfg.Safety.ApprovalPolicy["write_operations"]; !ok {
			warnings = append(warnings, "high-risk agents should declare an explicit write approval policy")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
