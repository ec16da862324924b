package composition

import "github.com/shun1423/sia/internal/model"

// approvalPolicyByRisk ports _generate_safety_policy's approval_policy
// table.
var approvalPolicyByRisk = map[model.RiskLevel]map[string]string{
	model.RiskLow: {
		"write_operations":   "auto_approve",
		"high_risk_actions":  "require_approval",
	},
	model.RiskMedium: {
		"write_operations":  "require_approval",
		"high_risk_actions": "require_approval",
	},
	model.RiskHigh: {
		"write_operations":  "require_approval",
		"high_risk_actions": "block",
	},
}

// GenerateSafetyPolicy ports _generate_safety_policy: risk-level
// defaults overridden by the World Model's own policy configuration
// where present.
func GenerateSafetyPolicy(risk model.RiskLevel, policy model.PolicyConfig) model.SafetyPolicy {
	approval, ok := approvalPolicyByRisk[risk]
	if !ok {
		approval = approvalPolicyByRisk[model.RiskMedium]
	}

	return model.SafetyPolicy{
		RiskLevel:         risk,
		DefaultWriteBlock: policy.DefaultWriteBlock,
		ActionAllowlist:   policy.ActionAllowlist,
		ForbiddenActions:  policy.ForbiddenActions,
		ApprovalPolicy:    approval,
	}
}
