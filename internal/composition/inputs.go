package composition

// inputScopeByDomain ports _generate_inputs' scope_map.
var inputScopeByDomain = map[string]string{
	"email":    "metadata_and_subject",
	"calendar": "event_metadata",
	"github":   "pr_metadata",
	"health":   "aggregated_metrics",
	"finance":  "transaction_metadata",
}

// GenerateInputScope ports _generate_inputs: the domain's declared
// read scope and the sensitivity tier that follows from it.
func GenerateInputScope(domain string) (scope string, sensitivity string) {
	scope, ok := inputScopeByDomain[domain]
	if !ok {
		scope = "metadata"
	}
	if scope == "metadata" {
		return scope, "low"
	}
	return scope, "medium"
}
