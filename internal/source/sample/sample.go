// Package sample implements capability.Source over the embedded demo
// fixtures in internal/sampledata, replacing
// original_source/utils/mcp_simulator.py's MCPSimulator: no real MCP
// server, but the same read/write shape a real one would expose.
package sample

import (
	"context"
	"fmt"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/sampledata"
)

// fixtureByDomain maps a Sensor domain name to its embedded fixture,
// matching MCPSimulator.read's source_name dispatch.
var fixtureByDomain = map[string]string{
	"email":   "emails",
	"github":  "github_prs",
	"health":  "health_records",
	"finance": "transactions",
}

// defaultWritePermissions is the action allowlist Write checks against
// (returning *ErrWriteNotPermitted for anything else), matching the permissions dict a real MCP connection
// grant would carry — gmail.apply_label and slack.send_dm are the
// only two writes original_source ever simulates.
var defaultWritePermissions = map[string]bool{
	"apply_label": true,
	"send_dm":     true,
}

// ErrWriteNotPermitted mirrors MCPSimulator.write's PermissionError
// for an action outside the granted write scope.
type ErrWriteNotPermitted struct{ Action string }

func (e *ErrWriteNotPermitted) Error() string {
	return fmt.Sprintf("sample: action %q is not permitted", e.Action)
}

// Source is a capability.Source backed by internal/sampledata's
// embedded fixtures. Writes are simulated and not recorded anywhere.
type Source struct {
	writePermissions map[string]bool
	now              func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithWritePermissions overrides the default allowed write actions.
func WithWritePermissions(actions ...string) Option {
	return func(s *Source) {
		s.writePermissions = map[string]bool{}
		for _, a := range actions {
			s.writePermissions[a] = true
		}
	}
}

// WithClock overrides the write-timestamp source, for deterministic
// tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// New builds a Source with MCPSimulator's default write permissions.
func New(opts ...Option) *Source {
	s := &Source{writePermissions: defaultWritePermissions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read loads scope's fixture (scope is a domain name: email, github,
// health, finance) and returns it under the "items" key sensor.Sense
// expects. filters is accepted for interface compatibility but, like
// MCPSimulator.read, unused by the sample backend.
func (s *Source) Read(ctx context.Context, scope string, filters map[string]any) (capability.SourceResult, error) {
	if err := ctx.Err(); err != nil {
		return capability.SourceResult{}, err
	}

	fixture, ok := fixtureByDomain[scope]
	if !ok {
		return capability.SourceResult{Domain: scope, Data: map[string]any{"items": []map[string]any{}}}, nil
	}

	items, err := sampledata.Load(fixture)
	if err != nil {
		return capability.SourceResult{}, err
	}
	return capability.SourceResult{Domain: scope, Data: map[string]any{"items": items}}, nil
}

// Write simulates an MCP write, matching MCPSimulator.write: gmail's
// apply_label and slack's send_dm get a distinctive response shape,
// any other permitted action gets a generic acknowledgement.
func (s *Source) Write(ctx context.Context, action, resourceID string, data map[string]any) (capability.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return capability.WriteResult{}, err
	}
	if !s.writePermissions[action] {
		return capability.WriteResult{}, &ErrWriteNotPermitted{Action: action}
	}

	switch action {
	case "apply_label":
		return capability.WriteResult{
			Success: true,
			Output:  fmt.Sprintf("applied label %v to %s at %s", data["label"], resourceID, s.now().Format(time.RFC3339)),
		}, nil
	case "send_dm":
		return capability.WriteResult{
			Success: true,
			Output:  fmt.Sprintf("sent DM to %v at %s", data["recipient"], s.now().Format(time.RFC3339)),
		}, nil
	default:
		return capability.WriteResult{
			Success: true,
			Output:  fmt.Sprintf("%s on %s acknowledged at %s", action, resourceID, s.now().Format(time.RFC3339)),
		}, nil
	}
}
