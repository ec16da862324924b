package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRegisterAgent_EventTriggerFiresOnPublish(t *testing.T) {
	s, err := Start()
	require.NoError(t, err)
	defer s.Stop()

	var mu sync.Mutex
	fired := false
	cfg := model.AgentConfig{
		ID:      "agent_1",
		Trigger: model.Trigger{Type: "event", Source: "gmail", Event: "new_mail"},
	}

	require.NoError(t, s.RegisterAgent(cfg, func(ctx context.Context, cfg model.AgentConfig, triggerEventID string) error {
		mu.Lock()
		fired = true
		mu.Unlock()
		return nil
	}))

	require.NoError(t, s.PublishEvent("gmail", "new_mail", []byte(`{}`)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterAgent_ScheduleTriggerRunsOnCron(t *testing.T) {
	s, err := Start()
	require.NoError(t, err)
	defer s.Stop()

	var mu sync.Mutex
	runs := 0
	cfg := model.AgentConfig{
		ID:      "agent_2",
		Trigger: model.Trigger{Type: "schedule", Cron: "@every 100ms"},
	}

	require.NoError(t, s.RegisterAgent(cfg, func(ctx context.Context, cfg model.AgentConfig, triggerEventID string) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	}))
	s.Run()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterAgent_UnknownTriggerTypeErrors(t *testing.T) {
	s, err := Start()
	require.NoError(t, err)
	defer s.Stop()

	cfg := model.AgentConfig{ID: "agent_3", Trigger: model.Trigger{Type: "webhook"}}

	err = s.RegisterAgent(cfg, func(ctx context.Context, cfg model.AgentConfig, triggerEventID string) error { return nil })
	require.Error(t, err)
}
