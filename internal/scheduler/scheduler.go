// Package scheduler dispatches AgentConfigs by their trigger: a
// "schedule" trigger runs on a cron expression via robfig/cron/v3, an
// "event" trigger fires when a matching subject is published on an
// embedded NATS server. original_source has no real scheduler at all
// — run_demo invokes every layer by hand from a Streamlit button click
// — so this package's shape is grounded on ODSapper-CLIAIMONITOR's
// internal/nats package (embedded server + nats.go client) rather than
// on any file in the teacher itself, which never runs anything on a
// timer or an event bus.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	nc "github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"

	"github.com/shun1423/sia/internal/model"
)

// RunFunc is invoked when an AgentConfig's trigger fires. ctx carries
// the triggering deadline/cancellation; triggerEventID identifies the
// firing for idempotency purposes.
type RunFunc func(ctx context.Context, cfg model.AgentConfig, triggerEventID string) error

// EventSubject is the NATS subject an AgentConfig's event trigger
// listens on, namespaced by source and event name so agents watching
// different sources never collide.
func EventSubject(source, event string) string {
	return fmt.Sprintf("sia.events.%s.%s", source, event)
}

// Scheduler owns a cron runner and an embedded NATS server, wiring
// both into one RegisterAgent call per AgentConfig.
type Scheduler struct {
	cron *cron.Cron

	natsServer *server.Server
	natsConn   *nc.Conn

	mu   sync.Mutex
	subs []*nc.Subscription
}

// Option configures a Scheduler before Start.
type Option func(*scheduler)

type scheduler struct {
	natsPort int
}

// WithNATSPort overrides the embedded NATS server's listen port.
// Defaults to -1, which the embedded NATS server takes as a random
// free port, since the scheduler only ever talks to its own embedded
// server.
func WithNATSPort(port int) Option {
	return func(s *scheduler) { s.natsPort = port }
}

// Start boots the embedded NATS server and the cron runner, and
// returns a connected Scheduler.
func Start(opts ...Option) (*Scheduler, error) {
	cfg := &scheduler{natsPort: -1}
	for _, opt := range opts {
		opt(cfg)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   cfg.natsPort,
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: start embedded nats: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		return nil, fmt.Errorf("scheduler: embedded nats server not ready")
	}

	conn, err := nc.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("scheduler: connect to embedded nats: %w", err)
	}

	return &Scheduler{
		cron:       cron.New(),
		natsServer: ns,
		natsConn:   conn,
	}, nil
}

// RegisterAgent wires cfg's trigger to run. A "schedule" trigger adds
// a cron entry on cfg.Trigger.Cron; an "event" trigger subscribes to
// EventSubject(cfg.Trigger.Source, cfg.Trigger.Event). Any other
// trigger type is rejected — Composition never emits one, so this is
// a defensive check against a malformed AgentConfig reaching here.
func (s *Scheduler) RegisterAgent(cfg model.AgentConfig, run RunFunc) error {
	switch cfg.Trigger.Type {
	case "schedule":
		_, err := s.cron.AddFunc(cfg.Trigger.Cron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			triggerEventID := fmt.Sprintf("cron_%s_%d", cfg.ID, time.Now().UnixNano())
			_ = run(ctx, cfg, triggerEventID)
		})
		if err != nil {
			return fmt.Errorf("scheduler: register cron trigger for %s: %w", cfg.ID, err)
		}
		return nil

	case "event":
		subject := EventSubject(cfg.Trigger.Source, cfg.Trigger.Event)
		sub, err := s.natsConn.Subscribe(subject, func(msg *nc.Msg) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			triggerEventID := fmt.Sprintf("event_%s_%d", cfg.ID, time.Now().UnixNano())
			_ = run(ctx, cfg, triggerEventID)
		})
		if err != nil {
			return fmt.Errorf("scheduler: subscribe event trigger for %s: %w", cfg.ID, err)
		}
		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
		return nil

	default:
		return fmt.Errorf("scheduler: agent %s has unknown trigger type %q", cfg.ID, cfg.Trigger.Type)
	}
}

// PublishEvent fires an event-triggered agent by publishing to its
// subject, e.g. when a Sensor poll detects new source activity.
func (s *Scheduler) PublishEvent(source, event string, payload []byte) error {
	subject := EventSubject(source, event)
	if err := s.natsConn.Publish(subject, payload); err != nil {
		return fmt.Errorf("scheduler: publish %s: %w", subject, err)
	}
	return nil
}

// Run starts the cron scheduler. Call once after every agent has been
// registered.
func (s *Scheduler) Run() {
	s.cron.Start()
}

// Stop drains subscriptions, stops the cron runner, and tears down
// the embedded NATS server and connection.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.mu.Lock()
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
	s.mu.Unlock()

	s.natsConn.Close()
	s.natsServer.Shutdown()
	s.natsServer.WaitForShutdown()
}
