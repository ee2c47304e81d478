// Package app assembles the party coordinator with its production
// collaborators: the SQLite audit store, the NATS signal bus and transport
// adapters, and the timer-backed dispatch scheduler. Without a NATS URL the
// app runs self-contained with in-process stand-ins, which suits local
// development and tests.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/quillback/liftline/internal/platform/bus"
	busnats "github.com/quillback/liftline/internal/platform/bus/nats"
	"github.com/quillback/liftline/internal/platform/scheduler"
	gwnats "github.com/quillback/liftline/internal/services/party/gateway/nats"
	"github.com/quillback/liftline/internal/services/party/notify"
	notifynats "github.com/quillback/liftline/internal/services/party/notify/nats"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
	"github.com/quillback/liftline/internal/services/party/service"
	"github.com/quillback/liftline/internal/services/party/storage/sqlite"
)

// Config holds party app configuration.
type Config struct {
	// AuditDBPath is the SQLite file for audit records. Empty disables
	// audit persistence.
	AuditDBPath string

	// NATSURL is the signal/transport broker. Empty runs in-process.
	NATSURL string

	// GatewaySpec lists the managed gateways as "id:seats,id:seats" in
	// destination-offset order.
	GatewaySpec string

	// GroupCapacity is the confirmed-member limit per group.
	GroupCapacity int

	// HostZone and VisibleZones configure the relocation boundary.
	HostZone     int
	VisibleZones []int

	// DispatchDelay is the pause between go confirmation and dispatch.
	DispatchDelay time.Duration

	// CancelDispatchOnDissolve cancels scheduled dispatches for groups
	// that dissolve before the timer fires.
	CancelDispatchOnDissolve bool

	// PresencePingTimeout bounds the presence probe round trip.
	PresencePingTimeout time.Duration
}

// App is an assembled party coordinator plus the resources behind it.
type App struct {
	Coordinator *service.Coordinator

	store *sqlite.Store
	conn  *nats.Conn
}

// New assembles the party app from configuration.
func New(cfg Config) (*App, error) {
	a := &App{}

	if cfg.AuditDBPath != "" {
		store, err := sqlite.Open(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		a.store = store
	}
	emitter := audit.NewEmitter(nil)
	if a.store != nil {
		emitter = audit.NewEmitter(a.store)
	}

	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(10),
			nats.ReconnectWait(2*time.Second),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Printf("nats error: %v", err)
			}),
		)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		a.conn = conn
	}

	gateways, err := gwnats.ParseDirectory(a.conn, cfg.GatewaySpec)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("parse gateways: %w", err)
	}

	var signalBus bus.Bus = bus.NewMemory()
	var notifier notify.Notifier = logNotifier{}
	var presence *gwnats.Presence
	if a.conn != nil {
		signalBus = busnats.New(a.conn)
		notifier = notifynats.New(a.conn)
		presence = gwnats.NewPresence(a.conn, cfg.PresencePingTimeout)
	}

	deps := service.Deps{
		Gateways:  gateways,
		Notifier:  notifier,
		Audit:     emitter,
		Bus:       signalBus,
		Scheduler: scheduler.NewTimer(),
	}
	if presence != nil {
		deps.Presence = presence
	}
	a.Coordinator = service.NewCoordinator(deps, service.Options{
		Capacity:                 cfg.GroupCapacity,
		HostZone:                 cfg.HostZone,
		VisibleZones:             cfg.VisibleZones,
		DispatchDelay:            cfg.DispatchDelay,
		CancelDispatchOnDissolve: cfg.CancelDispatchOnDissolve,
	})
	return a, nil
}

// Run blocks until the context ends, then releases resources.
func (a *App) Run(ctx context.Context) error {
	log.Printf("party coordinator running")
	<-ctx.Done()
	a.Close()
	return nil
}

// Close releases the audit store and broker connection.
func (a *App) Close() {
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("close audit store: %v", err)
		}
		a.store = nil
	}
}

// logNotifier is the in-process notifier fallback: notifications land in the
// service log instead of a transport.
type logNotifier struct{}

func (logNotifier) Send(_ context.Context, to string, n notify.Notification) {
	log.Printf("notify to=%s kind=%s payload=%+v", to, n.Kind(), n)
}
