// Package service implements the boarding-party coordination protocol:
// invitations, membership changes, the boarding-eligibility gate and the
// two-phase destination-dispatch handshake.
//
// The coordinator serializes every request handler and bus signal behind a
// single mutex, so multi-step registry mutations are atomic with respect to
// each other. The only deferred work is the dispatch job scheduled by the
// second go confirmation; its body re-enters through the same mutex and
// observes live state, except for the member list captured when the job was
// scheduled.
package service

import (
	"sync"
	"time"

	"github.com/quillback/liftline/internal/platform/bus"
	"github.com/quillback/liftline/internal/platform/scheduler"
	"github.com/quillback/liftline/internal/services/party/domain/group"
	"github.com/quillback/liftline/internal/services/party/gateway"
	"github.com/quillback/liftline/internal/services/party/notify"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
)

// DefaultDispatchDelay is the pause between the second go confirmation and
// the group-wide dispatch, covering the members' local pre-show.
const DefaultDispatchDelay = 3 * time.Second

// Deps are the collaborators the coordinator drives.
type Deps struct {
	Gateways  gateway.Directory
	Presence  gateway.Presence
	Notifier  notify.Notifier
	Audit     *audit.Emitter
	Bus       bus.Bus
	Scheduler scheduler.Scheduler
}

// Options configure one coordinator instance.
type Options struct {
	// Capacity is the confirmed-member limit per group.
	Capacity int

	// HostZone is the zone this party host lives in.
	HostZone int

	// VisibleZones are the zones a member may move to without being
	// removed. Defaults to the host zone alone.
	VisibleZones []int

	// DispatchDelay overrides DefaultDispatchDelay.
	DispatchDelay time.Duration

	// CancelDispatchOnDissolve cancels an outstanding dispatch job when
	// its group dissolves before the timer fires. When disabled the job
	// still dispatches the captured member list, matching the legacy
	// best-effort behavior.
	CancelDispatchOnDissolve bool
}

// Coordinator owns the membership registry and runs the party protocol.
type Coordinator struct {
	mu sync.Mutex

	registry  *group.Registry
	gateways  gateway.Directory
	presence  gateway.Presence
	notifier  notify.Notifier
	audit     *audit.Emitter
	bus       bus.Bus
	scheduler scheduler.Scheduler

	hostZone                 int
	visibleZones             map[int]struct{}
	dispatchDelay            time.Duration
	cancelDispatchOnDissolve bool

	watches         map[string][]bus.Handle
	pendingDispatch map[string]scheduler.Token
}

// NewCoordinator creates a coordinator for one party host.
func NewCoordinator(deps Deps, opts Options) *Coordinator {
	delay := opts.DispatchDelay
	if delay <= 0 {
		delay = DefaultDispatchDelay
	}
	visible := map[int]struct{}{}
	for _, zone := range opts.VisibleZones {
		visible[zone] = struct{}{}
	}
	if len(visible) == 0 {
		visible[opts.HostZone] = struct{}{}
	}
	return &Coordinator{
		registry:                 group.NewRegistry(opts.Capacity),
		gateways:                 deps.Gateways,
		presence:                 deps.Presence,
		notifier:                 deps.Notifier,
		audit:                    deps.Audit,
		bus:                      deps.Bus,
		scheduler:                deps.Scheduler,
		hostZone:                 opts.HostZone,
		visibleZones:             visible,
		dispatchDelay:            delay,
		cancelDispatchOnDissolve: opts.CancelDispatchOnDissolve,
		watches:                  map[string][]bus.Handle{},
		pendingDispatch:          map[string]scheduler.Token{},
	}
}

// Registry exposes the membership registry for invariant checks in tests.
func (c *Coordinator) Registry() *group.Registry {
	return c.registry
}

func (c *Coordinator) present(participantID string) bool {
	if c.presence == nil {
		return true
	}
	return c.presence.Present(participantID)
}

// occupiesAnyGateway reports whether the participant holds a seat in any
// gateway this party host manages.
func (c *Coordinator) occupiesAnyGateway(participantID string) bool {
	if c.gateways == nil {
		return false
	}
	for _, id := range c.gateways.IDs() {
		gw, ok := c.gateways.Gateway(id)
		if ok && gw.Occupies(participantID) {
			return true
		}
	}
	return false
}
