package service

import (
	"context"
	"sync"
	"time"

	"github.com/quillback/liftline/internal/platform/bus"
	"github.com/quillback/liftline/internal/platform/scheduler"
	"github.com/quillback/liftline/internal/services/party/gateway"
	"github.com/quillback/liftline/internal/services/party/notify"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
	"github.com/quillback/liftline/internal/services/party/storage"
)

type sentNote struct {
	to string
	n  notify.Notification
}

type fakeNotifier struct {
	sent []sentNote
}

func (f *fakeNotifier) Send(_ context.Context, to string, n notify.Notification) {
	f.sent = append(f.sent, sentNote{to: to, n: n})
}

func (f *fakeNotifier) reset() {
	f.sent = nil
}

// to returns every notification addressed to one participant, in order.
func (f *fakeNotifier) to(id string) []notify.Notification {
	var notes []notify.Notification
	for _, s := range f.sent {
		if s.to == id {
			notes = append(notes, s.n)
		}
	}
	return notes
}

// lastTo returns the most recent notification addressed to one participant.
func (f *fakeNotifier) lastTo(id string) (notify.Notification, bool) {
	notes := f.to(id)
	if len(notes) == 0 {
		return nil, false
	}
	return notes[len(notes)-1], true
}

type boardCall struct {
	id       string
	withShow bool
}

type fakeGateway struct {
	id         string
	openSeats  int
	occupants  map[string]bool
	boarded    []boardCall
	dispatched [][]string
	boardErr   error
}

func (g *fakeGateway) ID() string     { return g.id }
func (g *fakeGateway) OpenSeats() int { return g.openSeats }

func (g *fakeGateway) Occupies(id string) bool {
	return g.occupants[id]
}

func (g *fakeGateway) Board(_ context.Context, id string, withShow bool) error {
	if g.boardErr != nil {
		return g.boardErr
	}
	g.boarded = append(g.boarded, boardCall{id: id, withShow: withShow})
	return nil
}

func (g *fakeGateway) Dispatch(_ context.Context, ids []string) error {
	g.dispatched = append(g.dispatched, append([]string(nil), ids...))
	return nil
}

type fakeDirectory struct {
	order    []string
	gateways map[string]*fakeGateway
}

func newFakeDirectory(gws ...*fakeGateway) *fakeDirectory {
	d := &fakeDirectory{gateways: map[string]*fakeGateway{}}
	for _, gw := range gws {
		d.order = append(d.order, gw.id)
		d.gateways[gw.id] = gw
	}
	return d
}

func (d *fakeDirectory) Gateway(id string) (gateway.Gateway, bool) {
	gw, ok := d.gateways[id]
	if !ok {
		return nil, false
	}
	return gw, true
}

func (d *fakeDirectory) IDs() []string { return d.order }

type fakePresence struct {
	absent map[string]bool
}

func (p *fakePresence) Present(id string) bool {
	return !p.absent[id]
}

type fakeJob struct {
	fn       func()
	canceled bool
	fired    bool
}

func (j *fakeJob) Cancel() bool {
	if j.fired || j.canceled {
		return false
	}
	j.canceled = true
	return true
}

type fakeScheduler struct {
	jobs []*fakeJob
}

func (s *fakeScheduler) Schedule(_ time.Duration, fn func()) scheduler.Token {
	job := &fakeJob{fn: fn}
	s.jobs = append(s.jobs, job)
	return job
}

// fire runs every job that is neither canceled nor already fired.
func (s *fakeScheduler) fire() {
	for _, job := range s.jobs {
		if job.canceled || job.fired {
			continue
		}
		job.fired = true
		job.fn()
	}
}

func (s *fakeScheduler) pendingCount() int {
	n := 0
	for _, job := range s.jobs {
		if !job.canceled && !job.fired {
			n++
		}
	}
	return n
}

type fakeAuditStore struct {
	mu      sync.Mutex
	records []storage.AuditRecord
}

func (s *fakeAuditStore) AppendAuditRecord(_ context.Context, rec storage.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeAuditStore) ListAuditRecords(_ context.Context, _ int) ([]storage.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.AuditRecord(nil), s.records...), nil
}

func (s *fakeAuditStore) eventCount(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if rec.Event == event {
			n++
		}
	}
	return n
}

type fixture struct {
	c        *Coordinator
	notes    *fakeNotifier
	gw       *fakeGateway
	dir      *fakeDirectory
	sched    *fakeScheduler
	bus      *bus.Memory
	presence *fakePresence
	audits   *fakeAuditStore
}

func newFixture(opts Options) *fixture {
	gw := &fakeGateway{id: "gw-1", openSeats: 8, occupants: map[string]bool{}}
	f := &fixture{
		notes:    &fakeNotifier{},
		gw:       gw,
		dir:      newFakeDirectory(gw),
		sched:    &fakeScheduler{},
		bus:      bus.NewMemory(),
		presence: &fakePresence{absent: map[string]bool{}},
		audits:   &fakeAuditStore{},
	}
	f.c = NewCoordinator(Deps{
		Gateways:  f.dir,
		Presence:  f.presence,
		Notifier:  f.notes,
		Audit:     audit.NewEmitter(f.audits),
		Bus:       f.bus,
		Scheduler: f.sched,
	}, opts)
	return f
}

// makeGroup forms a group with the given leader and confirmed members, then
// clears the notification log so tests assert only on their own operation.
func (f *fixture) makeGroup(leader string, members ...string) {
	ctx := context.Background()
	for _, m := range members {
		f.c.Invite(ctx, leader, m)
		f.c.AcceptInvite(ctx, m, leader, leader)
	}
	f.notes.reset()
}
