package bus

import "sync"

// Memory is an in-process Bus used by tests and single-node deployments.
// Publish methods deliver signals synchronously to current subscribers.
type Memory struct {
	mu     sync.Mutex
	nextID int
	exit   map[string]map[int]func()
	zone   map[string]map[int]func(newZone, oldZone int)
	combat map[string]map[int]func(joined bool)
}

// NewMemory creates an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{
		exit:   map[string]map[int]func(){},
		zone:   map[string]map[int]func(newZone, oldZone int){},
		combat: map[string]map[int]func(joined bool){},
	}
}

// SubscribeExit registers a disconnect callback for a participant.
func (m *Memory) SubscribeExit(participantID string, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if m.exit[participantID] == nil {
		m.exit[participantID] = map[int]func(){}
	}
	m.exit[participantID][id] = fn
	return memoryHandle{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.exit[participantID], id)
	}}
}

// SubscribeZoneChange registers a zone-change callback for a participant.
func (m *Memory) SubscribeZoneChange(participantID string, fn func(newZone, oldZone int)) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if m.zone[participantID] == nil {
		m.zone[participantID] = map[int]func(newZone, oldZone int){}
	}
	m.zone[participantID][id] = fn
	return memoryHandle{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.zone[participantID], id)
	}}
}

// SubscribeCombat registers a combat callback for a participant.
func (m *Memory) SubscribeCombat(participantID string, fn func(joined bool)) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if m.combat[participantID] == nil {
		m.combat[participantID] = map[int]func(joined bool){}
	}
	m.combat[participantID][id] = fn
	return memoryHandle{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.combat[participantID], id)
	}}
}

// PublishExit delivers a disconnect signal for a participant.
func (m *Memory) PublishExit(participantID string) {
	for _, fn := range m.snapshotExit(participantID) {
		fn()
	}
}

// PublishZoneChange delivers a zone-change signal for a participant.
func (m *Memory) PublishZoneChange(participantID string, newZone, oldZone int) {
	for _, fn := range m.snapshotZone(participantID) {
		fn(newZone, oldZone)
	}
}

// PublishCombat delivers a combat join/leave signal for a participant.
func (m *Memory) PublishCombat(participantID string, joined bool) {
	for _, fn := range m.snapshotCombat(participantID) {
		fn(joined)
	}
}

// SubscriberCount reports live subscriptions for a participant across all
// signal classes. Tests use it to prove teardown leaks nothing.
func (m *Memory) SubscriberCount(participantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.exit[participantID]) + len(m.zone[participantID]) + len(m.combat[participantID])
}

func (m *Memory) snapshotExit(participantID string) []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	fns := make([]func(), 0, len(m.exit[participantID]))
	for _, fn := range m.exit[participantID] {
		fns = append(fns, fn)
	}
	return fns
}

func (m *Memory) snapshotZone(participantID string) []func(newZone, oldZone int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fns := make([]func(newZone, oldZone int), 0, len(m.zone[participantID]))
	for _, fn := range m.zone[participantID] {
		fns = append(fns, fn)
	}
	return fns
}

func (m *Memory) snapshotCombat(participantID string) []func(joined bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fns := make([]func(joined bool), 0, len(m.combat[participantID]))
	for _, fn := range m.combat[participantID] {
		fns = append(fns, fn)
	}
	return fns
}

type memoryHandle struct {
	cancel func()
}

func (h memoryHandle) Cancel() {
	h.cancel()
}
