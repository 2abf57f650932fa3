// Package flow maintains per-5-tuple connection state for the live pipeline.
// The tracker is owned by the capture goroutine; it is not safe for
// concurrent use and does not need to be.
package flow

import (
	"time"

	"NetSentra/internal/model"
)

// ConnState is the simplified TCP connection state of a flow.
type ConnState string

const (
	StateNew         ConnState = "new"
	StateSynSent     ConnState = "syn_sent"
	StateEstablished ConnState = "established"
	StateClosed      ConnState = "closed"
)

// Key is the direction-preserving 5-tuple identity of a flow.
type Key struct {
	SrcIP    string
	SrcPort  uint16
	DstIP    string
	DstPort  uint16
	Protocol uint8
}

// KeyFromPacket builds the flow key for a decoded packet.
func KeyFromPacket(pkt *model.PacketInfo) Key {
	return Key{
		SrcIP:    pkt.FiveTuple.SrcIP.String(),
		SrcPort:  pkt.FiveTuple.SrcPort,
		DstIP:    pkt.FiveTuple.DstIP.String(),
		DstPort:  pkt.FiveTuple.DstPort,
		Protocol: pkt.FiveTuple.Protocol,
	}
}

// State is the mutable per-flow record.
type State struct {
	StartTime   time.Time
	LastSeen    time.Time
	PacketCount uint64
	ByteCount   uint64
	State       ConnState
}

const (
	flowTimeout   = 60 * time.Second
	sweepInterval = 10 * time.Second
)

// timeNow is swapped out by tests to drive eviction deterministically.
var timeNow = time.Now

// Tracker is the flow table with amortized eviction.
type Tracker struct {
	flows     map[Key]*State
	lastSweep time.Time
}

// NewTracker creates an empty flow table.
func NewTracker() *Tracker {
	return &Tracker{
		flows:     make(map[Key]*State),
		lastSweep: timeNow(),
	}
}

// Update looks up or creates the flow for pkt, refreshes its counters and
// applies the TCP state machine. Eviction runs opportunistically when the
// last sweep is more than sweepInterval ago.
func (t *Tracker) Update(pkt *model.PacketInfo) *State {
	key := KeyFromPacket(pkt)
	now := timeNow()

	st, ok := t.flows[key]
	if !ok {
		st = &State{StartTime: now, State: StateNew}
		t.flows[key] = st
	}
	st.LastSeen = now
	st.PacketCount++
	st.ByteCount += uint64(pkt.Length)

	if pkt.HasTCP {
		st.State = nextState(st.State, pkt.TCPFlags)
	}

	t.sweepIfDue(now)
	return st
}

// Get returns the state for key, or nil when the flow is unknown.
func (t *Tracker) Get(key Key) *State {
	return t.flows[key]
}

// Len reports the number of tracked flows.
func (t *Tracker) Len() int {
	return len(t.flows)
}

// nextState applies the simplified TCP state machine. Flag combinations the
// table does not name leave the state unchanged.
func nextState(cur ConnState, flags model.TCPFlags) ConnState {
	switch {
	case flags.FIN || flags.RST:
		return StateClosed
	case flags.SYN && flags.ACK:
		if cur == StateSynSent || cur == StateEstablished {
			return StateEstablished
		}
		return cur
	case flags.SYN:
		if cur == StateNew || cur == StateSynSent {
			return StateSynSent
		}
		return cur
	default:
		return cur
	}
}

func (t *Tracker) sweepIfDue(now time.Time) {
	if now.Sub(t.lastSweep) < sweepInterval {
		return
	}
	for key, st := range t.flows {
		if now.Sub(st.LastSeen) > flowTimeout {
			delete(t.flows, key)
		}
	}
	t.lastSweep = now
}
