package flow

import (
	"net"
	"testing"
	"time"

	"NetSentra/internal/model"
)

func tcpPacket(srcPort uint16, flags model.TCPFlags) *model.PacketInfo {
	return &model.PacketInfo{
		Timestamp: time.Now(),
		Length:    60,
		HasTCP:    true,
		TCPFlags:  flags,
		FiveTuple: model.FiveTuple{
			SrcIP:    net.ParseIP("10.0.0.2"),
			DstIP:    net.ParseIP("10.0.0.9"),
			SrcPort:  srcPort,
			DstPort:  80,
			Protocol: model.ProtoTCP,
		},
	}
}

func TestTracker_Handshake(t *testing.T) {
	tr := NewTracker()

	st := tr.Update(tcpPacket(40000, model.TCPFlags{SYN: true}))
	if st.State != StateSynSent {
		t.Fatalf("After SYN expected syn_sent, got %s", st.State)
	}
	if st.PacketCount != 1 {
		t.Errorf("Expected packet count 1, got %d", st.PacketCount)
	}

	st = tr.Update(tcpPacket(40000, model.TCPFlags{SYN: true, ACK: true}))
	if st.State != StateEstablished {
		t.Fatalf("After SYN+ACK expected established, got %s", st.State)
	}

	// Plain data segment leaves the state alone.
	st = tr.Update(tcpPacket(40000, model.TCPFlags{ACK: true, PSH: true}))
	if st.State != StateEstablished {
		t.Errorf("Data segment should keep established, got %s", st.State)
	}

	st = tr.Update(tcpPacket(40000, model.TCPFlags{FIN: true, ACK: true}))
	if st.State != StateClosed {
		t.Errorf("After FIN expected closed, got %s", st.State)
	}

	// Closed is terminal for the mini state machine.
	st = tr.Update(tcpPacket(40000, model.TCPFlags{SYN: true}))
	if st.State != StateClosed {
		t.Errorf("SYN on closed flow should stay closed, got %s", st.State)
	}
}

func TestTracker_RSTCloses(t *testing.T) {
	tr := NewTracker()
	tr.Update(tcpPacket(40001, model.TCPFlags{SYN: true}))
	st := tr.Update(tcpPacket(40001, model.TCPFlags{RST: true}))
	if st.State != StateClosed {
		t.Errorf("After RST expected closed, got %s", st.State)
	}
}

func TestTracker_CountersAndGet(t *testing.T) {
	tr := NewTracker()
	pkt := tcpPacket(40002, model.TCPFlags{SYN: true})
	tr.Update(pkt)
	tr.Update(tcpPacket(40002, model.TCPFlags{ACK: true}))

	st := tr.Get(KeyFromPacket(pkt))
	if st == nil {
		t.Fatal("Get returned nil for a tracked flow")
	}
	if st.PacketCount != 2 || st.ByteCount != 120 {
		t.Errorf("Expected 2 packets / 120 bytes, got %d / %d", st.PacketCount, st.ByteCount)
	}
	if !st.LastSeen.Before(timeNow().Add(time.Second)) {
		t.Errorf("LastSeen not updated: %v", st.LastSeen)
	}
	if st.LastSeen.Before(st.StartTime) {
		t.Errorf("last_seen must be >= start_time")
	}

	if got := tr.Get(Key{SrcIP: "1.1.1.1"}); got != nil {
		t.Errorf("Get for unknown flow should be nil, got %+v", got)
	}
}

func TestTracker_Eviction(t *testing.T) {
	base := time.Now()
	current := base
	timeNow = func() time.Time { return current }
	defer func() { timeNow = time.Now }()

	tr := NewTracker()
	tr.Update(tcpPacket(40003, model.TCPFlags{SYN: true}))
	tr.Update(tcpPacket(40004, model.TCPFlags{SYN: true}))
	if tr.Len() != 2 {
		t.Fatalf("Expected 2 flows, got %d", tr.Len())
	}

	// Advance past the idle timeout; keep one flow fresh with a new packet.
	current = base.Add(61 * time.Second)
	tr.Update(tcpPacket(40005, model.TCPFlags{SYN: true}))

	if tr.Len() != 1 {
		t.Fatalf("Expected stale flows evicted, table has %d entries", tr.Len())
	}
	if tr.Get(KeyFromPacket(tcpPacket(40005, model.TCPFlags{}))) == nil {
		t.Error("Fresh flow should survive the sweep")
	}
}

func TestTracker_SweepRateLimited(t *testing.T) {
	base := time.Now()
	current := base
	timeNow = func() time.Time { return current }
	defer func() { timeNow = time.Now }()

	tr := NewTracker()
	tr.Update(tcpPacket(40006, model.TCPFlags{SYN: true}))

	// 5s later the sweep must not have run even though we update again.
	current = base.Add(5 * time.Second)
	before := tr.lastSweep
	tr.Update(tcpPacket(40007, model.TCPFlags{SYN: true}))
	if !tr.lastSweep.Equal(before) {
		t.Error("Sweep ran before the 10s rate limit elapsed")
	}
}
