package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/timesync-io/timesync/pkg/timemath"
)

func TestSynthesizePong_ReproducesMeasurements(t *testing.T) {
	tests := []struct {
		name        string
		t0, t3      float64
		rtt, offset float64
	}{
		{"remote_ahead", 1000, 1040, 40, 500},
		{"remote_behind", 1000, 1040, 40, -500},
		{"zero_offset", 2000, 2020, 20, 0},
		{"sub_millisecond", 0, 1.5, 1.5, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pong := synthesizePong(Ping{T0: tt.t0, ID: "x"}, tt.t3, tt.rtt, tt.offset)

			assert.Equal(t, "x", pong.ID)
			assert.Equal(t, tt.t0, pong.T0)
			assert.Equal(t, tt.t3, pong.T3)
			assert.InDelta(t, tt.rtt, timemath.RTT(pong.T0, pong.T1, pong.T2, pong.T3), 1e-9)
			assert.InDelta(t, tt.offset, timemath.Offset(pong.T0, pong.T1, pong.T2, pong.T3), 1e-9)
		})
	}
}

func TestNewNTPTransport_Defaults(t *testing.T) {
	tr := NewNTPTransport("pool.ntp.org", NTPOptions{})

	assert.Equal(t, 5*time.Second, tr.timeout)
	assert.Equal(t, 4, tr.version)
}

func TestNewNTPTransport_CustomOptions(t *testing.T) {
	tr := NewNTPTransport("time.example.com", NTPOptions{
		Timeout: 2 * time.Second,
		Version: 3,
	})

	assert.Equal(t, 2*time.Second, tr.timeout)
	assert.Equal(t, 3, tr.version)
}

func TestNTPTransport_SendPingNeverBlocks(t *testing.T) {
	// The query runs asynchronously; SendPing itself must return
	// immediately even when the server is unreachable.
	tr := NewNTPTransport("127.0.0.1:1", NTPOptions{Timeout: 100 * time.Millisecond})
	tr.OnPong(func(Pong) {})

	done := make(chan struct{})
	go func() {
		_ = tr.SendPing(Ping{T0: 1, ID: "1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendPing blocked")
	}
}
