package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []State{Stopped, Starting, Running, Stopping}

func TestMachineTransitionTable(t *testing.T) {
	expected := map[State]map[State]bool{
		Starting: {Running: true, Stopped: true},
		Running:  {Stopping: true, Stopped: true},
		Stopping: {Stopped: true},
		Stopped:  {Starting: true},
	}

	for _, from := range allStates {
		for _, to := range allStates {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				m := NewMachine(from)
				want := expected[from][to]

				got := m.Set(to)

				assert.Equal(t, want, got)
				if want {
					assert.Equal(t, to, m.Current())
				} else {
					assert.Equal(t, from, m.Current())
				}
			})
		}
	}
}

func TestMachineFullCycle(t *testing.T) {
	m := NewMachine(Stopped)

	require.True(t, m.Set(Starting))
	require.True(t, m.Set(Running))
	require.True(t, m.Set(Stopping))
	require.True(t, m.Set(Stopped))

	// A stopped machine can be started again
	require.True(t, m.Set(Starting))
	assert.Equal(t, Starting, m.Current())
}

func TestMachineWaitForReturnsImmediately(t *testing.T) {
	m := NewMachine(Running)
	assert.Equal(t, Running, m.WaitFor(Running, Stopped))
}

func TestMachineWaitForBlocksUntilTransition(t *testing.T) {
	m := NewMachine(Stopped)
	require.True(t, m.Set(Starting))

	done := make(chan State, 1)
	go func() {
		done <- m.WaitFor(Running, Stopped)
	}()

	select {
	case s := <-done:
		t.Fatalf("WaitFor returned early with %s", s)
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, m.Set(Running))

	select {
	case s := <-done:
		assert.Equal(t, Running, s)
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not observe the transition")
	}
}

func TestMachineWaitForIgnoresRejectedTransitions(t *testing.T) {
	m := NewMachine(Stopped)

	done := make(chan State, 1)
	go func() {
		done <- m.WaitFor(Running)
	}()

	assert.False(t, m.Set(Running))

	select {
	case s := <-done:
		t.Fatalf("WaitFor returned on a rejected transition: %s", s)
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, m.Set(Starting))
	require.True(t, m.Set(Running))
	assert.Equal(t, Running, <-done)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "STARTING", Starting.String())
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "STOPPING", Stopping.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
