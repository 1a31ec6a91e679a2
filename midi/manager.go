package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-ledtone/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	// match restricts Launchpads to ports containing it (lowercase)
	match     string
	keyboards bool
}

// NewDeviceManager creates a device manager. match narrows Launchpad
// detection to port names containing it; keyboards enables plain MIDI
// keyboards as keypad input.
func NewDeviceManager(match string, keyboards bool) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		match:       strings.ToLower(match),
		keyboards:   keyboards,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// GetLaunchpad returns the first connected Launchpad (or nil)
func (dm *DeviceManager) GetLaunchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerLaunchpad {
			return c
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
		err      error
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	// Wait for result or timeout
	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan
		// User needs to run: sudo killall coreaudiod midiserver
		debug.LogEvery(10, "midi", "port scan timed out")
		return
	}

	inNames := make([]string, len(inPorts))
	for i, p := range inPorts {
		inNames[i] = p.String()
	}
	outNames := make([]string, len(outPorts))
	for i, p := range outPorts {
		outNames[i] = p.String()
	}

	seenIDs := make(map[string]bool)
	for _, pl := range planPorts(inNames, outNames, dm.match, dm.keyboards) {
		seenIDs[pl.ID] = true

		dm.mu.RLock()
		_, exists := dm.controllers[pl.ID]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var (
			c   Controller
			err error
		)
		switch pl.Type {
		case ControllerLaunchpad:
			var out drivers.Out
			if pl.Out >= 0 {
				out = outPorts[pl.Out]
			}
			c, err = NewLaunchpadController(pl.ID, inPorts[pl.In], out)
		default:
			c, err = NewKeyboardController(pl.ID, inPorts[pl.In])
		}
		if err != nil {
			debug.Log("midi", "%s %s: %v", pl.Type, pl.ID, err)
			// retried on the next scan
			delete(seenIDs, pl.ID)
			continue
		}
		dm.add(pl.ID, c)
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.emit(DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		})
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) add(id string, c Controller) {
	dm.mu.Lock()
	dm.controllers[id] = c
	dm.mu.Unlock()

	debug.Log("midi", "connected %s %s", c.Type(), id)
	dm.emit(DeviceEvent{
		Type:       DeviceConnected,
		Controller: c,
		ID:         id,
	})
}

// emit never blocks the scan; a full channel drops the event.
func (dm *DeviceManager) emit(e DeviceEvent) {
	select {
	case dm.events <- e:
	default:
		debug.Log("midi", "device event dropped: %v %s", e.Type, e.ID)
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// portPlan is one controller to open: input index, output index (-1 for
// none) and the kind of controller.
type portPlan struct {
	ID   string
	In   int
	Out  int
	Type ControllerType
}

// planPorts decides which input ports become controllers. Launchpads need
// match in their name and pair with the output of the same name. With
// keyboards set every other input that is not a loopback becomes a
// keyboard.
func planPorts(ins, outs []string, match string, keyboards bool) []portPlan {
	var plans []portPlan
	seen := make(map[string]bool)
	for i, name := range ins {
		if seen[name] {
			continue
		}
		lower := strings.ToLower(name)
		switch {
		case isLaunchpad(name):
			if !strings.Contains(lower, match) {
				continue
			}
			out := -1
			for j, o := range outs {
				if strings.ToLower(o) == lower {
					out = j
					break
				}
			}
			plans = append(plans, portPlan{ID: name, In: i, Out: out, Type: ControllerLaunchpad})
		case keyboards && !isThrough(name):
			plans = append(plans, portPlan{ID: name, In: i, Out: -1, Type: ControllerKeyboard})
		default:
			continue
		}
		seen[name] = true
	}
	return plans
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// isThrough matches the system loopback ports that are never keyboards.
func isThrough(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "through") || strings.Contains(name, "iac driver")
}
