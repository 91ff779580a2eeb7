package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// DriverEvent captures a converter event for post-mortem analysis
type DriverEvent struct {
	EventType uint8  // Event type code
	Config    uint8  // Active configuration at the time of the event
	Clock     uint32 // Millisecond timebase at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPowerUp      = 1 // Power sequencer enable finished
	EvtPowerDown    = 2 // Power sequencer disable finished
	EvtSelectConfig = 3 // Configuration registers reloaded
	EvtStartConvert = 4 // Conversion start bit asserted
	EvtStopConvert  = 5 // Conversion start bit cleared
	EvtGainAdjust   = 6 // GCOR rescaled (Value1=new GCOR, Value2=1 on reject)
	EvtConvDone     = 7 // Completion interrupt serviced
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, safe from the ISR)
	eventRing     [EventRingSize]DriverEvent
	eventRingHead uint8
	eventsEnabled bool = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a driver event in the ring buffer.
// It never blocks and never allocates. The slot claim runs with interrupts
// masked so the completion ISR cannot take the same slot.
func RecordEvent(eventType, config uint8, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	cs := enterCritical()
	defer cs.exit()
	idx := eventRingHead
	eventRing[idx] = DriverEvent{
		EventType: eventType,
		Config:    config,
		Clock:     Millis(),
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the captured events, oldest first.
func Events() []DriverEvent {
	out := make([]DriverEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// Name returns the event type mnemonic.
func (e DriverEvent) Name() string {
	return eventName(e.EventType)
}

func eventName(t uint8) string {
	switch t {
	case EvtPowerUp:
		return "POWER_UP"
	case EvtPowerDown:
		return "POWER_DOWN"
	case EvtSelectConfig:
		return "SELECT_CFG"
	case EvtStartConvert:
		return "START_CONV"
	case EvtStopConvert:
		return "STOP_CONV"
	case EvtGainAdjust:
		return "GAIN_ADJ"
	case EvtConvDone:
		return "CONV_DONE"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[DSADC] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[DSADC] " + eventName(evt.EventType) +
			" cfg=" + itoa(int(evt.Config)) +
			" ms=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[DSADC] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = DriverEvent{}
	}
	eventRingHead = 0
}
