package simulator

import (
	"math/rand"
	"time"
)

// Metrics is the current random-walk position of one vessel's sensors.
type Metrics struct {
	EngineRPM    float64
	EngineTemp   float64
	OilPressure  float64
	FuelPressure float64
	CoolantTemp  float64
}

// Event is an injected anomaly. AutoAnalyze asks the caller to request an
// AI explanation right after inserting it.
type Event struct {
	EventType   string
	Severity    string
	SensorID    string
	Description string
	AutoAnalyze bool
}

// Reading is one tick's output for one vessel.
type Reading struct {
	VesselID    string
	Ts          time.Time
	Metrics     Metrics
	DataQuality float64
	Event       *Event
}

// Simulator owns all per-vessel state explicitly; it is driven by a single
// tick loop and must not be shared across goroutines.
type Simulator struct {
	vessels []string
	state   map[string]*Metrics
	rng     *rand.Rand
	tick    int
}

// Scheduled demo anomaly cadence for the first vessel.
const forcedEventEvery = 120

func New(vessels []string, seed int64) *Simulator {
	rng := rand.New(rand.NewSource(seed))
	state := make(map[string]*Metrics, len(vessels))
	for _, v := range vessels {
		state[v] = &Metrics{
			EngineRPM:    inRange(rng, 90, 110),
			EngineTemp:   inRange(rng, 70, 85),
			OilPressure:  inRange(rng, 35, 50),
			FuelPressure: inRange(rng, 45, 60),
			CoolantTemp:  inRange(rng, 60, 75),
		}
	}
	return &Simulator{vessels: vessels, state: state, rng: rng}
}

// Tick advances every vessel by one step and returns the readings to
// persist, in vessel order.
func (s *Simulator) Tick(now time.Time) []Reading {
	s.tick++
	out := make([]Reading, 0, len(s.vessels))
	for i, vesselID := range s.vessels {
		m := s.state[vesselID]
		m.EngineRPM = clamp(m.EngineRPM+inRange(s.rng, -2, 2), 70, 140)
		m.EngineTemp = clamp(m.EngineTemp+inRange(s.rng, -0.5, 0.5), 65, 95)
		m.OilPressure = clamp(m.OilPressure+inRange(s.rng, -1, 1), 25, 55)
		m.FuelPressure = clamp(m.FuelPressure+inRange(s.rng, -1, 1), 35, 70)
		m.CoolantTemp = clamp(m.CoolantTemp+inRange(s.rng, -0.5, 0.5), 55, 85)

		quality := inRange(s.rng, 0.92, 0.99)
		evt := s.maybeEvent(m)
		if i == 0 && s.tick%forcedEventEvery == 0 {
			evt = s.forcedEvent(m)
		}
		if evt != nil {
			// Anomalies come with degraded sensor quality.
			if quality > 0.8 {
				quality = 0.8
			}
		}

		out = append(out, Reading{
			VesselID:    vesselID,
			Ts:          now,
			Metrics:     *m,
			DataQuality: quality,
			Event:       evt,
		})
	}
	return out
}

var eventTypes = []string{"overtemp", "low_oil_pressure", "rpm_anomaly"}

// maybeEvent injects an anomaly with 6% probability per vessel per tick,
// distorting the metric the event is about.
func (s *Simulator) maybeEvent(m *Metrics) *Event {
	if s.rng.Float64() > 0.06 {
		return nil
	}

	switch eventTypes[s.rng.Intn(len(eventTypes))] {
	case "overtemp":
		m.EngineTemp += inRange(s.rng, 15, 30)
		severity := "WARNING"
		if m.EngineTemp > 105 {
			severity = "CRITICAL"
		}
		return &Event{
			EventType:   "overtemp",
			Severity:    severity,
			SensorID:    "engine_temp",
			Description: "Engine temperature spike detected.",
			AutoAnalyze: true,
		}
	case "low_oil_pressure":
		m.OilPressure -= inRange(s.rng, 18, 28)
		severity := "WARNING"
		if m.OilPressure < 18 {
			severity = "CRITICAL"
		}
		return &Event{
			EventType:   "low_oil_pressure",
			Severity:    severity,
			SensorID:    "oil_pressure",
			Description: "Oil pressure drop detected.",
			AutoAnalyze: true,
		}
	default:
		m.EngineRPM += inRange(s.rng, 40, 80)
		return &Event{
			EventType:   "rpm_anomaly",
			Severity:    "WARNING",
			SensorID:    "engine_rpm",
			Description: "RPM surge detected.",
			AutoAnalyze: true,
		}
	}
}

// forcedEvent is the scheduled demo anomaly, always injected regardless of
// the random roll.
func (s *Simulator) forcedEvent(m *Metrics) *Event {
	switch eventTypes[s.rng.Intn(len(eventTypes))] {
	case "overtemp":
		m.EngineTemp += 30
		return &Event{
			EventType:   "overtemp",
			Severity:    "CRITICAL",
			SensorID:    "engine_temp",
			Description: "Scheduled over-temperature spike.",
			AutoAnalyze: true,
		}
	case "low_oil_pressure":
		m.OilPressure -= 20
		return &Event{
			EventType:   "low_oil_pressure",
			Severity:    "CRITICAL",
			SensorID:    "oil_pressure",
			Description: "Scheduled oil pressure drop.",
			AutoAnalyze: true,
		}
	default:
		m.EngineRPM += 50
		return &Event{
			EventType:   "rpm_anomaly",
			Severity:    "WARNING",
			SensorID:    "engine_rpm",
			Description: "Scheduled RPM surge.",
			AutoAnalyze: true,
		}
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func inRange(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
