package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/oceanops/maritime-agent/internal/config"
	"github.com/oceanops/maritime-agent/internal/domain/vessel"
	mysqldb "github.com/oceanops/maritime-agent/internal/infra/db/mysql"
	postgresdb "github.com/oceanops/maritime-agent/internal/infra/db/postgres"
	"github.com/oceanops/maritime-agent/internal/simulator"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("generator: config load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("generator: shutting down...")
		cancel()
	}()

	db, events, telemetry := connectWithRetry(ctx, cfg)
	if db == nil {
		return // canceled while waiting for the database
	}
	defer db.Close()

	sim := simulator.New(cfg.Generator.Vessels, time.Now().UnixNano())
	agent := &http.Client{Timeout: 10 * time.Second}
	agentURL := strings.TrimRight(cfg.Generator.AgentURL, "/")

	ticker := time.NewTicker(time.Duration(cfg.Generator.SleepSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now().UTC()
		for _, r := range sim.Tick(now) {
			if err := telemetry.Save(ctx, &vessel.Sample{
				VesselID:         r.VesselID,
				Ts:               r.Ts,
				EngineRPM:        r.Metrics.EngineRPM,
				EngineTemp:       r.Metrics.EngineTemp,
				OilPressure:      r.Metrics.OilPressure,
				FuelPressure:     r.Metrics.FuelPressure,
				CoolantTemp:      r.Metrics.CoolantTemp,
				DataQualityScore: r.DataQuality,
			}); err != nil {
				log.Printf("generator: telemetry insert failed for %s: %v", r.VesselID, err)
				continue
			}

			if r.Event == nil {
				continue
			}
			eventID, err := insertEvent(ctx, events, r)
			if err != nil {
				log.Printf("generator: event insert failed for %s: %v", r.VesselID, err)
				continue
			}
			if r.Event.AutoAnalyze {
				triggerAnalyze(ctx, agent, agentURL, eventID)
			}
		}
		log.Println("generator: inserted telemetry batch")
	}
}

func connectWithRetry(ctx context.Context, cfg *config.Config) (*sql.DB, vessel.EventRepository, vessel.TelemetryRepository) {
	for {
		db, events, telemetry, err := connect(ctx, cfg)
		if err == nil {
			log.Println("generator: connected to database")
			return db, events, telemetry
		}
		log.Printf("generator: db not ready (%v), retrying in 2s", err)
		select {
		case <-ctx.Done():
			return nil, nil, nil
		case <-time.After(2 * time.Second):
		}
	}
}

func connect(ctx context.Context, cfg *config.Config) (*sql.DB, vessel.EventRepository, vessel.TelemetryRepository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mysqldb.NewEventRepository(db), mysqldb.NewTelemetryRepository(db), nil
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, postgresdb.NewEventRepository(db), postgresdb.NewTelemetryRepository(db), nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
}

func insertEvent(ctx context.Context, events vessel.EventRepository, r simulator.Reading) (string, error) {
	snapshot, err := json.Marshal(map[string]float64{
		"engine_rpm":         r.Metrics.EngineRPM,
		"engine_temp":        r.Metrics.EngineTemp,
		"oil_pressure":       r.Metrics.OilPressure,
		"fuel_pressure":      r.Metrics.FuelPressure,
		"coolant_temp":       r.Metrics.CoolantTemp,
		"data_quality_score": r.DataQuality,
	})
	if err != nil {
		return "", err
	}
	snapshotJSON := string(snapshot)

	evt := &vessel.Event{
		EventID:         uuid.New().String(),
		Ts:              r.Ts,
		VesselID:        r.VesselID,
		SensorID:        r.Event.SensorID,
		Severity:        vessel.Severity(r.Event.Severity),
		EventType:       r.Event.EventType,
		Description:     r.Event.Description,
		MetricsSnapshot: &snapshotJSON,
	}
	if err := events.Save(ctx, evt); err != nil {
		return "", err
	}
	return evt.EventID, nil
}

// triggerAnalyze asks the agent to explain a freshly injected anomaly.
// Failures are logged only; the generator keeps ticking.
func triggerAnalyze(ctx context.Context, client *http.Client, agentURL, eventID string) {
	body, _ := json.Marshal(map[string]string{"event_id": eventID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, agentURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		log.Printf("generator: auto-analyze request build failed for %s: %v", eventID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("generator: auto-analyze failed for %s: %v", eventID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("generator: auto-analyze failed for %s: status %d", eventID, resp.StatusCode)
		return
	}
	log.Printf("generator: auto-analyzed event %s", eventID)
}
