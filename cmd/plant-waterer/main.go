// Command plant-waterer polls demand buttons for a shelf of plants, drives
// their pumps with a safety interlock, and publishes watering events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/sweeney/plant-waterer/internal/config"
	"github.com/sweeney/plant-waterer/internal/display"
	"github.com/sweeney/plant-waterer/internal/gpio"
	"github.com/sweeney/plant-waterer/internal/logic"
	"github.com/sweeney/plant-waterer/internal/metrics"
	"github.com/sweeney/plant-waterer/internal/mqtt"
	"github.com/sweeney/plant-waterer/internal/status"
	"github.com/sweeney/plant-waterer/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/plant-waterer.yaml", "Path to the YAML or JSON config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config; "off" disables)`)
	printState := flag.Bool("print-state", false, "Print button levels and exit")

	flag.Parse()

	if err := run(*configPath, *broker, *httpAddr, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, brokerOverride, httpOverride string, printState bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if brokerOverride != "" {
		cfg.Broker = brokerOverride
	}
	if httpOverride != "" {
		cfg.HTTPAddr = httpOverride
	}
	if cfg.HTTPAddr == "off" {
		cfg.HTTPAddr = ""
	}

	// Initialize GPIO
	lines, err := gpio.Open(cfg.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer lines.Close()

	plants, err := buildPlants(cfg, lines)
	if err != nil {
		return fmt.Errorf("init plants: %w", err)
	}
	errorLed, err := lines.Output(cfg.ErrorLedPin)
	if err != nil {
		return fmt.Errorf("init error led: %w", err)
	}
	resetButton, err := lines.Input(cfg.ResetButtonPin)
	if err != nil {
		return fmt.Errorf("init reset button: %w", err)
	}

	// Print state mode
	if printState {
		for _, p := range plants {
			state := "none"
			if p.Button != nil {
				state = buttonString(p.Button.Pressed())
			}
			fmt.Printf("%s: button=%s\n", p.Name, state)
		}
		fmt.Printf("reset: button=%s\n", buttonString(resetButton.Pressed()))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:          cfg.Poll.Milliseconds(),
		DwellMs:         cfg.Dwell.Milliseconds(),
		SafetyCeilingMs: cfg.SafetyCeiling.Milliseconds(),
		HeartbeatMs:     cfg.Heartbeat.Milliseconds(),
		Broker:          cfg.Broker,
		HTTPAddr:        cfg.HTTPAddr,
	})

	ctrl := logic.NewController(plants, errorLed, resetButton, cfg.SafetyCeiling, startTime)
	rot := logic.NewRotator(len(plants), cfg.Dwell, startTime)

	// Publish startup event with full status snapshot
	tracker.Update(ctrl.State(), "", time.Time{}, status.PlantStatuses(plants), ctrl.Counts())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	// Tell systemd we're up; feed its watchdog from the loop if enabled.
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("systemd: notify ready: %v", err)
	} else if ok {
		log.Printf("systemd: notified ready")
	}
	watchdog, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Printf("systemd: watchdog: %v", err)
		watchdog = 0
	}

	log.Printf("started: plants=%d poll=%v dwell=%v ceiling=%v broker=%s",
		len(plants), cfg.Poll, cfg.Dwell, cfg.SafetyCeiling, cfg.Broker)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sink := display.NewConsoleSink(os.Stdout)

	return runLoop(ctrl, rot, sink, publisher, publisher, tracker, cfg.Heartbeat, watchdog, time.Now, ticker.C, sigCh)
}

// buildPlants turns config entries into registry records wired to real GPIO
// lines.
func buildPlants(cfg *config.Config, lines *gpio.Lines) ([]*logic.Plant, error) {
	plants := make([]*logic.Plant, 0, len(cfg.Plants))
	for _, pc := range cfg.Plants {
		p := &logic.Plant{
			Name:           pc.Name,
			MaxDryInterval: pc.MaxDryInterval,
			WaterDuration:  pc.WaterDuration,
		}

		led, err := lines.Output(pc.LedPin)
		if err != nil {
			return nil, fmt.Errorf("plant %s: %w", pc.Name, err)
		}
		p.Led = led

		if pc.PumpPin != nil {
			pump, err := lines.Output(*pc.PumpPin)
			if err != nil {
				return nil, fmt.Errorf("plant %s: %w", pc.Name, err)
			}
			p.Pump = pump
		}
		if pc.ButtonPin != nil {
			btn, err := lines.Input(*pc.ButtonPin)
			if err != nil {
				return nil, fmt.Errorf("plant %s: %w", pc.Name, err)
			}
			p.Button = btn
		}

		plants = append(plants, p)
	}
	return plants, nil
}

func runLoop(ctrl *logic.Controller, rot *logic.Rotator, sink display.Sink, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat, watchdog time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastWatchdog := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			name := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", name)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			events := ctrl.Tick(t)
			for _, event := range events {
				if event.Duration > 0 {
					log.Printf("event: %s plant=%s duration=%v", event.Type, event.Plant, event.Duration)
				} else {
					log.Printf("event: %s plant=%s", event.Type, event.Plant)
				}
				metrics.RecordEvent(event)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			metrics.SetState(ctrl.State())
			metrics.SetPlantsDue(ctrl.DueCount())

			// Update status tracker for HTTP consumers
			if tracker != nil {
				var active string
				if p := ctrl.Active(); p != nil {
					active = p.Name
				}
				tracker.Update(ctrl.State(), active, ctrl.SessionStart(), status.PlantStatuses(ctrl.Plants()), ctrl.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if hb := ctrl.CheckHeartbeat(t, heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v completed=%d stopped=%d hand=%d faults=%d resets=%d",
					hb.Uptime, hb.Counts.Completed, hb.Counts.Stopped, hb.Counts.HandWatered, hb.Counts.Faults, hb.Counts.Resets)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			sink.Show(frameFor(ctrl, rot, t))

			if watchdog > 0 && t.Sub(lastWatchdog) >= watchdog/2 {
				daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				lastWatchdog = t
			}
		}
	}
}

// frameFor picks the display frame for this cycle. Session states override
// the rotating per-plant view; the rotator still ticks every cycle so its
// dwell clock stays live.
func frameFor(ctrl *logic.Controller, rot *logic.Rotator, now time.Time) display.Frame {
	idx := rot.Tick(now)

	switch ctrl.State() {
	case logic.StateConfirming:
		return display.ConfirmFrame(ctrl.Active().Name)
	case logic.StateWatering:
		p := ctrl.Active()
		return display.WateringFrame(p.Name, logic.Elapsed(now, ctrl.SessionStart()), p.WaterDuration)
	case logic.StateError:
		var name string
		if p := ctrl.Active(); p != nil {
			name = p.Name
		}
		return display.FaultFrame(name)
	default:
		plants := ctrl.Plants()
		if len(plants) == 0 {
			return display.Frame{}
		}
		return display.PlantFrame(plants[idx], now)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func buttonString(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}
