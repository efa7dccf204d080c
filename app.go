package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kwv/aislemesh/corridor"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *corridor.Config
	StateTracker *corridor.StateTracker
	MQTTClient   *corridor.MQTTClient
	Publisher    *corridor.Publisher

	// CLI flags (effectively dependencies)
	ConfigFile string
	PlanFile   string
	OutputFile string
	MqttMode   bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		StateTracker: corridor.NewStateTracker(),
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.PlanFile = opts.PlanFile
	a.OutputFile = opts.OutputFile
	a.MqttMode = opts.MqttMode
}

// RunGenerate synthesizes corridors for a single plan export and writes the
// result as JSON. "-" reads the plan from stdin. The config file is optional
// here: its synthesis section supplies defaults, but a missing config falls
// back to built-in options.
func (a *App) RunGenerate() {
	req, err := a.readPlan()
	if err != nil {
		log.Fatalf("Error reading plan: %v", err)
	}

	opts := a.loadOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	result, err := a.synthesize(req, opts)
	if err != nil {
		log.Fatalf("Error generating corridors: %v", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding result: %v", err)
	}

	if a.OutputFile == "" {
		fmt.Println(string(payload))
	} else {
		if err := os.WriteFile(a.OutputFile, payload, 0644); err != nil {
			log.Fatalf("Error writing %s: %v", a.OutputFile, err)
		}
		fmt.Printf("Wrote %s\n", a.OutputFile)
	}

	stats := result.Statistics
	fmt.Printf("Corridors: %d (%d horizontal candidates, %d vertical, %d removed, %d invalid)\n",
		stats.FinalCount, stats.HorizontalCount, stats.VerticalCount,
		stats.RemovedDueToConflicts, len(result.Invalid))
	fmt.Printf("Total corridor area: %.2f\n", stats.TotalArea)
}

// readPlan loads the plan request from the configured file, or stdin for "-".
func (a *App) readPlan() (*corridor.PlanRequest, error) {
	if a.PlanFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return corridor.DecodePlanData(data)
	}
	return corridor.ParsePlanFile(a.PlanFile)
}

// loadOptions reads the synthesis section of the config file, or falls back
// to defaults when no config is present.
func (a *App) loadOptions() corridor.Options {
	config, err := corridor.LoadConfig(a.ConfigFile)
	if err != nil {
		log.Printf("No usable config (%v), using default synthesis options", err)
		return corridor.DefaultOptions()
	}
	a.Config = config
	return config.Synthesis
}

// synthesize runs one full synthesis pass for a decoded plan request.
func (a *App) synthesize(req *corridor.PlanRequest, opts corridor.Options) (*corridor.Result, error) {
	s, err := corridor.NewSynthesizer(req.FloorPlan, req.Ilots, opts)
	if err != nil {
		return nil, err
	}
	result := s.Generate()
	return &result, nil
}

// handlePlanMessage processes one placement payload: record the request,
// synthesize, record the result, publish.
func (a *App) handlePlanMessage(planID string, rawPayload []byte, req *corridor.PlanRequest, err error) {
	if err != nil {
		log.Printf("Error receiving plan data for %s: %v", planID, err)
		return
	}

	a.StateTracker.UpdateRequest(planID, req)

	opts := corridor.DefaultOptions()
	if a.Config != nil {
		opts = a.Config.Synthesis
	}
	if req.Options != nil {
		opts = *req.Options
	}

	result, err := a.synthesize(req, opts)
	if err != nil {
		log.Printf("Error generating corridors for %s: %v", planID, err)
		return
	}

	a.StateTracker.UpdateResult(planID, result)

	log.Printf("%s: %d ilots -> %d corridors (%d removed, %d invalid)",
		planID, len(req.Ilots), result.Statistics.FinalCount,
		result.Statistics.RemovedDueToConflicts, len(result.Invalid))

	if a.Publisher != nil {
		if err := a.Publisher.PublishResult(planID, result); err != nil {
			log.Printf("Error publishing result for %s: %v", planID, err)
		}
	}
}

// RunService starts the MQTT service: subscribe to plan topics, synthesize a
// corridor network for every placement payload, and publish the results.
func (a *App) RunService() {
	fmt.Println("Starting aislemesh service...")

	config, err := corridor.LoadConfig(a.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v (looked at %s)", err, a.ConfigFile)
	}
	a.Config = config
	log.Printf("Loaded config from %s", a.ConfigFile)

	mqttClient, err := corridor.InitMQTT(config, a.handlePlanMessage)
	if err != nil {
		log.Fatalf("Failed to initialize MQTT: %v", err)
	}
	a.MQTTClient = mqttClient

	if mqttClient == nil {
		log.Fatal("MQTT broker not configured in config.yaml")
	}

	a.Publisher = corridor.NewPublisher(mqttClient.GetClient())
	if os.Getenv("MQTT_PUBLISH_PREFIX") == "" {
		a.Publisher.SetPrefix(config.MQTT.PublishPrefix)
	}
	fmt.Println("MQTT result publisher initialized")

	fmt.Println("\nService Running")
	fmt.Println("===============")
	fmt.Println("\nMQTT:")
	fmt.Println("  Subscribed topics:")
	for _, pc := range config.Plans {
		fmt.Printf("    - %s (%s)\n", pc.Topic, pc.ID)
	}
	fmt.Printf("  Publishing to: %s/{planID}/corridors\n", a.Publisher.Prefix())
	fmt.Printf("  Combined summary: %s/plans\n", a.Publisher.Prefix())

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	fmt.Println("Service stopped")
}
