package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

// appRunner abstracts the App so run can be tested with a mock.
type appRunner interface {
	ApplyOptions(opts AppOptions)
	RunGenerate()
	RunService()
}

// AppOptions carries the CLI flags into the App
type AppOptions struct {
	ConfigFile string
	PlanFile   string
	OutputFile string
	MqttMode   bool
}

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		os.Exit(2)
	}
}

// run parses flags and dispatches to the selected mode.
func run(args []string, out io.Writer, app appRunner) error {
	flags := flag.NewFlagSet("aislemesh", flag.ContinueOnError)
	flags.SetOutput(out)

	configFile := flags.String("config", "config.yaml", "Path to configuration file")
	planFile := flags.String("plan", "", "Generate corridors for a plan JSON file and exit")
	outputFile := flags.String("output", "", "Output file for --plan mode (default stdout)")
	mqttMode := flags.Bool("mqtt", false, "Run MQTT service mode for live corridor synthesis")

	if err := flags.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "aislemesh version: %s\n", Version)

	app.ApplyOptions(AppOptions{
		ConfigFile: *configFile,
		PlanFile:   *planFile,
		OutputFile: *outputFile,
		MqttMode:   *mqttMode,
	})

	if *planFile != "" {
		app.RunGenerate()
		return nil
	}

	if *mqttMode {
		app.RunService()
		return nil
	}

	fmt.Fprintln(out, "aislemesh corridor synthesis")
	fmt.Fprintln(out, "Use --plan=FILE to generate corridors for a plan export")
	fmt.Fprintln(out, "Use --mqtt to run the MQTT service mode")
	fmt.Fprintln(out, "\nConfiguration:")
	fmt.Fprintln(out, "  config.yaml - MQTT settings, plan topics, and synthesis options")
	fmt.Fprintln(out, "  .env        - MQTT_BROKER and credential overrides")
	return nil
}
