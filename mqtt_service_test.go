package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kwv/aislemesh/corridor"
)

// serviceApp builds an App wired to a connected mock MQTT client.
func serviceApp(t *testing.T) (*App, *corridor.MockClient) {
	t.Helper()
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	client := corridor.NewMockClient()
	client.SetConnected(true)

	app := NewApp()
	app.Config = &corridor.Config{
		MQTT:  corridor.MQTTConfig{Broker: "mqtt://localhost:1883"},
		Plans: []corridor.PlanConfig{{ID: "warehouse-a", Topic: "floorplan/warehouse-a/placed"}},
	}
	app.Publisher = corridor.NewPublisher(client)
	return app, client
}

func TestHandlePlanMessage_Success(t *testing.T) {
	app, client := serviceApp(t)

	req := createTestRequest()
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	app.handlePlanMessage("warehouse-a", raw, req, nil)

	state, ok := app.StateTracker.GetPlan("warehouse-a")
	if !ok {
		t.Fatal("State tracker should know warehouse-a")
	}
	if state.Request == nil {
		t.Error("Request should be recorded")
	}
	if state.Result == nil {
		t.Fatal("Result should be recorded")
	}
	if state.Result.Statistics.FinalCount == 0 {
		t.Error("Expected at least one corridor")
	}

	messages := client.GetPublishedMessages()
	if len(messages) != 2 {
		t.Fatalf("Published %d messages, want 2", len(messages))
	}
	if messages[0].Topic != "aislemesh/warehouse-a/corridors" {
		t.Errorf("Topic = %s", messages[0].Topic)
	}
}

func TestHandlePlanMessage_DecodeError(t *testing.T) {
	app, client := serviceApp(t)

	app.handlePlanMessage("warehouse-a", []byte("junk"), nil, errors.New("parsing plan JSON"))

	if _, ok := app.StateTracker.GetPlan("warehouse-a"); ok {
		t.Error("A failed decode must not record state")
	}
	if len(client.GetPublishedMessages()) != 0 {
		t.Error("A failed decode must not publish")
	}
}

func TestHandlePlanMessage_OptionsOverride(t *testing.T) {
	app, _ := serviceApp(t)

	req := createTestRequest()
	off := false
	req.Options = &corridor.Options{GenerateHorizontal: &off, GenerateVertical: &off}

	app.handlePlanMessage("warehouse-a", nil, req, nil)

	state, ok := app.StateTracker.GetPlan("warehouse-a")
	if !ok || state.Result == nil {
		t.Fatal("Result should be recorded")
	}
	if state.Result.Statistics.FinalCount != 0 {
		t.Errorf("FinalCount = %d, want 0 with both generators disabled",
			state.Result.Statistics.FinalCount)
	}
}

func TestHandlePlanMessage_InvalidRequestOptions(t *testing.T) {
	app, client := serviceApp(t)

	req := createTestRequest()
	req.Options = &corridor.Options{MinRowDistance: 9, MaxRowDistance: 3}

	app.handlePlanMessage("warehouse-a", nil, req, nil)

	state, _ := app.StateTracker.GetPlan("warehouse-a")
	if state.Result != nil {
		t.Error("Invalid options must not produce a result")
	}
	if len(client.GetPublishedMessages()) != 0 {
		t.Error("Invalid options must not publish")
	}
}

func TestHandlePlanMessage_NoPublisher(t *testing.T) {
	app := NewApp()
	app.handlePlanMessage("warehouse-a", nil, createTestRequest(), nil)

	state, ok := app.StateTracker.GetPlan("warehouse-a")
	if !ok || state.Result == nil {
		t.Fatal("Synthesis should succeed without a publisher")
	}
}
