package corridor

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewPublisher(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	publisher := NewPublisher(nil)
	if publisher == nil {
		t.Fatal("NewPublisher() returned nil")
	}
	if publisher.publishPrefix != "aislemesh" {
		t.Errorf("Default prefix = %s, want aislemesh", publisher.publishPrefix)
	}
	if publisher.qos != 0 {
		t.Errorf("Default QoS = %d, want 0", publisher.qos)
	}
	if !publisher.retain {
		t.Error("Default retain should be true")
	}
	if publisher.results == nil {
		t.Error("Results map should be initialized")
	}
}

func TestNewPublisher_PrefixOverride(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "custom")

	publisher := NewPublisher(nil)
	if publisher.publishPrefix != "custom" {
		t.Errorf("Prefix = %s, want custom", publisher.publishPrefix)
	}
}

func TestPublisher_PublishResult(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	client := NewMockClient()
	client.SetConnected(true)

	publisher := NewPublisher(client)
	res := &Result{
		Corridors: []Corridor{{ID: "c1", Orientation: OrientationHorizontal, Area: 16.5}},
		Statistics: Statistics{
			HorizontalCount: 1,
			FinalCount:      1,
			TotalArea:       16.5,
		},
	}

	if err := publisher.PublishResult("warehouse-a", res); err != nil {
		t.Fatalf("PublishResult() error: %v", err)
	}

	messages := client.GetPublishedMessages()
	if len(messages) != 2 {
		t.Fatalf("Published %d messages, want 2 (individual + combined)", len(messages))
	}

	individual := messages[0]
	if individual.Topic != "aislemesh/warehouse-a/corridors" {
		t.Errorf("Individual topic = %s", individual.Topic)
	}
	if !individual.Retain {
		t.Error("Individual message should be retained")
	}

	var decoded Result
	if err := json.Unmarshal(individual.Payload, &decoded); err != nil {
		t.Fatalf("Individual payload is not valid JSON: %v", err)
	}
	if decoded.Statistics.FinalCount != 1 {
		t.Errorf("Decoded FinalCount = %d, want 1", decoded.Statistics.FinalCount)
	}

	combined := messages[1]
	if combined.Topic != "aislemesh/plans" {
		t.Errorf("Combined topic = %s", combined.Topic)
	}
	if !strings.Contains(string(combined.Payload), "warehouse-a") {
		t.Errorf("Combined payload missing plan ID: %s", combined.Payload)
	}
}

func TestPublisher_PublishResult_NotConnected(t *testing.T) {
	client := NewMockClient()
	publisher := NewPublisher(client)

	if err := publisher.PublishResult("plan1", &Result{}); err == nil {
		t.Error("PublishResult() should fail when not connected")
	}

	publisher = NewPublisher(nil)
	if err := publisher.PublishResult("plan1", &Result{}); err == nil {
		t.Error("PublishResult() should fail with a nil client")
	}
}

func TestPublisher_GetResult(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	client := NewMockClient()
	client.SetConnected(true)
	publisher := NewPublisher(client)

	if _, ok := publisher.GetResult("plan1"); ok {
		t.Error("GetResult() should miss before publishing")
	}

	res := &Result{Statistics: Statistics{FinalCount: 3}}
	if err := publisher.PublishResult("plan1", res); err != nil {
		t.Fatalf("PublishResult() error: %v", err)
	}

	got, ok := publisher.GetResult("plan1")
	if !ok || got.Statistics.FinalCount != 3 {
		t.Errorf("GetResult() = %+v, %v", got, ok)
	}

	publisher.ClearResult("plan1")
	if _, ok := publisher.GetResult("plan1"); ok {
		t.Error("GetResult() should miss after ClearResult")
	}
}

func TestPublisher_SetQoS(t *testing.T) {
	publisher := NewPublisher(nil)

	publisher.SetQoS(1)
	if publisher.qos != 1 {
		t.Errorf("QoS = %d, want 1", publisher.qos)
	}

	publisher.SetQoS(3) // invalid, must be ignored
	if publisher.qos != 1 {
		t.Errorf("QoS = %d, want unchanged 1", publisher.qos)
	}

	publisher.SetRetain(false)
	if publisher.retain {
		t.Error("Retain should be false after SetRetain(false)")
	}
}
