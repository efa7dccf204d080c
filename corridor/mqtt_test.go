package corridor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMQTT_Disabled(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	config := &Config{
		Plans: []PlanConfig{{ID: "test", Topic: "test/topic"}},
	}
	handler := func(string, []byte, *PlanRequest, error) {}

	client, err := InitMQTT(config, handler)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestInitMQTT_NoPlans(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	config := &Config{
		MQTT:  MQTTConfig{Broker: "mqtt://localhost:1883"},
		Plans: []PlanConfig{},
	}
	handler := func(string, []byte, *PlanRequest, error) {}

	_, err := InitMQTT(config, handler)
	assert.Error(t, err)
}

func TestMQTTClient_IsConnected(t *testing.T) {
	client := &MQTTClient{}
	assert.False(t, client.IsConnected(), "New client should not be connected")

	client.setConnected(true)
	assert.True(t, client.IsConnected())

	client.setConnected(false)
	assert.False(t, client.IsConnected())
}

func TestMQTTClient_GetPlanByTopic(t *testing.T) {
	config := &Config{
		Plans: []PlanConfig{
			{ID: "warehouse-a", Topic: "floorplan/warehouse-a/placed"},
			{ID: "warehouse-b", Topic: "floorplan/warehouse-b/placed"},
		},
	}
	client := &MQTTClient{config: config}

	tests := []struct {
		name   string
		topic  string
		wantID string
		wantOK bool
	}{
		{"first plan", "floorplan/warehouse-a/placed", "warehouse-a", true},
		{"second plan", "floorplan/warehouse-b/placed", "warehouse-b", true},
		{"unknown topic", "unknown/topic", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK := client.GetPlanByTopic(tt.topic)
			assert.Equal(t, tt.wantID, gotID)
			assert.Equal(t, tt.wantOK, gotOK)
		})
	}
}

func TestGetMQTTClient_NotInitialized(t *testing.T) {
	clientMu.Lock()
	globalClient = nil
	clientMu.Unlock()

	assert.Nil(t, GetMQTTClient())
}

// TestMessageHandler_Integration drives the full subscribe-and-decode flow
// through the mock client.
func TestMessageHandler_Integration(t *testing.T) {
	config := &Config{
		MQTT:  MQTTConfig{Broker: "mqtt://localhost:1883"},
		Plans: []PlanConfig{{ID: "warehouse-a", Topic: "floorplan/warehouse-a/placed"}},
	}

	var mu sync.Mutex
	var gotPlanID string
	var gotReq *PlanRequest
	var gotErr error

	handler := func(planID string, raw []byte, req *PlanRequest, err error) {
		mu.Lock()
		defer mu.Unlock()
		gotPlanID = planID
		gotReq = req
		gotErr = err
	}

	mock := NewMockClient()
	mock.SetConnected(true)

	client := newMQTTClientWithMock(mock, config, handler)
	client.onConnect(mock)

	mock.SimulateMessage("floorplan/warehouse-a/placed", []byte(samplePlanJSON))

	mu.Lock()
	defer mu.Unlock()
	require.NoError(t, gotErr)
	assert.Equal(t, "warehouse-a", gotPlanID)
	require.NotNil(t, gotReq)
	assert.Len(t, gotReq.Ilots, 2)
	assert.Equal(t, "u1", gotReq.Ilots[0].ID)
}

func TestMessageHandler_DecodeError(t *testing.T) {
	config := &Config{
		MQTT:  MQTTConfig{Broker: "mqtt://localhost:1883"},
		Plans: []PlanConfig{{ID: "warehouse-a", Topic: "floorplan/warehouse-a/placed"}},
	}

	var mu sync.Mutex
	var gotRaw []byte
	var gotErr error

	handler := func(planID string, raw []byte, req *PlanRequest, err error) {
		mu.Lock()
		defer mu.Unlock()
		gotRaw = raw
		gotErr = err
	}

	mock := NewMockClient()
	mock.SetConnected(true)

	client := newMQTTClientWithMock(mock, config, handler)
	client.onConnect(mock)

	mock.SimulateMessage("floorplan/warehouse-a/placed", []byte("not a plan"))

	mu.Lock()
	defer mu.Unlock()
	assert.Error(t, gotErr)
	assert.Equal(t, []byte("not a plan"), gotRaw, "raw payload should be passed through on decode errors")
}

func TestMQTTClient_Disconnect(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	client := newMQTTClientWithMock(mock, &Config{}, nil)
	client.setConnected(true)

	client.Disconnect()
	assert.False(t, client.IsConnected())
	assert.False(t, mock.IsConnected())
}

func TestMQTTClient_GetClient(t *testing.T) {
	mock := NewMockClient()
	client := newMQTTClientWithMock(mock, &Config{}, nil)
	assert.Equal(t, mock, client.GetClient())
}
