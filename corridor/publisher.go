package corridor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes synthesis results to MQTT: one topic per plan plus a
// combined topic carrying every plan's latest statistics.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	results       map[string]*Result
	mu            sync.RWMutex
}

// NewPublisher creates a result publisher. If client is nil, publishing is
// disabled (for testing).
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "aislemesh"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,
		retain:        true, // retain so late subscribers get the latest network
		results:       make(map[string]*Result),
	}
}

// PublishResult publishes a plan's corridor network to its individual topic
// and refreshes the combined summary topic.
func (p *Publisher) PublishResult(planID string, res *Result) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	p.mu.Lock()
	p.results[planID] = res
	p.mu.Unlock()

	if err := p.publishIndividual(planID, res); err != nil {
		log.Printf("Error publishing corridors for %s: %v", planID, err)
		return err
	}

	if err := p.publishCombined(); err != nil {
		log.Printf("Error publishing combined summary: %v", err)
		return err
	}

	return nil
}

// publishIndividual publishes one plan's full result to its own topic.
func (p *Publisher) publishIndividual(planID string, res *Result) error {
	topic := fmt.Sprintf("%s/%s/corridors", p.publishPrefix, planID)

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published %d corridors for %s (%.1f area, %d rejected)",
		res.Statistics.FinalCount, planID, res.Statistics.TotalArea, len(res.Invalid))
	return nil
}

// planSummary is one plan's entry on the combined topic.
type planSummary struct {
	PlanID     string     `json:"planId"`
	Statistics Statistics `json:"statistics"`
}

// publishCombined publishes per-plan statistics for all known plans.
func (p *Publisher) publishCombined() error {
	p.mu.RLock()
	summaries := make([]planSummary, 0, len(p.results))
	for id, res := range p.results {
		summaries = append(summaries, planSummary{PlanID: id, Statistics: res.Statistics})
	}
	p.mu.RUnlock()

	if len(summaries) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/plans", p.publishPrefix)

	message := map[string]interface{}{
		"plans":     summaries,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling combined summary: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// GetResult returns the last published result for a plan.
func (p *Publisher) GetResult(planID string) (*Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res, ok := p.results[planID]
	return res, ok
}

// ClearResult removes a plan's cached result.
func (p *Publisher) ClearResult(planID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.results, planID)
}

// SetPrefix overrides the topic prefix. The MQTT_PUBLISH_PREFIX env var,
// applied at construction, still wins over a config-file prefix.
func (p *Publisher) SetPrefix(prefix string) {
	if prefix != "" {
		p.publishPrefix = prefix
	}
}

// Prefix returns the active topic prefix.
func (p *Publisher) Prefix() string {
	return p.publishPrefix
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2).
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker.
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
