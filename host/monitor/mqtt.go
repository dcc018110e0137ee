// Package monitor bridges responder parameter changes and DMX frame
// events onto an MQTT broker, the observability layer spec.md's
// Non-goals exclude from the driver itself but that a real deployment
// still wants. Grounded on gopper's UART/telemetry examples for the
// "translate a driver event into an external message" shape, adapted
// to eclipse/paho.mqtt.golang since gopper itself has no MQTT use.
package monitor

import (
	"encoding/hex"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Bridge publishes to an MQTT broker under a fixed topic prefix.
type Bridge struct {
	client mqtt.Client
	prefix string
}

// Dial connects to brokerURL (e.g. "tcp://localhost:1883") and returns
// a Bridge publishing under prefix (e.g. "dmxlink/port0").
func Dial(brokerURL, clientID, prefix string) (*Bridge, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Bridge{client: client, prefix: prefix}, nil
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}

// OnParameterChanged implements paramstore.Callback, publishing the
// new value hex-encoded to "<prefix>/parameters/<sub_device>/<pid>".
func (b *Bridge) OnParameterChanged(subDevice, pid uint16, value []byte) {
	topic := fmt.Sprintf("%s/parameters/%d/%#04x", b.prefix, subDevice, pid)
	b.client.Publish(topic, 0, false, hex.EncodeToString(value))
}

// PublishFrame reports a received DMX frame's start code and slot
// count to "<prefix>/frame", used by a monitoring dashboard to show
// live bus activity without polling the driver.
func (b *Bridge) PublishFrame(startCode byte, slotCount int) {
	topic := b.prefix + "/frame"
	payload := fmt.Sprintf("%#02x,%d", startCode, slotCount)
	b.client.Publish(topic, 0, false, payload)
}

// PublishEvent reports a driver-level status change (overflow,
// framing error, timeout) to "<prefix>/status".
func (b *Bridge) PublishEvent(status string) {
	b.client.Publish(b.prefix+"/status", 0, false, status)
}
