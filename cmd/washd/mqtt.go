package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/schemawash/schemawash/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTCoupling subscribes to a topic of raw records and publishes
// cleaned records to another.
//
// A record the filters reject is consumed silently; a record whose
// cleaning fails is reported on TopicOut+"/errors".
type MQTTCoupling struct {
	Broker   string
	ClientId string
	TopicIn  string
	TopicOut string
	QoS      byte

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint
}

// Run connects, subscribes, and blocks until the context is done.
func (mq *MQTTCoupling) Run(ctx context.Context, s *Service) error {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(mq.Broker)
	opts.SetClientID(mq.ClientId)
	opts.SetKeepAlive(10 * time.Second)
	opts.AutoReconnect = true

	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	util.Logf("washd mqtt connected to %s", mq.Broker)

	handler := func(client mqtt.Client, m mqtt.Message) {
		var record map[string]interface{}
		if err := json.Unmarshal(m.Payload(), &record); err != nil {
			log.Printf("mqtt can't parse message on %s: %v", m.Topic(), err)
			return
		}

		result := s.clean(ctx, record)
		switch {
		case result.Error != "":
			client.Publish(mq.TopicOut+"/errors", mq.QoS, false, []byte(result.Error))
		case !result.Kept:
			// Filtered out.
		default:
			js, err := json.Marshal(result.Record)
			if err != nil {
				log.Printf("mqtt marshal error %v", err)
				return
			}
			client.Publish(mq.TopicOut, mq.QoS, false, js)
		}
	}

	if t := client.Subscribe(mq.TopicIn, mq.QoS, handler); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	util.Logf("washd mqtt subscribed to %s", mq.TopicIn)

	<-ctx.Done()

	quiesce := mq.Quiesce
	if quiesce == 0 {
		quiesce = 100
	}
	client.Disconnect(quiesce)

	return ctx.Err()
}
