package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/eventlog"
)

// Options configures a Publisher.
type Options struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	QoS      byte
	Retain   bool
}

// Publish connects to an MQTT broker, publishes a message to the given
// topic, and disconnects. Each invocation creates a fresh connection.
func Publish(o Options, message []byte) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetConnectTimeout(5 * time.Second)

	if o.Username != "" {
		opts.SetUsername(o.Username)
	}
	if o.Password != "" {
		opts.SetPassword(o.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(o.Topic, o.QoS, o.Retain, message)
	if !pub.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}

// Publisher forwards alert events to a broker in the background.
// Synthesis events are internal bookkeeping and are not forwarded.
type Publisher struct {
	opts    Options
	logger  *zap.Logger
	publish func(Options, []byte) error
	wg      sync.WaitGroup
}

// NewPublisher returns a Publisher for o.
func NewPublisher(o Options, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{opts: o, logger: logger, publish: Publish}
}

// Observe publishes e without blocking the caller. Failures are logged.
func (p *Publisher) Observe(e eventlog.Event) {
	if e.Kind == eventlog.KindSynthesized {
		return
	}
	msg, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn("mqtt: encode event", zap.Error(err))
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.publish(p.opts, msg); err != nil {
			p.logger.Warn("mqtt publish failed", zap.String("broker", p.opts.Broker), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight publishes have finished.
func (p *Publisher) Wait() {
	p.wg.Wait()
}
