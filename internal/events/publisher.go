// Package events broadcasts committed governance events to subscribed
// dashboards over a ZeroMQ PUB socket. The wire format is a two-frame
// message: the event kind as the subscription topic, then the CBOR body.
package events

import (
	"errors"
	"sync"

	"github.com/pebbe/zmq4"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dao-governance/internal/governance"
	"dao-governance/internal/journal"
)

type Publisher struct {
	log      *zap.Logger
	bindAddr string

	mu      sync.Mutex
	context *zmq4.Context
	socket  *zmq4.Socket
}

func NewPublisher(logger *zap.Logger, bindAddr string) *Publisher {
	return &Publisher{
		log:      logger,
		bindAddr: bindAddr,
	}
}

func (p *Publisher) Start() error {
	zmqContext, err := zmq4.NewContext()
	if err != nil {
		return err
	}

	socket, err := zmqContext.NewSocket(zmq4.PUB)
	if err != nil {
		return err
	}
	if err := socket.Bind(p.bindAddr); err != nil {
		return errors.New("failed to bind the publisher socket: " + err.Error())
	}

	p.mu.Lock()
	p.context = zmqContext
	p.socket = socket
	p.mu.Unlock()

	p.log.Info("event publisher started", zap.String("bindAddr", p.bindAddr))
	return nil
}

// Publish sends one committed event. Publishing is best-effort fan-out:
// the engine state is already committed, so a send error is reported but
// never rolls anything back.
func (p *Publisher) Publish(event governance.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.socket == nil {
		return errors.New("publisher is not started")
	}

	body, err := journal.Encode(event)
	if err != nil {
		return err
	}

	if _, err := p.socket.Send(string(event.Kind), zmq4.SNDMORE); err != nil {
		return errors.New("failed to send the event topic: " + err.Error())
	}
	if _, err := p.socket.SendBytes(body, 0); err != nil {
		return errors.New("failed to send the event body: " + err.Error())
	}

	p.log.Debug("event published", zap.String("kind", string(event.Kind)), zap.Uint64("seq", event.Seq))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var allErr error
	if p.socket != nil {
		if err := p.socket.Close(); err != nil {
			allErr = multierr.Append(allErr, err)
		}
		p.socket = nil
	}
	if p.context != nil {
		if err := p.context.Term(); err != nil {
			allErr = multierr.Append(allErr, err)
		}
		p.context = nil
	}
	return allErr
}
