package eventing

import "context"

// EventBus is the minimal publish interface the dispatcher delivers to.
type EventBus interface {
	Publish(ctx context.Context, event any) error
}

// OutboxStore provides access to pending outbox records.
type OutboxStore interface {
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// DLQStore records envelopes that could not be delivered.
type DLQStore interface {
	RecordFailure(ctx context.Context, env Envelope, err error) error
}

// OutboxRecord is one pending outbox entry.
type OutboxRecord struct {
	ID       string
	Envelope Envelope
}

// Dispatcher drains the outbox onto the in-process bus. A record that fails
// to decode or deliver is marked failed and dead-lettered; delivery of the
// remaining batch continues.
type Dispatcher struct {
	bus      EventBus
	outbox   OutboxStore
	registry *Registry
	dlq      DLQStore
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(bus EventBus, outbox OutboxStore, registry *Registry, dlq DLQStore) *Dispatcher {
	return &Dispatcher{bus: bus, outbox: outbox, registry: registry, dlq: dlq}
}

// Dispatch delivers up to limit pending outbox records.
func (d *Dispatcher) Dispatch(ctx context.Context, limit int) error {
	if d == nil || d.outbox == nil || d.bus == nil || d.registry == nil {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}
	records, err := d.outbox.ListPending(ctx, limit)
	if err != nil {
		return err
	}
	for _, record := range records {
		d.deliver(ctx, record)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, record OutboxRecord) {
	env := record.Envelope
	payload, err := d.registry.DecodePayload(env)
	if err != nil {
		d.fail(ctx, record.ID, env, err)
		return
	}
	// Consumers read market/account metadata off the envelope in context.
	if err := d.bus.Publish(WithEnvelope(ctx, env), payload); err != nil {
		d.fail(ctx, record.ID, env, err)
		return
	}
	_ = d.outbox.MarkSent(ctx, record.ID)
}

func (d *Dispatcher) fail(ctx context.Context, id string, env Envelope, err error) {
	_ = d.outbox.MarkFailed(ctx, id)
	if d.dlq != nil {
		_ = d.dlq.RecordFailure(ctx, env, err)
	}
}
