// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package audit

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/kuppihub/kuppi-admin/internal/logging"
)

// Writer drains the audit bus into the store. It runs as a supervised
// service; the supervisor restarts it if persistence starts failing
// hard enough to crash it.
type Writer struct {
	sub   message.Subscriber
	store Store
}

// NewWriter creates a Writer reading from sub and persisting into store.
func NewWriter(sub message.Subscriber, store Store) *Writer {
	return &Writer{sub: sub, store: store}
}

// String names the service in supervisor logs.
func (w *Writer) String() string {
	return "audit-writer"
}

// Serve consumes events until the context is canceled. Individual
// insert failures are logged and the message acked anyway; audit rows
// are best effort, replaying one bad event forever would wedge the bus.
func (w *Writer) Serve(ctx context.Context) error {
	msgs, err := w.sub.Subscribe(ctx, TopicEvents)
	if err != nil {
		return err
	}

	logger := logging.WithComponent("audit")
	logger.Info().Msg("Audit writer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *Writer) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		logging.Err(err).Str("message_uuid", msg.UUID).Msg("Failed to decode audit event")
		return
	}

	if err := w.store.InsertEvent(ctx, e); err != nil {
		logging.Err(err).Str("event_type", e.Type).Msg("Failed to persist audit event")
	}
}
