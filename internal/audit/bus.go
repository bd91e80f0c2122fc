// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package audit

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/kuppihub/kuppi-admin/internal/logging"
	"github.com/kuppihub/kuppi-admin/internal/metrics"
)

// TopicEvents is the bus topic audit events travel on.
const TopicEvents = "audit.events"

// NewBus creates the in-process pub/sub channel shared by the recorder
// and the writer.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, newWatermillLogger())
}

// BusRecorder publishes events on a watermill bus.
type BusRecorder struct {
	pub message.Publisher
}

// NewBusRecorder creates a Recorder backed by the given publisher.
func NewBusRecorder(pub message.Publisher) *BusRecorder {
	return &BusRecorder{pub: pub}
}

// Record fills in the event's ID and timestamp, then publishes it.
// Failures are logged and counted but never surface to the caller; an
// audit outage must not take request handling down with it.
func (r *BusRecorder) Record(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = watermill.NewUUID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		logging.CtxErr(ctx, err).Str("event_type", e.Type).Msg("Failed to encode audit event")
		return
	}

	msg := message.NewMessage(e.ID, payload)
	if err := r.pub.Publish(TopicEvents, msg); err != nil {
		logging.CtxErr(ctx, err).Str("event_type", e.Type).Msg("Failed to publish audit event")
		return
	}

	metrics.AuditEventsPublished.WithLabelValues(e.Type).Inc()
}

// watermillLogger adapts the global zerolog logger to watermill's
// LoggerAdapter interface.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logging.Error().Err(err).Fields(map[string]any(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}
