// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package audit

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// publishRaw puts an arbitrary payload on the events topic.
func publishRaw(t *testing.T, pub message.Publisher, payload string) {
	t.Helper()

	msg := message.NewMessage(watermill.NewUUID(), []byte(payload))
	if err := pub.Publish(TopicEvents, msg); err != nil {
		t.Fatalf("publishing raw payload: %v", err)
	}
}
