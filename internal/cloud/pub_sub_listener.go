// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud
// services. This file defines a generic Pub/Sub message listener that
// delegates each message to an attached workflow command. The pipeline uses
// one listener: GCS finalize notifications on the documents bucket trigger
// the documentary workflow for the dropped research document.
//
// Logic Flow:
//  1. A PubSubListener is created for a subscription, and the documentary
//     workflow is attached as its command.
//  2. Listen starts a background goroutine that receives messages.
//  3. Each message becomes the initial input of a fresh chain context; the
//     workflow runs to completion under a per-message trace span.
//  4. The message is acknowledged only if the run recorded no errors, so a
//     failed run is redelivered under the subscription's retry policy.
//
// Structs:
//   - PubSubListener: Binds a subscription to a processing command.
//
// Functions:
//   - NewPubSubListener: Constructor.
//   - SetCommand: Attaches the processing command after chain assembly.
//   - Listen: Starts background message receiving.
package cloud

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener encapsulates the components needed to listen to one
// Pub/Sub subscription and run a workflow command per message. Listeners
// have a life-cycle independent of API requests, so they live with the
// other cloud components.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The subscription this listener pulls messages from.
	command      cor.Command          // The workflow executed for each message.
}

// NewPubSubListener creates a listener for the given subscription. The
// command may be nil at construction time and attached later with
// SetCommand, since workflows are assembled after the service clients.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client.
//   - subscriptionID: The subscription ID to listen on.
//   - command: The workflow command, or nil to attach later.
//
// Outputs:
//   - *PubSubListener: The configured listener.
//   - error: Reserved for future construction failures; currently always nil.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command to the listener. The first attached command
// wins; later calls are ignored so the initial wiring is never overwritten.
//
// Inputs:
//   - command: The cor.Command to execute per received message.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts the asynchronous message receiving loop in a background
// goroutine, leaving the caller free to serve API requests.
//
// Inputs:
//   - ctx: Controls the lifecycle of the listener. Canceling it stops
//     message receiving.
func (m *PubSubListener) Listen(ctx context.Context) {
	log.Printf("listening: %s", m.subscription)

	go func() {
		tracer := otel.Tracer("document-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-document-notification")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))
			log.Println("received document notification")

			// Each message gets its own chain context so concurrent runs
			// never share state.
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))
			defer chainCtx.Close()

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				// Ack only on success; an unacked message is redelivered
				// after the acknowledgement deadline.
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "failed")
				for _, e := range chainCtx.GetErrors() {
					log.Printf("error executing chain: %v", e)
				}
			}

			span.End()
		})

		if err != nil {
			log.Printf("error receiving data: %v", err)
		}
	}()
}
