// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the boundary between the chat client and a remote
// language-model provider.
//
// A Provider creates Sessions. A Session keeps the provider-side
// conversation history and opens a ChunkStream for every message sent.
// The stream is lazy, finite and cannot be restarted: Next returns io.EOF
// once the provider has delivered the whole reply. Only after that does
// the session's History include the new exchange, together with any search
// grounding metadata the provider attached to the reply.
//
// # Usage
//
//	sess, err := provider.NewSession(llm.SessionConfig{
//	    SystemInstruction: instruction,
//	    Tools:             llm.Tools{WebSearch: true},
//	})
//	stream, err := sess.SendStream(ctx, "Show me today's events.")
//	defer stream.Close()
//	for {
//	    chunk, err := stream.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//	history, err := sess.History()
package llm
