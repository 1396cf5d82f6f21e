// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides an llm.Provider for a local Ollama server.
//
// Chat requests go to /api/chat with streaming enabled; the response is
// newline-delimited JSON, one object per token batch, ending with a line
// that has "done": true.
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{Model: "llama3.2"})
//	sess, _ := client.NewSession(llm.SessionConfig{SystemInstruction: persona})
//	stream, err := sess.SendStream(ctx, "hello")
package ollama
