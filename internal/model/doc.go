// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the companion conversation.
//
// This package defines the core domain types used throughout the application
// for representing the chat history, messages, and the user profile.
//
// # Key Types
//
//   - History: Append-only message sequence with a canonical greeting reset
//   - Message: Single message with role, content, timestamp, optional mood
//   - Profile: Who the companion is talking to, plus tone/depth preferences
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a fresh conversation:
//
//	h := model.NewHistory()
//	h.AppendUser("I had a rough day", 4)
package model
