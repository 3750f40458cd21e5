// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safety

// Reply is the fixed empathetic message appended as the assistant turn when
// the filter trips. The completion endpoint is never called for that turn.
const Reply = "I'm really glad you told me. What you're feeling matters, and you don't have " +
	"to carry it alone. I'm a companion app, not a crisis service, so please reach " +
	"out to someone who can help right now - call or text 988 (Suicide & Crisis " +
	"Lifeline) or text HOME to 741741 to reach a trained counselor. If you are in " +
	"immediate danger, call 911. I'm still here if you want to keep talking."

// Resources is the static informational panel shown alongside the crisis
// banner. Content only; no logic.
const Resources = `Crisis resources

  988 Suicide & Crisis Lifeline   call or text 988 (US, 24/7)
  Crisis Text Line                text HOME to 741741 (US, 24/7)
  Emergency services              call 911
  International directory        https://findahelpline.com

You deserve support. These services are free and confidential.`
