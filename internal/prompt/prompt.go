// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the system instruction sent ahead of the
// conversation history on every completion call.
package prompt

import (
	"fmt"
	"strings"

	"github.com/jeranaias/haven-tui/internal/model"
)

// toneDirectives maps each tone preference to its instruction line.
var toneDirectives = map[model.Tone]string{
	model.ToneWarm:    "Use a warm, gentle, encouraging tone.",
	model.ToneNeutral: "Use a calm, neutral tone.",
	model.ToneDirect:  "Use a clear, direct, no-nonsense tone while staying kind.",
}

// depthDirectives maps each depth preference to its instruction line.
var depthDirectives = map[model.Depth]string{
	model.DepthBrief:    "Keep replies brief: a few sentences at most.",
	model.DepthBalanced: "Keep replies balanced: a short paragraph or two.",
	model.DepthInDepth:  "Reply in depth when it helps, with concrete suggestions.",
}

// BuildSystemPrompt produces the system instruction for the given profile.
// Pure function of the profile; recomputed on every send, never cached, so
// profile edits take effect on the next message.
func BuildSystemPrompt(p *model.Profile) string {
	var b strings.Builder

	b.WriteString("You are Haven, a supportive companion for everyday emotional wellbeing. ")
	b.WriteString("You are not a doctor or therapist and you never diagnose, prescribe, or give medical advice. ")
	b.WriteString("You listen, reflect, and offer gentle, practical suggestions. ")
	b.WriteString("If the user expresses thoughts of self-harm or suicide, respond with empathy, encourage them to contact a crisis line such as 988, and do not attempt treatment.\n\n")

	if line, ok := toneDirectives[p.Preferences.Tone]; ok {
		b.WriteString(line)
		b.WriteString(" ")
	}
	if line, ok := depthDirectives[p.Preferences.Depth]; ok {
		b.WriteString(line)
	}
	b.WriteString("\n\n")

	b.WriteString("You are talking to ")
	b.WriteString(p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&b, ", age %d", p.Age)
	}
	if p.Pronouns != "" {
		fmt.Fprintf(&b, " (%s)", p.Pronouns)
	}
	b.WriteString(".")
	if len(p.Goals) > 0 {
		b.WriteString(" Their current goals: ")
		b.WriteString(strings.Join(p.Goals, "; "))
		b.WriteString(".")
	}

	return b.String()
}
