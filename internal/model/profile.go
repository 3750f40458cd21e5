// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PREFERENCE ENUMS
// =============================================================================

// Tone controls the conversational register of assistant replies.
type Tone string

const (
	ToneWarm    Tone = "warm"
	ToneNeutral Tone = "neutral"
	ToneDirect  Tone = "direct"
)

// Valid reports whether the tone is one of the known values.
func (t Tone) Valid() bool {
	switch t {
	case ToneWarm, ToneNeutral, ToneDirect:
		return true
	}
	return false
}

// Depth controls how elaborate assistant replies should be.
type Depth string

const (
	DepthBrief    Depth = "brief"
	DepthBalanced Depth = "balanced"
	DepthInDepth  Depth = "in-depth"
)

// Valid reports whether the depth is one of the known values.
func (d Depth) Valid() bool {
	switch d {
	case DepthBrief, DepthBalanced, DepthInDepth:
		return true
	}
	return false
}

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Preferences holds the reply-shaping knobs of the profile.
type Preferences struct {
	Tone  Tone  `json:"tone"`
	Depth Depth `json:"depth"`
}

// Profile describes the user the companion is talking to. It is created with
// defaults on first run, overwritten on edit, and never deleted.
type Profile struct {
	Name        string      `json:"name"`
	Age         int         `json:"age,omitempty"`
	Pronouns    string      `json:"pronouns,omitempty"`
	Goals       []string    `json:"goals,omitempty"`
	Preferences Preferences `json:"preferences"`
}

// DefaultProfile returns the profile used on first run.
func DefaultProfile() *Profile {
	return &Profile{
		Name: "friend",
		Preferences: Preferences{
			Tone:  ToneWarm,
			Depth: DepthBalanced,
		},
	}
}

// Normalize fills invalid or missing preference values with defaults.
// Imported or hand-edited profiles pass through here before use.
func (p *Profile) Normalize() {
	if p.Name == "" {
		p.Name = "friend"
	}
	if !p.Preferences.Tone.Valid() {
		p.Preferences.Tone = ToneWarm
	}
	if !p.Preferences.Depth.Valid() {
		p.Preferences.Depth = DepthBalanced
	}
	if p.Age < 0 {
		p.Age = 0
	}
}
