package discord

// voicePresence is a member's standing with respect to voice XP accrual.
type voicePresence int

const (
	voiceDisconnected voicePresence = iota
	voiceActive
	voiceMutedOrDeafened
)

// presenceOf classifies a voice state. Only self-mute/self-deafen pause
// accrual; a server-muted member still earns credit.
func presenceOf(channelID string, selfMute, selfDeaf bool) voicePresence {
	if channelID == "" {
		return voiceDisconnected
	}
	if selfMute || selfDeaf {
		return voiceMutedOrDeafened
	}
	return voiceActive
}

// voiceActions is what a voice-state transition requires of the session
// tracker, in order: end (and grant) the open session, start a fresh one,
// or start one only if none is tracked.
type voiceActions struct {
	end              bool
	start            bool
	startIfUntracked bool
}

// transitionActions maps a presence transition to tracker actions. Moving
// between channels settles the old session and opens a new one. Becoming
// muted or deafened settles the session the same way leaving does. A
// repeated active state starts a session only when none is tracked, which
// heals sessions orphaned by missed gateway events.
func transitionActions(from, to voicePresence, moved bool) voiceActions {
	switch to {
	case voiceActive:
		if from == voiceActive && !moved {
			return voiceActions{startIfUntracked: true}
		}
		return voiceActions{end: from == voiceActive, start: true}
	case voiceDisconnected:
		// Ending a missing session is a no-op, so no from-state check.
		return voiceActions{end: true}
	case voiceMutedOrDeafened:
		return voiceActions{end: from == voiceActive}
	}
	return voiceActions{}
}
