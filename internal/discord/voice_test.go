package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, voiceDisconnected, presenceOf("", false, false))
	assert.Equal(t, voiceDisconnected, presenceOf("", true, true))
	assert.Equal(t, voiceActive, presenceOf("chan", false, false))
	assert.Equal(t, voiceMutedOrDeafened, presenceOf("chan", true, false))
	assert.Equal(t, voiceMutedOrDeafened, presenceOf("chan", false, true))
	assert.Equal(t, voiceMutedOrDeafened, presenceOf("chan", true, true))
}

func TestTransitionActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		from  voicePresence
		to    voicePresence
		moved bool
		want  voiceActions
	}{
		{
			name: "join unmuted", from: voiceDisconnected, to: voiceActive, moved: true,
			want: voiceActions{start: true},
		},
		{
			name: "join muted", from: voiceDisconnected, to: voiceMutedOrDeafened, moved: true,
			want: voiceActions{},
		},
		{
			name: "leave while active", from: voiceActive, to: voiceDisconnected, moved: true,
			want: voiceActions{end: true},
		},
		{
			name: "leave while muted", from: voiceMutedOrDeafened, to: voiceDisconnected, moved: true,
			want: voiceActions{end: true},
		},
		{
			name: "mute while connected", from: voiceActive, to: voiceMutedOrDeafened,
			want: voiceActions{end: true},
		},
		{
			name: "unmute while connected", from: voiceMutedOrDeafened, to: voiceActive,
			want: voiceActions{start: true},
		},
		{
			name: "move between channels", from: voiceActive, to: voiceActive, moved: true,
			want: voiceActions{end: true, start: true},
		},
		{
			name: "move while muted", from: voiceMutedOrDeafened, to: voiceMutedOrDeafened, moved: true,
			want: voiceActions{},
		},
		{
			name: "unrelated update while active", from: voiceActive, to: voiceActive,
			want: voiceActions{startIfUntracked: true},
		},
		{
			name: "unrelated update while muted", from: voiceMutedOrDeafened, to: voiceMutedOrDeafened,
			want: voiceActions{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, transitionActions(tt.from, tt.to, tt.moved))
		})
	}
}
