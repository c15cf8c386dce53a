package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/news/world/create_topic/", "/news/world/create_topic/"},
		{"/?page=2", "/?page=2"},
		{"", ""},
		{"relative/path", ""},
		{"//evil.example/", ""},
		{"/\\evil.example", ""},
		{"https://evil.example/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}

func TestGatePath(t *testing.T) {
	assert.Equal(t, "/accounts/profile/create_profile/", gatePath("/accounts/profile/create_profile"))
	assert.Equal(t, "/accounts/profile/", gatePath("/accounts/profile/"))
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "Topic", humanizeParam("topicId"))
	assert.Equal(t, "Profile", humanizeParam("profileId"))
	assert.Equal(t, "ID", humanizeParam("Id"))
}
