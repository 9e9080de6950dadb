package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, ""},
		{1, "1"},
		{42, "42"},
		{999, "999"},
		{1_000, "1.0K"},
		{1_500, "1.5K"},
		{12_345, "12.3K"},
		{999_999, "999.9K"},
		{1_000_000, "1.0M"},
		{1_234_567, "1.2M"},
		{25_600_000, "25.6M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in), "FormatCount(%d)", tt.in)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"2024-01-15T12:30:00Z", 1705321800},
		{"2024-01-15T12:30:00.123456Z", 1705321800},
		{"2024-01-15T14:30:00+02:00", 1705321800},
		{"2024-01-15T12:30:00", 1705321800},
		{"not a timestamp", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTimestamp(tt.in), "ParseTimestamp(%q)", tt.in)
	}
}

func TestPollStatus(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name      string
		remaining int64
		want      string
	}{
		{"expired", -10, "Final results"},
		{"just expired", 0, "Final results"},
		{"days", 3 * 86_400, "3 days left"},
		{"one day", 86_400, "1 day left"},
		{"almost two days", 2*86_400 - 1, "1 day left"},
		{"hours round up", 3_661, "2 hours left"},
		{"exact hour", 3_600, "1 hour left"},
		{"hour plus seconds only", 3_659, "1 hour left"},
		{"minutes", 600, "11 minutes left"},
		{"one minute", 61, "2 minutes left"},
		{"seconds", 30, "31 seconds left"},
		{"one second", 1, "2 seconds left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PollStatus(now.Unix()+tt.remaining, now))
		})
	}
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "7", GroupDigits(7))
	assert.Equal(t, "999", GroupDigits(999))
	assert.Equal(t, "1 000", GroupDigits(1_000))
	assert.Equal(t, "1 234 567", GroupDigits(1_234_567))
}

func TestPlatformCategory(t *testing.T) {
	assert.Equal(t, CategoryBlog, PlatformTwitter.Category())
	assert.Equal(t, CategoryBlog, PlatformBluesky.Category())
	assert.Equal(t, CategoryBlog, PlatformMastodon.Category())
	assert.Equal(t, CategoryForum, PlatformReddit.Category())
	assert.Equal(t, CategoryForum, PlatformLemmy.Category())
	assert.Equal(t, CategoryForum, PlatformInstagram.Category())
	assert.Equal(t, CategoryForum, PlatformTikTok.Category())
}
