package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dishly/backend/config"
)

func TestYouTubeSearchURL(t *testing.T) {
	url := YouTubeSearchURL("Chicken Tikka Masala")
	assert.Equal(t,
		"https://www.youtube.com/results?search_query=Chicken%20Tikka%20Masala%20recipe%20cooking%20tutorial",
		url)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		duration string
		seconds  int
		ok       bool
	}{
		{"PT45S", 45, true},
		{"PT1M5S", 65, true},
		{"PT0H0M60S", 60, true},
		{"PT15M33S", 933, true},
		{"PT1H", 3600, true},
		{"PT2H30M", 9000, true},
		{"PT", 0, true},
		{"", 0, false},
		{"45 seconds", 0, false},
		{"P1DT1S", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			seconds, ok := ParseISODuration(tt.duration)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.seconds, seconds)
		})
	}
}

func TestIsShortFormVideo(t *testing.T) {
	assert.True(t, IsShortFormVideo("PT45S"))
	assert.False(t, IsShortFormVideo("PT1M5S"))
	// Boundary at exactly 60 seconds is inclusive.
	assert.True(t, IsShortFormVideo("PT0H0M60S"))
	assert.True(t, IsShortFormVideo("PT1M"))
	assert.False(t, IsShortFormVideo("garbage"))
	assert.False(t, IsShortFormVideo(""))
}

func newYouTubeTestServer(t *testing.T, durations []string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/search":
			items := make([]map[string]interface{}, 0, len(durations))
			for i := range durations {
				items = append(items, map[string]interface{}{
					"id": map[string]string{"videoId": videoID(i)},
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
		case "/videos":
			items := make([]map[string]interface{}, 0, len(durations))
			for i, d := range durations {
				items = append(items, map[string]interface{}{
					"id": videoID(i),
					"snippet": map[string]interface{}{
						"title":        "Video " + videoID(i),
						"channelTitle": "Test Kitchen",
					},
					"contentDetails": map[string]string{"duration": d},
					"statistics":     map[string]string{"viewCount": "100", "likeCount": "10"},
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func videoID(i int) string {
	return string(rune('a' + i))
}

func newTestYouTubeService(url, apiKey string) *YouTubeService {
	return NewYouTubeService(config.YouTubeConfig{
		APIKey:   apiKey,
		APIURL:   url,
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}, nil, zap.NewNop())
}

func TestSearchVideosPartitionsShorts(t *testing.T) {
	server := newYouTubeTestServer(t, []string{"PT10M", "PT45S", "PT59S", "PT1M1S", "PT60S"})
	defer server.Close()

	svc := newTestYouTubeService(server.URL, "test-key")
	result := svc.SearchVideos(context.Background(), "Chicken Curry")

	require.NotNil(t, result)
	assert.Len(t, result.RegularVideos, 2)
	assert.Len(t, result.Shorts, 3)
	for _, v := range result.Shorts {
		assert.True(t, IsShortFormVideo(v.Duration))
	}
}

func TestSearchVideosTruncatesResults(t *testing.T) {
	// More matches than the caps: 7 regular, 9 shorts.
	durations := make([]string, 0, 16)
	for i := 0; i < 7; i++ {
		durations = append(durations, "PT5M")
	}
	for i := 0; i < 9; i++ {
		durations = append(durations, "PT30S")
	}
	server := newYouTubeTestServer(t, durations)
	defer server.Close()

	svc := newTestYouTubeService(server.URL, "test-key")
	result := svc.SearchVideos(context.Background(), "Pancakes")

	assert.Len(t, result.RegularVideos, 5)
	assert.Len(t, result.Shorts, 8)
}

func TestSearchVideosWithoutAPIKey(t *testing.T) {
	svc := newTestYouTubeService("http://localhost:1", "")
	result := svc.SearchVideos(context.Background(), "Pancakes")

	require.NotNil(t, result)
	assert.Empty(t, result.RegularVideos)
	assert.Empty(t, result.Shorts)
}

func TestSearchVideosProviderErrorYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := newTestYouTubeService(server.URL, "test-key")
	result := svc.SearchVideos(context.Background(), "Pancakes")

	require.NotNil(t, result)
	assert.Empty(t, result.RegularVideos)
	assert.Empty(t, result.Shorts)
}
