package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dishly/backend/config"
)

const (
	maxRegularVideos = 5
	maxShorts        = 8
	searchBatchSize  = 10

	// Videos at or under this many seconds are classified short-form.
	shortFormMaxSeconds = 60
)

// YouTubeSearchURL builds a results-page link for a recipe. Spaces are
// percent-encoded so the phrase survives inside stored URLs.
func YouTubeSearchURL(recipeName string) string {
	query := url.QueryEscape(recipeName + " recipe cooking tutorial")
	query = strings.ReplaceAll(query, "+", "%20")
	return "https://www.youtube.com/results?search_query=" + query
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration of the PT#H#M#S form
// (each component optional) into total seconds. Unparseable input
// returns 0 and false.
func ParseISODuration(duration string) (int, bool) {
	match := isoDurationRE.FindStringSubmatch(duration)
	if match == nil {
		return 0, false
	}

	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}

// IsShortFormVideo reports whether a duration string describes a
// short-form video (60 seconds or less, boundary inclusive).
func IsShortFormVideo(duration string) bool {
	seconds, ok := ParseISODuration(duration)
	if !ok {
		return false
	}
	return seconds <= shortFormMaxSeconds
}

// Video is a single companion-video result.
type Video struct {
	VideoID      string          `json:"videoId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ChannelTitle string          `json:"channelTitle"`
	PublishedAt  string          `json:"publishedAt"`
	Thumbnails   json.RawMessage `json:"thumbnails,omitempty"`
	Duration     string          `json:"duration"`
	ViewCount    string          `json:"viewCount"`
	LikeCount    string          `json:"likeCount"`
}

// VideoSearchResult partitions companion videos by form factor.
type VideoSearchResult struct {
	RegularVideos []Video `json:"regularVideos"`
	Shorts        []Video `json:"shorts"`
}

// YouTubeService looks up companion videos through the YouTube Data
// API. Provider errors and a missing API key both degrade to empty
// result sets. Redis, when present, caches results per recipe name.
type YouTubeService struct {
	cfg    config.YouTubeConfig
	client *resty.Client
	redis  *redis.Client
	logger *zap.Logger
}

// NewYouTubeService creates a new YouTubeService instance
func NewYouTubeService(cfg config.YouTubeConfig, redisClient *redis.Client, logger *zap.Logger) *YouTubeService {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout)

	return &YouTubeService{
		cfg:    cfg,
		client: client,
		redis:  redisClient,
		logger: logger,
	}
}

// Enabled reports whether the video feature is configured.
func (s *YouTubeService) Enabled() bool {
	return s.cfg.APIKey != ""
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string          `json:"title"`
			Description  string          `json:"description"`
			ChannelTitle string          `json:"channelTitle"`
			PublishedAt  string          `json:"publishedAt"`
			Thumbnails   json.RawMessage `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchVideos finds tutorial videos for a recipe and splits them into
// regular videos and shorts. It never fails the caller: any provider
// problem returns empty sets.
func (s *YouTubeService) SearchVideos(ctx context.Context, recipeName string) *VideoSearchResult {
	empty := &VideoSearchResult{RegularVideos: []Video{}, Shorts: []Video{}}

	if !s.Enabled() {
		s.logger.Debug("video search skipped, no API key configured")
		return empty
	}

	cacheKey := "videos:" + NormalizeRecipeName(recipeName)
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached VideoSearchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached
			}
		}
	}

	result, err := s.search(ctx, recipeName)
	if err != nil {
		s.logger.Warn("video search failed", zap.String("recipe", recipeName), zap.Error(err))
		return empty
	}

	if s.redis != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache video results", zap.Error(err))
			}
		}
	}

	return result
}

func (s *YouTubeService) search(ctx context.Context, recipeName string) (*VideoSearchResult, error) {
	var searchResp searchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":           s.cfg.APIKey,
			"q":             recipeName + " recipe cooking tutorial",
			"type":          "video",
			"part":          "snippet",
			"maxResults":    strconv.Itoa(searchBatchSize),
			"order":         "relevance",
			"videoDuration": "any",
			"safeSearch":    "strict",
		}).
		SetResult(&searchResp).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search request returned status %d", resp.StatusCode())
	}

	ids := make([]string, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return &VideoSearchResult{RegularVideos: []Video{}, Shorts: []Video{}}, nil
	}

	var detailsResp videosResponse
	resp, err = s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":  s.cfg.APIKey,
			"id":   strings.Join(ids, ","),
			"part": "snippet,contentDetails,statistics",
		}).
		SetResult(&detailsResp).
		Get("/videos")
	if err != nil {
		return nil, fmt.Errorf("details request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("details request returned status %d", resp.StatusCode())
	}

	result := &VideoSearchResult{RegularVideos: []Video{}, Shorts: []Video{}}
	for _, item := range detailsResp.Items {
		video := Video{
			VideoID:      item.ID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			Thumbnails:   item.Snippet.Thumbnails,
			Duration:     item.ContentDetails.Duration,
			ViewCount:    orZero(item.Statistics.ViewCount),
			LikeCount:    orZero(item.Statistics.LikeCount),
		}

		if IsShortFormVideo(video.Duration) {
			if len(result.Shorts) < maxShorts {
				result.Shorts = append(result.Shorts, video)
			}
		} else if len(result.RegularVideos) < maxRegularVideos {
			result.RegularVideos = append(result.RegularVideos, video)
		}
	}

	return result, nil
}

func orZero(count string) string {
	if count == "" {
		return "0"
	}
	return count
}
