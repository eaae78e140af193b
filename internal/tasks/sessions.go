package tasks

import (
	"fmt"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/services"
)

const (
	typeEpisode       = "episode"
	decisionTranscode = "transcode"
	unknownUser       = "Unknown User"
)

// BuildSessions maps every active playback to its view model, preserving order.
func BuildSessions(items []services.Metadata) []models.Session {
	sessions := make([]models.Session, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, BuildSession(item))
	}
	return sessions
}

// BuildSession derives the view model for one playback.
func BuildSession(item services.Metadata) models.Session {
	media, part := firstPart(item)
	video := findStream(part, services.StreamTypeVideo)
	audio := findStream(part, services.StreamTypeAudio)
	live := bool(item.Live)

	session := models.Session{
		ID:              item.RatingKey,
		User:            unknownUser,
		Title:           item.Title,
		Type:            item.Type,
		ProgressMinutes: minutes(int64(item.ViewOffset)),
		DurationMinutes: minutes(int64(item.Duration)),
		Thumbnail:       item.Thumb,
		IsLive:          live,
		Transcoding: models.Transcoding{
			IsTranscoding: IsTranscoding(item),
			VideoDecision: streamDecision(video),
			AudioDecision: streamDecision(audio),
		},
	}

	if item.User != nil && item.User.Title != "" {
		session.User = item.User.Title
	}
	if media != nil {
		session.Transcoding.Container = media.Container
	}

	if ts := item.TranscodeSession; ts != nil {
		if ts.VideoDecision != "" {
			session.Transcoding.VideoDecision = ts.VideoDecision
		}
		if ts.AudioDecision != "" {
			session.Transcoding.AudioDecision = ts.AudioDecision
		}
		if ts.Container != "" {
			session.Transcoding.Container = ts.Container
		}
	}

	if item.Type == typeEpisode {
		session.Title = item.GrandparentTitle
		session.Episode = EpisodeLabel(int(item.ParentIndex), int(item.Index), item.Title)
		if !live {
			session.Thumbnail = item.GrandparentThumb
		}
	}

	return session
}

// EpisodeLabel renders "S<season>-E<episode> - <title>".
func EpisodeLabel(season, episode int, title string) string {
	return fmt.Sprintf("S%d-E%d - %s", season, episode, title)
}

// IsTranscoding reports whether the server is re-encoding the playback.
//
// Any transcode decision on the first part or its first video or audio stream counts.
// Live playbacks also count when [LiveTranscodeSignals] holds.
func IsTranscoding(item services.Metadata) bool {
	_, part := firstPart(item)
	video := findStream(part, services.StreamTypeVideo)
	audio := findStream(part, services.StreamTypeAudio)

	direct := (part != nil && part.Decision == decisionTranscode) ||
		streamDecision(video) == decisionTranscode ||
		streamDecision(audio) == decisionTranscode
	if direct {
		return true
	}

	return bool(item.Live) && LiveTranscodeSignals(item)
}

// LiveTranscodeSignals reports the weak transcode hints observed on live playbacks:
//
//  1. a TranscodeSession is attached
//  2. the media is delivered over DASH
//  3. the video stream is DASH, in a streaming context, or located at the transcoder
//  4. any stream is DASH, streaming, transcoder-located, or internally addressed
//
// The video stream check is subsumed by the any-stream check but kept so each observed
// signal stays visible.
func LiveTranscodeSignals(item services.Metadata) bool {
	if item.TranscodeSession != nil {
		return true
	}

	media, part := firstPart(item)
	if media != nil && media.Protocol == "dash" {
		return true
	}

	if video := findStream(part, services.StreamTypeVideo); video != nil {
		if video.Protocol == "dash" || video.Context == "streaming" || video.Location == decisionTranscode {
			return true
		}
	}

	if part == nil {
		return false
	}
	for _, s := range part.Stream {
		if s.Protocol == "dash" || s.Context == "streaming" || s.Location == decisionTranscode || s.Addressing == "internal" {
			return true
		}
	}
	return false
}

func firstPart(item services.Metadata) (*services.Media, *services.Part) {
	if len(item.Media) == 0 {
		return nil, nil
	}
	media := &item.Media[0]
	if len(media.Part) == 0 {
		return media, nil
	}
	return media, &media.Part[0]
}

func findStream(part *services.Part, streamType int) *services.Stream {
	if part == nil {
		return nil
	}
	for i := range part.Stream {
		if part.Stream[i].StreamType == streamType {
			return &part.Stream[i]
		}
	}
	return nil
}

func streamDecision(s *services.Stream) string {
	if s == nil {
		return ""
	}
	return s.Decision
}

// minutes floors a millisecond offset to whole minutes.
func minutes(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(ms / 60000)
}
