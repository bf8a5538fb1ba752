package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cookify-app/backend/internal/types"
)

// resolutionCacheTTL bounds how long a resolved post is served from cache
// before the upstreams are consulted again.
const resolutionCacheTTL = time.Hour

// ResolverService runs the media resolution pipeline: post URL in, caption,
// video URL and transcription out. Metadata lookup failures are fatal;
// video resolution and transcription failures degrade to a caption-only
// result, because a recipe is still useful with just a caption and never
// useful with nothing.
type ResolverService struct {
	lookup      IPostLookup
	video       IVideoResolver
	transcriber ITranscriber
	ocr         IOCRService
	redis       *redis.Client
}

// NewResolverService creates a new ResolverService instance. redisClient may
// be nil to disable resolution caching.
func NewResolverService(lookup IPostLookup, video IVideoResolver, transcriber ITranscriber, ocr IOCRService, redisClient *redis.Client) *ResolverService {
	return &ResolverService{
		lookup:      lookup,
		video:       video,
		transcriber: transcriber,
		ocr:         ocr,
		redis:       redisClient,
	}
}

// Resolve runs the URL entry point of the pipeline.
func (s *ResolverService) Resolve(ctx context.Context, postURL string) (*types.MediaResolution, error) {
	if ExtractShortcode(postURL) == "" {
		return nil, NewInvalidInput("not a recognized post URL")
	}

	if cached := s.cachedResolution(ctx, postURL); cached != nil {
		return cached, nil
	}

	meta, err := s.lookup.Lookup(ctx, postURL)
	if err != nil {
		return nil, err
	}

	resolution := &types.MediaResolution{
		Caption:      meta.Caption,
		ThumbnailURL: meta.ThumbnailURL,
		PostURL:      postURL,
	}

	if meta.MediaID != "" {
		videoURL, err := s.video.ResolveVideo(ctx, meta.MediaID)
		if err != nil {
			log.Printf("[Resolver] No playable video for %s: %v", postURL, err)
		} else {
			resolution.VideoURL = videoURL
		}
	}

	if resolution.VideoURL != "" {
		text, err := s.transcriber.TranscribeURL(ctx, resolution.VideoURL)
		if err != nil {
			log.Printf("[Resolver] Transcription failed for %s: %v", postURL, err)
		} else {
			resolution.Transcription = text
		}
	}

	s.cacheResolution(ctx, postURL, resolution)
	return resolution, nil
}

// ResolveImages runs the image entry point: uploaded photos go straight to
// the OCR adapter and its output becomes the transcription.
func (s *ResolverService) ResolveImages(ctx context.Context, images []types.ImageInput) (*types.MediaResolution, error) {
	text, err := s.ocr.ExtractText(ctx, images)
	if err != nil {
		return nil, err
	}
	return &types.MediaResolution{Transcription: text}, nil
}

func (s *ResolverService) cachedResolution(ctx context.Context, postURL string) *types.MediaResolution {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, resolutionCacheKey(postURL)).Bytes()
	if err != nil {
		return nil
	}
	var resolution types.MediaResolution
	if err := json.Unmarshal(data, &resolution); err != nil {
		return nil
	}
	return &resolution
}

func (s *ResolverService) cacheResolution(ctx context.Context, postURL string, resolution *types.MediaResolution) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(resolution)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, resolutionCacheKey(postURL), data, resolutionCacheTTL).Err(); err != nil {
		log.Printf("[Resolver] Failed to cache resolution for %s: %v", postURL, err)
	}
}

func resolutionCacheKey(postURL string) string {
	return fmt.Sprintf("media:resolution:%s", postURL)
}
