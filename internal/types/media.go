package types

// MediaResolution is the transient output of the media resolution pipeline.
// It lives for one request: assembled from the post lookup, video resolution
// and transcription steps, handed to recipe synthesis, then discarded.
type MediaResolution struct {
	Caption       string `json:"caption"`
	VideoURL      string `json:"videoUrl"`
	Transcription string `json:"transcription"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	PostURL       string `json:"postUrl"`
}

// PostMetadata is what the post lookup adapter extracts for a single post.
type PostMetadata struct {
	MediaID      string `json:"mediaId"`
	Caption      string `json:"caption"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// ImageInput is one uploaded image handed to the OCR adapter.
type ImageInput struct {
	Data     []byte
	MimeType string
}
