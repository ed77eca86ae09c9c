package worker

// WebSocket message protocol, relayed to the frontend through Redis Pub/Sub.
// Field names must stay in sync with the frontend parser.
type CarouselNotifyMessage struct {
	Event         string `json:"event"`
	Status        string `json:"status"`
	CarouselID    uint   `json:"carousel_id"`
	SlideID       *int   `json:"slide_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
	ArchiveURL    string `json:"archive_url,omitempty"`
	SkippedSlides []int  `json:"skipped_slides,omitempty"`
}

const (
	EventExport     = "export"
	EventImageBatch = "image_batch"
	EventSlideImage = "slide_image"
)
