package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"instavibe/internal/carousel"
	"instavibe/internal/orchestrator"
	"instavibe/internal/storage"
)

const slideImagePresignTTL = 7 * 24 * time.Hour

// storingGenerator wraps the generative backend so that generated images
// land in object storage instead of staying inline data URIs. Text
// operations pass through untouched.
type storingGenerator struct {
	orchestrator.Generator
	storage *storage.Client
	userID  uint
}

func (g *storingGenerator) GenerateImage(ctx context.Context, prompt string, ratio carousel.AspectRatio) (string, error) {
	dataURI, err := g.Generator.GenerateImage(ctx, prompt, ratio)
	if err != nil {
		return "", err
	}

	mime, raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext := "png"
	if parts := strings.Split(mime, "/"); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	objectName := fmt.Sprintf("slide-images/%d/%s.%s", g.userID, uuid.NewString(), ext)
	if _, err := g.storage.UploadFile(ctx, objectName,
		bytes.NewReader(raw), int64(len(raw)), mime); err != nil {
		return "", err
	}

	return g.storage.GeneratePresignedURL(ctx, objectName, slideImagePresignTTL)
}

func decodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	mime = strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		return "", nil, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri payload: %w", err)
	}
	return mime, data, nil
}
