package workers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"feedsyncd/models"
	"feedsyncd/storage"
)

// PhotoWorker downloads listing photos, hashes them, and mirrors them
// to S3-compatible storage. Photos that fail three times stop being
// retried (mirror_attempts gate in the query).
type PhotoWorker struct {
	store      *storage.PostgresStore
	httpClient *http.Client
	uploader   Uploader
	triggerCh  chan struct{}
}

// Uploader pushes photo bytes to object storage.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
}

func NewPhotoWorker(store *storage.PostgresStore, uploader Uploader, httpClient *http.Client) *PhotoWorker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &PhotoWorker{
		store:      store,
		httpClient: httpClient,
		uploader:   uploader,
		triggerCh:  make(chan struct{}, 1),
	}
}

// Trigger nudges the worker to process a batch without waiting for the
// next tick. Non-blocking; a pending nudge is enough.
func (w *PhotoWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the mirror loop.
func (w *PhotoWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Photo worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.triggerCh:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *PhotoWorker) processBatch(ctx context.Context, batchSize int) {
	photos, err := w.store.GetUnmirroredPhotos(ctx, batchSize)
	if err != nil {
		log.Printf("Photo worker: query error: %v", err)
		return
	}

	if len(photos) == 0 {
		return
	}

	log.Printf("Photo worker: mirroring %d photos", len(photos))

	var mirrored, failed int
	for i := range photos {
		p := &photos[i]

		key, err := w.mirror(ctx, p)
		if err != nil {
			log.Printf("Photo worker: failed %s: %v", p.URL, err)
			failed++
			if uerr := w.store.UpdatePhotoMirror(ctx, p.ID, nil, p.MirrorAttempts+1); uerr != nil {
				log.Printf("Photo worker: failed to record attempt for %d: %v", p.ID, uerr)
			}
			continue
		}

		if err := w.store.UpdatePhotoMirror(ctx, p.ID, &key, p.MirrorAttempts+1); err != nil {
			log.Printf("Photo worker: failed to update %d: %v", p.ID, err)
			failed++
			continue
		}

		mirrored++

		// Rate limit between downloads
		time.Sleep(200 * time.Millisecond)
	}

	if mirrored > 0 || failed > 0 {
		log.Printf("Photo worker: mirrored %d, failed %d", mirrored, failed)
	}
}

// mirror downloads one photo and uploads it under a content-addressed
// key, so the same image shared by many listings is stored once.
func (w *PhotoWorker) mirror(ctx context.Context, p *models.Photo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("download status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024)) // 20MB limit
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	hash := sha256.Sum256(data)
	digest := hex.EncodeToString(hash[:])

	contentType := resp.Header.Get("Content-Type")
	ext := guessExtension(p.URL, contentType)
	key := fmt.Sprintf("photos/%s/%s%s", digest[:2], digest, ext)

	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	return key, nil
}

// guessExtension determines file extension from URL or content-type
func guessExtension(url, contentType string) string {
	ext := strings.ToLower(path.Ext(url))
	if idx := strings.IndexAny(ext, "?#"); idx >= 0 {
		ext = ext[:idx]
	}
	if isImageExt(ext) {
		return ext
	}

	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}

// NoOpUploader drains the reader without uploading, used when S3 is
// not configured.
type NoOpUploader struct{}

func (u *NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	_, err := io.Copy(io.Discard, data)
	return err
}
