package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"
	"net/http"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/taskman/taskman-cli/internal/validation"
)

const maxTaskImageBytes = 5 * 1024 * 1024

// enrichment is the outcome of the image stage: an image, or absent.
type enrichment struct {
	img image.Image
}

// absent reports whether the stage produced no image.
func (e enrichment) absent() bool {
	return e.img == nil
}

// applyTo merges the enrichment into task. It never fails; an absent
// enrichment leaves the task untouched.
func (e enrichment) applyTo(task *Task) *Task {
	if task != nil && !e.absent() {
		task.Image = e.img
	}
	return task
}

// enrich fetches the task image and calls done exactly once with the outcome.
// Every failure is logged and reported as an absent enrichment.
func (g *Gateway) enrich(ctx context.Context, task *Task, done func(enrichment)) {
	logger := loggerFrom(ctx)
	if task.ImageURL == "" {
		logger.Info("task has no image url", "task", task.ID)
		done(enrichment{})
		return
	}

	if err := validation.ValidateImageURL(task.ImageURL); err != nil {
		logger.Warn("image url rejected", "url", task.ImageURL, "error", err)
		done(enrichment{})
		return
	}

	req, err := newImageRequest(WithBodyLimit(ctx, maxTaskImageBytes), g.cfg, task.ImageURL)
	if err != nil {
		logger.Error("image request not built", "url", task.ImageURL, "error", err)
		done(enrichment{})
		return
	}

	g.transport.Enqueue(req, func(resp *Response, err error) {
		done(decodeImage(logger, task.ImageURL, resp, err))
	})
}

func decodeImage(logger *slog.Logger, imageURL string, resp *Response, err error) enrichment {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		logger.Warn("image too large", "url", imageURL, "error", err)
		return enrichment{}
	case err != nil:
		logger.Error("image fetch failed", "url", imageURL, "error", err)
		return enrichment{}
	case resp == nil || len(resp.Body) == 0:
		logger.Info("image response had no body", "url", imageURL)
		return enrichment{}
	case resp.StatusCode != http.StatusOK:
		logger.Warn("image fetch rejected", "url", imageURL, "status", resp.StatusCode)
		return enrichment{}
	case len(resp.Body) > maxTaskImageBytes:
		logger.Warn("image too large", "url", imageURL, "bytes", len(resp.Body))
		return enrichment{}
	}

	img, format, err := image.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		logger.Warn("image decode failed", "url", imageURL, "error", err)
		return enrichment{}
	}
	logger.Debug("image attached", "url", imageURL, "format", format)
	return enrichment{img: img}
}
