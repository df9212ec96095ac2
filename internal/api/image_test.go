package api

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"testing"
)

func TestDecodeImage(t *testing.T) {
	logger := slog.Default()
	img := pngBytes(t)

	e := decodeImage(logger, "u", &Response{StatusCode: http.StatusOK, Body: img}, nil)
	if e.absent() {
		t.Fatal("expected image to decode")
	}
	if e.img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds = %v", e.img.Bounds())
	}

	absent := map[string]enrichment{
		"transport error": decodeImage(logger, "u", nil, errors.New("boom")),
		"over the cap":    decodeImage(logger, "u", nil, fmt.Errorf("%w: exceeds 5 bytes", ErrBodyTooLarge)),
		"nil response":    decodeImage(logger, "u", nil, nil),
		"empty body":      decodeImage(logger, "u", &Response{StatusCode: http.StatusOK}, nil),
		"bad status":      decodeImage(logger, "u", &Response{StatusCode: http.StatusForbidden, Body: img}, nil),
		"not an image":    decodeImage(logger, "u", &Response{StatusCode: http.StatusOK, Body: []byte("GIF89a?")}, nil),
		"too large":       decodeImage(logger, "u", &Response{StatusCode: http.StatusOK, Body: make([]byte, maxTaskImageBytes+1)}, nil),
	}
	for name, e := range absent {
		if !e.absent() {
			t.Errorf("%s: expected absent enrichment", name)
		}
	}
}

func TestEnrichmentApplyTo(t *testing.T) {
	task := &Task{ID: "1"}
	if got := (enrichment{}).applyTo(task); got != task || got.HasImage() {
		t.Error("absent enrichment must leave task untouched")
	}

	img := image.NewGray(image.Rect(0, 0, 1, 1))
	if got := (enrichment{img: img}).applyTo(task); !got.HasImage() {
		t.Error("expected image attached")
	}

	if got := (enrichment{img: img}).applyTo(nil); got != nil {
		t.Error("applyTo(nil) should return nil")
	}
}

func TestEnrich_EmptyURLSkipsFetch(t *testing.T) {
	ft := &fakeTransport{respond: func(*http.Request) (*Response, error) {
		t.Error("transport should not be called")
		return nil, nil
	}}
	gw := NewGateway(DefaultConfig(), ft)

	var got enrichment
	called := false
	gw.enrich(withOperation(t.Context(), opCurrent), &Task{ID: "1"}, func(e enrichment) {
		called = true
		got = e
	})
	if !called || !got.absent() {
		t.Error("expected immediate absent enrichment")
	}
}

func TestEnrich_RejectedURLSkipsFetch(t *testing.T) {
	ft := &fakeTransport{respond: func(*http.Request) (*Response, error) {
		t.Error("transport should not be called")
		return nil, nil
	}}
	gw := NewGateway(DefaultConfig(), ft)

	for _, imageURL := range []string{"http://169.254.169.254/latest/meta-data", "file:///etc/passwd"} {
		var got enrichment
		called := false
		gw.enrich(withOperation(t.Context(), opCurrent), &Task{ID: "1", ImageURL: imageURL}, func(e enrichment) {
			called = true
			got = e
		})
		if !called || !got.absent() {
			t.Errorf("%s: expected immediate absent enrichment", imageURL)
		}
	}
}
