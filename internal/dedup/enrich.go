package dedup

import (
	"context"
	"log"
	"sync"

	"github.com/diretoriaja/monitor/internal/collector"
)

// ImageUploader mirrors the object-storage uploader. Implementations
// return a public URL for the stored copy, or an error (the caller then
// keeps the original URL).
type ImageUploader interface {
	UploadFromURL(ctx context.Context, imageURL, folder, filename string) (string, error)
}

// Enricher fills missing article fields on selected records via the
// news adapter's article fetch, with bounded concurrency.
type Enricher struct {
	fetcher       collector.ArticleFetcher
	uploader      ImageUploader // nil disables image re-hosting
	maxConcurrent int
}

// NewEnricher creates an enricher. maxConcurrent defaults to 3.
func NewEnricher(fetcher collector.ArticleFetcher, uploader ImageUploader, maxConcurrent int) *Enricher {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &Enricher{fetcher: fetcher, uploader: uploader, maxConcurrent: maxConcurrent}
}

// Enrich fetches full content for every item lacking it and fills only
// fields that are still empty. Fetch failures leave the item untouched.
func (e *Enricher) Enrich(ctx context.Context, items []collector.Item) []collector.Item {
	if e.fetcher == nil {
		return items
	}

	out := make([]collector.Item, len(items))
	copy(out, items)

	sem := make(chan struct{}, e.maxConcurrent)
	var wg sync.WaitGroup

	for i := range out {
		if out[i].FullText != "" || out[i].URL == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			e.enrichOne(ctx, &out[idx])
		}(i)
	}
	wg.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, item *collector.Item) {
	article, err := e.fetcher.FetchArticle(ctx, item.URL)
	if err != nil || article == nil {
		log.Printf("[Enricher] article fetch failed for %s: %v", item.URL, err)
		return
	}

	if item.FullText == "" {
		item.FullText = article.Body
	}
	if item.Title == "" {
		item.Title = article.Title
	}
	if item.Description == "" {
		item.Description = article.Description
	}
	if item.PublishedAt == nil {
		item.PublishedAt = article.PublishedAt
	}
	if item.ImageURL == "" && article.ImageURL != "" {
		item.ImageURL = e.hostImage(ctx, article.ImageURL)
	}
}

// hostImage routes the image through object storage when configured,
// falling back to the original URL on any failure.
func (e *Enricher) hostImage(ctx context.Context, imageURL string) string {
	if e.uploader == nil {
		return imageURL
	}
	stored, err := e.uploader.UploadFromURL(ctx, imageURL, "news", "")
	if err != nil {
		log.Printf("[Enricher] image upload failed, keeping original: %v", err)
		return imageURL
	}
	return stored
}
