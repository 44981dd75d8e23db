// Package discover finds candidate talk videos in conference channel feeds.
package discover

import (
	"log"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"talkdoc/internal/identity"
	"talkdoc/internal/transcript"
)

const maxPerFeed = 50

// Talk is a candidate video found in a channel feed.
type Talk struct {
	VideoID       string
	Title         string
	URL           string
	Channel       string
	PublishedDate string // YYYY-MM-DD or empty
}

// FeedConfig is a single channel feed to search.
type FeedConfig struct {
	URL  string
	Name string
}

// Finder searches channel feeds for talks matching a query.
type Finder struct {
	feeds      []FeedConfig
	matchFloor float64
}

// NewFinder creates a Finder over the configured feeds. matchFloor gates the
// fuzzy title match.
func NewFinder(feeds []FeedConfig, matchFloor float64) *Finder {
	return &Finder{feeds: feeds, matchFloor: matchFloor}
}

// Find returns talks whose titles match the query (company or presenter
// name), newest first per feed, limited to entries within daysBack.
func (f *Finder) Find(query string, daysBack int) []Talk {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	parser := gofeed.NewParser()

	var all []Talk
	for _, fc := range f.feeds {
		feed, err := parser.ParseURL(fc.URL)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}

		name := fc.Name
		if name == "" {
			name = feed.Title
		}

		matched := 0
		for _, item := range feed.Items {
			if matched >= maxPerFeed {
				break
			}
			talk := f.parseItem(item, name, query, cutoff)
			if talk != nil {
				all = append(all, *talk)
				matched++
			}
		}
		log.Printf("Found %d matching talks in %s", matched, name)
	}

	return all
}

func (f *Finder) parseItem(item *gofeed.Item, channel, query string, cutoff time.Time) *Talk {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return nil
	}

	if !identity.PhraseMatch(title, query, f.matchFloor) {
		return nil
	}

	videoID, err := transcript.ExtractVideoID(item.Link)
	if err != nil {
		return nil
	}

	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.Format("2006-01-02")
	}
	if published != "" {
		pub, err := time.Parse("2006-01-02", published)
		if err == nil && pub.Before(cutoff) {
			return nil
		}
	}

	return &Talk{
		VideoID:       videoID,
		Title:         title,
		URL:           item.Link,
		Channel:       channel,
		PublishedDate: published,
	}
}
