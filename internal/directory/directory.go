// Package directory loads the membership directory of known organizations
// and keeps a local SQLite-backed snapshot so a run never depends on the
// network being up twice.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"talkdoc/internal/database"
	"talkdoc/internal/identity"
)

// member is the wire shape of one directory entry. Feeds differ on whether
// the list is bare or wrapped in a "members" key; both are accepted.
type member struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	EndUser bool     `json:"end_user"`
}

// Client fetches and caches the membership directory.
type Client struct {
	url       string
	localPath string
	ttl       time.Duration
	db        *database.DB
	client    *http.Client

	// endUserOnly restricts the directory to end-user members, which are
	// the organizations talks are usually about.
	endUserOnly bool
}

// New creates a directory client. With localPath set the network and the
// cache are bypassed entirely.
func New(url, localPath string, ttlHours int, endUserOnly bool, db *database.DB) *Client {
	return &Client{
		url:         url,
		localPath:   localPath,
		ttl:         time.Duration(ttlHours) * time.Hour,
		db:          db,
		client:      &http.Client{Timeout: 30 * time.Second},
		endUserOnly: endUserOnly,
	}
}

// Load returns the directory records, from the local file, the fresh cache,
// or the network, in that order of preference.
func (c *Client) Load(ctx context.Context) ([]identity.EntityRecord, error) {
	if c.localPath != "" {
		data, err := os.ReadFile(c.localPath)
		if err != nil {
			return nil, fmt.Errorf("reading local directory: %w", err)
		}
		return c.parse(data)
	}

	if c.db != nil {
		fetchedAt, err := c.db.DirectoryFetchedAt()
		if err != nil {
			return nil, err
		}
		if !fetchedAt.IsZero() && time.Since(fetchedAt) < c.ttl {
			cached, err := c.db.GetDirectoryEntities()
			if err != nil {
				return nil, err
			}
			log.Printf("Using cached directory (%d entities, fetched %s)",
				len(cached), fetchedAt.Format(time.RFC3339))
			return fromCache(cached), nil
		}
	}

	records, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if c.db != nil {
		if err := c.db.ReplaceDirectoryEntities(toCache(records)); err != nil {
			// A cache write failure should not fail the run.
			log.Printf("Warning: caching directory failed: %v", err)
		}
	}

	return records, nil
}

func (c *Client) fetch(ctx context.Context) ([]identity.EntityRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building directory request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading directory response: %w", err)
	}

	records, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	log.Printf("Fetched %d directory entities from %s", len(records), c.url)
	return records, nil
}

// parse accepts either a bare JSON array of members or an object wrapping it
// under "members".
func (c *Client) parse(data []byte) ([]identity.EntityRecord, error) {
	var members []member
	if err := json.Unmarshal(data, &members); err != nil {
		var wrapped struct {
			Members []member `json:"members"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing directory: %w", err)
		}
		members = wrapped.Members
	}

	var records []identity.EntityRecord
	for _, m := range members {
		if m.Name == "" {
			continue
		}
		if c.endUserOnly && !m.EndUser {
			continue
		}
		records = append(records, identity.EntityRecord{Name: m.Name, Aliases: m.Aliases})
	}
	return records, nil
}

func toCache(records []identity.EntityRecord) []database.CachedEntity {
	entities := make([]database.CachedEntity, 0, len(records))
	for _, r := range records {
		entities = append(entities, database.CachedEntity{Name: r.Name, Aliases: r.Aliases})
	}
	return entities
}

func fromCache(entities []database.CachedEntity) []identity.EntityRecord {
	records := make([]identity.EntityRecord, 0, len(entities))
	for _, e := range entities {
		records = append(records, identity.EntityRecord{Name: e.Name, Aliases: e.Aliases})
	}
	return records
}
