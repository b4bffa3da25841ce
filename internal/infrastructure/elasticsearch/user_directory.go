package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
)

// UserDirectory indexes users by username so people can find each other.
// Emails and hashes never leave the primary store.
type UserDirectory struct {
	client *es.Client
	index  string
}

func NewUserDirectory(client *es.Client, index string) *UserDirectory {
	return &UserDirectory{client: client, index: index}
}

type userDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func (d *UserDirectory) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(userDoc{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt.Format(time.RFC3339Nano)})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, d.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user: %s", res.Status())
	}
	return nil
}

// searchBody matches whole words and prefixes of the username.
func searchBody(q string, size int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"username", "username._2gram", "username._3gram"},
			},
		},
		"size": size,
	})
}

func (d *UserDirectory) Search(ctx context.Context, q string, size int) ([]entity.UserRef, error) {
	body, err := searchBody(q, size)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := d.client.Search(
		d.client.Search.WithContext(c),
		d.client.Search.WithIndex(d.index),
		d.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]entity.UserRef, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.UserRef, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.UserRef{ID: h.Source.ID, Username: h.Source.Username})
	}
	return out, nil
}

// EnsureIndex creates the users index with a search_as_you_type username
// when it does not exist yet.
func (d *UserDirectory) EnsureIndex(ctx context.Context) error {
	exists, err := d.client.Indices.Exists([]string{d.index}, d.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	mapping := `{"mappings":{"properties":{"id":{"type":"keyword"},"username":{"type":"search_as_you_type"},"created_at":{"type":"date"}}}}`
	res, err := d.client.Indices.Create(d.index,
		d.client.Indices.Create.WithContext(ctx),
		d.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", d.index, res.Status())
	}
	return nil
}
