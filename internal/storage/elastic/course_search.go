package elastic

import (
	"Learnify/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseSearchRepo struct {
	client *elasticsearch.Client
	index  string
}

func NewCourseSearchRepository(client *elasticsearch.Client, index string) *CourseSearchRepo {
	return &CourseSearchRepo{client: client, index: index}
}

func (r *CourseSearchRepo) CreateIndexIfNotExist(ctx context.Context) error {
	existsReq := esapi.IndicesExistsRequest{Index: []string{r.index}}
	existsRes, err := existsReq.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error checking index existence: %w", err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == 404 {
		body, err := json.Marshal(indexMapping())
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}
		req := esapi.IndicesCreateRequest{Index: r.index, Body: bytes.NewReader(body)}
		res, err := req.Do(ctx, r.client)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("mapping creation failed: %s", res.String())
		}
		return nil
	}

	if existsRes.StatusCode >= 300 {
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	}
	return nil
}

func indexMapping() map[string]any {
	text := map[string]any{
		"type":            "text",
		"analyzer":        "edge_ngram_analyzer",
		"search_analyzer": "standard",
	}
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"edge_ngram_analyzer": map[string]any{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]any{
					"edge_ngram_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title":             text,
				"short_description": text,
				"description":       text,
				"category":          map[string]any{"type": "keyword"},
				"level":             map[string]any{"type": "keyword"},
				"tags":              map[string]any{"type": "keyword"},
				"created_at":        map[string]any{"type": "date"},
			},
		},
	}
}

func (r *CourseSearchRepo) Index(ctx context.Context, course models.Course) error {
	doc := map[string]any{
		"title":             course.Title,
		"short_description": course.ShortDescription,
		"description":       course.Description,
		"category":          course.Category,
		"level":             course.Level,
		"tags":              course.Tags,
		"created_at":        course.CreatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: course.ID.Hex(),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// Delete removes a course from the index. A missing document is not an error.
func (r *CourseSearchRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	req := esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: id.Hex(),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Search returns matching course ids ranked by relevance, and the total
// number of matches.
func (r *CourseSearchRepo) Search(ctx context.Context, q models.CourseFilter, query string) ([]primitive.ObjectID, int, error) {
	size := q.Limit
	if size <= 0 {
		size = 10
	}
	body := map[string]any{
		"query":            searchQuery(q, query),
		"from":             q.Offset,
		"size":             size,
		"track_total_hits": true,
		"_source":          false,
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("encode search body: %w", err)
	}
	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search error: %s", string(bodyBytes))
	}

	var esRes struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		if id, err := primitive.ObjectIDFromHex(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, esRes.Hits.Total.Value, nil
}

func searchQuery(f models.CourseFilter, query string) map[string]any {
	filters := []map[string]any{}
	if f.Category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category": f.Category}})
	}
	if f.Level != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"level": f.Level}})
	}
	if f.Tag != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"tags": f.Tag}})
	}
	return map[string]any{
		"bool": map[string]any{
			"must": map[string]any{
				"multi_match": map[string]any{
					"query":                query,
					"fields":               []string{"title^3", "short_description^2", "description", "tags"},
					"type":                 "best_fields",
					"fuzziness":            "AUTO",
					"operator":             "or",
					"minimum_should_match": "2<75%",
				},
			},
			"filter": filters,
		},
	}
}
