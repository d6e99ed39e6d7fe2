package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Service is the per-entity capability over the catalog API: the read side
// feeds content resolvers, the write side feeds entity workflows. One generic
// implementation serves every entity type; only the collection path differs.
type Service[T any] struct {
	client *Client
	cache  *Cache
	entity string
	path   string
}

// NewService binds a catalog collection. entity tags the cache namespace and
// log events, path is the URL collection segment (e.g. "countries").
func NewService[T any](client *Client, cache *Cache, entity, path string) *Service[T] {
	return &Service[T]{client: client, cache: cache, entity: entity, path: path}
}

type mutationBody struct {
	TelegramID int64             `json:"telegram_id"`
	Fields     map[string]string `json:"fields"`
}

// List fetches one page of the collection. Pages are cached until the next
// mutation of this entity type.
func (s *Service[T]) List(ctx context.Context, page, limit int, filters map[string]string) (Page[T], error) {
	cacheKey := listCacheKey(page, limit, filters)
	if payload, ok := s.cache.Get(s.entity, cacheKey); ok {
		var cached Page[T]
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	var out Page[T]
	err := s.client.do(ctx, s.entity+".list", http.MethodGet, s.path, listQuery(page, limit, filters), nil, &out)
	if err != nil {
		return Page[T]{}, err
	}

	if payload, err := json.Marshal(out); err == nil {
		s.cache.Set(s.entity, cacheKey, payload)
	}
	return out, nil
}

// GetByID fetches a single entity.
func (s *Service[T]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := s.client.do(ctx, s.entity+".get", http.MethodGet, s.path+"/"+id, nil, nil, &out)
	return out, err
}

// Create adds a new entity on behalf of the given Telegram user.
func (s *Service[T]) Create(ctx context.Context, telegramID int64, fields map[string]string) (T, error) {
	var out T
	err := s.client.do(ctx, s.entity+".create", http.MethodPost, s.path, nil,
		mutationBody{TelegramID: telegramID, Fields: fields}, &out)
	if err != nil {
		return out, err
	}
	s.cache.Invalidate(s.entity)
	return out, nil
}

// Update applies a partial field update.
func (s *Service[T]) Update(ctx context.Context, id string, fields map[string]string, telegramID int64) (T, error) {
	var out T
	err := s.client.do(ctx, s.entity+".update", http.MethodPut, s.path+"/"+id, nil,
		mutationBody{TelegramID: telegramID, Fields: fields}, &out)
	if err != nil {
		return out, err
	}
	s.cache.Invalidate(s.entity)
	return out, nil
}

// Delete removes the entity. Deleting an already-removed entity surfaces the
// API's 404 as a *RemoteError wrapping ErrNotFound.
func (s *Service[T]) Delete(ctx context.Context, id string, telegramID int64) error {
	q := url.Values{}
	q.Set("telegram_id", strconv.FormatInt(telegramID, 10))

	if err := s.client.do(ctx, s.entity+".delete", http.MethodDelete, s.path+"/"+id, q, nil, nil); err != nil {
		return err
	}
	s.cache.Invalidate(s.entity)
	return nil
}

func listCacheKey(page, limit int, filters map[string]string) string {
	var b strings.Builder
	b.WriteString("p")
	b.WriteString(strconv.Itoa(page))
	b.WriteString(":l")
	b.WriteString(strconv.Itoa(limit))

	if len(filters) > 0 {
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(":")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(filters[k])
		}
	}
	return b.String()
}
