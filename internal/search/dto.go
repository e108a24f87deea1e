package search

import (
	"context"
	"fmt"
)

// Sort задает порядок выдачи провайдера
type Sort string

const (
	SortAccuracy Sort = "accuracy"
	SortRecency  Sort = "recency"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 50
)

// Params описывает один запрос к провайдеру. Создается заново на каждый запрос.
type Params struct {
	Query string
	Sort  Sort
	Page  int
	Size  int
}

// NewParams возвращает параметры первой страницы для ключевого слова
func NewParams(keyword string) Params {
	return Params{
		Query: keyword,
		Sort:  SortAccuracy,
		Page:  DefaultPage,
		Size:  DefaultSize,
	}
}

func (p Params) Validate() error {
	if p.Query == "" {
		return fmt.Errorf("query is required")
	}
	switch p.Sort {
	case SortAccuracy, SortRecency:
	default:
		return fmt.Errorf("unknown sort %q", p.Sort)
	}
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", p.Page)
	}
	if p.Size < 1 || p.Size > MaxSize {
		return fmt.Errorf("size must be in 1..%d, got %d", MaxSize, p.Size)
	}
	return nil
}

// Item один документ выдачи. Title и Contents содержат HTML провайдера.
type Item struct {
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
	BlogName  string `json:"blogname"`
	Contents  string `json:"contents"`
	URL       string `json:"url"`
	Datetime  string `json:"datetime,omitempty"`
}

type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Collection упорядоченная выдача по одному ключевому слову (порядок провайдера)
type Collection struct {
	Meta  Meta
	Items []Item
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Searcher выполняет один исходящий запрос поиска
type Searcher interface {
	Search(ctx context.Context, params Params) (*Collection, error)
}

// SearcherFunc адаптер для функций
type SearcherFunc func(ctx context.Context, params Params) (*Collection, error)

func (f SearcherFunc) Search(ctx context.Context, params Params) (*Collection, error) {
	return f(ctx, params)
}
