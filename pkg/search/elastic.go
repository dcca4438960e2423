package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"
	"github.com/rs/zerolog/log"
)

// ProductDoc is the indexed shape of a product.
type ProductDoc struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Price       float64 `json:"price"`
}

const productMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "name":        {"type": "text"},
      "slug":        {"type": "keyword"},
      "category":    {"type": "text"},
      "subcategory": {"type": "text"},
      "price":       {"type": "double"}
    }
  }
}`

type ProductIndex struct {
	client *elastic.Client
	index  string
}

func NewProductIndex(url, index string) (*ProductIndex, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, err
	}
	return &ProductIndex{client: client, index: index}, nil
}

// EnsureIndex creates the index with its mapping when missing.
func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	exists, err := p.client.IndexExists(p.index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = p.client.CreateIndex(p.index).BodyString(productMapping).Do(ctx)
	return err
}

// IndexAll bulk-indexes docs, replacing documents with the same id.
func (p *ProductIndex) IndexAll(ctx context.Context, docs []ProductDoc) error {
	if len(docs) == 0 {
		return nil
	}
	bulk := p.client.Bulk().Index(p.index)
	for _, d := range docs {
		bulk.Add(elastic.NewBulkIndexRequest().Id(strconv.FormatUint(uint64(d.ID), 10)).Doc(d))
	}
	resp, err := bulk.Do(ctx)
	if err != nil {
		return err
	}
	if resp.Errors {
		failed := resp.Failed()
		return fmt.Errorf("bulk index: %d of %d documents failed", len(failed), len(docs))
	}
	log.Info().Int("count", len(docs)).Str("index", p.index).Msg("products indexed")
	return nil
}

// SearchIDs returns the ids of matching products (best match first) and the
// total hit count.
func (p *ProductIndex) SearchIDs(ctx context.Context, query string, offset, limit int) ([]uint, int64, error) {
	q := elastic.NewMultiMatchQuery(query, "name^3", "category", "subcategory").Fuzziness("AUTO")
	res, err := p.client.Search().
		Index(p.index).
		Query(q).
		From(offset).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc ProductDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, 0, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, res.TotalHits(), nil
}
