package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"omcis-store/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products. Every category
// a product names is created on the way when missing.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	logger     logrus.FieldLogger
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, logger logrus.FieldLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

// Result summarizes one run.
type Result struct {
	Products   int
	Categories int
}

// Run parses CSV rows and upserts one product per row. Rows keep their id when it
// is a valid UUID, so re-importing the same file updates in place.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return res, fmt.Errorf("missing %q column", required)
		}
	}

	seen := make(map[string]bool)
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", line, err)
		}

		if p.Category != "" && !seen[p.Category] && i.categories != nil {
			seen[p.Category] = true
			created, err := i.ensureCategory(ctx, p.Category)
			if err != nil {
				return res, fmt.Errorf("row %d: category %q: %w", line, p.Category, err)
			}
			if created {
				res.Categories++
			}
		}

		if _, err := i.products.Upsert(ctx, p); err != nil {
			return res, fmt.Errorf("row %d: upsert product %q: %w", line, p.Name, err)
		}
		res.Products++
	}

	i.logger.WithFields(logrus.Fields{"products": res.Products, "categories": res.Categories}).Info("import finished")
	return res, nil
}

func (i *CSVImporter) ensureCategory(ctx context.Context, name string) (bool, error) {
	_, err := i.categories.Create(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return false, nil
	default:
		return false, err
	}
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:       pick(record, index, "id"),
		Name:     pick(record, index, "name"),
		Category: pick(record, index, "category"),
		Image:    pick(record, index, "image"),
		Active:   true,
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return p, fmt.Errorf("invalid id %q", p.ID)
		}
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return p, fmt.Errorf("invalid price for %q", p.Name)
	}
	p.Price = price

	if raw := pick(record, index, "cost"); raw != "" {
		if p.Cost, err = decimal.NewFromString(raw); err != nil {
			return p, fmt.Errorf("invalid cost for %q", p.Name)
		}
	}
	if p.StockQuantity, err = intField(record, index, "stock"); err != nil {
		return p, fmt.Errorf("invalid stock for %q", p.Name)
	}
	if p.MinStock, err = intField(record, index, "min_stock"); err != nil {
		return p, fmt.Errorf("invalid min_stock for %q", p.Name)
	}

	switch strings.ToLower(pick(record, index, "status")) {
	case "", "true", "active", "ativo", "1":
	case "false", "inactive", "inativo", "0":
		p.Active = false
	default:
		return p, fmt.Errorf("invalid status for %q", p.Name)
	}

	for _, size := range strings.Split(pick(record, index, "sizes"), "|") {
		if size = strings.TrimSpace(size); size != "" {
			p.Sizes = append(p.Sizes, size)
		}
	}
	return p, nil
}

func intField(record []string, index map[string]int, key string) (int, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
