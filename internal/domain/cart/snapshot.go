package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// CurrentSchemaVersion is the snapshot layout written by EncodeSnapshot
const CurrentSchemaVersion = 1

// Snapshot decoding errors
var (
	ErrMalformedSnapshot = errors.New("malformed cart snapshot")
	ErrUnsupportedSchema = errors.New("unsupported cart snapshot schema version")
)

// Snapshot is the persisted form of a cart. The drawer flag is never part of it.
type Snapshot struct {
	SchemaVersion int
	Revision      int64
	SavedAt       time.Time
	Items         []LineItem
	Legacy        bool // decoded from the unversioned array layout
}

type snapshotDocument struct {
	SchemaVersion int              `json:"schema_version"`
	Revision      int64            `json:"revision"`
	SavedAt       time.Time        `json:"saved_at"`
	Items         []snapshotRecord `json:"items"`
}

type snapshotRecord struct {
	ProductID  string          `json:"product_id"`
	VariantKey string          `json:"variant_key"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Name       string          `json:"name,omitempty"`
	ImageURL   string          `json:"image_url,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Brand      string          `json:"brand,omitempty"`
}

// EncodeSnapshot serializes the items with the given revision, stamped
// with savedAt in UTC
func EncodeSnapshot(items []LineItem, revision int64, savedAt time.Time) ([]byte, error) {
	doc := snapshotDocument{
		SchemaVersion: CurrentSchemaVersion,
		Revision:      revision,
		SavedAt:       savedAt.UTC(),
		Items:         make([]snapshotRecord, 0, len(items)),
	}
	for _, item := range items {
		doc.Items = append(doc.Items, snapshotRecord{
			ProductID:  item.ProductID,
			VariantKey: item.VariantKey,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Name:       item.Display.Name,
			ImageURL:   item.Display.ImageURL,
			Unit:       item.Display.Unit,
			Brand:      item.Display.Brand,
		})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a persisted cart. Both the versioned document and
// the legacy bare array are accepted; the latter is upgraded in memory.
// Items are returned as stored; Restore enforces the cart invariants.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, ErrMalformedSnapshot
	}
	switch trimmed[0] {
	case '{':
		return decodeDocument(trimmed)
	case '[':
		return decodeLegacy(trimmed)
	default:
		return Snapshot{}, ErrMalformedSnapshot
	}
}

func decodeDocument(data []byte) (Snapshot, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.SchemaVersion < 1 {
		return Snapshot{}, fmt.Errorf("%w: missing schema_version", ErrMalformedSnapshot)
	}
	if doc.SchemaVersion > CurrentSchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, doc.SchemaVersion)
	}

	items := make([]LineItem, 0, len(doc.Items))
	for _, r := range doc.Items {
		items = append(items, LineItem{
			ProductID:  r.ProductID,
			VariantKey: r.VariantKey,
			UnitPrice:  r.UnitPrice,
			Quantity:   r.Quantity,
			Display: Display{
				Name:     r.Name,
				ImageURL: r.ImageURL,
				Unit:     r.Unit,
				Brand:    r.Brand,
			},
		})
	}
	return Snapshot{
		SchemaVersion: doc.SchemaVersion,
		Revision:      doc.Revision,
		SavedAt:       doc.SavedAt,
		Items:         items,
	}, nil
}

// legacyRecord mirrors the storefront's original browser storage entries
type legacyRecord struct {
	ID            json.RawMessage   `json:"id"`
	SelectedSize  *string           `json:"selectedSize"`
	Price         decimal.Decimal   `json:"price"`
	Quantity      *json.Number      `json:"quantity"`
	Name          string            `json:"name"`
	Image         string            `json:"image"`
	Images        []json.RawMessage `json:"images"`
	Unit          string            `json:"unit"`
	Weight        string            `json:"weight"`
	SelectedBrand string            `json:"selectedBrand"`
}

func decodeLegacy(data []byte) (Snapshot, error) {
	var records []legacyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	items := make([]LineItem, 0, len(records))
	for _, r := range records {
		quantity := 1
		if r.Quantity != nil {
			f, err := r.Quantity.Float64()
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: quantity %q", ErrMalformedSnapshot, r.Quantity.String())
			}
			// clamp in float space; out-of-range float to int conversion is implementation-defined
			f = math.Max(math.Min(math.Floor(f), MaxQuantity), 0)
			quantity = int(f)
		}
		variant := ""
		if r.SelectedSize != nil {
			variant = *r.SelectedSize
		}
		unit := r.Weight
		if unit == "" {
			unit = r.Unit
		}
		image := r.Image
		if first := legacyImage(r.Images); first != "" {
			image = first
		}
		items = append(items, LineItem{
			ProductID:  legacyID(r.ID),
			VariantKey: variant,
			UnitPrice:  r.Price,
			Quantity:   quantity,
			Display: Display{
				Name:     r.Name,
				ImageURL: image,
				Unit:     unit,
				Brand:    r.SelectedBrand,
			},
		})
	}
	return Snapshot{
		SchemaVersion: CurrentSchemaVersion,
		Items:         items,
		Legacy:        true,
	}, nil
}

// legacyID accepts both string and numeric ids
func legacyID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// legacyImage returns the first image entry, which is either an object
// with a url field or a plain string
func legacyImage(images []json.RawMessage) string {
	if len(images) == 0 {
		return ""
	}
	var withURL struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(images[0], &withURL); err == nil && withURL.URL != "" {
		return withURL.URL
	}
	var s string
	if err := json.Unmarshal(images[0], &s); err == nil {
		return s
	}
	return ""
}
