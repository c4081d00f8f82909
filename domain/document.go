package domain

import (
	"encoding/json"
	"strings"
)

// DocumentType is the kind of business document being generated.
type DocumentType string

const (
	DocInvoice    DocumentType = "INVOICE"
	DocQuotation  DocumentType = "QUOTATION"
	DocBill       DocumentType = "BILL"
	DocChallan    DocumentType = "CHALLAN"
	DocProInvoice DocumentType = "PRO_INVOICE"
)

var DocumentTypes = []DocumentType{DocInvoice, DocQuotation, DocBill, DocChallan, DocProInvoice}

func (t DocumentType) Valid() bool {
	for _, v := range DocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseDocumentType accepts any case and "-" in place of "_".
func ParseDocumentType(s string) (DocumentType, bool) {
	t := DocumentType(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	return t, t.Valid()
}

// LogoSettings are the logo placement defaults for one document type.
type LogoSettings struct {
	LogoURL      string   `json:"logoUrl,omitempty"`
	LogoSize     *float64 `json:"logoSize,omitempty"`
	LogoPosition *float64 `json:"logoPosition,omitempty"`
}

// UserPreferences is stored as one record; TypeSettings keys are document
// types.
type UserPreferences struct {
	TypeSettings map[DocumentType]LogoSettings `json:"typeSettings"`
}

func DefaultUserPreferences() UserPreferences {
	return UserPreferences{TypeSettings: map[DocumentType]LogoSettings{}}
}

func (p UserPreferences) Validate() error {
	for t := range p.TypeSettings {
		if !t.Valid() {
			return invalid("typeSettings", "unknown document type %q", t)
		}
	}
	return nil
}

// Document is a generated business document. The fields brandkit reads are
// typed; everything else the generator stores survives in Extra.
type Document struct {
	ID            string       `json:"id"`
	Type          DocumentType `json:"type"`
	DocNumber     string       `json:"docNumber"`
	Date          string       `json:"date"`
	LogoURL       string       `json:"logoUrl,omitempty"`
	LogoSize      *float64     `json:"logoSize,omitempty"`
	LogoPosition  *float64     `json:"logoPosition,omitempty"`
	ClientName    string       `json:"clientName"`
	ClientAddress string       `json:"clientAddress"`
	VehiclePrice  float64      `json:"vehiclePrice"`
	Quantity      float64      `json:"quantity"`
	TaxRate       float64      `json:"taxRate"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     int64        `json:"createdAt"`
	UpdatedAt     int64        `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var documentKeys = []string{
	"id", "type", "docNumber", "date", "logoUrl", "logoSize", "logoPosition",
	"clientName", "clientAddress", "vehiclePrice", "quantity", "taxRate",
	"notes", "createdAt", "updatedAt",
}

type documentAlias Document

// MarshalJSON flattens Extra next to the typed fields.
func (d Document) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(documentAlias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return typed, nil
	}
	merged := make(map[string]json.RawMessage, len(d.Extra)+len(documentKeys))
	for k, v := range d.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(typed, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON keeps unknown keys in Extra.
func (d *Document) UnmarshalJSON(b []byte) error {
	var alias documentAlias
	if err := json.Unmarshal(b, &alias); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range documentKeys {
		delete(all, k)
	}
	*d = Document(alias)
	if len(all) > 0 {
		d.Extra = all
	}
	return nil
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return invalid("id", "is required")
	}
	if !d.Type.Valid() {
		return invalid("type", "unknown document type %q", d.Type)
	}
	return nil
}

// ApplyLogo fills the logo fields that d leaves unset from s.
func (d *Document) ApplyLogo(s LogoSettings) {
	if d.LogoURL == "" {
		d.LogoURL = s.LogoURL
	}
	if d.LogoSize == nil && s.LogoSize != nil {
		d.LogoSize = Num(*s.LogoSize)
	}
	if d.LogoPosition == nil && s.LogoPosition != nil {
		d.LogoPosition = Num(*s.LogoPosition)
	}
}
