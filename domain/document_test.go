package domain

import (
	"encoding/json"
	"testing"
)

func TestDocumentPreservesUnknownFields(t *testing.T) {
	raw := `{"id":"d1","type":"INVOICE","docNumber":"INV-1","date":"2024-01-01","clientName":"Rahim","clientAddress":"Pabna","vehiclePrice":1200000,"quantity":1,"taxRate":0,"createdAt":1000,"chassisNumber":"CH-9","payments":[{"id":"p1","amount":5}]}`
	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d.ClientName != "Rahim" || d.VehiclePrice != 1200000 {
		t.Errorf("typed fields not decoded: %+v", d)
	}
	if len(d.Extra) != 2 {
		t.Fatalf("Extra = %v, want chassisNumber and payments", d.Extra)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back["chassisNumber"] != "CH-9" {
		t.Errorf("chassisNumber lost: %v", back)
	}
	if back["docNumber"] != "INV-1" {
		t.Errorf("docNumber lost: %v", back)
	}
}

func TestDocumentApplyLogo(t *testing.T) {
	d := Document{LogoSize: Num(40)}
	d.ApplyLogo(LogoSettings{LogoURL: "data:image/png;base64,AA==", LogoSize: Num(80), LogoPosition: Num(5)})
	if d.LogoURL == "" {
		t.Error("LogoURL should be filled")
	}
	if *d.LogoSize != 40 {
		t.Errorf("LogoSize = %v, want document value 40 kept", *d.LogoSize)
	}
	if d.LogoPosition == nil || *d.LogoPosition != 5 {
		t.Errorf("LogoPosition = %v, want 5", d.LogoPosition)
	}
}

func TestParseDocumentType(t *testing.T) {
	if got, ok := ParseDocumentType("pro-invoice"); !ok || got != DocProInvoice {
		t.Errorf("ParseDocumentType = %q, %v", got, ok)
	}
	if _, ok := ParseDocumentType("receipt"); ok {
		t.Error("receipt should be rejected")
	}
}

func TestDataURLMime(t *testing.T) {
	u := EncodeDataURL("image/png", []byte{0x89, 'P', 'N', 'G'})
	if got := DataURLMime(u); got != "image/png" {
		t.Errorf("DataURLMime = %q", got)
	}
	if got := DataURLMime("https://cdn.example.com/logo.png"); got != "" {
		t.Errorf("DataURLMime(plain) = %q, want empty", got)
	}
}
