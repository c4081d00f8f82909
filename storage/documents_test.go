package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit/domain"
)

func TestDocumentsNewestFirst(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	ctx := context.Background()
	for _, d := range []domain.Document{
		{ID: "d1", Type: domain.DocInvoice, DocNumber: "INV-1", CreatedAt: 1000},
		{ID: "d3", Type: domain.DocBill, DocNumber: "BILL-1", CreatedAt: 3000},
		{ID: "d2", Type: domain.DocQuotation, DocNumber: "Q-1", CreatedAt: 2000},
	} {
		_, err := a.SaveDocument(ctx, d)
		require.NoError(t, err)
	}

	docs := a.LoadDocuments(ctx).Value
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"d3", "d2", "d1"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
	assert.EqualValues(t, 5000, docs[0].UpdatedAt)
}

func TestSaveDocumentStampsCreatedAt(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	docs, err := a.SaveDocument(context.Background(), domain.Document{ID: "d", Type: domain.DocChallan})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 5000, docs[0].CreatedAt)
}

func TestDeleteDocument(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	ctx := context.Background()
	_, err := a.SaveDocument(ctx, domain.Document{ID: "d", Type: domain.DocChallan})
	require.NoError(t, err)
	docs, err := a.DeleteDocument(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestApplyTypePreferences(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, a.SaveTypePreferences(ctx, domain.DocProInvoice, domain.LogoSettings{LogoURL: "data:,pro", LogoSize: domain.Num(72)}))

	d := domain.Document{ID: "d", Type: domain.DocProInvoice}
	a.ApplyTypePreferences(ctx, &d)
	assert.Equal(t, "data:,pro", d.LogoURL)
	require.NotNil(t, d.LogoSize)
	assert.EqualValues(t, 72, *d.LogoSize)

	other := domain.Document{ID: "e", Type: domain.DocBill}
	a.ApplyTypePreferences(ctx, &other)
	assert.Empty(t, other.LogoURL)
}
