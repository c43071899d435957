package token_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/port"
	"plansift/internal/token"
	"plansift/mocks"
)

const bboxXHTML = `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<body>
<doc>
<page width="850.0" height="1100.0">
<word xMin="50.0" yMin="50.0" xMax="100.0" yMax="60.0">CLASSE</word>
<word xMin="50.0" yMin="65.0" xMax="70.0" yMax="75.0">203</word>
<word xMin="200.0" yMin="50.0" xMax="200.0" yMax="60.0"> </word>
</page>
</doc>
</body>
</html>`

func testPage() domain.PageRef {
	return domain.PageRef{PDFID: "plan-a", PageID: "page-1", Number: 1, WidthPX: 1700, HeightPX: 2200}
}

func vectorConfig() token.VectorProviderConfig {
	return token.VectorProviderConfig{
		Pdftotext:      "pdftotext",
		TargetWidthPX:  1700,
		TargetHeightPX: 2200,
	}
}

func TestVectorProvider_Tokens_ScalesToRaster(t *testing.T) {
	source := new(mocks.MockPageSource)
	runner := new(mocks.MockRunner)
	page := testPage()

	source.On("ReadPDF", mock.Anything, page).Return([]byte("%PDF"), nil)
	source.On("Geometry", mock.Anything, page).Return(&port.PDFGeometry{WidthPT: 850, HeightPT: 1100}, nil)
	runner.On("Run", mock.Anything, "pdftotext", mock.Anything).Return([]byte(bboxXHTML), nil)

	p := token.NewVectorProvider(source, runner, vectorConfig(), zap.NewNop())
	tokens, err := p.Tokens(context.Background(), page)
	require.NoError(t, err)

	// The whitespace-only word is dropped.
	require.Len(t, tokens, 2)

	// 850pt -> 1700px and 1100pt -> 2200px both scale by 2.
	assert.Equal(t, "CLASSE", tokens[0].Text)
	assert.Equal(t, domain.NewBBox(100, 100, 100, 20), tokens[0].BBox)
	assert.Equal(t, 1.0, tokens[0].Confidence)
	assert.Equal(t, domain.SourceVector, tokens[0].Source)

	assert.Equal(t, "203", tokens[1].Text)
	assert.Equal(t, domain.NewBBox(100, 130, 40, 20), tokens[1].BBox)

	source.AssertExpectations(t)
	runner.AssertExpectations(t)
}

func TestVectorProvider_Tokens_MissingPDFIsUnavailable(t *testing.T) {
	source := new(mocks.MockPageSource)
	page := testPage()

	source.On("ReadPDF", mock.Anything, page).Return(nil, errors.New("no such key"))

	p := token.NewVectorProvider(source, new(mocks.MockRunner), vectorConfig(), zap.NewNop())
	_, err := p.Tokens(context.Background(), page)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestVectorProvider_Tokens_DegenerateGeometry(t *testing.T) {
	source := new(mocks.MockPageSource)
	page := testPage()

	source.On("ReadPDF", mock.Anything, page).Return([]byte("%PDF"), nil)
	source.On("Geometry", mock.Anything, page).Return(&port.PDFGeometry{WidthPT: 0, HeightPT: 1100}, nil)

	p := token.NewVectorProvider(source, new(mocks.MockRunner), vectorConfig(), zap.NewNop())
	_, err := p.Tokens(context.Background(), page)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestVectorProvider_Tokens_PdftotextFailureIsUnavailable(t *testing.T) {
	source := new(mocks.MockPageSource)
	runner := new(mocks.MockRunner)
	page := testPage()

	source.On("ReadPDF", mock.Anything, page).Return([]byte("%PDF"), nil)
	source.On("Geometry", mock.Anything, page).Return(&port.PDFGeometry{WidthPT: 850, HeightPT: 1100}, nil)
	runner.On("Run", mock.Anything, "pdftotext", mock.Anything).Return(nil, errors.New("exit status 1"))

	p := token.NewVectorProvider(source, runner, vectorConfig(), zap.NewNop())
	_, err := p.Tokens(context.Background(), page)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestVectorProvider_Tokens_EmptyDocument(t *testing.T) {
	source := new(mocks.MockPageSource)
	runner := new(mocks.MockRunner)
	page := testPage()

	source.On("ReadPDF", mock.Anything, page).Return([]byte("%PDF"), nil)
	source.On("Geometry", mock.Anything, page).Return(&port.PDFGeometry{WidthPT: 850, HeightPT: 1100}, nil)
	runner.On("Run", mock.Anything, "pdftotext", mock.Anything).
		Return([]byte(`<html xmlns="http://www.w3.org/1999/xhtml"><body><doc></doc></body></html>`), nil)

	p := token.NewVectorProvider(source, runner, vectorConfig(), zap.NewNop())
	tokens, err := p.Tokens(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
