package analysis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workwise/internal/analysis"
	"workwise/internal/domain"
	"workwise/internal/port"
	"workwise/mocks"
)

const validModelOutput = `{"verdict":"compliant","findings":[{"rule":"title_page","status":"pass","detail":"титульный лист оформлен верно"}],"recommendations":[]}`

func modelResponse(raw string) *port.ModelResponse {
	return &port.ModelResponse{Raw: raw, Model: "qwen3-vl:4b-instruct", Latency: 1200 * time.Millisecond}
}

func newAnalyzer(gw port.ModelGateway) *analysis.Analyzer {
	return analysis.NewAnalyzer(gw, analysis.DefaultOptions())
}

func textDocument(text string) analysis.Document {
	return analysis.Document{ID: "doc-1", Text: text, FileType: domain.FileTypePDF}
}

func mixedDocument(text string) analysis.Document {
	doc := textDocument(text)
	doc.Images = []string{"aW1hZ2Ux", "aW1hZ2Uy"}
	return doc
}

func longText() string {
	return strings.Repeat("Документ содержит достаточно текста для анализа. ", 20)
}

func TestSelectMode_TextWhenSufficientText(t *testing.T) {
	a := newAnalyzer(new(mocks.MockModelGateway))

	mode, err := a.SelectMode(mixedDocument(longText()))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeText, mode)
}

func TestSelectMode_ImageWhenTextMissingOrShort(t *testing.T) {
	a := newAnalyzer(new(mocks.MockModelGateway))

	cases := map[string]analysis.Document{
		"empty text":      mixedDocument(""),
		"whitespace text": mixedDocument("   \n\t  "),
		"short text":      mixedDocument("Глава 1."),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			mode, err := a.SelectMode(doc)
			require.NoError(t, err)
			assert.Equal(t, domain.ModeImage, mode)
		})
	}
}

func TestSelectMode_ImageWhenDocumentScanned(t *testing.T) {
	a := newAnalyzer(new(mocks.MockModelGateway))

	doc := mixedDocument(longText())
	doc.Scanned = true

	mode, err := a.SelectMode(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeImage, mode)
}

func TestSelectMode_TextWhenNoImagesAvailable(t *testing.T) {
	// Short text with no images still goes down the text path: there is no
	// secondary source to degrade to.
	a := newAnalyzer(new(mocks.MockModelGateway))

	mode, err := a.SelectMode(textDocument("коротко"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeText, mode)
}

func TestSelectMode_EmptyDocument(t *testing.T) {
	a := newAnalyzer(new(mocks.MockModelGateway))

	_, err := a.SelectMode(analysis.Document{ID: "doc-1"})
	assert.ErrorIs(t, err, domain.ErrDocumentEmpty)
}

func TestAnalyze_TextMode_Success(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(modelResponse(validModelOutput), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.NoError(t, err)

	assert.Equal(t, domain.KindStructure, result.Kind)
	assert.Equal(t, domain.ModeText, result.Mode)
	assert.Equal(t, domain.VerdictCompliant, result.Verdict)
	assert.False(t, result.Partial)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "title_page", result.Findings[0].Rule)
	assert.Equal(t, "qwen3-vl:4b-instruct", result.Model)
	gw.AssertExpectations(t)
}

func TestAnalyze_PromptEmbedsDocumentText(t *testing.T) {
	text := longText()
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, text) && strings.Contains(prompt, "ГОСТ 7.32-2001")
	}), mock.Anything).Return(modelResponse(validModelOutput), nil).Once()

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(text), domain.KindStructure)
	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestAnalyze_ImageMode_PassesImagesInOrder(t *testing.T) {
	doc := mixedDocument("")
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("QueryWithImages", mock.Anything, mock.Anything, doc.Images, mock.Anything).
		Return(modelResponse(validModelOutput), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), doc, domain.KindBibliography)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeImage, result.Mode)
	gw.AssertExpectations(t)
}

func TestAnalyzeWithImages_ForcesImageMode(t *testing.T) {
	// Plenty of text available, but the caller demands visual analysis.
	doc := mixedDocument(longText())
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("QueryWithImages", mock.Anything, mock.Anything, doc.Images, mock.Anything).
		Return(modelResponse(validModelOutput), nil).Once()

	result, err := newAnalyzer(gw).AnalyzeWithImages(context.Background(), doc, domain.KindStructure)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeImage, result.Mode)
	gw.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeWithImages_NoImages(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)

	_, err := newAnalyzer(gw).AnalyzeWithImages(context.Background(), textDocument(longText()), domain.KindStructure)
	assert.ErrorIs(t, err, domain.ErrDocumentEmpty)
}

func TestAnalyze_NotConfigured_NoNetworkCall(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(false)

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)

	var cfgErr *analysis.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	gw.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "QueryWithImages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_TransportErrorRetriedOnce(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &analysis.TransportError{Err: assert.AnError}).Once()
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(modelResponse(validModelOutput), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictCompliant, result.Verdict)
	gw.AssertExpectations(t)
}

func TestAnalyze_TwoTransportErrorsEscalate(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &analysis.TransportError{Err: assert.AnError}).Twice()

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.Error(t, err)

	report := analysis.NewFailureReport(err)
	assert.Equal(t, analysis.KindTransportError, report.Kind)
	gw.AssertExpectations(t)
}

func TestAnalyze_TimeoutRetriedOnce(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &analysis.TimeoutError{Err: context.DeadlineExceeded}).Once()
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(modelResponse(validModelOutput), nil).Once()

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestAnalyze_UpstreamErrorNotRetried(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &analysis.UpstreamError{Status: 400, Body: "invalid model"}).Once()

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.Error(t, err)
	assert.Equal(t, analysis.KindUpstreamError, analysis.FailureKind(err))
	gw.AssertNumberOfCalls(t, "Query", 1)
}

func TestAnalyze_PayloadTooLargeNotRetried(t *testing.T) {
	doc := mixedDocument("")
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("QueryWithImages", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &analysis.PayloadTooLargeError{SizeBytes: 60 << 20, Limit: 50 << 20}).Once()

	_, err := newAnalyzer(gw).Analyze(context.Background(), doc, domain.KindStructure)
	require.Error(t, err)
	assert.Equal(t, analysis.KindPayloadTooLargeError, analysis.FailureKind(err))
	gw.AssertNumberOfCalls(t, "QueryWithImages", 1)
}

func TestAnalyze_MalformedResponseNotRetried(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(modelResponse("извините, не могу вернуть JSON"), nil).Once()

	_, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.Error(t, err)
	assert.Equal(t, analysis.KindMalformedResponseError, analysis.FailureKind(err))
	gw.AssertNumberOfCalls(t, "Query", 1)
}

func TestAnalyze_MissingFindingsDowngradesToPartial(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(modelResponse(`{"verdict":"non_compliant"}`), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindStructure)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.Equal(t, []string{"findings"}, result.Missing)
	assert.Equal(t, domain.VerdictNonCompliant, result.Verdict)
}

func TestAnalyze_MissingVerdictDowngradesToPartial(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(modelResponse(`{"findings":[{"rule":"references","status":"fail","detail":"нет списка литературы"}]}`), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), textDocument(longText()), domain.KindBibliography)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.Equal(t, []string{"verdict"}, result.Missing)
	assert.Equal(t, domain.VerdictPartiallyCompliant, result.Verdict)
	require.Len(t, result.Findings, 1)
}

func TestAnalyze_StructureVerdictFlagsMissingTableOfContents(t *testing.T) {
	doc := textDocument("Глава 1. Введение. " + longText())
	raw := `{"verdict":"non_compliant","findings":[` +
		`{"rule":"table_of_contents","status":"fail","detail":"раздел СОДЕРЖАНИЕ отсутствует, требуется по ГОСТ 7.32-2001"},` +
		`{"rule":"main_body","status":"pass","detail":"нумерация разделов присутствует"}]}`

	gw := new(mocks.MockModelGateway)
	gw.On("IsConfigured").Return(true)
	gw.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(modelResponse(raw), nil).Once()

	result, err := newAnalyzer(gw).Analyze(context.Background(), doc, domain.KindStructure)
	require.NoError(t, err)

	var tocFinding *domain.Finding
	for i := range result.Findings {
		if result.Findings[i].Rule == "table_of_contents" {
			tocFinding = &result.Findings[i]
		}
	}
	require.NotNil(t, tocFinding)
	assert.Equal(t, domain.FindingFail, tocFinding.Status)
	assert.Equal(t, domain.VerdictNonCompliant, result.Verdict)
}

func TestNewFailureReport_Kinds(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{&analysis.ConfigurationError{Missing: "endpoint URL"}, analysis.KindConfigurationError},
		{&analysis.TransportError{Err: assert.AnError}, analysis.KindTransportError},
		{&analysis.TimeoutError{Err: context.DeadlineExceeded}, analysis.KindTimeoutError},
		{&analysis.UpstreamError{Status: 500, Body: "boom"}, analysis.KindUpstreamError},
		{&analysis.PayloadTooLargeError{SizeBytes: 1, Limit: 0}, analysis.KindPayloadTooLargeError},
		{&analysis.MalformedResponseError{Raw: "x"}, analysis.KindMalformedResponseError},
		{assert.AnError, analysis.KindInternalError},
	}

	for _, tc := range cases {
		report := analysis.NewFailureReport(tc.err)
		assert.Equal(t, tc.kind, report.Kind)
		assert.NotEmpty(t, report.Cause)
	}
}
