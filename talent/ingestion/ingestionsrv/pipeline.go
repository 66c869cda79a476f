package ingestionsrv

import (
	"context"
	"fmt"
	"strings"

	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// minPageTextLen is the extraction floor below which a page's OCR output
// is treated as unusable and dropped with a warning.
const minPageTextLen = 20

// Credentials holds the external service secrets the pipeline cannot run
// without.
type Credentials struct {
	ConversionAPIKey string
	ModelAPIKey      string
}

// Pipeline runs the full resume import sequence: normalize to page
// images, extract text per page, organize sections, synthesize the
// flexible document. Token usage is accumulated per run.
type Pipeline struct {
	creds       Credentials
	normalizer  *Normalizer
	extractor   ingestion.TextExtractor
	synthesizer ingestion.DocumentSynthesizer
}

func NewPipeline(
	creds Credentials,
	normalizer *Normalizer,
	extractor ingestion.TextExtractor,
	synthesizer ingestion.DocumentSynthesizer,
) *Pipeline {
	return &Pipeline{
		creds:       creds,
		normalizer:  normalizer,
		extractor:   extractor,
		synthesizer: synthesizer,
	}
}

// Run processes one uploaded document end to end
func (p *Pipeline) Run(ctx context.Context, doc ingestion.UploadedDocument) (*ingestion.PipelineResult, error) {
	if err := p.checkCredentials(doc); err != nil {
		return nil, err
	}

	ledger := &ingestion.TokenUsageLedger{}

	logx.Infof("Pipeline started: File=%s, MIMEType=%s, Size=%d", doc.FileName, doc.MIMEType, len(doc.Data))

	pages, err := p.normalizer.Normalize(ctx, doc)
	if err != nil {
		return nil, err
	}
	logx.Infof("Normalized document to %d page(s): File=%s", len(pages), doc.FileName)

	extracted, warnings, err := p.extractPages(ctx, pages, ledger)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logx.Warnf("Pipeline page warning: File=%s, %s", doc.FileName, w)
	}

	sections := ingestion.OrganizeSections(extracted)
	organizedChars := 0
	for _, sec := range sections {
		organizedChars += len(sec.Content())
	}

	draft := ingestion.BuildWorkingDraft(sections)
	logx.Debugf("Working draft assembled: File=%s, Sections=%d, DraftChars=%d", doc.FileName, len(sections), len(draft))

	synth, err := p.synthesizer.Synthesize(ctx, draft)
	if err != nil {
		return nil, err
	}
	ledger.Record(synth.Usage)

	result := &ingestion.PipelineResult{
		Document: synth.Document,
		Diagnostics: ingestion.Diagnostics{
			PageCount:      len(pages),
			ExtractedChars: len(extracted),
			OrganizedChars: organizedChars,
			DraftChars:     len(draft),
			SectionCount:   len(sections),
			PageWarnings:   warnings,
			TokenUsage:     *ledger,
			CostUSD:        ledger.CostUSD(),
			CostPHP:        ledger.CostPHP(),
		},
	}

	logx.Infof("Pipeline finished: File=%s, Pages=%d, Tokens=%d/%d, CostUSD=%.4f",
		doc.FileName, len(pages), ledger.InputTokens, ledger.OutputTokens, ledger.CostUSD())

	return result, nil
}

// checkCredentials fails fast before any page work is spent. The
// conversion key is only required when the upload actually needs the
// conversion service.
func (p *Pipeline) checkCredentials(doc ingestion.UploadedDocument) error {
	if p.creds.ModelAPIKey == "" {
		return ingestion.ErrMissingCredentials().
			WithDetail("missing", "model_api_key")
	}

	format, ok := ingestion.DetectFormat(doc.MIMEType, doc.FileName)
	needsConversion := ok && !format.IsRaster() &&
		!(format == ingestion.FormatPDF && p.normalizer.renderPDFLocally)
	if needsConversion && p.creds.ConversionAPIKey == "" {
		return ingestion.ErrMissingCredentials().
			WithDetail("missing", "conversion_api_key")
	}
	return nil
}

// extractPages OCRs every page, tolerating individual page failures.
// Pages whose extraction errors out or yields fewer than minPageTextLen
// characters are skipped with a warning; the run only fails when no page
// yields usable text. Usage from every successful call is recorded, even
// for pages later dropped as too short.
func (p *Pipeline) extractPages(ctx context.Context, pages []ingestion.PageImage, ledger *ingestion.TokenUsageLedger) (string, []string, error) {
	var texts []string
	var warnings []string

	for i := range pages {
		page := &pages[i]

		res, err := p.extractor.ExtractText(ctx, page.Data)
		page.Release()
		if err != nil {
			if ctx.Err() != nil {
				return "", warnings, err
			}
			warnings = append(warnings, fmt.Sprintf("page %d: extraction failed: %v", page.Index+1, err))
			continue
		}

		ledger.Record(res.Usage)

		if len(strings.TrimSpace(res.Text)) < minPageTextLen {
			warnings = append(warnings, fmt.Sprintf("page %d: extracted text too short (%d chars), skipped", page.Index+1, len(strings.TrimSpace(res.Text))))
			continue
		}

		texts = append(texts, res.Text)
	}

	if len(texts) == 0 {
		return "", warnings, ingestion.ErrOCRExhausted().
			WithDetail("page_count", len(pages)).
			WithDetail("warnings", warnings)
	}

	return strings.Join(texts, "\n\n"), warnings, nil
}
