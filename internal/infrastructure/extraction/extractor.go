// Package extraction turns supplier invoice text into draft purchase lines
// using an OpenAI structured-output call. The result is a suggestion for the
// operator to review, never a posted document.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"almacen/internal/core/apperror"
)

// CandidateLine is one invoice line as extracted, before any catalog match.
type CandidateLine struct {
	ProductName string  `json:"productName" jsonschema_description:"Product name as written on the invoice"`
	Flavor      string  `json:"flavor" jsonschema_description:"Flavor or variant, empty if absent"`
	Size        string  `json:"size" jsonschema_description:"Package size, empty if absent"`
	Quantity    int64   `json:"quantity" jsonschema_description:"Number of units"`
	UnitCost    string  `json:"unitCost" jsonschema_description:"Unit cost as a decimal string, e.g. \"12.50\""`
	Confidence  float64 `json:"confidence" jsonschema_description:"Extraction confidence from 0.0 to 1.0"`
}

// Result is the extracted invoice content.
type Result struct {
	SupplierName  string          `json:"supplierName" jsonschema_description:"Supplier name, empty if absent"`
	InvoiceNumber string          `json:"invoiceNumber" jsonschema_description:"Invoice number, empty if absent"`
	Lines         []CandidateLine `json:"lines" jsonschema_description:"Extracted invoice lines"`
}

// Extractor calls OpenAI to parse invoice text.
type Extractor struct {
	client *openai.Client
	model  shared.ResponsesModel
}

func NewExtractor(apiKey string) *Extractor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{client: &client, model: shared.ResponsesModel(shared.ChatModelGPT4o)}
}

// ExtractInvoice parses free-form invoice text into candidate purchase lines.
func (e *Extractor) ExtractInvoice(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		return nil, apperror.NewValidation("invoice text is required")
	}

	prompt := fmt.Sprintf(`You are a data entry assistant for a retail supplement store.
Extract the purchase lines from the supplier invoice text below.
Rules:
1. One line per distinct product variant (product, flavor, size).
2. Quantities are whole units.
3. Unit costs are decimal strings with two places (e.g. "12.50").
4. Leave fields you cannot determine empty, do not guess.
5. Provide a confidence score (0.0-1.0) per line.

Invoice text:
%s`, text)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: e.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "invoice_extraction",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Purchase lines extracted from a supplier invoice"),
				},
			},
		},
	}

	resp, err := e.client.Responses.New(ctx, params)
	if err != nil {
		return nil, apperror.NewExtraction(err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, apperror.NewExtraction(fmt.Errorf("empty response content"))
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, apperror.NewExtraction(fmt.Errorf("failed to parse completion: %w", err))
	}

	return &result, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Result
	return reflector.Reflect(v)
}
