package gemini

import (
	"fmt"

	"github.com/jimli1231/eletron-vrm/core/llms"
	"google.golang.org/genai"
)

const responseMIMETypeJSON = "application/json"

type requestBody struct {
	Contents          []*genai.Content `json:"contents"`
	SystemInstruction *genai.Content   `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
	Temperature      *float32 `json:"temperature,omitempty"`
}

func toContents(turns []llms.Turn) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role
		switch turn.Role {
		case llms.RoleUser:
			role = genai.RoleUser
		case llms.RoleModel:
			role = genai.RoleModel
		default:
			return nil, fmt.Errorf("unsupported turn role %q", turn.Role)
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents, nil
}

func newRequestBody(request llms.Request, temperature *float32) (*requestBody, error) {
	contents, err := toContents(request.Turns)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("no contents")
	}

	body := &requestBody{
		Contents:         contents,
		GenerationConfig: generationConfig{Temperature: temperature},
	}
	if request.SystemInstruction != "" {
		body.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(request.SystemInstruction)},
		}
	}
	if request.ResponseFormat == llms.ResponseFormatJSON {
		body.GenerationConfig.ResponseMIMEType = responseMIMETypeJSON
	}
	return body, nil
}
