package server

import "github.com/ironsheep/image-convert/pkg/convert"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Conversion targets accepted by image_convert.
var convertTargets = []string{"bytes", "base64", "base64_text", "byte_stream", "file", "image", "array", "cv"}

// Output formats accepted by image_convert.
var encodeFormats = []string{"png", "jpeg", "gif", "bmp", "tiff"}

func kindNames() []string {
	names := []string{convert.KindAuto.String()}
	for _, k := range convert.Kinds() {
		names = append(names, k.String())
	}
	return names
}

func valueProperties() map[string]interface{} {
	return map[string]interface{}{
		"value": map[string]interface{}{
			"type":        "string",
			"description": "Image value: an http(s) URL, a file path, or base64 text",
		},
		"kind": map[string]interface{}{
			"type":        "string",
			"enum":        kindNames(),
			"description": "Kind of the value. Default auto (detected)",
			"default":     "auto",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	convertProps := valueProperties()
	convertProps["to"] = map[string]interface{}{
		"type":        "string",
		"enum":        convertTargets,
		"description": "Target representation",
	}
	convertProps["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Output file path, required when to is file",
	}
	convertProps["format"] = map[string]interface{}{
		"type":        "string",
		"enum":        encodeFormats,
		"description": "Re-encode the image in this format for the bytes, base64 and file targets. When omitted, encoded inputs are returned unchanged and decoded images are encoded as png",
	}

	return []Tool{
		{
			Name:        "image_detect",
			Description: "Detect which kind of image value a string is: url, file, or base64_text.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": valueProperties(),
				"required":   []string{"value"},
			},
		},
		{
			Name:        "image_convert",
			Description: "Convert an image value to another representation. Binary results are returned base64-encoded; file results report the bytes written; image and array results report their shape.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": convertProps,
				"required":   []string{"value", "to"},
			},
		},
		{
			Name:        "image_info",
			Description: "Get the kind, dimensions, color mode, format and size of an image value.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": valueProperties(),
				"required":   []string{"value"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
