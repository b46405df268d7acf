package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/image-convert/internal/imaging"
	"github.com/ironsheep/image-convert/pkg/convert"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_detect", "image_convert").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_detect":
		return s.handleImageDetect(args)
	case "image_convert":
		return s.handleImageConvert(ctx, args)
	case "image_info":
		return s.handleImageInfo(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type valueArgs struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

// parse validates the common arguments and returns the value in the Go
// type its kind is carried by.
func (a valueArgs) parse() (any, convert.Kind, error) {
	if a.Value == "" {
		return nil, convert.KindAuto, errors.New("value is required")
	}
	kind, err := convert.ParseKind(a.Kind)
	if err != nil {
		return nil, kind, err
	}

	switch kind {
	case convert.KindBytes, convert.KindBase64:
		return []byte(a.Value), kind, nil
	case convert.KindByteStream:
		return bytes.NewReader([]byte(a.Value)), kind, nil
	}
	return a.Value, kind, nil
}

// === Detection Handlers ===

type detectResult struct {
	Kind convert.Kind `json:"kind"`
}

func (s *Server) handleImageDetect(args json.RawMessage) (interface{}, error) {
	var a valueArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	value, kind, err := a.parse()
	if err != nil {
		return nil, err
	}
	kind, err = convert.Resolve(value, kind)
	if err != nil {
		return nil, err
	}
	return &detectResult{Kind: kind}, nil
}

func (s *Server) handleImageInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a valueArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	value, kind, err := a.parse()
	if err != nil {
		return nil, err
	}
	return s.conv.Describe(ctx, value, kind)
}

// === Conversion Handlers ===

type imageConvertArgs struct {
	valueArgs
	To     string `json:"to"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

// convertResult is the image_convert response. Only the fields relevant to
// the target are set.
type convertResult struct {
	To           string `json:"to"`
	Data         string `json:"data,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	SizeBytes    int    `json:"size_bytes,omitempty"`
	Path         string `json:"path,omitempty"`
	BytesWritten int    `json:"bytes_written,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Shape        []int  `json:"shape,omitempty"`
	ChannelOrder string `json:"channel_order,omitempty"`
}

// handleImageConvert converts a value to the requested target. When format
// is given, encoded outputs (bytes, base64, file) are decoded and re-encoded
// in that format; otherwise encoded inputs pass through unchanged.
func (s *Server) handleImageConvert(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	value, kind, err := a.parse()
	if err != nil {
		return nil, err
	}

	conv := s.conv
	reencode := a.Format != ""
	var format imaging.Format
	if reencode {
		format, err = imaging.ParseFormat(a.Format)
		if err != nil {
			return nil, err
		}
	}
	encoded := func() ([]byte, error) {
		if reencode {
			return conv.Reencode(ctx, value, kind, format)
		}
		return conv.ToBytes(ctx, value, kind)
	}

	res := &convertResult{To: a.To}
	switch a.To {
	case "bytes", "byte_stream":
		data, err := encoded()
		if err != nil {
			return nil, err
		}
		res.Data = base64.StdEncoding.EncodeToString(data)
		res.MimeType = imaging.SniffMimeType(data)
		res.SizeBytes = len(data)

	case "base64", "base64_text":
		if reencode {
			data, err := encoded()
			if err != nil {
				return nil, err
			}
			res.Data = base64.StdEncoding.EncodeToString(data)
			res.MimeType = imaging.MimeType(format)
		} else {
			text, err := conv.ToBase64Text(ctx, value, kind)
			if err != nil {
				return nil, err
			}
			res.Data = text
		}
		res.SizeBytes = len(res.Data)

	case "file":
		if a.Path == "" {
			return nil, errors.New("path is required when to is file")
		}
		data, err := encoded()
		if err != nil {
			return nil, err
		}
		n, err := conv.ToFile(ctx, data, a.Path, convert.KindBytes)
		if err != nil {
			return nil, err
		}
		res.Path = a.Path
		res.MimeType = imaging.SniffMimeType(data)
		res.BytesWritten = n

	case "image":
		img, err := conv.ToImage(ctx, value, kind)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		res.Width, res.Height = b.Dx(), b.Dy()
		res.Mode = string(imaging.ModeOf(img))

	case "array", "cv":
		toTensor, order := conv.ToArray, "RGB"
		if a.To == "cv" {
			toTensor, order = conv.ToCVImage, "BGR"
		}
		t, err := toTensor(ctx, value, kind)
		if err != nil {
			return nil, err
		}
		res.Shape = []int(t.Shape())
		res.ChannelOrder = order

	case "":
		return nil, errors.New("to is required")
	default:
		return nil, errors.Errorf("unknown target %q", a.To)
	}

	return res, nil
}
