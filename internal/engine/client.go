package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client posts JSON commands to the engine endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for endpoint, or DefaultEndpoint when empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send issues one command. Only HTTP 200 with a JSON object body is a success.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	command := req.Command()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Command: command, Message: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Command: command, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("engine request failed", "command", command, "error", err)
		return nil, &Error{Kind: KindTransport, Command: command, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Command: command, Message: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:    KindProtocol,
			Command: command,
			Message: fmt.Sprintf("unexpected HTTP status %s: %s", resp.Status, truncate(string(data), 200)),
		}
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Kind: KindProtocol, Command: command, Message: "decode response", Err: err}
	}
	if out == nil {
		return nil, &Error{Kind: KindProtocol, Command: command, Message: "response is not a JSON object"}
	}
	return out, nil
}

// Call sends req and reports the outcome through exactly one of the continuations.
func (c *Client) Call(ctx context.Context, req Request, onSuccess func(Response), onFailure func(string)) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		if onFailure != nil {
			onFailure(err.Error())
		}
		return
	}
	if onSuccess != nil {
		onSuccess(resp)
	}
}

// Choice is one entry of the language, charset or type lists.
type Choice struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FileType is the detected format and encoding of a source file.
type FileType struct {
	File     string `json:"file"`
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
}

// FileType asks the engine to detect format and encoding.
func (c *Client) FileType(ctx context.Context, file string) (FileType, error) {
	resp, err := c.Send(ctx, NewRequest(CommandGetFileType, "file", file))
	if err != nil {
		return FileType{}, err
	}
	return FileType{
		File:     resp.String("file"),
		Type:     resp.String("type"),
		Encoding: resp.String("encoding"),
	}, nil
}

// TargetFile suggests the merge output path for an XLIFF file.
func (c *Client) TargetFile(ctx context.Context, xliff string) (string, error) {
	resp, err := c.Send(ctx, NewRequest(CommandGetTargetFile, "file", xliff))
	if err != nil {
		return "", err
	}
	if err := ResultError(CommandGetTargetFile, resp); err != nil {
		return "", err
	}
	return resp.String("target"), nil
}

// Version returns the component version map.
func (c *Client) Version(ctx context.Context) (map[string]string, error) {
	resp, err := c.Send(ctx, NewRequest(CommandVersion))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(resp))
	for key := range resp {
		out[key] = resp.String(key)
	}
	return out, nil
}

// Languages returns the engine's common language list.
func (c *Client) Languages(ctx context.Context) ([]Choice, error) {
	return c.choices(ctx, CommandGetLanguages, "languages", "code")
}

// Charsets returns the encodings available for source files.
func (c *Client) Charsets(ctx context.Context) ([]Choice, error) {
	return c.choices(ctx, CommandGetCharsets, "charsets", "code")
}

// Types returns the supported source file formats.
func (c *Client) Types(ctx context.Context) ([]Choice, error) {
	return c.choices(ctx, CommandGetTypes, "types", "type")
}

// PackageLanguages reads the language pair of a translation package.
func (c *Client) PackageLanguages(ctx context.Context, pkg string) (Response, error) {
	resp, err := c.Send(ctx, NewRequest(CommandPackageLanguages, "package", pkg))
	if err != nil {
		return nil, err
	}
	if err := ResultError(CommandPackageLanguages, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// XliffLanguages reads the language pair declared in an XLIFF file.
func (c *Client) XliffLanguages(ctx context.Context, xliff string) (Response, error) {
	resp, err := c.Send(ctx, NewRequest(CommandXliffLanguages, "xliff", xliff))
	if err != nil {
		return nil, err
	}
	if err := ResultError(CommandXliffLanguages, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) choices(ctx context.Context, command, listKey, codeKey string) ([]Choice, error) {
	resp, err := c.Send(ctx, NewRequest(command))
	if err != nil {
		return nil, err
	}

	items := resp.List(listKey)
	out := make([]Choice, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code, _ := entry[codeKey].(string)
		description, _ := entry["description"].(string)
		out = append(out, Choice{Code: code, Description: description})
	}
	return out, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
