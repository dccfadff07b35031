package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newEngineServer serves one handler per command name.
func newEngineServer(t *testing.T, handlers map[string]func(Request) (int, string)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		handler, ok := handlers[req.Command()]
		if !ok {
			http.Error(w, "unknown command", http.StatusInternalServerError)
			return
		}
		status, body := handler(req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// TestClientSendSuccess verifies a 200 JSON object reply is returned as-is.
func TestClientSendSuccess(t *testing.T) {
	server := newEngineServer(t, map[string]func(Request) (int, string){
		CommandGetFileType: func(req Request) (int, string) {
			if req["file"] != "/docs/a.docx" {
				t.Errorf("file = %v, want /docs/a.docx", req["file"])
			}
			return http.StatusOK, `{"file":"/docs/a.docx","type":"OOXML","encoding":"UTF-8"}`
		},
	})

	client := NewClient(server.URL)
	ft, err := client.FileType(context.Background(), "/docs/a.docx")
	if err != nil {
		t.Fatalf("FileType() error = %v", err)
	}
	if ft.Type != "OOXML" || ft.Encoding != "UTF-8" {
		t.Fatalf("file type = %+v", ft)
	}
}

// TestClientSendFailures checks the transport and protocol error taxonomy.
func TestClientSendFailures(t *testing.T) {
	server := newEngineServer(t, map[string]func(Request) (int, string){
		"broken":   func(Request) (int, string) { return http.StatusInternalServerError, "boom" },
		"garbage":  func(Request) (int, string) { return http.StatusOK, "{not json" },
		"array":    func(Request) (int, string) { return http.StatusOK, "[1,2]" },
		"nullbody": func(Request) (int, string) { return http.StatusOK, "null" },
	})

	tests := []struct {
		name     string
		endpoint string
		command  string
		want     ErrorKind
	}{
		{name: "non-200", endpoint: server.URL, command: "broken", want: KindProtocol},
		{name: "malformed json", endpoint: server.URL, command: "garbage", want: KindProtocol},
		{name: "not an object", endpoint: server.URL, command: "array", want: KindProtocol},
		{name: "null", endpoint: server.URL, command: "nullbody", want: KindProtocol},
		{name: "refused", endpoint: "http://127.0.0.1:1/FilterServer", command: "status", want: KindTransport},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(tc.endpoint).Send(context.Background(), NewRequest(tc.command))
			var engineErr *Error
			if !errors.As(err, &engineErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if engineErr.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", engineErr.Kind, tc.want)
			}
			if engineErr.Command != tc.command {
				t.Fatalf("command = %q, want %q", engineErr.Command, tc.command)
			}
		})
	}
}

// TestClientCallInvokesExactlyOneContinuation checks the callback contract.
func TestClientCallInvokesExactlyOneContinuation(t *testing.T) {
	server := newEngineServer(t, map[string]func(Request) (int, string){
		CommandVersion: func(Request) (int, string) { return http.StatusOK, `{"XLIFFManager":"Version 6.0.0"}` },
	})
	client := NewClient(server.URL)

	var successes, failures int
	client.Call(context.Background(), NewRequest(CommandVersion),
		func(Response) { successes++ },
		func(string) { failures++ },
	)
	if successes != 1 || failures != 0 {
		t.Fatalf("successes = %d failures = %d, want 1/0", successes, failures)
	}

	var reason string
	client.Call(context.Background(), NewRequest("unknown"),
		func(Response) { successes++ },
		func(msg string) { failures++; reason = msg },
	)
	if successes != 1 || failures != 1 {
		t.Fatalf("successes = %d failures = %d, want 1/1", successes, failures)
	}
	if reason == "" {
		t.Fatal("expected failure reason")
	}
}

// TestClientChoiceLists verifies list decoding for languages and types.
func TestClientChoiceLists(t *testing.T) {
	server := newEngineServer(t, map[string]func(Request) (int, string){
		CommandGetLanguages: func(Request) (int, string) {
			return http.StatusOK, `{"languages":[{"code":"en","description":"English"},{"code":"fr","description":"French"}]}`
		},
		CommandGetTypes: func(Request) (int, string) {
			return http.StatusOK, `{"types":[{"type":"HTML","description":"HTML Page"}]}`
		},
	})
	client := NewClient(server.URL)

	langs, err := client.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages() error = %v", err)
	}
	if len(langs) != 2 || langs[1].Code != "fr" {
		t.Fatalf("languages = %+v", langs)
	}

	types, err := client.Types(context.Background())
	if err != nil {
		t.Fatalf("Types() error = %v", err)
	}
	if len(types) != 1 || types[0].Code != "HTML" || types[0].Description != "HTML Page" {
		t.Fatalf("types = %+v", types)
	}
}

// TestClientTargetFileDomainError checks failed results surface as domain errors.
func TestClientTargetFileDomainError(t *testing.T) {
	server := newEngineServer(t, map[string]func(Request) (int, string){
		CommandGetTargetFile: func(Request) (int, string) {
			return http.StatusOK, `{"result":"Failed","reason":"missing original"}`
		},
	})

	_, err := NewClient(server.URL).TargetFile(context.Background(), "/work/a.xlf")
	var engineErr *Error
	if !errors.As(err, &engineErr) || engineErr.Kind != KindDomain {
		t.Fatalf("error = %v, want domain error", err)
	}
	if engineErr.Message != "missing original" {
		t.Fatalf("message = %q", engineErr.Message)
	}
}

// TestResultError checks payload classification.
func TestResultError(t *testing.T) {
	if err := ResultError(CommandConversionResult, Response{"result": ResultSuccess}); err != nil {
		t.Fatalf("success payload error = %v", err)
	}
	if err := ResultError(CommandValidationResult, Response{"valid": false, "reason": "bad"}); err != nil {
		t.Fatalf("validation payload error = %v", err)
	}
	if err := ResultError(CommandMergeResult, Response{"result": ResultFailed}); err == nil {
		t.Fatal("expected error for failed payload")
	}
}
