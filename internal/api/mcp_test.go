package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nkoval/ragman/internal/status"
)

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_AskManual(t *testing.T) {
	deps := MCPDeps{Answerer: &stubAnswerer{answer: "Click the megaphone icon."}}
	handler := mcpAskManual(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_manual", map[string]interface{}{
		"question": "how do I post an announcement?",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("IsError set: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "Click the megaphone icon." {
		t.Errorf("text = %q", got)
	}
}

func TestMCPTool_AskManual_MissingQuestion(t *testing.T) {
	deps := MCPDeps{Answerer: &stubAnswerer{}}
	handler := mcpAskManual(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_manual", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for missing question")
	}
}

func TestMCPTool_AskManual_AnswerFailure(t *testing.T) {
	deps := MCPDeps{Answerer: &stubAnswerer{err: errors.New("upstream down")}}
	handler := mcpAskManual(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_manual", map[string]interface{}{
		"question": "q",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for failed answer")
	}
	if !strings.Contains(toolText(t, result), "upstream down") {
		t.Errorf("text = %q", toolText(t, result))
	}
}

func TestMCPTool_ListDocuments(t *testing.T) {
	deps := MCPDeps{Documents: &stubLister{sources: []string{"guide.docx"}}}
	handler := mcpListDocuments(deps)

	result, err := handler(context.Background(), makeCallToolRequest("list_documents", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var docs []string
	if err := json.Unmarshal([]byte(toolText(t, result)), &docs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(docs) != 1 || docs[0] != "guide.docx" {
		t.Errorf("docs = %v", docs)
	}
}

func TestMCPTool_ListDocuments_Empty(t *testing.T) {
	deps := MCPDeps{Documents: &stubLister{}}
	handler := mcpListDocuments(deps)

	result, err := handler(context.Background(), makeCallToolRequest("list_documents", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("text = %q, want empty JSON array", got)
	}
}

func TestMCPTool_QueueStatus(t *testing.T) {
	deps := MCPDeps{Reporter: &stubReporter{snap: status.Snapshot{
		PendingImages: 1,
		TotalImages:   4,
	}}}
	handler := mcpQueueStatus(deps)

	result, err := handler(context.Background(), makeCallToolRequest("queue_status", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var snap map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &snap); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if snap["pending_images"] != float64(1) || snap["total_images"] != float64(4) {
		t.Errorf("snap = %v", snap)
	}
}

func TestNewMCPServer_Builds(t *testing.T) {
	s := NewMCPServer(MCPDeps{
		Answerer:  &stubAnswerer{},
		Reporter:  &stubReporter{},
		Documents: &stubLister{},
	})
	if s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}
