// cvrag-mcp exposes the CV knowledge base as MCP tools so agent hosts can
// ask questions and inspect sources directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/razmarrus/cv-rag/internal/app"
	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/service"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

type handler struct {
	svc *service.RAGService
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	transport := flag.String("transport", "stdio", "transport to serve on: stdio, sse, or httpstream")
	addr := flag.String("addr", ":8001", "listen address for sse and httpstream transports")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("cvrag-mcp")

	svc, _, err := app.BuildService(cfg, log)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer app.CloseConnections(cfg, log)

	h := &handler{svc: svc}

	s := mcpserver.NewMCPServer("cv-rag", "1.0.0")

	s.AddTool(mcp.NewTool("ask_cv",
		mcp.WithDescription("Answer a question about the CV using retrieval-augmented generation."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer, at least 3 characters.")),
	), h.handleAsk)

	s.AddTool(mcp.NewTool("search_cv",
		mcp.WithDescription("Return the CV chunks most similar to a question, without generating an answer."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to search for.")),
		mcp.WithNumber("top_k", mcp.Description("How many chunks to return, defaults to the configured top-k.")),
	), h.handleSearch)

	s.AddTool(mcp.NewTool("list_cv_sources",
		mcp.WithDescription("List the documents currently in the knowledge base."),
	), h.handleSources)

	switch *transport {
	case "stdio":
		if err := mcpserver.ServeStdio(s); err != nil {
			log.Fatal("MCP server error: " + err.Error())
		}
	case "sse":
		log.Info("Serving MCP over SSE on " + *addr)
		if err := mcpserver.NewSSEServer(s).Start(*addr); err != nil {
			log.Fatal("MCP server error: " + err.Error())
		}
	case "httpstream":
		log.Info("Serving MCP over streamable HTTP on " + *addr)
		if err := mcpserver.NewStreamableHTTPServer(s).Start(*addr); err != nil {
			log.Fatal("MCP server error: " + err.Error())
		}
	default:
		log.Fatal("unknown transport: " + *transport)
	}
}

func (h *handler) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return nil, err
	}

	result, err := h.svc.Answer(ctx, question)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to answer: %v", err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return textResult(string(payload)), nil
}

func (h *handler) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return nil, err
	}
	topK := int(req.GetFloat("top_k", 0))

	chunks, err := h.svc.Search(ctx, question, topK)
	if err != nil {
		return errorResult(fmt.Sprintf("search failed: %v", err)), nil
	}

	payload, err := json.Marshal(chunks)
	if err != nil {
		return nil, err
	}
	return textResult(string(payload)), nil
}

func (h *handler) handleSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := h.svc.Sources(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to list sources: %v", err)), nil
	}

	payload, err := json.Marshal(sources)
	if err != nil {
		return nil, err
	}
	return textResult(string(payload)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
