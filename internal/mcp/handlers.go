package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/page"
)

func (s *Server) handleAnalyzeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	text = strings.TrimSpace(text)
	if err := page.Validate(text); err != nil {
		return mcp.NewToolResultError(page.ValidationMessage), nil
	}

	result, err := s.client.Analyze(ctx, api.AnalysisRequest{
		Text:              text,
		CheckParaphrasing: request.GetBool("check_paraphrasing", false),
	})
	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = page.FailureText(err, "Analysis failed")
		}
		return mcp.NewToolResultError("Analysis failed: " + msg), nil
	}
	if result.Error != "" {
		return mcp.NewToolResultError("Analysis failed: " + result.Error), nil
	}

	return s.render(s.renderer.Results(*result))
}

func (s *Server) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.client.Statistics(ctx)
	if err != nil {
		return mcp.NewToolResultError("Failed to load statistics: " + page.FailureText(err, "Failed to load statistics")), nil
	}
	return s.render(s.renderer.Statistics(*stats))
}

func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageNum := request.GetInt("page", 0)
	if pageNum < 0 {
		pageNum = 0
	}
	size := request.GetInt("size", s.pageSize)
	if size <= 0 {
		size = s.pageSize
	}

	history, err := s.client.History(ctx, pageNum, size)
	if err != nil {
		return mcp.NewToolResultError("Failed to load history: " + page.FailureText(err, "Failed to load history")), nil
	}
	return s.render(s.renderer.History(*history))
}

func (s *Server) handleGetHistorySources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	sources, err := s.client.HistorySources(ctx, int64(id))
	if err != nil {
		if api.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("No search with id %d.", id)), nil
		}
		return mcp.NewToolResultError("Failed to load sources: " + page.FailureText(err, "Failed to load sources")), nil
	}
	return s.render(s.renderer.HistoricalSources(sources))
}

func (s *Server) render(text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render output: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}
