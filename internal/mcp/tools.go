package mcp

import "github.com/mark3labs/mcp-go/mcp"

var analyzeTextTool = mcp.NewTool("analyze_text",
	mcp.WithDescription("Check a text for similarity to published sources and for AI authorship. Returns the similarity score, AI verdict and matched sources."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to analyze, at least 10 characters"),
	),
	mcp.WithBoolean("check_paraphrasing",
		mcp.Description("Also produce a paraphrased version of the text (default false)"),
	),
)

var getStatisticsTool = mcp.NewTool("get_statistics",
	mcp.WithDescription("Get the aggregate search statistics of the signed-in user."),
)

var getHistoryTool = mcp.NewTool("get_history",
	mcp.WithDescription("List past searches, newest first."),
	mcp.WithNumber("page",
		mcp.Description("Zero-based page number (default 0)"),
	),
	mcp.WithNumber("size",
		mcp.Description("Items per page (default 10)"),
	),
)

var getHistorySourcesTool = mcp.NewTool("get_history_sources",
	mcp.WithDescription("Get the matched sources recorded for a past search."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("History item id as listed by get_history"),
	),
)
