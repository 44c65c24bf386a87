// Command docscout-mcp exposes the docscout lookup API as MCP tools over
// stdio.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("DOCSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DOCSCOUT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "DOCSCOUT_API_KEY is not set; requests only work against a server with auth disabled")
	}

	s := newServer(newAPIClient(apiURL, apiKey, 180*time.Second))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(api *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"docscout",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("search_doctors",
		mcp.WithDescription("Find marham.pk listing pages for a free-text query such as 'dermatologist in i8 islamabad'. Returns ranked listing URLs to pass to list_doctors."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Specialty, optionally followed by 'in <area> <city>'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Candidate URLs to collect before validation (default: 8, max: 30)"),
		),
	), handleSearch(api))

	s.AddTool(mcp.NewTool("list_doctors",
		mcp.WithDescription("List the doctors on a marham.pk listing page with their hospitals and fees. Returns numbered doctors with profile URLs."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("A marham.pk listing URL"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum doctors returned (default: 20)"),
		),
	), handleListing(api))

	s.AddTool(mcp.NewTool("doctor_profile",
		mcp.WithDescription("Read a doctor's full profile: qualifications, practice locations with fees and weekly timings, phone, services and statement."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The doctor's marham.pk profile URL"),
		),
	), handleProfile(api))

	s.AddTool(mcp.NewTool("doctor_reviews",
		mcp.WithDescription("Read a doctor's patient reviews with a short summary."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The doctor's marham.pk profile URL"),
		),
		mcp.WithNumber("count",
			mcp.Description("Reviews returned, padded when the page has fewer (default: 5)"),
		),
		mcp.WithBoolean("summarize",
			mcp.Description("Ask the server for an LLM summary (default: true)"),
		),
	), handleReviews(api))

	return s
}
