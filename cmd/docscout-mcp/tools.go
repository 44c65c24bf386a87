package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/docscout/models"
)

func handleSearch(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		payload := models.SearchRequest{Query: query, MaxResults: request.GetInt("max_results", 0)}

		var resp models.SearchResponse
		if err := api.post(ctx, "/api/v1/search", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(failure("search", resp.Error)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Specialty: %s  Area: %s  City: %s\n\n", resp.Intent.Specialty, resp.Intent.Area, resp.Intent.City)
		for i, c := range resp.Candidates {
			fmt.Fprintf(&sb, "%d. %s (score %d)\n", i+1, c.URL, c.Score)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleListing(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		payload := models.ListingRequest{URL: url, Limit: request.GetInt("limit", 0)}

		var resp models.ListingResponse
		if err := api.post(ctx, "/api/v1/listing", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(failure("listing", resp.Error)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d doctors on %s\n", len(resp.Doctors), resp.URL)
		for _, d := range resp.Doctors {
			fmt.Fprintf(&sb, "\n%d. %s", d.ID, d.Name)
			if d.PMDCVerified {
				sb.WriteString(" (PMDC verified)")
			}
			fmt.Fprintf(&sb, "\n   %s | %s | experience %s | %s reviews\n   profile: %s\n",
				d.Specialization, d.Qualification, d.Experience, d.Reviews, d.ProfileURL)
			for _, h := range d.Hospitals {
				fmt.Fprintf(&sb, "   - %s, %s %s\n", h.Name, h.City, h.Fee)
			}
		}
		if resp.NextURL != "" {
			fmt.Fprintf(&sb, "\nNext page: %s\n", resp.NextURL)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleProfile(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		var resp models.ProfileResponse
		if err := api.post(ctx, "/api/v1/profile", models.ProfileRequest{URL: url}, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Profile == nil {
			return mcp.NewToolResultError(failure("profile", resp.Error)), nil
		}

		p := resp.Profile
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s\n%s\n%s\n", p.Name, p.Specialization, p.Qualification)
		for _, kv := range [][2]string{
			{"Experience", p.Experience},
			{"Reviews", p.ReviewsCount},
			{"Satisfaction", p.SatisfactionRate},
			{"Wait time", p.WaitTime},
			{"Phone", p.Phone},
			{"Video consultation fee", p.VideoConsultationFee},
		} {
			if kv[1] != "" {
				fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
			}
		}
		for _, h := range p.Hospitals {
			fmt.Fprintf(&sb, "\n%s (%s) %s\n", h.Name, h.Address, h.Fee)
			for _, t := range h.Timings {
				fmt.Fprintf(&sb, "  %s: %s\n", t.Day, t.Time)
			}
		}
		if len(p.Services) > 0 {
			fmt.Fprintf(&sb, "\nServices: %s\n", strings.Join(p.Services, ", "))
		}
		if p.Statement != "" {
			fmt.Fprintf(&sb, "\n%s\n", p.Statement)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleReviews(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		summarize := request.GetBool("summarize", true)
		payload := models.ReviewsRequest{URL: url, Count: request.GetInt("count", 0), Summarize: &summarize}

		var resp models.ReviewsResponse
		if err := api.post(ctx, "/api/v1/reviews", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Summary == nil {
			return mcp.NewToolResultError(failure("reviews", resp.Error)), nil
		}

		rs := resp.Summary
		var sb strings.Builder
		for i, r := range rs.Reviews {
			fmt.Fprintf(&sb, "%d. %s (%s): %s\n", i+1, r.PatientName, r.Date, r.Text)
		}
		fmt.Fprintf(&sb, "\n%s\n", rs.BasicSummary)
		if rs.LLMSummary != "" {
			fmt.Fprintf(&sb, "\nSummary: %s\n", rs.LLMSummary)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
