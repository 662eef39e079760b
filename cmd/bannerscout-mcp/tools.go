package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/bannerscout/models"
)

// maxWait bounds a blocking start_banner_scrape call.
const maxWait = 10 * time.Minute

func handleStart(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		req := models.ScrapeRequest{URL: target}
		args := request.GetArguments()
		if _, ok := args["location"]; ok {
			loc := int(request.GetFloat("location", models.DefaultLocationID))
			req.Location = &loc
		}
		if _, ok := args["headless"]; ok {
			headless := request.GetBool("headless", true)
			req.Headless = &headless
		}

		id, err := api.start(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("start failed: %v", err)), nil
		}
		if !request.GetBool("wait", false) {
			return mcp.NewToolResultText(fmt.Sprintf("Scan started. Session: %s\nUse get_banner_scrape to follow it.", id)), nil
		}

		waitCtx, cancel := context.WithTimeout(ctx, maxWait)
		defer cancel()
		s, err := api.wait(waitCtx, id)
		if err != nil {
			if s != nil {
				return mcp.NewToolResultText(formatSession(s) + fmt.Sprintf("\n\nStopped waiting: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("polling session %s failed: %v", id, err)), nil
		}
		return mcp.NewToolResultText(formatSession(s)), nil
	}
}

func handleGet(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		s, err := api.session(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatSession(s)), nil
	}
}

func handleLocations(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		locs, err := api.locations(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var sb strings.Builder
		for _, l := range locs {
			fmt.Fprintf(&sb, "%d  %s  %s\n", l.ID, l.Code, l.Name)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatSession renders a session as plain text for the model.
func formatSession(s *models.SessionResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s: %s\nURL: %s\nLocation: %s\n", s.ID, s.Status, s.URL, s.Location)
	if s.Duration != nil {
		fmt.Fprintf(&sb, "Duration: %s\n", time.Duration(*s.Duration)*time.Millisecond)
	}
	if s.Error != nil {
		fmt.Fprintf(&sb, "Error: %s\n", *s.Error)
	}

	if n := len(s.Progress); n > 0 {
		sb.WriteString("\nProgress:\n")
		for _, p := range s.Progress[max(0, n-10):] {
			fmt.Fprintf(&sb, "  %s %s\n", p.Timestamp.Format("15:04:05"), p.Message)
		}
	}

	if s.Results != nil {
		writeBanners(&sb, "Homepage", s.Results.Homepage)
		writeBanners(&sb, "Promotions", s.Results.Promotions)
	}
	return sb.String()
}

func writeBanners(sb *strings.Builder, title string, banners []models.BannerRef) {
	fmt.Fprintf(sb, "\n%s banners (%d):\n", title, len(banners))
	for i, b := range banners {
		fmt.Fprintf(sb, "  %d. %s (%sx%s, %s)", i+1, b.Src, dim(b.Width), dim(b.Height), b.Type)
		if b.Alt != "" {
			fmt.Fprintf(sb, " alt=%q", b.Alt)
		}
		sb.WriteString("\n")
	}
}

func dim(d models.Dimension) string {
	if d == "" {
		return string(models.DimensionAuto)
	}
	return string(d)
}
