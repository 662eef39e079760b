package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/bannerscout/config"
)

func main() {
	apiURL := os.Getenv("BANNERSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	api := newAPIClient(apiURL, os.Getenv("BANNERSCOUT_API_KEY"))

	s := server.NewMCPServer(
		"bannerscout",
		config.Version,
		server.WithToolCapabilities(false),
	)

	startTool := mcp.NewTool("start_banner_scrape",
		mcp.WithDescription("Scan a website's homepage and its promotions page for banner images, as seen from one of ten regions. Returns a session id; set wait to block until the scan finishes."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of the site to scan"),
		),
		mcp.WithNumber("location",
			mcp.Description("Region id 1-10 (see list_locations). Default: 1 (United States)"),
		),
		mcp.WithBoolean("headless",
			mcp.Description("Run the browser headless (default: true)"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Poll until the scan completes or fails and return the banners (default: false)"),
		),
	)
	s.AddTool(startTool, handleStart(api))

	getTool := mcp.NewTool("get_banner_scrape",
		mcp.WithDescription("Get the status, progress log and banners of a scan session."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by start_banner_scrape"),
		),
	)
	s.AddTool(getTool, handleGet(api))

	locationsTool := mcp.NewTool("list_locations",
		mcp.WithDescription("List the regions a scan can be run from."),
	)
	s.AddTool(locationsTool, handleLocations(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
