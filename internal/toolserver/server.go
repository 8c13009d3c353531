package toolserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the Service as MCP tools over stdio so an AI-driven client
// can drive load-test jobs without process or filesystem access of its own.
type Server struct {
	service   *Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer builds the MCP server and registers the full tool surface.
func NewServer(service *Service, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		"locustmcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s
}

// Start serves MCP over stdio and blocks until the transport closes. Tracked
// jobs are stopped on the way out.
func (s *Server) Start(ctx context.Context) error {
	defer s.service.Shutdown()
	s.logger.Info("serving MCP over stdio", "workspace", s.service.Root)
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	discoverTool := mcp.NewTool("discover",
		mcp.WithDescription("Find locustfiles in the workspace; returns the best candidate and all candidates, shallow-first"),
		mcp.WithString("preferred",
			mcp.Description("Preferred script path, relative to the workspace root; falls back to discovery when missing"),
		),
	)
	s.mcpServer.AddTool(discoverTool, s.handleDiscover)

	introspectTool := mcp.NewTool("introspect",
		mcp.WithDescription("Parse a locustfile for its declared task names and tag labels"),
		mcp.WithString("script",
			mcp.Required(),
			mcp.Description("Script path, relative to the workspace root"),
		),
	)
	s.mcpServer.AddTool(introspectTool, s.handleIntrospect)

	convertTool := mcp.NewTool("convert",
		mcp.WithDescription("Convert a HAR recording into a locustfile via har2locust"),
		mcp.WithString("recording",
			mcp.Required(),
			mcp.Description("HAR recording path, relative to the workspace root"),
		),
		mcp.WithString("destination",
			mcp.Description("Where to write the generated script; omitted means return source only"),
		),
		mcp.WithString("template", mcp.Description("Generator template override")),
		mcp.WithString("plugins", mcp.Description("Comma-separated generator plugins to enable")),
		mcp.WithString("disable_plugins", mcp.Description("Comma-separated generator plugins to disable")),
		mcp.WithString("resource_types", mcp.Description("Comma-separated resource types to keep")),
		mcp.WithString("loglevel", mcp.Description("Generator log level")),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvert)

	launchInteractiveTool := mcp.NewTool("launch_interactive",
		mcp.WithDescription("Start a non-blocking load test with the Locust web UI; returns pid, URL, and command line"),
		mcp.WithString("script", mcp.Description("Script path; discovered when omitted")),
		mcp.WithString("host", mcp.Description("Target host base URL passed to the runner")),
		mcp.WithNumber("port", mcp.Description("Web UI port; a free one is allocated when omitted")),
	)
	s.mcpServer.AddTool(launchInteractiveTool, s.handleLaunchInteractive)

	launchHeadlessTool := mcp.NewTool("launch_headless",
		mcp.WithDescription("Run a load test headless and block until it finishes; returns the captured output"),
		mcp.WithString("script", mcp.Description("Script path; discovered when omitted")),
		mcp.WithString("host", mcp.Description("Target host base URL passed to the runner")),
		mcp.WithNumber("users",
			mcp.Required(),
			mcp.Description("Number of simulated users"),
		),
		mcp.WithNumber("spawn_rate",
			mcp.Required(),
			mcp.Description("Users spawned per second"),
		),
		mcp.WithString("duration",
			mcp.Required(),
			mcp.Description("Run duration, e.g. 30s or 5m"),
		),
		mcp.WithString("tags", mcp.Description("Comma-separated tag filter")),
		mcp.WithString("tasks", mcp.Description("Comma-separated task filter")),
	)
	s.mcpServer.AddTool(launchHeadlessTool, s.handleLaunchHeadless)

	stopJobTool := mcp.NewTool("stop_job",
		mcp.WithDescription("Stop a tracked job by pid: graceful interrupt first, forceful kill as fallback"),
		mcp.WithNumber("pid",
			mcp.Required(),
			mcp.Description("Process id of the job to stop"),
		),
	)
	s.mcpServer.AddTool(stopJobTool, s.handleStopJob)

	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List tracked jobs still alive; dead entries are pruned as a side effect"),
	)
	s.mcpServer.AddTool(listJobsTool, s.handleListJobs)

	convertAndLaunchTool := mcp.NewTool("convert_and_launch",
		mcp.WithDescription("Convert a HAR recording, persist the script, and start an interactive run on it"),
		mcp.WithString("recording",
			mcp.Required(),
			mcp.Description("HAR recording path, relative to the workspace root"),
		),
		mcp.WithString("destination",
			mcp.Description("Where to write the generated script; defaults to generated/locustfile_<timestamp>.py"),
		),
		mcp.WithString("host", mcp.Description("Target host base URL passed to the runner")),
		mcp.WithNumber("port", mcp.Description("Web UI port; a free one is allocated when omitted")),
		mcp.WithString("template", mcp.Description("Generator template override")),
		mcp.WithString("plugins", mcp.Description("Comma-separated generator plugins to enable")),
		mcp.WithString("disable_plugins", mcp.Description("Comma-separated generator plugins to disable")),
		mcp.WithString("resource_types", mcp.Description("Comma-separated resource types to keep")),
		mcp.WithString("loglevel", mcp.Description("Generator log level")),
	)
	s.mcpServer.AddTool(convertAndLaunchTool, s.handleConvertAndLaunch)
}
