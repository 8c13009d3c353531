package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"locustmcp/internal/generator"
	"locustmcp/internal/launcher"
)

// toolResult marshals v as indented JSON text content.
func toolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports a failure as an error result. The message starts with
// the protocol error code, so callers can branch without parsing prose.
func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func floatArg(args map[string]any, key string) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return 0
}

func generatorOptions(args map[string]any) generator.Options {
	return generator.Options{
		Template:       stringArg(args, "template"),
		Plugins:        stringArg(args, "plugins"),
		DisablePlugins: stringArg(args, "disable_plugins"),
		ResourceTypes:  stringArg(args, "resource_types"),
		LogLevel:       stringArg(args, "loglevel"),
	}
}

func (s *Server) handleDiscover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := s.service.Discover(stringArg(args, "preferred"))
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleIntrospect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError("script argument is required"), nil
	}

	result, err := s.service.Introspect(script)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recording, err := request.RequireString("recording")
	if err != nil {
		return mcp.NewToolResultError("recording argument is required"), nil
	}
	args := request.GetArguments()

	result, err := s.service.Convert(ctx, recording, generatorOptions(args), stringArg(args, "destination"))
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleLaunchInteractive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := s.service.LaunchInteractive(ctx, stringArg(args, "script"), stringArg(args, "host"), intArg(args, "port"))
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleLaunchHeadless(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	duration, err := request.RequireString("duration")
	if err != nil {
		return mcp.NewToolResultError("duration argument is required"), nil
	}
	args := request.GetArguments()

	params := launcher.HeadlessParams{
		Host:      stringArg(args, "host"),
		Users:     intArg(args, "users"),
		SpawnRate: floatArg(args, "spawn_rate"),
		Duration:  duration,
		Tags:      stringArg(args, "tags"),
		Tasks:     stringArg(args, "tasks"),
	}

	result, err := s.service.LaunchHeadless(ctx, stringArg(args, "script"), params)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleStopJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	pid := intArg(args, "pid")
	if pid <= 0 {
		return mcp.NewToolResultError("pid argument is required"), nil
	}

	result, err := s.service.StopJob(pid)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.service.ListJobs())
}

func (s *Server) handleConvertAndLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recording, err := request.RequireString("recording")
	if err != nil {
		return mcp.NewToolResultError("recording argument is required"), nil
	}
	args := request.GetArguments()

	result, err := s.service.ConvertAndLaunch(ctx,
		recording,
		stringArg(args, "destination"),
		stringArg(args, "host"),
		intArg(args, "port"),
		generatorOptions(args),
	)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}
