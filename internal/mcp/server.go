// Package mcp exposes the roadmap service as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

const DefaultUserID = "mcp-user"

const instructions = "Generate and refine six-module learning roadmaps. " +
	"Call generate_roadmap with a career goal and self-assessed skills, then " +
	"update_roadmap with a roadmap id and a change request."

// New builds the MCP server. svc is constructed once by the caller and shared
// by every tool.
func New(svc services.RoadmapService, version string, log *logger.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		observability.ServiceName,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(instructions),
	)
	t := NewTools(svc, log)
	s.AddTool(generateRoadmapTool(), t.GenerateRoadmap)
	s.AddTool(updateRoadmapTool(), t.UpdateRoadmap)
	s.AddTool(getRoadmapTool(), t.GetRoadmap)
	s.AddTool(providerInfoTool(), t.ProviderInfo)
	return s
}

// ServeStdio blocks until stdin closes or ctx is cancelled.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	stdio := mcpserver.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(log.SugaredLogger.Desugar()))
	log.Info("MCP server listening on stdio")
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
