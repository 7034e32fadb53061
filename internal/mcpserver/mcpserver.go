package mcpserver

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/probe/internal/service/analysis"
	"github.com/panbanda/probe/pkg/config"
)

// Server wraps the MCP server and registers the probe tools and prompts.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
	config *config.Config
	logger hclog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithService sets the analysis service the tools run on.
func WithService(svc *analysis.Service) Option {
	return func(s *Server) {
		s.svc = svc
	}
}

// WithLogger sets the logger. Logs must not go to stdout while serving stdio.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server with all probe tools registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "probe",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.svc == nil {
		s.svc = analysis.New(analysis.WithLogger(s.logger))
	}
	s.config = s.svc.Config()

	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// registerTools adds the analysis and generation tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_source",
		Description: describeAnalyzeSource(),
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_tests",
		Description: describeGenerateTests(),
	}, s.handleGenerateTests)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "count_tests",
		Description: describeCountTests(),
	}, s.handleCountTests)
}
