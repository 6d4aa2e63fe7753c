package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/launch"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegistryURI is the resource exposing the registry snapshot.
const RegistryURI = "stagehand://registry"

// Coordinator defines what the MCP server needs from stagehand.Coordinator.
type Coordinator interface {
	Launch(ctx context.Context, b *launch.Builder) (domain.Descriptor, error)
	Instantiate(ctx context.Context, uniqueID string, surfaces ports.Surfaces) (*stagehand.Container, error)
	Release(ctx context.Context, uniqueID string) error
	Dispatch(ctx context.Context, id string, s domain.Signal) error
	Container(id string) (*stagehand.Container, bool)
	Snapshot() domain.Snapshot
}

var _ Coordinator = (*stagehand.Coordinator)(nil)

// LaunchResponse is returned by launch_container.
type LaunchResponse struct {
	Container domain.ContainerInfo `json:"container" jsonschema_description:"The created container"`
}

// SignalResponse is returned by send_signal.
type SignalResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"Registry and engine ownership after the signal"`
}

// Server exposes a coordinator as an MCP server so agents can drive containers.
type Server struct {
	co        Coordinator
	journal   *virtual.Journal
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance. Containers it creates draw through
// virtual surfaces recorded in a shared journal.
func NewServer(co Coordinator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		co:        co,
		journal:   virtual.NewJournal(),
		mcpServer: server.NewMCPServer("stagehand-mcp", stagehand.Version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	launchTool := mcp.NewTool("launch_container",
		mcp.WithDescription("Create a screen container for a URL. It starts in the created stage; send resume to attach it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Route of the screen to show")),
		mcp.WithString("unique_id", mcp.Description("Container id (derived from the url when omitted)")),
		mcp.WithString("engine_id", mcp.Description("Engine to draw through (default engine when omitted)")),
		mcp.WithString("background_mode", mcp.Description("opaque or transparent"), mcp.Enum("opaque", "transparent")),
		mcp.WithString("url_params", mcp.Description("JSON object of route parameters")),
		mcp.WithOutputSchema[LaunchResponse](),
	)
	s.mcpServer.AddTool(launchTool, mcp.NewStructuredToolHandler(s.handleLaunch))

	signalTool := mcp.NewTool("send_signal",
		mcp.WithDescription("Deliver a host lifecycle signal to a container."),
		mcp.WithString("container_id", mcp.Required(), mcp.Description("Container unique id")),
		mcp.WithString("signal", mcp.Required(), mcp.Description("Signal name"),
			mcp.Enum("start", "resume", "pause", "stop", "destroy", "back")),
		mcp.WithOutputSchema[SignalResponse](),
	)
	s.mcpServer.AddTool(signalTool, mcp.NewStructuredToolHandler(s.handleSignal))

	s.mcpServer.AddTool(mcp.NewTool("finish_container",
		mcp.WithDescription("Close a container, optionally returning a result to whoever launched it."),
		mcp.WithString("container_id", mcp.Required(), mcp.Description("Container unique id")),
		mcp.WithString("result", mcp.Description("JSON object handed back to the launcher")),
	), s.handleFinish)

	s.mcpServer.AddTool(mcp.NewTool("list_containers",
		mcp.WithDescription("List live containers, the top container and engine ownership."),
	), s.handleList)
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.co.Snapshot())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleLaunch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LaunchResponse, error) {
	url, _ := args["url"].(string)
	uniqueID, _ := args["unique_id"].(string)
	engineID, _ := args["engine_id"].(string)
	modeName, _ := args["background_mode"].(string)

	mode, err := domain.ParseBackgroundMode(modeName)
	if err != nil {
		return LaunchResponse{}, err
	}
	params := make(map[string]any)
	if raw, ok := args["url_params"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return LaunchResponse{}, fmt.Errorf("url_params must be a JSON object: %w", err)
		}
	}

	b := launch.NewBuilder().URL(url).UniqueID(uniqueID).BackgroundMode(mode).URLParams(params)
	if engineID != "" {
		b = b.EngineID(engineID)
	}
	desc, err := s.co.Launch(ctx, b)
	if err != nil {
		return LaunchResponse{}, fmt.Errorf("launch failed: %w", err)
	}
	if _, err := s.co.Instantiate(ctx, desc.UniqueID, virtual.NewSurfaces(desc.UniqueID, s.journal)); err != nil {
		if rerr := s.co.Release(ctx, desc.UniqueID); rerr != nil && !errors.Is(rerr, domain.ErrDescriptorNotFound) {
			s.logger.Warn("MCP: failed to release descriptor", "container", desc.UniqueID, "err", rerr)
		}
		return LaunchResponse{}, fmt.Errorf("create failed: %w", err)
	}

	info, _ := s.co.Snapshot().Find(desc.UniqueID)
	s.logger.Info("MCP: container launched", "container", desc.UniqueID, "url", desc.URL)
	return LaunchResponse{Container: info}, nil
}

func (s *Server) handleSignal(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SignalResponse, error) {
	id, _ := args["container_id"].(string)
	name, _ := args["signal"].(string)

	signal, err := domain.ParseSignal(name)
	if err != nil {
		return SignalResponse{}, err
	}
	if err := s.co.Dispatch(ctx, id, signal); err != nil {
		return SignalResponse{}, fmt.Errorf("signal failed: %w", err)
	}
	return SignalResponse{Snapshot: s.co.Snapshot()}, nil
}

func (s *Server) handleFinish(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("container_id", "")
	c, ok := s.co.Container(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", domain.ErrContainerNotFound, id)), nil
	}

	var result map[string]any
	if raw := request.GetString("result", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("result must be a JSON object: %v", err)), nil
		}
	}
	c.FinishContainer(result)
	return mcp.NewToolResultText(fmt.Sprintf("container %s is finishing", id)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RegistryURI, "Container Registry",
		mcp.WithResourceDescription("Live containers, the top container and engine ownership"),
		mcp.WithMIMEType("application/json"),
	), s.readRegistry)
}

func (s *Server) readRegistry(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.co.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RegistryURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
