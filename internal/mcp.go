package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rtzll/tubehack/internal/scrape"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer

	// mu serialises tool calls that touch the session. stop_analysis only
	// sets the atomic stop flag and runs without it.
	mu      sync.Mutex
	session *Session
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		session:   NewSession(),
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_videos",
		mcp.WithDescription("List up to 5 videos from a YouTube channel page or a search query. Returns id, title and URL per video. An empty list means the page had no recognizable entries."),
		mcp.WithString("channel_url", mcp.Description("Channel URL, e.g. https://www.youtube.com/@name")),
		mcp.WithString("query", mcp.Description("Search query, used when channel_url is empty")),
	), s.handleListVideos)

	s.mcpServer.AddTool(mcp.NewTool("get_video_metadata",
		mcp.WithDescription("Resolve the title and thumbnail of a YouTube video from its public page."),
		mcp.WithString("url", mcp.Description("YouTube video URL or id"), mcp.Required()),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the captions of a YouTube video (FREE). With fallback_audio the audio is transcribed when no captions exist (PAID: ask the user first)."),
		mcp.WithString("url", mcp.Description("YouTube video URL or id"), mcp.Required()),
		mcp.WithBoolean("fallback_audio", mcp.Description("Transcribe the audio when there are no captions")),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("analyze_videos",
		mcp.WithDescription("Stage 1: analyze up to 5 videos one by one. Videos come from urls (newline or comma separated), a channel or a search query. Replaces the session's analyses."),
		mcp.WithString("urls", mcp.Description("Video URLs separated by newlines or commas")),
		mcp.WithString("channel_url", mcp.Description("Channel to take videos from")),
		mcp.WithString("query", mcp.Description("Search query to take videos from")),
	), s.handleAnalyze)

	s.mcpServer.AddTool(mcp.NewTool("extract_patterns",
		mcp.WithDescription("Stage 2: extract the shared pattern and length statistics from the session's successful analyses."),
	), s.handleExtractPatterns)

	s.mcpServer.AddTool(mcp.NewTool("generate_ideas",
		mcp.WithDescription("Stage 3: generate three content plans from the extracted patterns. Without a theme the model proposes one."),
		mcp.WithString("theme", mcp.Description("Theme for the plans")),
	), s.handleGenerateIdeas)

	s.mcpServer.AddTool(mcp.NewTool("generate_ideas_from_theme",
		mcp.WithDescription("Stage 3 without analyses: generate three content plans from a theme and optional reference notes."),
		mcp.WithString("theme", mcp.Description("Theme for the plans"), mcp.Required()),
		mcp.WithString("reference", mcp.Description("Reference notes")),
		mcp.WithNumber("target_chars", mcp.Description("Script length target, 1000 to 20000 (default 5000)")),
	), s.handleGenerateIdeasDirect)

	s.mcpServer.AddTool(mcp.NewTool("generate_script",
		mcp.WithDescription("Stage 4: write the full script for one plan and title."),
		mcp.WithNumber("plan", mcp.Description("Plan number 1 to 3 (default 1)")),
		mcp.WithNumber("title_index", mcp.Description("Title number 1 to 3 (default 1)")),
		mcp.WithString("title", mcp.Description("Title overriding the plan's title")),
		mcp.WithString("thumbnail_word", mcp.Description("Thumbnail word overriding the plan's")),
		mcp.WithNumber("target_chars", mcp.Description("Length target overriding the extracted average")),
	), s.handleGenerateScript)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the session state as JSON."),
	), s.handleGetSession)

	s.mcpServer.AddTool(mcp.NewTool("stop_analysis",
		mcp.WithDescription("Stop a running analyze_videos call after the current video."),
	), s.handleStop)

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Clear the session's videos and analyses."),
	), s.handleReset)
}

func videoRefArg(request mcp.CallToolRequest) (scrape.VideoRef, error) {
	arg, err := request.RequireString("url")
	if err != nil {
		return scrape.VideoRef{}, errors.New("url parameter is required and must be a string")
	}
	input := ParseInput(arg)
	if input.Kind != InputVideo {
		return scrape.VideoRef{}, fmt.Errorf("not a YouTube video: %s", arg)
	}
	return input.Ref(), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *MCPServer) handleListVideos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelURL := request.GetString("channel_url", "")
	query := request.GetString("query", "")
	if channelURL == "" && query == "" {
		return mcp.NewToolResultError("channel_url or query is required"), nil
	}

	listings, err := s.app.ListVideos(ctx, channelURL, query)
	if err != nil {
		MCPLogError("list_videos: %v", err)
		return mcp.NewToolResultErrorFromErr("listing videos", err), nil
	}
	MCPLogInfo("list_videos: %d results", len(listings))
	if listings == nil {
		listings = []scrape.VideoListing{}
	}
	return jsonResult(listings)
}

func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := videoRefArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metadata := s.app.Metadata(ctx, ref)
	if metadata.Error != "" {
		MCPLogError("get_video_metadata %s: %s", ref.ID, metadata.Error)
	}
	return jsonResult(metadata)
}

func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := videoRefArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	transcript, source, err := s.app.Transcript(ctx, ref, request.GetBool("fallback_audio", false))
	if err != nil {
		MCPLogError("get_transcript %s: %v", ref.ID, err)
		return mcp.NewToolResultErrorFromErr("no transcript - retry with fallback_audio (paid) if the user agrees", err), nil
	}
	MCPLogInfo("get_transcript %s: %d bytes from %s", ref.ID, len(transcript), source)

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(transcript)},
	}, nil
}

func (s *MCPServer) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urls := request.GetString("urls", "")
	channelURL := request.GetString("channel_url", "")
	query := request.GetString("query", "")

	refs, err := s.app.ResolveRefs(ctx, []string{urls}, channelURL, query)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("collecting videos", err), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	MCPLogInfo("analyze_videos: %d videos", len(refs))
	err = s.app.Workflow().Analyze(ctx, s.session, refs)
	if err != nil && !errors.Is(err, ErrStopped) {
		MCPLogError("analyze_videos: %v", err)
		return mcp.NewToolResultErrorFromErr("analysis interrupted", err), nil
	}

	text := FormatAnalyses(s.session.Analyses)
	if errors.Is(err, ErrStopped) {
		text = fmt.Sprintf("Stopped after %d of %d videos.\n\n%s", len(s.session.Analyses), len(refs), text)
	}
	if len(s.session.Successful()) == 0 {
		return mcp.NewToolResultError("every analysis failed\n\n" + text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *MCPServer) handleExtractPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.app.Workflow().ExtractPatterns(ctx, s.session); err != nil {
		MCPLogError("extract_patterns: %v", err)
		return mcp.NewToolResultErrorFromErr("extracting patterns", err), nil
	}
	return mcp.NewToolResultText(FormatPatterns(s.session.Patterns)), nil
}

func (s *MCPServer) handleGenerateIdeas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.app.Workflow().GenerateIdeas(ctx, s.session, request.GetString("theme", "")); err != nil {
		MCPLogError("generate_ideas: %v", err)
		return mcp.NewToolResultErrorFromErr("generating ideas", err), nil
	}
	return mcp.NewToolResultText(s.session.Ideas.Text), nil
}

func (s *MCPServer) handleGenerateIdeasDirect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	theme, err := request.RequireString("theme")
	if err != nil {
		return mcp.NewToolResultError("theme parameter is required and must be a string"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.app.Workflow().GenerateIdeasDirect(ctx, s.session, theme,
		request.GetString("reference", ""), request.GetInt("target_chars", 0))
	if err != nil {
		MCPLogError("generate_ideas_from_theme: %v", err)
		return mcp.NewToolResultErrorFromErr("generating ideas", err), nil
	}
	return mcp.NewToolResultText(s.session.Ideas.Text), nil
}

func (s *MCPServer) handleGenerateScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := ScriptRequest{
		Plan:          request.GetInt("plan", 1),
		TitleIndex:    request.GetInt("title_index", 1),
		Title:         request.GetString("title", ""),
		ThumbnailWord: request.GetString("thumbnail_word", ""),
		TargetChars:   request.GetInt("target_chars", 0),
	}
	if req.Plan < 1 || req.Plan > PlanCount || req.TitleIndex < 1 || req.TitleIndex > 3 {
		return mcp.NewToolResultError("plan and title_index must be between 1 and 3"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.app.Workflow().GenerateScript(ctx, s.session, req)
	if err != nil {
		MCPLogError("generate_script: %v", err)
		return mcp.NewToolResultErrorFromErr("generating script", err), nil
	}
	MCPLogInfo("generate_script: %s", result.Summary())
	return mcp.NewToolResultText(FormatScript(result) + "\nSection allocation:\n" + FormatAllocation(result.Allocation)), nil
}

// sessionView is the JSON shape of get_session
type sessionView struct {
	Videos    []scrape.VideoRef `json:"videos"`
	Analyses  []AnalysisRecord  `json:"analyses"`
	Patterns  string            `json:"patterns,omitempty"`
	CharStats CharStats         `json:"char_stats"`
	Theme     string            `json:"theme,omitempty"`
	Ideas     ParsedIdeas       `json:"ideas,omitempty"`
	Script    *ScriptResult     `json:"script,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

func (s *MCPServer) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := sessionView{
		Videos:    s.session.Videos,
		Analyses:  make([]AnalysisRecord, len(s.session.Analyses)),
		CharStats: s.session.CharStats,
		Theme:     s.session.Theme,
		Script:    s.session.Script,
	}
	for i, r := range s.session.Analyses {
		// transcripts can be long; get_transcript returns them
		r.Transcript = ""
		view.Analyses[i] = r
	}
	if s.session.Patterns.Usable() {
		view.Patterns = s.session.Patterns.Text
	} else if err := s.session.Patterns.Err; err != nil {
		view.Errors = append(view.Errors, err.Error())
	}
	if s.session.Ideas.Usable() {
		view.Ideas = s.session.Ideas.Parsed
	} else if err := s.session.Ideas.Err; err != nil {
		view.Errors = append(view.Errors, err.Error())
	}
	return jsonResult(view)
}

func (s *MCPServer) handleStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Stop()
	MCPLogInfo("stop_analysis requested")
	return mcp.NewToolResultText("Analysis will stop after the current video."), nil
}

func (s *MCPServer) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Reset()
	return mcp.NewToolResultText("Session cleared."), nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	MCPLogInfo("starting %s transport", transport)
	if strings.EqualFold(transport, "http") {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
