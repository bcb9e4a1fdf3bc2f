package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/gin-gonic/contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/utils"
	"github.com/scusemua/cloud-matchmaker/matchmaker/internal/domain"
)

const (
	NodeCandidatesRoute = "/api/v1/node-candidates"
	SolveRoute          = "/api/v1/solve"
	HealthRoute         = "/healthz"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
)

// Server serves the node candidate and solve requests of the matchmaker over HTTP.
type Server struct {
	log logger.Logger

	matchmaker domain.Matchmaker
	engine     *gin.Engine
	httpServer *http.Server
	port       int
}

func NewServer(port int, matchmaker domain.Matchmaker) *Server {
	server := &Server{
		matchmaker: matchmaker,
		engine:     gin.New(),
		port:       port,
	}
	config.InitLogger(&server.log, server)

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.engine,
	}

	return server
}

func (s *Server) setupRoutes() {
	s.log.Debug("Setting up matchmaker routes.")

	s.engine.Use(gin.CustomRecovery(s.handlePanic))
	s.engine.Use(cors.Default())

	s.engine.POST(NodeCandidatesRoute, s.HandleNodeCandidatesRequest)
	s.engine.POST(SolveRoute, s.HandleSolveRequest)
	s.engine.GET(HealthRoute, s.HandleHealthRequest)
}

// Handler returns the HTTP handler of the Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HandleNodeCandidatesRequest replies with the candidates of the user that satisfy the requirements.
func (s *Server) HandleNodeCandidatesRequest(ctx *gin.Context) {
	var request domain.NodeCandidatesRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		s.log.Error("Failed to extract NodeCandidatesRequest: %v", err)
		s.replyWithError(ctx, fmt.Errorf("%w: %v", ErrMalformedRequest, err))
		return
	}

	s.log.Debug("Received node candidates request for user \"%s\" with %d requirement(s).",
		request.UserId, len(request.Requirements))

	candidates, err := s.matchmaker.NodeCandidates(ctx.Request.Context(), request.UserId, request.Requirements)
	if err != nil {
		s.replyWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, domain.NodeCandidatesResponse{
		Candidates: domain.NewNodeCandidateViews(candidates.Slice()),
	})
}

// HandleSolveRequest replies with the best solution for the constraint set of the request.
func (s *Server) HandleSolveRequest(ctx *gin.Context) {
	var request domain.SolveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		s.log.Error("Failed to extract SolveRequest: %v", err)
		s.replyWithError(ctx, fmt.Errorf("%w: %v", ErrMalformedRequest, err))
		return
	}

	s.log.Debug("Received solve request for user \"%s\".", request.UserId)

	solution, err := s.matchmaker.Solve(ctx.Request.Context(), &request.ConstraintSet, request.UserId)
	if err != nil {
		s.replyWithError(ctx, err)
		return
	}

	if solution == nil {
		solution = matchmaking.NoSolution()
	}

	ctx.JSON(http.StatusOK, domain.SolveResponse{Solution: domain.NewSolutionView(solution)})
}

func (s *Server) HandleHealthRequest(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

// replyWithError replies with the protocol error code of err.
func (s *Server) replyWithError(ctx *gin.Context, err error) {
	code := matchmaking.ErrorCode(err)
	if errors.Is(err, ErrMalformedRequest) {
		code = http.StatusBadRequest
	}

	if code >= http.StatusInternalServerError {
		s.log.Error(utils.RedStyle.Render("Request %s %s failed: %v"), ctx.Request.Method, ctx.Request.URL.Path, err)
	} else {
		s.log.Warn("Rejected request %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(code, domain.ErrorResponse{
		Error: domain.ErrorBody{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// handlePanic converts a panic in a handler into an internal error reply.
func (s *Server) handlePanic(ctx *gin.Context, recovered any) {
	s.replyWithError(ctx, fmt.Errorf("unexpected failure: %v", recovered))
}

// Serve listens on the configured port until Close is called. It returns immediately if Close has already
// been called.
func (s *Server) Serve() error {
	s.log.Debug("Matchmaker is starting to listen on port %d", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("HTTP Server failed to listen on port %d because %v", s.port, err)
		return err
	}

	return nil
}

func (s *Server) Close(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
