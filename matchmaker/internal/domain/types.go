package domain

import (
	"context"

	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/utils"
)

// Matchmaker is the subset of the metasolver.MetaSolver API that is exposed over the request/response
// protocol.
type Matchmaker interface {
	// Solve returns the best solution for the given constraint set.
	Solve(ctx context.Context, constraints *matchmaking.ConstraintSet, userId string) (*matchmaking.Solution, error)

	// NodeCandidates returns the candidates of the user that satisfy the per-node requirements.
	NodeCandidates(ctx context.Context, userId string, requirements []string) (*matchmaking.NodeCandidates, error)
}

type NodeCandidatesRequest struct {
	UserId       string   `json:"userId"`
	Requirements []string `json:"requirements"`
}

type SolveRequest struct {
	UserId string `json:"userId"`
	matchmaking.ConstraintSet
}

type HardwareView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Cores  int     `json:"cores"`
	RamMB  int64   `json:"ram"`
	DiskGB float64 `json:"disk"`
}

type ImageView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OSFamily string `json:"os"`
}

type LocationView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// NodeCandidateView is the serialized form of a matchmaking.NodeCandidate.
//
// Price is "unknown" if the catalog has no price for the candidate.
type NodeCandidateView struct {
	ID       string       `json:"id"`
	Cloud    string       `json:"cloud"`
	Hardware HardwareView `json:"hardware"`
	Image    ImageView    `json:"image"`
	Location LocationView `json:"location"`
	Price    string       `json:"price"`
}

type NodeCandidatesResponse struct {
	Candidates []NodeCandidateView `json:"candidates"`
}

type SolutionView struct {
	Candidates []NodeCandidateView `json:"candidates"`
	Cost       string              `json:"cost"`
	Optimal    bool                `json:"optimal"`
	NoSolution bool                `json:"noSolution"`
	TimeMillis int64               `json:"timeMillis"`
	Strategy   string              `json:"strategy,omitempty"`
}

type SolveResponse struct {
	Solution SolutionView `json:"solution"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func NewNodeCandidateView(candidate *matchmaking.NodeCandidate) NodeCandidateView {
	hw, img, loc := candidate.Hardware(), candidate.Image(), candidate.Location()

	view := NodeCandidateView{
		ID:    candidate.ID(),
		Cloud: candidate.Cloud().ID,
		Hardware: HardwareView{
			ID:     hw.ID,
			Name:   hw.Name,
			Cores:  hw.Cores,
			RamMB:  hw.RamMB,
			DiskGB: hw.DiskGB,
		},
		Image: ImageView{
			ID:       img.ID,
			Name:     img.Name,
			OSFamily: string(img.OSFamily),
		},
		Location: LocationView{
			ID:      loc.ID,
			Name:    loc.Name,
			Country: loc.EffectiveCountry(),
		},
		Price: utils.FormatPrice(candidate.Price(), matchmaking.UnknownPrice),
	}

	return view
}

func NewNodeCandidateViews(candidates []*matchmaking.NodeCandidate) []NodeCandidateView {
	views := make([]NodeCandidateView, 0, len(candidates))
	for _, candidate := range candidates {
		views = append(views, NewNodeCandidateView(candidate))
	}
	return views
}

func NewSolutionView(solution *matchmaking.Solution) SolutionView {
	return SolutionView{
		Candidates: NewNodeCandidateViews(solution.Candidates()),
		Cost:       utils.FormatPrice(solution.Cost(), matchmaking.UnknownPrice),
		Optimal:    solution.IsOptimal(),
		NoSolution: solution.IsNoSolution(),
		TimeMillis: solution.Elapsed().Milliseconds(),
		Strategy:   solution.Strategy(),
	}
}
