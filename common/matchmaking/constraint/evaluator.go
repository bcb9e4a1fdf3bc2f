package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/types"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

const (
	// NodesVariable is the name of the variable that holds the selected nodes within an expression.
	NodesVariable = "nodes"
)

var (
	ErrConstraintEvaluation = errors.New("could not evaluate constraint")
	ErrNonBooleanConstraint = errors.New("constraint does not evaluate to a boolean")
)

// CelEvaluator compiles constraint expressions written in the Common Expression Language.
//
// Every expression refers to the selection of nodes by way of the list variable "nodes". Each node is a
// map with the following fields:
//
//	id, price
//	cloud.id, cloud.name, cloud.type
//	hardware.id, hardware.name, hardware.cores, hardware.ram, hardware.disk
//	image.id, image.name, image.os
//	location.id, location.name, location.country, location.parent, location.scope
//
// Expressions of the form "nodes.all(n, ...)" constrain every node individually and are therefore also
// used to filter candidates before solving. All other expressions only constrain whole selections.
type CelEvaluator struct {
	env *cel.Env

	log logger.Logger
}

// NewCelEvaluator creates a new CelEvaluator.
func NewCelEvaluator() (*CelEvaluator, error) {
	opts := []cel.EnvOption{
		cel.Variable(NodesVariable, cel.ListType(cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
		cel.EnableMacroCallTracking(),
	}
	opts = append(opts, listFunctions()...)

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, err
	}

	evaluator := &CelEvaluator{env: env}
	config.InitLogger(&evaluator.log, evaluator)

	return evaluator, nil
}

// Compile compiles the given requirements into a Checker.
func (e *CelEvaluator) Compile(requirements []string) (matchmaking.ConstraintChecker, error) {
	return e.CompileChecker(requirements)
}

// CompileChecker is the same as Compile, but returns the concrete *Checker.
func (e *CelEvaluator) CompileChecker(requirements []string) (*Checker, error) {
	checker := &Checker{
		nodes: cmap.New[map[string]interface{}](),
	}

	for _, requirement := range requirements {
		if strings.TrimSpace(requirement) == "" {
			continue
		}

		ast, iss := e.env.Compile(requirement)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("%w: \"%s\": %v", matchmaking.ErrConstraintParse, requirement, iss.Err())
		}

		outputType := ast.OutputType()
		if !outputType.IsExactType(types.BoolType) && !outputType.IsExactType(types.DynType) {
			return nil, fmt.Errorf("%w: %w: \"%s\" evaluates to %s", matchmaking.ErrConstraintParse,
				ErrNonBooleanConstraint, requirement, outputType.String())
		}

		program, err := e.env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("%w: \"%s\": %v", matchmaking.ErrConstraintParse, requirement, err)
		}

		compiled := &expression{
			source:  requirement,
			program: program,
			perNode: isPerNode(ast),
		}

		checker.expressions = append(checker.expressions, compiled)
		if compiled.perNode {
			checker.numPerNode++
		}
	}

	e.log.Debug("Compiled %d constraint(s), %d of which constrain individual nodes.",
		len(checker.expressions), checker.numPerNode)

	return checker, nil
}

// isPerNode returns true if the expression is a universal quantification over all nodes.
func isPerNode(ast *cel.Ast) bool {
	native := ast.NativeRep()

	call, ok := native.SourceInfo().GetMacroCall(native.Expr().ID())
	if !ok || call.Kind() != celast.CallKind {
		return false
	}

	fn := call.AsCall()
	if fn.FunctionName() != "all" || !fn.IsMemberFunction() {
		return false
	}

	target := fn.Target()
	return target.Kind() == celast.IdentKind && target.AsIdent() == NodesVariable
}
