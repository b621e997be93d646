package routing

import (
	"arcade/domain"
	"arcade/metrics"
	"context"
	"fmt"
)

const (
	TooShortMessage      = "Route must have at least two stations"
	UnreachableMessage   = "Destination cannot be reached from the starting station"
	unknownStationFormat = "Station %s does not exist"
	noConnectionFormat   = "No direct connection from %s to %s"
)

type StationSource interface {
	StationGraph(ctx context.Context) (domain.StationGraph, error)
}

// Evaluator checks routes against the station graph of its source. It
// satisfies route.Evaluator.
type Evaluator struct {
	source  StationSource
	metrics *metrics.Metrics
}

func NewEvaluator(source StationSource, m *metrics.Metrics) *Evaluator {
	return &Evaluator{source: source, metrics: m}
}

func (e *Evaluator) EvaluateRoute(ctx context.Context, waypoints []string) (domain.EvaluationResult, error) {
	graph, err := e.source.StationGraph(ctx)
	if err != nil {
		e.metrics.RouteEvaluated("error")
		return domain.EvaluationResult{}, fmt.Errorf("loading station graph: %w", err)
	}

	result := Evaluate(graph, waypoints)
	if result.Valid {
		e.metrics.RouteEvaluated("valid")
	} else {
		e.metrics.RouteEvaluated("invalid")
	}
	return result, nil
}

// Evaluate checks that every hop of waypoints is a direct connection and
// compares the total travel time with the fastest route between the
// endpoints.
func Evaluate(graph domain.StationGraph, waypoints []string) domain.EvaluationResult {
	if len(waypoints) < 2 {
		return domain.InvalidResult(TooShortMessage)
	}
	for _, id := range waypoints {
		if _, ok := graph[id]; !ok {
			return domain.InvalidResult(fmt.Sprintf(unknownStationFormat, id))
		}
	}

	travel := 0
	for i := 0; i+1 < len(waypoints); i++ {
		from, to := waypoints[i], waypoints[i+1]
		minutes, ok := graph.Connected(from, to)
		if !ok {
			return domain.InvalidResult(fmt.Sprintf(noConnectionFormat, graph[from].Name, graph[to].Name))
		}
		travel += minutes
	}

	optimalRoute, optimal, ok := ShortestPath(graph, waypoints[0], waypoints[len(waypoints)-1])
	if !ok {
		return domain.InvalidResult(UnreachableMessage)
	}

	score := Score(travel, optimal)
	return domain.EvaluationResult{
		Valid:              true,
		TravelTimeMinutes:  &travel,
		OptimalTimeMinutes: &optimal,
		OptimalRoute:       optimalRoute,
		Score:              &score,
	}
}

// Score is 100 for an optimal route and loses one point per percent of extra
// travel time, down to 0.
func Score(travel, optimal int) int {
	if travel == optimal {
		return 100
	}
	if optimal <= 0 {
		return 0
	}
	penalty := float64(travel-optimal) / float64(optimal) * 100
	return int(max(0, 100-penalty))
}
